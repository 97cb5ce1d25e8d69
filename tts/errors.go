package tts

import "errors"

// Common errors at the host boundary. Navigation itself never fails; it
// reports absence with a false second return value.
var (
	// Document errors
	ErrEmptyDocument     = errors.New("document has no narratable text")
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrLocationNotFound  = errors.New("location not found in document")
	ErrNoCurrentSentence = errors.New("no current sentence")
	ErrSessionClosed     = errors.New("reading session is closed")

	// Configuration errors
	ErrInvalidConfig = errors.New("invalid configuration")
)

// IsRecoverableError checks if an error is recoverable.
func IsRecoverableError(err error) bool {
	if err == nil {
		return true
	}

	switch {
	case errors.Is(err, ErrSessionClosed),
		errors.Is(err, ErrInvalidConfig),
		errors.Is(err, ErrUnsupportedFormat):
		return false
	}

	return true
}

// Error provides detailed error information.
type Error struct {
	Err       error          // The underlying error
	Component string         // Component that generated the error
	Action    string         // Action being performed when error occurred
	Context   map[string]any // Additional context
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err == nil {
		return "unknown narration error"
	}
	if e.Component == "" {
		return e.Err.Error()
	}
	return e.Component + ": " + e.Action + ": " + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// IsRecoverable checks if the error is recoverable.
func (e *Error) IsRecoverable() bool {
	return IsRecoverableError(e.Err)
}

// NewError creates a new error with context.
func NewError(err error, component, action string) *Error {
	return &Error{
		Err:       err,
		Component: component,
		Action:    action,
		Context:   make(map[string]any),
	}
}

// WithContext adds context to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}
