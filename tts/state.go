package tts

// StateType represents the playback state of a reading session.
type StateType int

const (
	// StateIdle indicates nothing has been read yet.
	StateIdle StateType = iota
	// StatePlaying indicates sentences are being spoken one after another.
	StatePlaying
	// StatePaused indicates the user is stepping manually.
	StatePaused
	// StateFinished indicates the end of the document was reached.
	StateFinished
)

// String returns the string representation of the state.
func (s StateType) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// State is a snapshot of a reading session.
type State struct {
	CurrentState StateType  // Playback state
	Sentence     int        // Current sentence index (-1 before the first)
	Realized     int        // Sentences segmented so far
	Exhausted    bool       // Whether the whole document has been segmented
	Location     LocationID // Location of the current sentence
}

// IsActive returns true if a sentence is selected.
func (s *State) IsActive() bool {
	return s.CurrentState == StatePlaying || s.CurrentState == StatePaused
}

// Paused reports whether navigation should highlight each step.
func (s *State) Paused() bool {
	return s.CurrentState != StatePlaying
}

// StateMachine manages playback state transitions.
type StateMachine struct {
	current     StateType
	transitions map[StateType][]StateType
	onEnter     map[StateType]func()
}

// NewStateMachine creates a new state machine with valid transitions.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		current: StateIdle,
		transitions: map[StateType][]StateType{
			StateIdle:     {StatePlaying, StatePaused, StateFinished},
			StatePlaying:  {StatePaused, StateFinished},
			StatePaused:   {StatePlaying, StateFinished},
			StateFinished: {StatePaused, StatePlaying, StateIdle},
		},
		onEnter: make(map[StateType]func()),
	}
}

// Transition attempts to transition to the specified state.
func (sm *StateMachine) Transition(to StateType) bool {
	if sm.current == to {
		return true
	}

	valid := false
	for _, state := range sm.transitions[sm.current] {
		if state == to {
			valid = true
			break
		}
	}
	if !valid {
		return false
	}

	sm.current = to

	if enterFn, ok := sm.onEnter[to]; ok && enterFn != nil {
		enterFn()
	}

	return true
}

// Current returns the current state.
func (sm *StateMachine) Current() StateType {
	return sm.current
}

// OnEnter registers a callback for entering a state.
func (sm *StateMachine) OnEnter(state StateType, fn func()) {
	sm.onEnter[state] = fn
}
