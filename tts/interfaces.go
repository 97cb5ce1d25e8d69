package tts

import (
	"github.com/dgnsrekt/readalong/tts/document"
)

// LocationID is an opaque, persistable identifier for a narration unit.
// The empty string means "no location".
type LocationID string

// HighlightFunc visually marks a range and returns its location.
// It is supplied by the host and may have side effects.
type HighlightFunc func(r document.Range) LocationID

// LocationFunc maps a range to its location without side effects.
type LocationFunc func(r document.Range) LocationID

// Detail is the text of one span together with its location, as handed to
// a speech engine for synthesis or prefetching.
type Detail struct {
	Text       string     // Plain text to speak
	LocationID LocationID // Location of the span, empty if unknown
}

// CollectOptions controls CollectDetails.
type CollectOptions struct {
	IncludeCurrent bool // Start with the current span
	Offset         int  // Distance of the first upcoming span from the current one; see DefaultOffset
}

// Narrator is the navigation surface a playback loop drives.
type Narrator interface {
	Start() (string, bool)
	End() (string, bool)
	Resume() (string, bool)
	Next(paused bool) (string, bool)
	Prev(paused bool) (string, bool)
	Prepare() (string, bool)
	From(r document.Range) (string, bool)
	CurrentDetail() (Detail, bool)
	CollectDetails(count int, opts CollectOptions) []Detail
	HighlightCFI(id LocationID) (Detail, bool)
	MarkResume(offset int) bool
	Position() (index, realized int)
	Exhausted() bool
	CurrentRange() (document.Range, bool)
}
