package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/dgnsrekt/readalong/tts"
)

// statusDisplay renders the narration state in the status bar.
type statusDisplay struct {
	state     tts.StateType
	sentence  int
	realized  int
	exhausted bool
	location  tts.LocationID
}

func newStatusDisplay() *statusDisplay {
	return &statusDisplay{
		state:    tts.StateIdle,
		sentence: -1,
	}
}

// Update copies a snapshot of the narration state.
func (s *statusDisplay) Update(state tts.State) {
	s.state = state.CurrentState
	s.sentence = state.Sentence
	s.realized = state.Realized
	s.exhausted = state.Exhausted
	s.location = state.Location
}

// CompactStatus returns a short status string for the status bar.
func (s *statusDisplay) CompactStatus() string {
	if s.state == tts.StateIdle && s.sentence < 0 {
		return ""
	}

	status := lipgloss.NewStyle().
		Foreground(s.stateColor()).
		Render(s.stateIcon() + " " + s.state.String())

	if s.sentence >= 0 {
		counterStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
		status += counterStyle.Render(" " + s.counter())
	}
	return status
}

// counter reads "3/12" once the whole document has been segmented and
// "3/5+" while more sentences may follow.
func (s *statusDisplay) counter() string {
	total := humanize.Comma(int64(s.realized))
	if !s.exhausted {
		total += "+"
	}
	return humanize.Comma(int64(s.sentence+1)) + "/" + total
}

// Progress is the fraction of known sentences already reached.
func (s *statusDisplay) Progress() float64 {
	if s.realized == 0 || s.sentence < 0 {
		return 0
	}
	return float64(s.sentence+1) / float64(s.realized)
}

// ProgressBar returns a visual progress bar. Until the document is
// exhausted the bar only reflects what has been read so far.
func (s *statusDisplay) ProgressBar(width int) string {
	if s.realized == 0 || width < 10 {
		return ""
	}

	filledWidth := min(int(s.Progress()*float64(width)), width)
	filled := strings.Repeat("█", filledWidth)
	empty := strings.Repeat("░", width-filledWidth)

	filledStyle := lipgloss.NewStyle().Foreground(s.stateColor())
	emptyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#333333"))

	return filledStyle.Render(filled) + emptyStyle.Render(empty)
}

// Location returns the current location id cut to width cells.
func (s *statusDisplay) Location(width int) string {
	if s.location == "" || width <= 0 {
		return ""
	}
	return runewidth.Truncate(string(s.location), width, "…")
}

// DetailedStatus returns a multi-line summary for the help panel.
func (s *statusDisplay) DetailedStatus(width int) string {
	if s.sentence < 0 {
		return ""
	}

	lines := []string{
		lipgloss.NewStyle().Foreground(s.stateColor()).
			Render(fmt.Sprintf("State: %s %s", s.stateIcon(), s.state)),
		"Sentence: " + s.counter(),
	}
	if width > 20 {
		lines = append(lines, s.ProgressBar(width-4))
	}
	if loc := s.Location(width - len("Location: ")); loc != "" {
		lines = append(lines, "Location: "+loc)
	}
	return strings.Join(lines, "\n")
}

func (s *statusDisplay) stateColor() lipgloss.Color {
	switch s.state {
	case tts.StatePlaying:
		return lipgloss.Color("#00FF00")
	case tts.StatePaused:
		return lipgloss.Color("#FFFF00")
	case tts.StateFinished:
		return lipgloss.Color("#00AAFF")
	default:
		return lipgloss.Color("#888888")
	}
}

func (s *statusDisplay) stateIcon() string {
	switch s.state {
	case tts.StatePlaying:
		return "▶"
	case tts.StatePaused:
		return "⏸"
	case tts.StateFinished:
		return "■"
	default:
		return "○"
	}
}
