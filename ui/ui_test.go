package ui

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dgnsrekt/readalong/internal/bookmark"
	"github.com/dgnsrekt/readalong/internal/dom"
	"github.com/dgnsrekt/readalong/internal/session"
	"github.com/dgnsrekt/readalong/tts"
)

const sampleHTML = `<p>First one. Second one.</p><p>Third one.</p>`

func newTestModel(t *testing.T, cfg Config, store *bookmark.Store) model {
	t.Helper()
	doc, err := dom.ParseHTMLString(sampleHTML)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.TTS.Lookahead == 0 {
		cfg.TTS = tts.DefaultConfig()
	}
	s := session.New(doc, filepath.Join(t.TempDir(), "sample.html"), session.WithConfig(cfg.TTS))
	return newModel(cfg, s, store)
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(model)
	if !ok {
		t.Fatalf("Update() returned %T, want model", next)
	}
	return nm, cmd
}

func TestNewModelStartsAtFirstSentence(t *testing.T) {
	m := newTestModel(t, Config{}, nil)

	if !m.hasCur || m.current.Text != "First one." {
		t.Errorf("current = %+v, want First one.", m.current)
	}
	if len(m.upcoming) != 2 || m.upcoming[0].Text != "Second one." {
		t.Errorf("upcoming = %+v", m.upcoming)
	}
	if m.playing {
		t.Error("autoplay is off by default")
	}
}

func TestNavigationKeys(t *testing.T) {
	testCases := []struct {
		description string
		keys        []tea.KeyMsg
		want        string
	}{
		{"next", []tea.KeyMsg{runes("n")}, "Second one."},
		{"right arrow", []tea.KeyMsg{{Type: tea.KeyRight}}, "Second one."},
		{"next then previous", []tea.KeyMsg{runes("n"), runes("p")}, "First one."},
		{"previous at start", []tea.KeyMsg{runes("p")}, "First one."},
		{"end", []tea.KeyMsg{runes("G")}, "Third one."},
		{"end then start", []tea.KeyMsg{runes("G"), runes("g")}, "First one."},
		{"past the end", []tea.KeyMsg{runes("G"), runes("n")}, "Third one."},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			m := newTestModel(t, Config{}, nil)
			for _, k := range tc.keys {
				m, _ = press(t, m, k)
			}
			if m.current.Text != tc.want {
				t.Errorf("current = %q, want %q", m.current.Text, tc.want)
			}
		})
	}
}

func TestBoundaryShowsStatusMessage(t *testing.T) {
	m := newTestModel(t, Config{}, nil)
	m, cmd := press(t, m, runes("p"))
	if m.statusMessage != "Start of document" || cmd == nil {
		t.Errorf("statusMessage = %q, cmd = %v", m.statusMessage, cmd)
	}
}

func TestPausedNavigationHighlights(t *testing.T) {
	m := newTestModel(t, Config{}, nil)
	m, _ = press(t, m, runes("n"))

	_, id, ok := m.session.Highlighted()
	if !ok || id != m.current.LocationID {
		t.Errorf("Highlighted() = %q, %v, want %q", id, ok, m.current.LocationID)
	}
	if m.status.state != tts.StatePaused {
		t.Errorf("status state = %v, want paused", m.status.state)
	}
}

func TestToggleAutoplay(t *testing.T) {
	m := newTestModel(t, Config{}, nil)

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	if !m.playing || cmd == nil {
		t.Fatalf("playing = %v, cmd = %v after space", m.playing, cmd)
	}
	if m.status.state != tts.StatePlaying {
		t.Errorf("status state = %v, want playing", m.status.state)
	}
	seq := m.seq

	// A stale tick does nothing.
	m, _ = press(t, m, autoplayTickMsg{seq: seq - 1})
	if m.current.Text != "First one." {
		t.Errorf("stale tick moved to %q", m.current.Text)
	}

	m, cmd = press(t, m, autoplayTickMsg{seq: seq})
	if m.current.Text != "Second one." || cmd == nil {
		t.Errorf("tick: current = %q, cmd = %v", m.current.Text, cmd)
	}

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	if m.playing {
		t.Error("space should pause")
	}
	before := m.current.Text
	m, _ = press(t, m, autoplayTickMsg{seq: m.seq})
	if m.current.Text != before {
		t.Error("ticks after pausing should be ignored")
	}
}

func TestAutoplayStopsAtEnd(t *testing.T) {
	cfg := Config{TTS: tts.DefaultConfig()}
	cfg.TTS.AutoPlay = true
	m := newTestModel(t, cfg, nil)
	if !m.playing {
		t.Fatal("autoplay should start playing")
	}

	for range 5 {
		m, _ = press(t, m, autoplayTickMsg{seq: m.seq})
	}
	if m.playing {
		t.Error("playing should stop at the end of the document")
	}
	if m.current.Text != "Third one." || m.statusMessage != "End of document" {
		t.Errorf("current = %q, statusMessage = %q", m.current.Text, m.statusMessage)
	}
	if m.status.state != tts.StateFinished {
		t.Errorf("status state = %v, want finished", m.status.state)
	}
}

func TestBookmarkKey(t *testing.T) {
	store, err := bookmark.Load(filepath.Join(t.TempDir(), "bookmarks.yml"))
	if err != nil {
		t.Fatal(err)
	}
	m := newTestModel(t, Config{}, store)
	m, _ = press(t, m, runes("n"))
	m, _ = press(t, m, runes("b"))

	if m.statusMessage != "Bookmarked!" {
		t.Errorf("statusMessage = %q", m.statusMessage)
	}
	b, err := store.Get(m.session.Path)
	if err != nil {
		t.Fatal(err)
	}
	if b.Sentence != 1 || b.Preview != "Second one." {
		t.Errorf("bookmark = %+v", b)
	}

	cfg := Config{FromBookmark: true, TTS: tts.DefaultConfig()}
	restored := newModel(cfg, session.New(m.session.Document(), m.session.Path), store)
	if restored.current.Text != "Second one." {
		t.Errorf("restored at %q, want Second one.", restored.current.Text)
	}
}

func TestBookmarkKeyWithoutStore(t *testing.T) {
	m := newTestModel(t, Config{}, nil)
	m, _ = press(t, m, runes("b"))
	if m.statusMessage != "Bookmarks are disabled" {
		t.Errorf("statusMessage = %q", m.statusMessage)
	}
}

func TestQuitSavesBookmark(t *testing.T) {
	store, err := bookmark.Load(filepath.Join(t.TempDir(), "bookmarks.yml"))
	if err != nil {
		t.Fatal(err)
	}
	m := newTestModel(t, Config{}, store)
	m, _ = press(t, m, runes("G"))
	_, cmd := press(t, m, runes("q"))

	if cmd == nil {
		t.Fatal("quit should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit command should produce tea.QuitMsg")
	}
	if b, err := store.Get(m.session.Path); err != nil || b.Preview != "Third one." {
		t.Errorf("bookmark after quit = %+v, %v", b, err)
	}
}

func TestReloadKeepsPosition(t *testing.T) {
	m := newTestModel(t, Config{}, nil)
	m, _ = press(t, m, runes("n"))
	old := m.session

	doc, err := dom.ParseHTMLString(`<p>First one. Second one.</p><p>Third one, edited.</p>`)
	if err != nil {
		t.Fatal(err)
	}
	m, _ = press(t, m, reloadMsg{session: session.New(doc, old.Path)})

	if !old.Closed() {
		t.Error("the previous session should be closed")
	}
	if m.current.Text != "Second one." {
		t.Errorf("current after reload = %q", m.current.Text)
	}
	if len(m.upcoming) != 1 || m.upcoming[0].Text != "Third one, edited." {
		t.Errorf("upcoming after reload = %+v", m.upcoming)
	}
	if m.statusMessage != "Reloaded" {
		t.Errorf("statusMessage = %q", m.statusMessage)
	}
}

func TestReloadError(t *testing.T) {
	testCases := []struct {
		description string
		err         error
		want        string
	}{
		{"parse error", tts.NewError(errors.New("bad markup"), "session", "parse"), "Reload failed"},
		{"unsupported format", tts.ErrUnsupportedFormat, "Reload failed, stopped watching"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			m := newTestModel(t, Config{}, nil)
			old := m.session
			m, _ = press(t, m, reloadMsg{err: tc.err})

			if m.session != old || old.Closed() {
				t.Error("a failed reload should keep the current session")
			}
			if m.statusMessage != tc.want {
				t.Errorf("statusMessage = %q, want %q", m.statusMessage, tc.want)
			}
		})
	}
}

func TestStatusMessageTimeout(t *testing.T) {
	m := newTestModel(t, Config{}, nil)
	m.statusMessage = "Bookmarked!"
	m, _ = press(t, m, statusMessageTimeoutMsg{})
	if m.statusMessage != "" {
		t.Errorf("statusMessage = %q after timeout", m.statusMessage)
	}
}

func TestView(t *testing.T) {
	m := newTestModel(t, Config{}, nil)
	m, _ = press(t, m, tea.WindowSizeMsg{Width: 80, Height: 12})

	view := m.View()
	for _, want := range []string{"First one.", "Second one.", "Readalong", "sample.html", "1/"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
	if got := strings.Count(view, "\n") + 1; got != 12 {
		t.Errorf("View() has %d lines, want 12", got)
	}

	m, _ = press(t, m, runes("?"))
	if !strings.Contains(m.View(), "go to start") {
		t.Error("full help should list all bindings")
	}
}

func TestColumnWidth(t *testing.T) {
	testCases := []struct {
		description string
		maxWidth    uint
		wrap        int
		terminal    int
		want        int
	}{
		{"default", 0, 0, 0, defaultMaxWidth},
		{"narrow terminal", 0, 0, 60, 60},
		{"max width", 72, 0, 120, 72},
		{"wrap width wins", 72, 40, 120, 40},
		{"floor", 0, 0, 4, 10},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			m := model{cfg: Config{MaxWidth: tc.maxWidth, TTS: tts.Config{WrapWidth: tc.wrap}}, width: tc.terminal}
			if got := m.columnWidth(); got != tc.want {
				t.Errorf("columnWidth() = %d, want %d", got, tc.want)
			}
		})
	}
}
