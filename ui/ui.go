// Package ui provides the interactive read-along interface.
package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"

	"github.com/dgnsrekt/readalong/internal/bookmark"
	"github.com/dgnsrekt/readalong/internal/session"
	"github.com/dgnsrekt/readalong/tts"
)

const (
	statusMessageTimeout = time.Second * 3 // how long to show status messages like "bookmarked!"
	statusBarHeight      = 1
	defaultMaxWidth      = 100
	ellipsis             = "…"
)

var (
	mintGreen = lipgloss.AdaptiveColor{Light: "#89F0CB", Dark: "#89F0CB"}
	darkGreen = lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#1C8760"}

	statusBarNoteFg = lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}
	statusBarBg     = lipgloss.AdaptiveColor{Light: "#E6E6E6", Dark: "#242424"}

	statusBarNoteStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(statusBarBg).
				Render

	statusBarHelpStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(lipgloss.AdaptiveColor{Light: "#DCDCDC", Dark: "#323232"}).
				Render

	statusBarMessageStyle = lipgloss.NewStyle().
				Foreground(mintGreen).
				Background(darkGreen).
				Render

	logoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ECFD65")).
			Background(lipgloss.Color("#7D56F4")).
			Bold(true).
			Render

	upcomingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
)

// highlightColors maps configured color names to ANSI colors.
var highlightColors = map[string]lipgloss.Color{
	"black":   lipgloss.Color("0"),
	"red":     lipgloss.Color("1"),
	"green":   lipgloss.Color("2"),
	"yellow":  lipgloss.Color("3"),
	"blue":    lipgloss.Color("4"),
	"magenta": lipgloss.Color("5"),
	"cyan":    lipgloss.Color("6"),
	"white":   lipgloss.Color("7"),
}

// MSG

type (
	autoplayTickMsg         struct{ seq int }
	statusMessageTimeoutMsg struct{}
	reloadMsg               struct {
		session *session.Session
		err     error
	}
)

// MODEL

type model struct {
	cfg     Config
	session *session.Session
	store   *bookmark.Store
	opts    []session.Option

	keys   keyMap
	help   help.Model
	status *statusDisplay

	width  int
	height int

	playing bool
	seq     int // invalidates stale autoplay ticks

	current  tts.Detail
	hasCur   bool
	upcoming []tts.Detail

	statusMessage      string
	statusMessageTimer *time.Timer

	reloads     chan reloadMsg
	watchCtx    context.Context
	cancelWatch context.CancelFunc
}

// NewProgram returns a new Tea program reading s.
func NewProgram(cfg Config, s *session.Session, store *bookmark.Store, opts ...session.Option) *tea.Program {
	log.Debug(
		"Starting readalong",
		"path", cfg.Path,
		"session", s.ID.String(),
		"autoplay", cfg.TTS.AutoPlay,
	)

	var programOpts []tea.ProgramOption
	if cfg.AltScreen {
		programOpts = append(programOpts, tea.WithAltScreen())
	}
	if cfg.EnableMouse {
		programOpts = append(programOpts, tea.WithMouseCellMotion())
	}
	m := newModel(cfg, s, store, opts...)
	return tea.NewProgram(m, programOpts...)
}

func newModel(cfg Config, s *session.Session, store *bookmark.Store, opts ...session.Option) model {
	m := model{
		cfg:     cfg,
		session: s,
		store:   store,
		opts:    opts,
		keys:    newKeyMap(),
		help:    help.New(),
		status:  newStatusDisplay(),
		reloads: make(chan reloadMsg),
	}

	if cfg.FromBookmark && store != nil {
		if _, err := s.RestoreBookmark(store); err != nil {
			if !errors.Is(err, bookmark.ErrNoBookmark) {
				log.Error("unable to restore bookmark", "path", s.Path, "error", err)
			}
			s.Start()
		}
	} else {
		s.Start()
	}
	if cfg.WatchDocument && cfg.Path != "" {
		m.watchCtx, m.cancelWatch = context.WithCancel(context.Background())
	}
	m.playing = cfg.TTS.AutoPlay
	m.refresh()
	return m
}

func (m model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.watchCtx != nil {
		cmds = append(cmds,
			watchDocument(m.watchCtx, m.cfg.Path, m.reloads, m.opts),
			waitForReload(m.reloads),
		)
	}
	if m.playing {
		cmds = append(cmds, m.tick(m.seq))
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case autoplayTickMsg:
		if !m.playing || msg.seq != m.seq {
			return m, nil
		}
		if _, ok := m.session.Next(false); !ok {
			m.playing = false
			m.refresh()
			return m, m.showStatusMessage("End of document")
		}
		m.refresh()
		return m, m.scheduleTick()

	case reloadMsg:
		return m.handleReload(msg)

	case statusMessageTimeoutMsg:
		m.statusMessage = ""
		return m, nil
	}

	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.cancelWatch != nil {
			m.cancelWatch()
		}
		if m.store != nil && m.cfg.TTS.Bookmarks.Enabled {
			if err := m.session.SaveBookmark(m.store); err != nil {
				log.Error("unable to save bookmark", "path", m.session.Path, "error", err)
			}
		}
		return m, tea.Quit

	case key.Matches(msg, m.keys.Toggle):
		m.playing = !m.playing
		m.refresh()
		if m.playing {
			return m, m.scheduleTick()
		}
		m.seq++
		return m, m.showStatusMessage("Paused")

	case key.Matches(msg, m.keys.Next):
		if _, ok := m.session.Next(!m.playing); !ok {
			return m, m.showStatusMessage("End of document")
		}
		return m.stepped()

	case key.Matches(msg, m.keys.Prev):
		if _, ok := m.session.Prev(!m.playing); !ok {
			return m, m.showStatusMessage("Start of document")
		}
		return m.stepped()

	case key.Matches(msg, m.keys.Start):
		m.session.Start()
		return m.stepped()

	case key.Matches(msg, m.keys.End):
		m.session.End()
		return m.stepped()

	case key.Matches(msg, m.keys.Copy):
		if !m.hasCur {
			return m, nil
		}
		if err := clipboard.WriteAll(m.current.Text); err != nil {
			log.Error("unable to copy sentence", "error", err)
			return m, m.showStatusMessage("Copy failed: " + err.Error())
		}
		return m, m.showStatusMessage("Copied sentence")

	case key.Matches(msg, m.keys.Bookmark):
		if m.store == nil {
			return m, m.showStatusMessage("Bookmarks are disabled")
		}
		if err := m.session.SaveBookmark(m.store); err != nil {
			log.Error("unable to save bookmark", "path", m.session.Path, "error", err)
			return m, m.showStatusMessage("Bookmark failed")
		}
		return m, m.showStatusMessage("Bookmarked!")

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	return m, nil
}

// stepped refreshes after manual navigation and restarts the autoplay
// delay for the newly selected sentence.
func (m model) stepped() (tea.Model, tea.Cmd) {
	m.refresh()
	if m.playing {
		return m, m.scheduleTick()
	}
	return m, nil
}

func (m model) handleReload(msg reloadMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		log.Error("unable to reload document", "path", m.cfg.Path, "error", msg.err)
		if !tts.IsRecoverableError(msg.err) {
			// Further changes would fail the same way.
			if m.cancelWatch != nil {
				m.cancelWatch()
			}
			return m, m.showStatusMessage("Reload failed, stopped watching")
		}
		return m, tea.Batch(
			m.showStatusMessage("Reload failed"),
			waitForReload(m.reloads),
		)
	}

	old := m.session
	fresh := msg.session
	if m.hasCur && m.current.LocationID != "" {
		if _, ok := fresh.HighlightCFI(m.current.LocationID); !ok {
			if _, err := fresh.Seek(m.current.LocationID); err != nil {
				log.Debug("previous location lost on reload", "location", m.current.LocationID, "error", err)
				fresh.Start()
			}
		}
	} else {
		fresh.Start()
	}
	old.Close()

	m.session = fresh
	m.refresh()
	cmds := []tea.Cmd{m.showStatusMessage("Reloaded"), waitForReload(m.reloads)}
	if m.playing {
		cmds = append(cmds, m.scheduleTick())
	}
	return m, tea.Batch(cmds...)
}

// refresh pulls the current and upcoming sentences from the session.
func (m *model) refresh() {
	m.current, m.hasCur = m.session.CurrentDetail()
	m.upcoming = m.session.CollectDetails(m.cfg.TTS.Lookahead, tts.CollectOptions{Offset: tts.DefaultOffset})

	state := tts.StatePaused
	switch {
	case m.playing:
		state = tts.StatePlaying
	case !m.hasCur:
		state = tts.StateIdle
	case m.session.State(state).Exhausted && len(m.upcoming) == 0:
		state = tts.StateFinished
	}
	m.status.Update(m.session.State(state))
}

// scheduleTick bumps the tick sequence and waits as long as the current
// sentence would take to speak.
func (m *model) scheduleTick() tea.Cmd {
	m.seq++
	return m.tick(m.seq)
}

func (m model) tick(seq int) tea.Cmd {
	delay := m.cfg.TTS.UtteranceDelay(m.current.Text)
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return autoplayTickMsg{seq: seq}
	})
}

func (m *model) showStatusMessage(msg string) tea.Cmd {
	m.statusMessage = msg
	if m.statusMessageTimer != nil {
		m.statusMessageTimer.Stop()
	}
	m.statusMessageTimer = time.NewTimer(statusMessageTimeout)
	return waitForStatusMessageTimeout(m.statusMessageTimer)
}

// VIEW

func (m model) View() string {
	var b strings.Builder
	width := m.columnWidth()

	body := m.bodyView(width)
	bodyHeight := m.height - statusBarHeight
	if m.help.ShowAll {
		bodyHeight -= lipgloss.Height(m.helpView())
	}
	lines := strings.Split(body, "\n")
	if bodyHeight > 0 {
		if len(lines) > bodyHeight {
			lines = lines[:bodyHeight]
		}
		for len(lines) < bodyHeight {
			lines = append(lines, "")
		}
	}
	fmt.Fprint(&b, strings.Join(lines, "\n")+"\n")

	m.statusBarView(&b)

	if m.help.ShowAll {
		fmt.Fprint(&b, "\n"+m.helpView())
	}
	return b.String()
}

func (m model) columnWidth() int {
	limit := int(m.cfg.MaxWidth) //nolint:gosec
	if m.cfg.TTS.WrapWidth > 0 {
		limit = m.cfg.TTS.WrapWidth
	}
	if limit == 0 {
		limit = defaultMaxWidth
	}
	if m.width > 0 {
		limit = min(limit, m.width)
	}
	return max(limit, 10)
}

func (m model) bodyView(width int) string {
	if !m.hasCur {
		return upcomingStyle.Render("Nothing to read.")
	}

	var parts []string
	parts = append(parts, m.highlightStyle().Render(wordwrap.String(m.current.Text, width)))
	for _, d := range m.upcoming {
		parts = append(parts, upcomingStyle.Render(wordwrap.String(d.Text, width)))
	}
	return strings.Join(parts, "\n\n")
}

func (m model) highlightStyle() lipgloss.Style {
	style := lipgloss.NewStyle().Bold(true)
	if !m.cfg.TTS.HighlightEnabled {
		return style
	}
	if c, ok := highlightColors[m.cfg.TTS.HighlightColor]; ok {
		style = style.Background(c).Foreground(lipgloss.Color("0"))
	}
	return style
}

func (m model) statusBarView(b *strings.Builder) {
	showStatusMessage := m.statusMessage != ""

	logo := logoStyle(" Readalong ")

	var helpNote string
	if showStatusMessage {
		helpNote = statusBarMessageStyle(" ? Help ")
	} else {
		helpNote = statusBarHelpStyle(" ? Help ")
	}

	state := m.status.CompactStatus()
	if state != "" {
		state = " " + state + " "
	}

	var note string
	if showStatusMessage {
		note = m.statusMessage
	} else {
		note = filepath.Base(m.session.Path)
	}
	note = truncate.StringWithTail(" "+note+" ", uint(max(0, //nolint:gosec
		m.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(state)-
			ansi.PrintableRuneWidth(helpNote),
	)), ellipsis)
	if showStatusMessage {
		note = statusBarMessageStyle(note)
	} else {
		note = statusBarNoteStyle(note)
	}

	padding := max(0,
		m.width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(note)-
			ansi.PrintableRuneWidth(state)-
			ansi.PrintableRuneWidth(helpNote),
	)
	emptySpace := strings.Repeat(" ", padding)
	if showStatusMessage {
		emptySpace = statusBarMessageStyle(emptySpace)
	} else {
		emptySpace = statusBarNoteStyle(emptySpace)
	}

	fmt.Fprintf(b, "%s%s%s%s%s",
		logo,
		note,
		emptySpace,
		state,
		helpNote,
	)
}

func (m model) helpView() string {
	s := m.help.View(m.keys)
	if detail := m.status.DetailedStatus(m.columnWidth()); detail != "" {
		s = detail + "\n\n" + s
	}
	return s
}

// COMMANDS

func waitForStatusMessageTimeout(t *time.Timer) tea.Cmd {
	return func() tea.Msg {
		<-t.C
		return statusMessageTimeoutMsg{}
	}
}

// watchDocument starts watching path in the background. Reloads are
// delivered on ch and picked up by waitForReload.
func watchDocument(ctx context.Context, path string, ch chan<- reloadMsg, opts []session.Option) tea.Cmd {
	return func() tea.Msg {
		go func() {
			err := session.Watch(ctx, path, func(s *session.Session, err error) {
				select {
				case ch <- reloadMsg{session: s, err: err}:
				case <-ctx.Done():
				}
			}, opts...)
			if err != nil {
				log.Error("unable to watch document", "path", path, "error", err)
			}
		}()
		return nil
	}
}

func waitForReload(ch <-chan reloadMsg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}
