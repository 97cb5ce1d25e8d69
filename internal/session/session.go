// Package session ties a parsed document, its location ids and a narration
// controller together for the lifetime of one reading.
package session

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/dgnsrekt/readalong/internal/bookmark"
	"github.com/dgnsrekt/readalong/internal/dom"
	"github.com/dgnsrekt/readalong/internal/locator"
	"github.com/dgnsrekt/readalong/tts"
	"github.com/dgnsrekt/readalong/tts/document"
	"github.com/dgnsrekt/readalong/utils"
)

// Option configures a Session.
type Option func(*options)

type options struct {
	cfg    tts.Config
	logger *log.Logger
}

// WithConfig sets the narration configuration.
func WithConfig(cfg tts.Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Session is one reading of one document snapshot. A session never sees
// later edits of its file: Watch builds a fresh session instead. All
// methods are safe for concurrent use.
type Session struct {
	ID   uuid.UUID
	Path string

	cfg     tts.Config
	doc     *dom.Document
	locator *locator.Locator
	logger  *log.Logger

	mu          sync.Mutex
	ctrl        tts.Narrator
	closed      bool
	highlighted document.Range
	location    tts.LocationID
}

// Open reads and parses the file at path. The format is chosen by
// extension; Markdown front matter is not narrated.
func Open(path string, opts ...Option) (*Session, error) {
	path = utils.ExpandPath(path)
	b, err := utils.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open file: %w", err)
	}

	var doc *dom.Document
	switch format := utils.DetectFormat(path); format {
	case utils.FormatMarkdown:
		doc, err = dom.ParseMarkdown(utils.RemoveFrontmatter(b))
	case utils.FormatHTML:
		doc, err = dom.ParseHTML(bytes.NewReader(b))
	default:
		return nil, fmt.Errorf("%w: %s", tts.ErrUnsupportedFormat, filepath.Ext(path))
	}
	if err != nil {
		return nil, tts.NewError(err, "session", "parse").WithContext("path", path)
	}

	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return New(doc, path, opts...), nil
}

// New starts a session over an already parsed document.
func New(doc *dom.Document, path string, opts ...Option) *Session {
	o := options{cfg: tts.DefaultConfig(), logger: log.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Session{
		ID:      uuid.New(),
		Path:    path,
		cfg:     o.cfg,
		doc:     doc,
		locator: locator.New(doc),
	}
	s.logger = o.logger.With("session", s.ID.String()[:8])

	var highlight tts.HighlightFunc
	if s.cfg.HighlightEnabled {
		highlight = s.highlight
	}
	s.ctrl = tts.NewController(doc, highlight, s.locator.Locate, tts.WithLogger(s.logger))
	s.logger.Debug("Session started", "path", path, "texts", len(doc.TextNodes()))
	return s
}

// highlight is the controller's highlight callback. It runs while the
// session lock is held by the navigating method.
func (s *Session) highlight(r document.Range) tts.LocationID {
	s.highlighted = r
	s.location = s.locator.Locate(r)
	return s.location
}

// Document returns the parsed document.
func (s *Session) Document() *dom.Document { return s.doc }

// Config returns the narration configuration.
func (s *Session) Config() tts.Config { return s.cfg }

// Start moves to the first sentence.
func (s *Session) Start() (string, bool) {
	return s.navigate(tts.Narrator.Start)
}

// End moves to the last sentence.
func (s *Session) End() (string, bool) {
	return s.navigate(tts.Narrator.End)
}

// Resume returns the current sentence, or its unspoken remainder.
func (s *Session) Resume() (string, bool) {
	return s.navigate(tts.Narrator.Resume)
}

// Prepare returns the next sentence without moving.
func (s *Session) Prepare() (string, bool) {
	return s.navigate(tts.Narrator.Prepare)
}

// Next moves to the following sentence.
func (s *Session) Next(paused bool) (string, bool) {
	return s.navigate(func(c tts.Narrator) (string, bool) { return c.Next(paused) })
}

// Prev moves to the preceding sentence.
func (s *Session) Prev(paused bool) (string, bool) {
	return s.navigate(func(c tts.Narrator) (string, bool) { return c.Prev(paused) })
}

// Seek moves to the first sentence ending at or after the start of the
// range identified by id.
func (s *Session) Seek(id tts.LocationID) (string, error) {
	r, err := s.locator.Resolve(id)
	if err != nil {
		return "", tts.NewError(err, "session", "seek").WithContext("id", id)
	}
	if s.Closed() {
		return "", tts.ErrSessionClosed
	}
	text, ok := s.navigate(func(c tts.Narrator) (string, bool) { return c.From(r) })
	if !ok {
		return "", fmt.Errorf("%w: %s", tts.ErrLocationNotFound, id)
	}
	s.logger.Debug("Seeked", "id", id)
	return text, nil
}

// HighlightCFI moves to the sentence whose location is id.
func (s *Session) HighlightCFI(id tts.LocationID) (tts.Detail, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return tts.Detail{}, false
	}
	return s.ctrl.HighlightCFI(id)
}

// CurrentDetail returns the current sentence and its location.
func (s *Session) CurrentDetail() (tts.Detail, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return tts.Detail{}, false
	}
	return s.ctrl.CurrentDetail()
}

// CollectDetails returns upcoming sentences for prefetching.
func (s *Session) CollectDetails(count int, opts tts.CollectOptions) []tts.Detail {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	return s.ctrl.CollectDetails(count, opts)
}

// MarkResume records where speech of the current sentence stopped.
func (s *Session) MarkResume(offset int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	return s.ctrl.MarkResume(offset)
}

// Highlighted returns the last highlighted range and its location.
func (s *Session) Highlighted() (document.Range, tts.LocationID, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.highlighted, s.location, !s.highlighted.IsZero()
}

// State returns a snapshot of the session's position.
func (s *Session) State(state tts.StateType) tts.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	index, realized := s.ctrl.Position()
	st := tts.State{
		CurrentState: state,
		Sentence:     index,
		Realized:     realized,
		Exhausted:    s.ctrl.Exhausted(),
	}
	if r, ok := s.ctrl.CurrentRange(); ok {
		st.Location = s.locator.Locate(r)
	}
	return st
}

// SaveBookmark records the current position in store and writes it.
func (s *Session) SaveBookmark(store *bookmark.Store) error {
	if s.Closed() {
		return tts.ErrSessionClosed
	}
	d, ok := s.CurrentDetail()
	if !ok {
		return tts.ErrNoCurrentSentence
	}
	index := s.State(tts.StatePaused).Sentence
	store.Set(s.Path, bookmark.Bookmark{
		Location: d.LocationID,
		Sentence: index,
		Preview:  preview(d.Text),
	})
	if err := store.Save(); err != nil {
		return tts.NewError(err, "session", "save bookmark").WithContext("path", s.Path)
	}
	s.logger.Debug("Bookmark saved", "location", d.LocationID)
	return nil
}

// RestoreBookmark moves to the position saved for this document. A saved
// location that no longer matches a sentence falls back to seeking the
// nearest following one.
func (s *Session) RestoreBookmark(store *bookmark.Store) (tts.Detail, error) {
	b, err := store.Get(s.Path)
	if err != nil {
		return tts.Detail{}, err
	}
	if d, ok := s.HighlightCFI(b.Location); ok {
		return d, nil
	}
	s.logger.Debug("Bookmark does not match a sentence, seeking", "location", b.Location)
	if _, err := s.Seek(b.Location); err != nil {
		return tts.Detail{}, err
	}
	d, ok := s.CurrentDetail()
	if !ok {
		return tts.Detail{}, tts.ErrNoCurrentSentence
	}
	return d, nil
}

// Close discards the controller. Further navigation reports nothing.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.logger.Debug("Session closed")
}

// Closed reports whether Close was called.
func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Session) navigate(fn func(tts.Narrator) (string, bool)) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", false
	}
	return fn(s.ctrl)
}

func preview(text string) string {
	const limit = 60
	r := []rune(text)
	if len(r) <= limit {
		return text
	}
	return string(r[:limit-1]) + "…"
}
