// Package bookmark persists reading positions as a YAML file keyed by
// document path.
package bookmark

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	gap "github.com/muesli/go-app-paths"
	"gopkg.in/yaml.v3"

	"github.com/dgnsrekt/readalong/tts"
	"github.com/dgnsrekt/readalong/utils"
)

// ErrNoBookmark is returned when a document has no saved position.
var ErrNoBookmark = errors.New("no bookmark for document")

// Bookmark is a saved reading position.
type Bookmark struct {
	Location tts.LocationID `yaml:"location"`
	Sentence int            `yaml:"sentence"`
	Preview  string         `yaml:"preview,omitempty"`
	Updated  time.Time      `yaml:"updated"`
}

// Store is a set of bookmarks backed by a file. It is safe for concurrent
// use.
type Store struct {
	path string

	mu    sync.Mutex
	marks map[string]Bookmark
}

// DefaultPath returns the bookmark file under the user data directory.
func DefaultPath() (string, error) {
	scope := gap.NewScope(gap.User, "readalong")
	path, err := scope.DataPath("bookmarks.yml")
	if err != nil {
		return "", fmt.Errorf("unable to find data directory: %w", err)
	}
	return path, nil
}

// Load reads the store at path. A missing file yields an empty store. An
// empty path selects DefaultPath.
func Load(path string) (*Store, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	s := &Store{
		path:  utils.ExpandPath(path),
		marks: make(map[string]Bookmark),
	}

	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to read bookmarks: %w", err)
	}
	if err := yaml.Unmarshal(b, &s.marks); err != nil {
		return nil, fmt.Errorf("unable to parse bookmarks %s: %w", s.path, err)
	}
	if s.marks == nil {
		s.marks = make(map[string]Bookmark)
	}
	return s, nil
}

// Path returns the file backing the store.
func (s *Store) Path() string {
	return s.path
}

// Get returns the bookmark saved for doc.
func (s *Store) Get(doc string) (Bookmark, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.marks[key(doc)]
	if !ok {
		return Bookmark{}, fmt.Errorf("%w: %s", ErrNoBookmark, doc)
	}
	return b, nil
}

// Set records a bookmark for doc. Call Save to persist it.
func (s *Store) Set(doc string, b Bookmark) {
	if b.Updated.IsZero() {
		b.Updated = time.Now()
	}
	s.mu.Lock()
	s.marks[key(doc)] = b
	s.mu.Unlock()
}

// Delete forgets the bookmark for doc.
func (s *Store) Delete(doc string) {
	s.mu.Lock()
	delete(s.marks, key(doc))
	s.mu.Unlock()
}

// Documents lists bookmarked documents, most recently updated first.
func (s *Store) Documents() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs := make([]string, 0, len(s.marks))
	for d := range s.marks {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool {
		return s.marks[docs[i]].Updated.After(s.marks[docs[j]].Updated)
	})
	return docs
}

// Save writes the store to disk, replacing the file atomically.
func (s *Store) Save() error {
	s.mu.Lock()
	b, err := yaml.Marshal(s.marks)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("unable to encode bookmarks: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("unable create directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".bookmarks-*.yml")
	if err != nil {
		return fmt.Errorf("unable to create bookmark file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("unable to write bookmark file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("unable to write bookmark file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("unable to replace bookmark file: %w", err)
	}
	return nil
}

// key normalizes a document path so the same file always maps to one entry.
func key(doc string) string {
	doc = utils.ExpandPath(doc)
	if abs, err := filepath.Abs(doc); err == nil {
		return abs
	}
	return doc
}
