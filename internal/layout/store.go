package layout

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gridsens/gridsens/internal/errors"
	"github.com/gridsens/gridsens/internal/logger"
)

// DefaultDebounce is how long the store waits after the last change
// before writing a dirty profile to disk.
const DefaultDebounce = 500 * time.Millisecond

// Store reads and writes layout profiles under a single directory.
//
// Saves go through a debounce window: Schedule marks a profile dirty and
// (re)arms a timer, so a burst of edits becomes one disk write shortly
// after the burst ends. Writes are atomic (temp file + rename), so a
// crash mid-save never leaves a half-written profile behind.
type Store struct {
	dir      string
	debounce time.Duration
	log      logger.Logger

	mu      sync.Mutex
	pending map[string]*Document
	timer   *time.Timer
	closed  bool

	// wmu serializes disk writes so flushes cannot interleave.
	wmu sync.Mutex
}

// StoreOptions configures a Store. Zero values pick defaults.
type StoreOptions struct {
	Debounce time.Duration
	Logger   logger.Logger
}

// NewStore returns a store rooted at dir. The directory is created on
// the first save, not here.
func NewStore(dir string, opts StoreOptions) *Store {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = logger.Default()
	}
	return &Store{
		dir:      dir,
		debounce: opts.Debounce,
		log:      opts.Logger,
		pending:  make(map[string]*Document),
	}
}

// Dir returns the profile directory.
func (s *Store) Dir() string { return s.dir }

// Path returns the file path a profile name maps to.
func (s *Store) Path(name string) string {
	return filepath.Join(s.dir, name+".yaml")
}

// Exists reports whether a profile file is present on disk.
func (s *Store) Exists(name string) bool {
	if err := validName(name); err != nil {
		return false
	}
	_, err := os.Stat(s.Path(name))
	return err == nil
}

// Load reads and parses a profile.
func (s *Store) Load(name string) (*Document, error) {
	if err := validName(name); err != nil {
		return nil, err
	}

	path := s.Path(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrSettings,
				"Profile not found: "+name,
				"Run 'gridsens profiles' to list saved profiles")
		}
		return nil, errors.WrapWithCode(err, errors.ErrSettings,
			"Cannot read profile "+path,
			"Check file permissions")
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrCorruptLayout,
			"Profile "+name+" is not valid YAML",
			"Fix the syntax in "+path+" or delete the file to start fresh")
	}

	// A file without a version predates versioning and reads as v1.
	if doc.Version == 0 {
		doc.Version = CurrentLayoutVersion
	}
	if doc.Version > CurrentLayoutVersion {
		return nil, errors.New(errors.ErrCorruptLayout,
			fmt.Sprintf("Profile %s uses layout version %d, this build understands up to %d",
				name, doc.Version, CurrentLayoutVersion),
			"Upgrade gridsens or load an older profile")
	}

	return &doc, nil
}

// Save writes a profile to disk immediately.
func (s *Store) Save(name string, doc *Document) error {
	if err := validName(name); err != nil {
		return err
	}

	doc.SortPanels()
	data, err := yaml.Marshal(doc)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrInternal,
			"Cannot serialize profile "+name, "")
	}

	s.wmu.Lock()
	defer s.wmu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.WrapWithCode(err, errors.ErrSettings,
			"Cannot create profile directory "+s.dir,
			"Check directory permissions")
	}

	// Write to a temp file in the same directory, then rename over the
	// target so readers never observe a partial profile.
	tmp, err := os.CreateTemp(s.dir, "."+name+"-*.tmp")
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrSettings,
			"Cannot write profile "+name,
			"Check directory permissions on "+s.dir)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return errors.WrapWithCode(err, errors.ErrSettings,
			"Cannot write profile "+name, "")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.WrapWithCode(err, errors.ErrSettings,
			"Cannot write profile "+name, "")
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return errors.WrapWithCode(err, errors.ErrSettings,
			"Cannot write profile "+name, "")
	}
	if err := os.Rename(tmpPath, s.Path(name)); err != nil {
		os.Remove(tmpPath)
		return errors.WrapWithCode(err, errors.ErrSettings,
			"Cannot write profile "+name, "")
	}
	return nil
}

// Schedule marks a profile dirty with the given snapshot. The write
// happens once the debounce window closes; a newer snapshot for the
// same profile replaces the pending one. The store owns doc after the
// call.
func (s *Store) Schedule(name string, doc *Document) {
	if err := validName(name); err != nil {
		s.log.Error("autosave: %v", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.pending[name] = doc
	if s.timer == nil {
		s.timer = time.AfterFunc(s.debounce, s.flushPending)
	} else {
		s.timer.Reset(s.debounce)
	}
}

// Flush writes all dirty profiles now instead of waiting out the
// debounce window.
func (s *Store) Flush() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	s.flushPending()
}

// Close flushes dirty profiles and stops the autosave timer. The store
// ignores Schedule calls after Close.
func (s *Store) Close() {
	s.mu.Lock()
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	s.flushPending()
}

func (s *Store) flushPending() {
	s.mu.Lock()
	if len(s.pending) == 0 {
		s.timer = nil
		s.mu.Unlock()
		return
	}
	batch := s.pending
	s.pending = make(map[string]*Document)
	s.timer = nil
	s.mu.Unlock()

	names := make([]string, 0, len(batch))
	for name := range batch {
		names = append(names, name)
	}
	sort.Strings(names)

	// A failed save is logged, never fatal: the dashboard keeps running
	// and the next change retries.
	for _, name := range names {
		if err := s.Save(name, batch[name]); err != nil {
			s.log.Error("autosave %s: %v", name, err)
		} else {
			s.log.Debug("autosaved profile %s", name)
		}
	}
}

// List returns the profile names present on disk, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.WrapWithCode(err, errors.ErrSettings,
			"Cannot read profile directory "+s.dir,
			"Check directory permissions")
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".yaml") {
			continue
		}
		names = append(names, strings.TrimSuffix(name, ".yaml"))
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes a profile file.
func (s *Store) Delete(name string) error {
	if err := validName(name); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.pending, name)
	s.mu.Unlock()

	if err := os.Remove(s.Path(name)); err != nil {
		if os.IsNotExist(err) {
			return errors.New(errors.ErrSettings,
				"Profile not found: "+name,
				"Run 'gridsens profiles' to list saved profiles")
		}
		return errors.WrapWithCode(err, errors.ErrSettings,
			"Cannot delete profile "+name,
			"Check file permissions")
	}
	return nil
}

// validName rejects profile names that would escape the profile
// directory or collide with temp files.
func validName(name string) error {
	if name == "" {
		return errors.New(errors.ErrSettings,
			"Profile name is empty",
			"Pick a name like 'default' or 'work'")
	}
	if strings.HasPrefix(name, ".") || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return errors.New(errors.ErrSettings,
			"Invalid profile name: "+name,
			"Profile names cannot contain path separators or leading dots")
	}
	return nil
}
