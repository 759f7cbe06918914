// Package store persists a project document as a single JSON file.
//
// Documents are read leniently: comments and trailing commas left by hand
// edits are stripped before decoding. Writes are atomic (temp file, fsync,
// rename) and always produce plain, 2-space indented JSON.
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/tidwall/jsonc"

	"github.com/nibzard/planner-go/internal/clock"
	"github.com/nibzard/planner-go/internal/plan"
)

// DefaultProjectName names the project created when no document exists.
const DefaultProjectName = "New Project"

// FileStore loads and saves a project document at a fixed path.
type FileStore struct {
	path        string
	defaultName string
	clock       clock.Clock
	logger      *log.Logger
}

// Option configures a FileStore.
type Option func(*FileStore)

// WithDefaultName sets the project name used when the document is missing
// or unreadable.
func WithDefaultName(name string) Option {
	return func(s *FileStore) {
		if name != "" {
			s.defaultName = name
		}
	}
}

// WithClock sets the clock used to stamp a default project.
func WithClock(c clock.Clock) Option {
	return func(s *FileStore) {
		s.clock = c
	}
}

// WithLogger sets the logger for load recovery warnings.
func WithLogger(l *log.Logger) Option {
	return func(s *FileStore) {
		s.logger = l
	}
}

// New returns a store for the document at path.
func New(path string, opts ...Option) *FileStore {
	s := &FileStore{
		path:        path,
		defaultName: DefaultProjectName,
		clock:       clock.Real(),
		logger:      log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the document path.
func (s *FileStore) Path() string {
	return s.path
}

// Exists reports whether the document file is present.
func (s *FileStore) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Load returns the stored project. A missing or undecodable document yields
// a fresh default project; schema violations are logged and the decoded
// document is still returned.
func (s *FileStore) Load() *plan.Project {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("cannot read project file, starting empty", "path", s.path, "err", err)
		}
		return s.defaultProject()
	}

	p, err := Decode(data)
	if err != nil {
		s.logger.Warn("cannot parse project file, starting empty", "path", s.path, "err", err)
		return s.defaultProject()
	}
	for _, verr := range Validate(jsonc.ToJSON(data)) {
		s.logger.Warn("project file violates schema", "path", s.path, "err", verr)
	}
	return p
}

// Read loads the document strictly: read, parse and schema errors are all
// returned.
func (s *FileStore) Read() (*plan.Project, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read project file: %w", err)
	}
	if errs := Validate(jsonc.ToJSON(data)); len(errs) > 0 {
		return nil, fmt.Errorf("validate project file: %w", errors.Join(errs...))
	}
	return Decode(data)
}

func (s *FileStore) defaultProject() *plan.Project {
	return plan.NewProject(s.defaultName, s.clock.Now())
}

// ErrEmptyDocument is returned by Decode for a document that is JSON null.
var ErrEmptyDocument = errors.New("project document is null")

// Decode parses a JSON or JSONC document. Phase completion flags are
// recomputed from their tasks rather than trusted.
func Decode(data []byte) (*plan.Project, error) {
	raw := jsonc.ToJSON(data)
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, fmt.Errorf("parse project file: %w", ErrEmptyDocument)
	}
	var p plan.Project
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("parse project file: %w", err)
	}
	if p.Phases == nil {
		p.Phases = plan.PhaseList{}
	}
	for _, ph := range p.Phases {
		if ph.Tasks == nil {
			ph.Tasks = []plan.Task{}
		}
		ph.Recompute()
	}
	return &p, nil
}

// Encode renders the document as indented JSON with a trailing newline.
func Encode(p *plan.Project) ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal project: %w", err)
	}
	return append(data, '\n'), nil
}

// Save writes the whole document atomically.
func (s *FileStore) Save(p *plan.Project) error {
	data, err := Encode(p)
	if err != nil {
		return err
	}
	if err := atomicWrite(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write project file: %w", err)
	}
	return nil
}

func atomicWrite(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	f, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, perm); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
