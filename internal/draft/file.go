package draft

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	cferrors "github.com/chazuruo/chaosflow/internal/errors"
)

const (
	currentFile = "current.yaml"
	archiveDir  = "committed"
)

// FileStore keeps the draft as YAML in a directory, so that wizard steps
// run by separate processes see the same draft.
type FileStore struct {
	dir string
	mu  sync.Mutex
	now func() time.Time
}

// NewFileStore creates a FileStore rooted at dir.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, &cferrors.DraftError{Op: "open", Err: cferrors.Invalidf("draft directory cannot be empty")}
	}
	return &FileStore{dir: dir, now: time.Now}, nil
}

// Path returns the current draft file path.
func (s *FileStore) Path() string {
	return filepath.Join(s.dir, currentFile)
}

// Get returns the current draft, or the zero draft if the file is absent.
func (s *FileStore) Get(ctx context.Context) (WorkflowDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, err := s.read()
	if err != nil {
		return WorkflowDraft{}, &cferrors.DraftError{Op: "get", Err: err}
	}
	return d, nil
}

// Merge applies p to the draft on disk.
func (s *FileStore) Merge(ctx context.Context, p Patch) (WorkflowDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.read()
	if err != nil {
		return WorkflowDraft{}, &cferrors.DraftError{Op: "merge", Err: err}
	}
	if p.IsEmpty() {
		return d, nil
	}
	d = Apply(d, p)
	d.UpdatedAt = s.now().UTC()
	if err := s.write(s.Path(), d); err != nil {
		return WorkflowDraft{}, &cferrors.DraftError{Op: "merge", Err: err}
	}
	return d, nil
}

// Reset removes the draft file.
func (s *FileStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.Remove(s.Path()); err != nil && !os.IsNotExist(err) {
		return &cferrors.DraftError{Op: "reset", Err: fmt.Errorf("%w: %v", cferrors.ErrIO, err)}
	}
	return nil
}

// Archive writes d to committed/<slug>.yaml and returns that path. The slug
// is derived from the draft name and made unique within the directory.
func (s *FileStore) Archive(ctx context.Context, d WorkflowDraft) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Join(s.dir, archiveDir)
	entries, err := os.ReadDir(dir)
	if err != nil && !os.IsNotExist(err) {
		return "", &cferrors.DraftError{Op: "archive", Err: fmt.Errorf("%w: %v", cferrors.ErrIO, err)}
	}
	existing := make([]string, 0, len(entries))
	for _, e := range entries {
		existing = append(existing, strings.TrimSuffix(e.Name(), ".yaml"))
	}

	path := filepath.Join(dir, UniqueSlug(d.Name, existing)+".yaml")
	if err := s.write(path, d); err != nil {
		return "", &cferrors.DraftError{Op: "archive", Err: err}
	}
	return path, nil
}

func (s *FileStore) read() (WorkflowDraft, error) {
	data, err := os.ReadFile(s.Path())
	if os.IsNotExist(err) {
		return WorkflowDraft{}, nil
	}
	if err != nil {
		return WorkflowDraft{}, fmt.Errorf("%w: %v", cferrors.ErrIO, err)
	}

	var d WorkflowDraft
	if err := yaml.Unmarshal(data, &d); err != nil {
		return WorkflowDraft{}, fmt.Errorf("%w: failed to parse %s: %v", cferrors.ErrInvalid, s.Path(), err)
	}
	return d, nil
}

// write stores d at path via a temp file and rename.
func (s *FileStore) write(path string, d WorkflowDraft) error {
	data, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("%w: %v", cferrors.ErrIO, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".draft-*.yaml")
	if err != nil {
		return fmt.Errorf("%w: %v", cferrors.ErrIO, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: %v", cferrors.ErrIO, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %v", cferrors.ErrIO, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("%w: %v", cferrors.ErrIO, err)
	}
	return nil
}
