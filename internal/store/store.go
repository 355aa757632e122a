package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sparckit/sparc/internal/fsutil"
)

// Store manages pipeline run state on disk.
type Store struct {
	baseDir string
}

// NewStore creates a Store rooted at baseDir.
func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// DefaultStore returns a Store at ~/.sparc/runs, creating the directory if
// needed.
func DefaultStore() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("get home dir: %w", err)
	}
	dir := filepath.Join(home, ".sparc", "runs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &Store{baseDir: dir}, nil
}

// BaseDir returns the store's root directory.
func (s *Store) BaseDir() string {
	return s.baseDir
}

func (s *Store) runDir(namespace string) string {
	return filepath.Join(s.baseDir, namespace)
}

func (s *Store) runPath(namespace string) string {
	return filepath.Join(s.runDir(namespace), "run.json")
}

// Create initialises a new run on disk. A namespace with an existing run is
// rejected; re-running a namespace goes through Update.
func (s *Store) Create(run *PipelineRun) error {
	if run.Namespace == "" {
		return fmt.Errorf("run namespace is required")
	}
	if _, err := os.Stat(s.runPath(run.Namespace)); err == nil {
		return fmt.Errorf("run %q already exists", run.Namespace)
	}
	if err := os.MkdirAll(s.runDir(run.Namespace), 0o755); err != nil {
		return fmt.Errorf("mkdir run dir: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	run.CreatedAt = now
	run.UpdatedAt = now
	if run.Status == "" {
		run.Status = StatusPending
	}
	return fsutil.WriteJSON(s.runPath(run.Namespace), run)
}

// Get reads the run state for a namespace.
func (s *Store) Get(namespace string) (*PipelineRun, error) {
	var run PipelineRun
	if err := fsutil.ReadJSON(s.runPath(namespace), &run); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("run %q not found", namespace)
		}
		return nil, err
	}
	return &run, nil
}

// Update performs a read-modify-write of the run state.
func (s *Store) Update(namespace string, fn func(*PipelineRun)) error {
	run, err := s.Get(namespace)
	if err != nil {
		return err
	}
	fn(run)
	run.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return fsutil.WriteJSON(s.runPath(namespace), run)
}

// Save overwrites the run state for run.Namespace, creating it if absent.
func (s *Store) Save(run *PipelineRun) error {
	if err := os.MkdirAll(s.runDir(run.Namespace), 0o755); err != nil {
		return fmt.Errorf("mkdir run dir: %w", err)
	}
	run.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return fsutil.WriteJSON(s.runPath(run.Namespace), run)
}

// List returns all runs, optionally filtered by status. Pass "" to return
// everything.
func (s *Store) List(statusFilter string) ([]PipelineRun, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read dir %s: %w", s.baseDir, err)
	}

	var runs []PipelineRun
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		run, err := s.Get(entry.Name())
		if err != nil {
			continue // skip broken entries
		}
		if statusFilter == "" || run.Status == statusFilter {
			runs = append(runs, *run)
		}
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Namespace < runs[j].Namespace
	})
	return runs, nil
}

// Delete removes all data for a namespace's run.
func (s *Store) Delete(namespace string) error {
	dir := s.runDir(namespace)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return fmt.Errorf("run %q not found", namespace)
	}
	return os.RemoveAll(dir)
}
