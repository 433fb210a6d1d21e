package workspace

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tyen-customs-a3/pbo-tools/internal/model"
)

const (
	// tmpPrefix marks directories this package owns. Sweeping only
	// ever considers entries carrying the prefix, so unrelated files
	// under the base dir are left alone.
	tmpPrefix = ".tmp-"

	// DefaultMaxAge is how old an untracked workspace must be before
	// SweepStale removes it.
	DefaultMaxAge = time.Hour
)

// Manager hands out scratch directories for extraction attempts and
// cleans up after them. All methods are safe for concurrent use.
type Manager struct {
	baseDir string
	maxAge  time.Duration
	logger  *slog.Logger

	mu     sync.Mutex
	active map[string]struct{}
}

// Option configures a Manager.
type Option func(*Manager)

// WithBaseDir overrides the directory workspaces are created under.
func WithBaseDir(dir string) Option {
	return func(m *Manager) {
		m.baseDir = dir
	}
}

// WithMaxAge overrides how old an untracked workspace must be before
// SweepStale removes it.
func WithMaxAge(age time.Duration) Option {
	return func(m *Manager) {
		m.maxAge = age
	}
}

// WithLogger sets the logger used for sweep diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager and ensures its base directory exists.
func NewManager(opts ...Option) (*Manager, error) {
	m := &Manager{
		baseDir: filepath.Join(os.TempDir(), "pbo-tools"),
		maxAge:  DefaultMaxAge,
		logger:  slog.Default(),
		active:  make(map[string]struct{}),
	}

	for _, opt := range opts {
		opt(m)
	}

	if err := os.MkdirAll(m.baseDir, 0o700); err != nil {
		return nil, &model.FileSystemError{
			Op:   model.FSOpWorkspaceCreate,
			Path: m.baseDir,
			Err:  err,
		}
	}

	return m, nil
}

// BaseDir returns the directory workspaces are created under.
func (m *Manager) BaseDir() string {
	return m.baseDir
}

// Acquire creates a fresh workspace directory and marks it active so
// concurrent sweeps skip it. The caller must Release it when done.
func (m *Manager) Acquire() (string, error) {
	dir := filepath.Join(m.baseDir, tmpPrefix+uuid.NewString())

	if err := os.Mkdir(dir, 0o700); err != nil {
		return "", &model.FileSystemError{
			Op:   model.FSOpWorkspaceCreate,
			Path: dir,
			Err:  err,
		}
	}

	m.mu.Lock()
	m.active[dir] = struct{}{}
	m.mu.Unlock()

	m.logger.Debug("acquired workspace", "dir", dir)
	return dir, nil
}

// Clear empties a workspace without removing the directory itself, so
// a retry can reuse the same path with no residue from the previous
// attempt.
func (m *Manager) Clear(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return &model.FileSystemError{
			Op:   model.FSOpWorkspaceClear,
			Path: dir,
			Err:  err,
		}
	}

	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return &model.FileSystemError{
				Op:   model.FSOpWorkspaceClear,
				Path: dir,
				Err:  err,
			}
		}
	}

	return nil
}

// Release removes a workspace and drops it from the active set. A
// workspace that is already gone is not an error.
func (m *Manager) Release(dir string) error {
	m.mu.Lock()
	delete(m.active, dir)
	m.mu.Unlock()

	if err := os.RemoveAll(dir); err != nil {
		return &model.FileSystemError{
			Op:   model.FSOpWorkspaceRemove,
			Path: dir,
			Err:  err,
		}
	}

	m.logger.Debug("released workspace", "dir", dir)
	return nil
}

// SweepStale removes workspace directories left behind by earlier
// runs. Only untracked directories carrying the workspace prefix are
// candidates, and only once their modification time is older than the
// configured age. Individual removal failures are logged and skipped
// so one stuck directory cannot block the sweep. Returns the number of
// directories removed.
func (m *Manager) SweepStale() (int, error) {
	entries, err := os.ReadDir(m.baseDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, &model.FileSystemError{
			Op:   model.FSOpSweep,
			Path: m.baseDir,
			Err:  err,
		}
	}

	cutoff := time.Now().Add(-m.maxAge)
	removed := 0

	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), tmpPrefix) {
			continue
		}

		dir := filepath.Join(m.baseDir, entry.Name())

		m.mu.Lock()
		_, inUse := m.active[dir]
		m.mu.Unlock()
		if inUse {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			m.logger.Warn("skipping unreadable workspace", "dir", dir, "error", err)
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		if err := os.RemoveAll(dir); err != nil {
			m.logger.Warn("failed to remove stale workspace", "dir", dir, "error", err)
			continue
		}

		m.logger.Debug("removed stale workspace", "dir", dir)
		removed++
	}

	return removed, nil
}
