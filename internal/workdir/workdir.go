package workdir

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
)

// Dir is a per-run working directory held under an exclusive lock for the
// run's lifetime.
type Dir struct {
	root string
	lock *flock.Flock
}

// Acquire creates workRoot/runID and takes an exclusive lock on it. It fails
// when another process already owns the directory.
func Acquire(workRoot, runID string) (*Dir, error) {
	if strings.TrimSpace(workRoot) == "" || strings.TrimSpace(runID) == "" {
		return nil, fmt.Errorf("work root and run id required")
	}
	root := filepath.Join(workRoot, runID)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create run directory: %w", err)
	}

	lock := flock.New(filepath.Join(root, ".lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire run lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("run directory %s is owned by another process", root)
	}
	return &Dir{root: root, lock: lock}, nil
}

// Root returns the run directory path.
func (d *Dir) Root() string {
	return d.root
}

// Path joins elements under the run directory.
func (d *Dir) Path(elem ...string) string {
	return filepath.Join(append([]string{d.root}, elem...)...)
}

// Subdir creates (if needed) and returns a subdirectory of the run directory.
func (d *Dir) Subdir(name string) (string, error) {
	path := d.Path(name)
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	return path, nil
}

// Release drops the exclusive lock. The directory and its artifacts remain.
func (d *Dir) Release() error {
	if d == nil || d.lock == nil {
		return nil
	}
	return d.lock.Unlock()
}
