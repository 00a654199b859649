// Package workspace materializes canonical paths into a backing store and
// persists artifact payloads. It is the only component that touches
// storage; every path it receives comes from the naming engine.
package workspace

import (
	"os"
	"path/filepath"
	"strings"
)

// Workspace is the storage interface the pipeline writes through. Paths are
// canonical slash-separated strings relative to the workspace root; the
// implementation maps them to its backend.
type Workspace interface {
	// EnsureDir creates a directory (and parents) if absent. Idempotent:
	// concurrent creation of the same parent must not fail.
	EnsureDir(path string) error
	// Write persists a payload at the canonical path, creating parent
	// directories as needed.
	Write(path string, data []byte) error
	// Archive bundles everything under root into a zip payload.
	Archive(root string) ([]byte, error)
}

// Local is a Workspace backed by the local filesystem.
type Local struct {
	baseDir string
}

// NewLocal creates a filesystem workspace rooted at baseDir.
func NewLocal(baseDir string) (*Local, error) {
	if baseDir == "" {
		return nil, &Error{Message: "workspace base directory is required"}
	}
	abs, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, &Error{Path: baseDir, Message: "failed to resolve base directory", Cause: err}
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, &Error{Path: abs, Message: "failed to create base directory", Cause: err}
	}
	return &Local{baseDir: abs}, nil
}

// BaseDir returns the absolute filesystem root of the workspace.
func (w *Local) BaseDir() string {
	return w.baseDir
}

// EnsureDir creates the directory for a canonical path. MkdirAll is
// create-if-absent, so concurrent pipelines racing on a shared parent are
// safe.
func (w *Local) EnsureDir(path string) error {
	full, err := w.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(full, 0o755); err != nil {
		return &Error{Path: path, Message: "failed to create directory", Cause: err}
	}
	return nil
}

// Write persists a payload at the canonical path.
func (w *Local) Write(path string, data []byte) error {
	full, err := w.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return &Error{Path: path, Message: "failed to create parent directory", Cause: err}
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return &Error{Path: path, Message: "failed to write artifact", Cause: err}
	}
	return nil
}

// resolve maps a canonical slash path to an absolute filesystem path,
// rejecting anything that would escape the workspace root.
func (w *Local) resolve(path string) (string, error) {
	if path == "" {
		return "", &Error{Message: "empty path"}
	}
	clean := filepath.Clean(filepath.FromSlash(path))
	if filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", &Error{Path: path, Message: "path escapes workspace root"}
	}
	return filepath.Join(w.baseDir, clean), nil
}
