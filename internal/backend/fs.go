package backend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/designsystemsinternational/react-admin-github/internal/apperr"
	"github.com/designsystemsinternational/react-admin-github/internal/checksum"
)

// FS implements Provider on the local file system, for development and
// tests. Version tokens are hex SHA-256 digests of the file content.
type FS struct {
	root string

	// Serializes the token check against the following write or delete,
	// so the conditional semantics hold for concurrent local callers.
	mu sync.Mutex
}

// NewFS creates an FS provider rooted at the given directory. The
// directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("backend: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("backend: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("backend: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// safePath resolves a relative path against the root and rejects any
// result that escapes it (directory traversal).
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return f.root, nil
	}
	cleaned := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("backend: absolute path %s: %w", rel, apperr.ErrBadRequest)
	}
	joined := filepath.Join(f.root, cleaned)
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", fmt.Errorf("backend: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) && abs != f.root {
		return "", fmt.Errorf("backend: path %s escapes root: %w", rel, apperr.ErrBadRequest)
	}
	return abs, nil
}

// Read returns the file content and its content digest as version token.
func (f *FS) Read(_ context.Context, path string) ([]byte, string, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", apperr.ErrNotFound
		}
		return nil, "", fmt.Errorf("backend: read %s: %w", path, err)
	}
	return data, checksum.Sum(data), nil
}

// Write stores content at path. An empty token creates the file and
// conflicts if it already exists; a non-empty token must match the digest
// of the current content.
func (f *FS) Write(_ context.Context, path string, content []byte, token string) (bool, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return false, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	current, err := os.ReadFile(abs)
	exists := err == nil
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("backend: read %s: %w", path, err)
	}

	if token == "" {
		if exists {
			return false, apperr.ErrConflict
		}
	} else {
		if !exists {
			return false, apperr.ErrNotFound
		}
		if !checksum.Match(token, current) {
			return false, apperr.ErrConflict
		}
	}

	if err := f.writeAtomic(abs, content); err != nil {
		return false, err
	}
	return !exists, nil
}

// writeAtomic writes content via tmp file, fsync, and rename.
func (f *FS) writeAtomic(abs string, content []byte) error {
	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("backend: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".rag-tmp-*")
	if err != nil {
		return fmt.Errorf("backend: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("backend: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("backend: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("backend: close temp: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("backend: rename: %w", err)
	}
	success = true
	return nil
}

// Delete removes the file at path, conditional on token.
func (f *FS) Delete(_ context.Context, path, token string) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	current, err := os.ReadFile(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperr.ErrNotFound
		}
		return fmt.Errorf("backend: read %s: %w", path, err)
	}
	if !checksum.Match(token, current) {
		return apperr.ErrConflict
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("backend: delete %s: %w", path, err)
	}
	return nil
}

// List returns the files directly under dir, unordered.
func (f *FS) List(_ context.Context, dir string) ([]Entry, error) {
	abs, err := f.safePath(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apperr.ErrNotFound
		}
		return nil, fmt.Errorf("backend: list %s: %w", dir, err)
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("backend: list %s: %w", dir, err)
		}
		name := e.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		out = append(out, Entry{
			Name: name,
			Path: joinRemote(dir, name),
			Size: info.Size(),
		})
	}
	return out, nil
}

// joinRemote joins remote path segments with forward slashes regardless
// of the host OS.
func joinRemote(dir, name string) string {
	if dir == "" {
		return name
	}
	return strings.TrimSuffix(dir, "/") + "/" + name
}
