// Package backend abstracts the remote file store behind the four
// primitives it actually offers: read one file, write one file with a
// version token, delete one file with a version token, and list one
// directory. Anything richer than that is emulated above this interface.
package backend

import "context"

// Entry is one member of a flat directory listing.
type Entry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// Provider is the per-file contract of the remote store.
//
// Version tokens are opaque. Read returns the token tied to the file's
// current state; Write and Delete require it back as a precondition and
// fail with apperr.ErrConflict when it no longer matches. An empty token
// on Write means unconditional create, which conflicts if the path
// already exists.
type Provider interface {
	// Read returns the file content and its current version token.
	Read(ctx context.Context, path string) (content []byte, token string, err error)

	// Write stores content at path. The returned flag is true when the
	// file was created, false when an existing file was updated.
	Write(ctx context.Context, path string, content []byte, token string) (created bool, err error)

	// Delete removes the file at path, conditional on token.
	Delete(ctx context.Context, path, token string) error

	// List returns the unordered members of one directory, files only.
	List(ctx context.Context, dir string) ([]Entry, error)
}
