// Package testutil provides shared test helpers for setting up backends
// and services.
package testutil

import (
	"testing"
	"time"

	"github.com/designsystemsinternational/react-admin-github/internal/backend"
	"github.com/designsystemsinternational/react-admin-github/internal/resource"
)

// Secret is the signing secret used across tests.
var Secret = []byte("test-secret")

// FixedInstant is the pinned clock used where filename timestamps must be
// deterministic.
var FixedInstant = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

// TestBackend creates a temporary filesystem backend that is cleaned up
// with the test.
func TestBackend(t *testing.T) *backend.FS {
	t.Helper()
	store, err := backend.NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return store
}

// TestService creates a resource service over a fresh filesystem backend
// with a pinned clock.
func TestService(t *testing.T) (*resource.Service, *backend.FS) {
	t.Helper()
	store := TestBackend(t)
	svc := resource.NewService(store, resource.Options{
		Secret: Secret,
		Now:    func() time.Time { return FixedInstant },
	})
	return svc, store
}
