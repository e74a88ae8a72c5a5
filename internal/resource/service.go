// Package resource implements the translation layer between the
// list/get/create/update/delete resource model and the per-file backend:
// filename-encoded identity, client-side listing, optimistic concurrency,
// and attachment extraction.
package resource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/designsystemsinternational/react-admin-github/internal/apperr"
	"github.com/designsystemsinternational/react-admin-github/internal/backend"
	"github.com/designsystemsinternational/react-admin-github/internal/filename"
	"github.com/designsystemsinternational/react-admin-github/internal/listing"
	"github.com/designsystemsinternational/react-admin-github/internal/models"
	"github.com/designsystemsinternational/react-admin-github/internal/token"
)

const defaultContentDir = "content"

// Options configures a Service.
type Options struct {
	// Secret signs preview tokens.
	Secret []byte
	// ContentDir is the remote directory all resources live under.
	// Defaults to "content".
	ContentDir string
	// PreviewTTL bounds preview token lifetime. Zero means no expiry.
	PreviewTTL time.Duration
	// Now supplies the clock for filename timestamps. Defaults to time.Now.
	Now func() time.Time
}

// Service orchestrates one resource operation per call. It keeps no state
// between calls and performs no retries of its own.
type Service struct {
	store      backend.Provider
	secret     []byte
	contentDir string
	previewTTL time.Duration
	now        func() time.Time
}

// NewService creates a resource service on top of the given backend.
func NewService(store backend.Provider, opts Options) *Service {
	s := &Service{
		store:      store,
		secret:     opts.Secret,
		contentDir: opts.ContentDir,
		previewTTL: opts.PreviewTTL,
		now:        opts.Now,
	}
	if s.contentDir == "" {
		s.contentDir = defaultContentDir
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// ListParams carries the listing request.
type ListParams struct {
	Resource  string
	Page      int
	PerPage   int
	SortField string
	SortOrder string
}

// List fetches the resource directory, builds one item per entry, and
// emulates sorting and pagination client-side. A missing directory is an
// empty resource, not a fault. JSON entries are fetched concurrently so
// their top-level fields are available as sort keys.
func (s *Service) List(ctx context.Context, p ListParams) ([]map[string]any, int, error) {
	entries, err := s.store.List(ctx, s.resourceDir(p.Resource))
	if err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			return nil, 0, err
		}
		entries = nil
	}

	items := make([]map[string]any, len(entries))
	g, gCtx := errgroup.WithContext(ctx)
	for i, e := range entries {
		g.Go(func() error {
			item, err := s.listItem(gCtx, p.Resource, e)
			if err != nil {
				return err
			}
			items[i] = item
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}

	page, total := listing.Page(items, p.SortField, p.SortOrder, p.Page, p.PerPage)
	return page, total, nil
}

// listItem builds one listing payload. Top-level fields of a JSON document
// are merged in first; the filename-derived identity keys always win. An
// entry that vanished since the listing, or whose body is not valid JSON,
// falls back to filename identity alone.
func (s *Service) listItem(ctx context.Context, resource string, e backend.Entry) (map[string]any, error) {
	info := filename.Decode(e.Name)
	item := map[string]any{}

	if info.Ext == "json" {
		content, _, err := s.store.Read(ctx, s.docPath(resource, e.Name))
		switch {
		case errors.Is(err, apperr.ErrNotFound):
		case err != nil:
			return nil, err
		default:
			var fields map[string]any
			if json.Unmarshal(content, &fields) == nil {
				for k, v := range fields {
					item[k] = v
				}
			}
		}
	}

	item["id"] = e.Name
	item["name"] = e.Name
	item["slug"] = info.Slug
	item["ext"] = info.Ext
	item["size"] = e.Size
	if info.CreatedAt != nil {
		item["createdAt"] = info.CreatedAt.UTC().Format(time.RFC3339)
	}
	return item, nil
}

// GetOne fetches a single document by id and rehydrates its attachment
// references into signed preview URLs.
func (s *Service) GetOne(ctx context.Context, resource, id string) (models.Document, error) {
	content, _, err := s.store.Read(ctx, s.docPath(resource, id))
	if err != nil {
		return nil, err
	}
	return s.buildResponse(ctx, resource, id, content)
}

// GetMany fans out one fetch per id and joins all-or-nothing: any single
// failure fails the whole call with no partial results.
func (s *Service) GetMany(ctx context.Context, resource string, ids []string) ([]models.Document, error) {
	docs := make([]models.Document, len(ids))
	g, gCtx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			doc, err := s.GetOne(gCtx, resource, id)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// Create stores a new document. The caller must supply a name to derive
// the slug from; new attachments are uploaded first and replaced with
// resolved references. The write is unconditional since the path is new.
func (s *Service) Create(ctx context.Context, resource string, data models.Document) (models.Document, error) {
	name, _ := data["name"].(string)
	if name == "" {
		return nil, fmt.Errorf("create needs a name property: %w", apperr.ErrValidation)
	}

	fname := filename.Encode(name, s.now(), true)
	if path.Ext(fname) == "" {
		fname += ".json"
	}
	data["name"] = fname

	if err := s.extractAttachments(ctx, resource, data); err != nil {
		return nil, err
	}

	body, err := models.EncodeDocument(data)
	if err != nil {
		return nil, err
	}

	if _, err := s.guardedWrite(ctx, s.docPath(resource, fname), true, func([]byte) ([]byte, error) {
		return body, nil
	}); err != nil {
		return nil, err
	}
	return s.buildResponse(ctx, resource, fname, body)
}

// Update rewrites an existing document under its derived path, guarded by
// the version token read at the start of the cycle.
func (s *Service) Update(ctx context.Context, resource string, data models.Document) (models.Document, error) {
	id, _ := data["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("update needs an id property: %w", apperr.ErrValidation)
	}

	if err := s.extractAttachments(ctx, resource, data); err != nil {
		return nil, err
	}

	body, err := models.EncodeDocument(data)
	if err != nil {
		return nil, err
	}

	if _, err := s.guardedWrite(ctx, s.docPath(resource, id), false, func([]byte) ([]byte, error) {
		return body, nil
	}); err != nil {
		return nil, err
	}
	return s.buildResponse(ctx, resource, id, body)
}

// Delete removes a document with a guarded delete and returns its
// last-known content as confirmation payload.
func (s *Service) Delete(ctx context.Context, resource, id string) (models.Document, error) {
	content, err := s.guardedDelete(ctx, s.docPath(resource, id))
	if err != nil {
		return nil, err
	}
	return s.buildResponse(ctx, resource, id, content)
}

// Preview verifies a preview token against the requested path and, on
// success, returns the raw bytes plus a sniffed content type.
func (s *Service) Preview(ctx context.Context, remotePath, previewToken string) ([]byte, string, error) {
	if err := token.VerifyPreview(previewToken, remotePath, s.secret); err != nil {
		return nil, "", err
	}
	content, _, err := s.store.Read(ctx, remotePath)
	if err != nil {
		return nil, "", err
	}
	return content, http.DetectContentType(content), nil
}

// buildResponse turns persisted bytes into the outbound document. JSON
// documents are decoded, given their derived id, and rehydrated; binary
// members are wrapped in an attachment-shaped payload with a preview URL.
func (s *Service) buildResponse(ctx context.Context, resource, id string, content []byte) (models.Document, error) {
	if !strings.HasSuffix(id, ".json") {
		return s.binaryResponse(resource, id)
	}
	doc, err := models.DecodeDocument(content, id)
	if err != nil {
		return nil, err
	}
	if err := s.rehydrateAttachments(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// binaryResponse describes a non-JSON member without inlining its bytes.
func (s *Service) binaryResponse(resource, id string) (models.Document, error) {
	info := filename.Decode(id)
	src := s.docPath(resource, id)
	u, err := s.previewURL(src)
	if err != nil {
		return nil, err
	}
	doc := models.Document{
		"id":           id,
		"name":         id,
		"slug":         info.Slug,
		"ext":          info.Ext,
		models.KeyKind: models.KindFile,
		models.KeySrc:  src,
		models.KeyURL:  u,
	}
	if info.CreatedAt != nil {
		doc["createdAt"] = info.CreatedAt.UTC().Format(time.RFC3339)
	}
	return doc, nil
}

func (s *Service) resourceDir(resource string) string {
	return path.Join(s.contentDir, resource)
}

func (s *Service) docPath(resource, id string) string {
	return path.Join(s.contentDir, resource, id)
}
