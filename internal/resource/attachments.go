package resource

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
	"path"

	"github.com/google/uuid"

	"github.com/designsystemsinternational/react-admin-github/internal/apperr"
	"github.com/designsystemsinternational/react-admin-github/internal/doctree"
	"github.com/designsystemsinternational/react-admin-github/internal/filename"
	"github.com/designsystemsinternational/react-admin-github/internal/models"
	"github.com/designsystemsinternational/react-admin-github/internal/token"
)

// uploadsDir is the sub-directory of a resource where extracted
// attachment files are stored.
const uploadsDir = "uploads"

// extractAttachments walks data before a write, uploading every
// attachment node that still carries raw payload bytes and replacing the
// payload with a resolved src pointer. Nodes already resolved only get
// their transient url stripped so it is never persisted. A failed upload
// aborts the whole write; files uploaded before the failure stay behind
// as orphans and are not rolled back.
func (s *Service) extractAttachments(ctx context.Context, resource string, data models.Document) error {
	return doctree.Walk(ctx, data, models.IsAttachment, func(ctx context.Context, node map[string]any) (any, error) {
		delete(node, models.KeyURL)

		payload, ok := node[models.KeyPayload].(string)
		if !ok {
			return node, nil
		}

		name, _ := node[models.KeyPath].(string)
		if name == "" {
			return nil, fmt.Errorf("attachment needs a path property: %w", apperr.ErrValidation)
		}
		raw, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("attachment payload is not base64: %w", apperr.ErrValidation)
		}

		attID, _ := node[models.KeyID].(string)
		if attID == "" {
			attID = uuid.NewString()
			node[models.KeyID] = attID
		}

		// The id disambiguates attachments sharing a base name within
		// the same second.
		fname := filename.Encode(attID+"-"+path.Base(name), s.now(), true)
		target := path.Join(s.contentDir, resource, uploadsDir, fname)
		if _, err := s.store.Write(ctx, target, raw, ""); err != nil {
			return nil, err
		}

		delete(node, models.KeyPayload)
		node[models.KeySrc] = target
		return node, nil
	})
}

// rehydrateAttachments walks a document on the way out, attaching a
// signed preview URL to every resolved attachment reference.
func (s *Service) rehydrateAttachments(ctx context.Context, doc models.Document) error {
	return doctree.Walk(ctx, doc, models.IsAttachment, func(_ context.Context, node map[string]any) (any, error) {
		src, ok := node[models.KeySrc].(string)
		if !ok || src == "" {
			return node, nil
		}
		u, err := s.previewURL(src)
		if err != nil {
			return nil, err
		}
		node[models.KeyURL] = u
		return node, nil
	})
}

// previewURL issues a preview token scoped to src and renders the
// relative fetch URL for it.
func (s *Service) previewURL(src string) (string, error) {
	t, err := token.IssuePreview(src, s.secret, s.previewTTL)
	if err != nil {
		return "", fmt.Errorf("issue preview token: %w", err)
	}
	q := url.Values{}
	q.Set("path", src)
	q.Set("previewToken", t)
	return "/preview?" + q.Encode(), nil
}
