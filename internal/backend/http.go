package backend

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/designsystemsinternational/react-admin-github/internal/apperr"
)

// HTTP implements Provider against a remote contents API: one URL per
// file, GET to read, PUT with a version token to write, DELETE with a
// version token to remove, and GET on a directory for a flat listing.
// File content travels base64-encoded in a JSON envelope.
//
// The client performs no retries of its own; callers retry idempotent
// reads if they want to. Cancellation and timeouts arrive through ctx.
type HTTP struct {
	baseURL    *url.URL
	authToken  string
	httpClient *http.Client
}

// HTTPOption configures an HTTP provider.
type HTTPOption func(*HTTP)

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(h *HTTP) {
		if c != nil {
			h.httpClient = c
		}
	}
}

// WithAuthToken sets the bearer token sent to the remote store.
func WithAuthToken(token string) HTTPOption {
	return func(h *HTTP) {
		h.authToken = token
	}
}

// NewHTTP creates an HTTP provider for the given base URL.
func NewHTTP(baseURL string, opts ...HTTPOption) (*HTTP, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("backend: base URL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("backend: invalid base URL: %w", err)
	}
	// ResolveReference drops the last path segment of a slash-less base.
	if !strings.HasSuffix(parsed.Path, "/") {
		parsed.Path += "/"
	}
	h := &HTTP{
		baseURL: parsed,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// fileEnvelope is the wire form of one file.
type fileEnvelope struct {
	Content string `json:"content"`
	Sha     string `json:"sha"`
}

// writeRequest is the body of a conditional PUT or DELETE.
type writeRequest struct {
	Content string `json:"content,omitempty"`
	Sha     string `json:"sha,omitempty"`
	Message string `json:"message,omitempty"`
}

// Read fetches one file and returns its content and version token.
func (h *HTTP) Read(ctx context.Context, path string) ([]byte, string, error) {
	status, body, err := h.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, "", err
	}
	if status != http.StatusOK {
		return nil, "", classify(status, body)
	}
	var env fileEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, "", fmt.Errorf("backend: decode read response: %w", err)
	}
	content, err := base64.StdEncoding.DecodeString(env.Content)
	if err != nil {
		return nil, "", fmt.Errorf("backend: decode file content: %w", err)
	}
	return content, env.Sha, nil
}

// Write stores content at path, conditional on token when non-empty.
// A 201 from the remote means created, a 200 means updated.
func (h *HTTP) Write(ctx context.Context, path string, content []byte, token string) (bool, error) {
	req := writeRequest{
		Content: base64.StdEncoding.EncodeToString(content),
		Sha:     token,
		Message: "Update " + path,
	}
	if token == "" {
		req.Message = "Create " + path
	}
	status, body, err := h.do(ctx, http.MethodPut, path, &req)
	if err != nil {
		return false, err
	}
	switch status {
	case http.StatusCreated:
		return true, nil
	case http.StatusOK:
		return false, nil
	default:
		return false, classify(status, body)
	}
}

// Delete removes the file at path, conditional on token.
func (h *HTTP) Delete(ctx context.Context, path, token string) error {
	req := writeRequest{
		Sha:     token,
		Message: "Delete " + path,
	}
	status, body, err := h.do(ctx, http.MethodDelete, path, &req)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return classify(status, body)
	}
	return nil
}

// List fetches the flat member listing of one directory.
func (h *HTTP) List(ctx context.Context, dir string) ([]Entry, error) {
	status, body, err := h.do(ctx, http.MethodGet, dir, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, classify(status, body)
	}
	var entries []Entry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("backend: decode listing: %w", err)
	}
	return entries, nil
}

func (h *HTTP) do(ctx context.Context, method, path string, payload any) (int, []byte, error) {
	ref, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return 0, nil, fmt.Errorf("backend: invalid path %s: %w", path, err)
	}
	full := h.baseURL.ResolveReference(ref).String()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("backend: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, full, body)
	if err != nil {
		return 0, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if h.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+h.authToken)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("backend: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("backend: read response: %w", err)
	}
	return resp.StatusCode, data, nil
}

// classify maps a remote failure status to the error taxonomy: 404 is
// absence, 409 and 422 are stale-token rejections, anything else carries
// the remote's status and message verbatim.
func classify(status int, body []byte) error {
	switch status {
	case http.StatusNotFound:
		return apperr.ErrNotFound
	case http.StatusConflict, http.StatusUnprocessableEntity:
		return apperr.ErrConflict
	}
	return apperr.Upstream(status, remoteMessage(body))
}

func remoteMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(string(body))
}
