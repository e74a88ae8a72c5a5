package api_test

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/designsystemsinternational/react-admin-github/internal/api"
	"github.com/designsystemsinternational/react-admin-github/internal/authn"
	"github.com/designsystemsinternational/react-admin-github/internal/resource"
	"github.com/designsystemsinternational/react-admin-github/internal/testutil"
)

// newTestServer wires the full router over a temporary filesystem backend
// with one seeded user, the way the process entrypoint does.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store := testutil.TestBackend(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("GenerateFromPassword: %v", err)
	}
	record, _ := json.Marshal(authn.User{ID: "ada@example.com", FullName: "Ada", Hash: string(hash)})
	if _, err := store.Write(context.Background(), "content/users/ada.json", record, ""); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	svc := resource.NewService(store, resource.Options{
		Secret: testutil.Secret,
		Now:    func() time.Time { return testutil.FixedInstant },
	})
	auth := authn.NewService(store, "content/users", testutil.Secret, time.Hour)

	srv := httptest.NewServer(api.NewRouter(svc, auth, testutil.Secret))
	t.Cleanup(srv.Close)
	return srv
}

func login(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp, err := http.Post(srv.URL+"/auth", "application/json",
		strings.NewReader(`{"username":"ada","password":"hunter2"}`))
	if err != nil {
		t.Fatalf("POST /auth: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", resp.StatusCode)
	}
	var session authn.Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if session.Token == "" {
		t.Fatal("login returned no token")
	}
	return session.Token
}

// call performs one authorized /api request and decodes the envelope.
func call(t *testing.T, srv *httptest.Server, tok, method, rawQuery string, body any) (int, map[string]json.RawMessage) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, srv.URL+"/api?"+rawQuery, reader)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s /api: %v", method, err)
	}
	defer resp.Body.Close()
	var envelope map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return resp.StatusCode, envelope
}

func TestAuthMiddlewareStoresSubject(t *testing.T) {
	srv := newTestServer(t)
	tok := login(t, srv)

	var subject string
	gated := api.AuthMiddleware(testutil.Secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject = api.Subject(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	gated.ServeHTTP(httptest.NewRecorder(), req)

	if subject != "ada@example.com" {
		t.Errorf("subject = %q", subject)
	}
}

func TestAPIRequiresBearerCredential(t *testing.T) {
	srv := newTestServer(t)

	status, _ := call(t, srv, "", http.MethodGet, "resource=posts", nil)
	if status != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", status)
	}

	status, _ = call(t, srv, "not-a-jwt", http.MethodGet, "resource=posts", nil)
	if status != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 for garbage token", status)
	}
}

func TestAPIFullCycle(t *testing.T) {
	srv := newTestServer(t)
	tok := login(t, srv)

	// Create.
	status, envelope := call(t, srv, tok, http.MethodPut, "", map[string]any{
		"resource": "posts",
		"data":     map[string]any{"name": "Hello World", "title": "First"},
	})
	if status != http.StatusCreated {
		t.Fatalf("create status = %d, body = %v", status, envelope)
	}
	var doc map[string]any
	if err := json.Unmarshal(envelope["data"], &doc); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	id, _ := doc["id"].(string)
	if id != "2024-01-02-03-04-05-hello-world.json" {
		t.Fatalf("id = %q", id)
	}

	// List.
	status, envelope = call(t, srv, tok, http.MethodGet, "resource=posts&page=1&perPage=10", nil)
	if status != http.StatusOK {
		t.Fatalf("list status = %d", status)
	}
	var total int
	if err := json.Unmarshal(envelope["total"], &total); err != nil {
		t.Fatalf("decode total: %v", err)
	}
	if total != 1 {
		t.Errorf("total = %d", total)
	}

	// GetOne.
	status, envelope = call(t, srv, tok, http.MethodGet, "resource=posts&id="+url.QueryEscape(id), nil)
	if status != http.StatusOK {
		t.Fatalf("getOne status = %d", status)
	}
	if err := json.Unmarshal(envelope["data"], &doc); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if doc["title"] != "First" {
		t.Errorf("title = %v", doc["title"])
	}

	// GetMany.
	ids, _ := json.Marshal([]string{id})
	status, envelope = call(t, srv, tok, http.MethodGet, "resource=posts&ids="+url.QueryEscape(string(ids)), nil)
	if status != http.StatusOK {
		t.Fatalf("getMany status = %d", status)
	}
	var docs []map[string]any
	if err := json.Unmarshal(envelope["data"], &docs); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("docs = %v", docs)
	}

	// Update.
	doc["title"] = "Second"
	status, envelope = call(t, srv, tok, http.MethodPut, "", map[string]any{
		"resource": "posts",
		"data":     doc,
	})
	if status != http.StatusOK {
		t.Fatalf("update status = %d, body = %v", status, envelope)
	}

	// Delete returns the removed document.
	status, envelope = call(t, srv, tok, http.MethodDelete, "resource=posts&id="+url.QueryEscape(id), nil)
	if status != http.StatusOK {
		t.Fatalf("delete status = %d", status)
	}
	if err := json.Unmarshal(envelope["data"], &doc); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if doc["title"] != "Second" {
		t.Errorf("removed title = %v", doc["title"])
	}

	// Gone now.
	status, _ = call(t, srv, tok, http.MethodGet, "resource=posts&id="+url.QueryEscape(id), nil)
	if status != http.StatusNotFound {
		t.Errorf("status after delete = %d, want 404", status)
	}
}

func TestAPIErrorMapping(t *testing.T) {
	srv := newTestServer(t)
	tok := login(t, srv)

	tests := []struct {
		name   string
		method string
		query  string
		body   any
		want   int
	}{
		{"unknown method", http.MethodPatch, "resource=posts", nil, http.StatusBadRequest},
		{"missing resource", http.MethodGet, "", nil, http.StatusBadRequest},
		{"missing document", http.MethodGet, "resource=posts&id=nope.json", nil, http.StatusNotFound},
		{"create without name", http.MethodPut, "",
			map[string]any{"resource": "posts", "data": map[string]any{"title": "x"}},
			http.StatusUnprocessableEntity},
		{"delete without id", http.MethodDelete, "resource=posts", nil, http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status, envelope := call(t, srv, tok, tc.method, tc.query, tc.body)
			if status != tc.want {
				t.Errorf("status = %d, want %d", status, tc.want)
			}
			if _, ok := envelope["error"]; !ok {
				t.Error("error body missing")
			}
		})
	}
}

func TestAPIUpdateConflict(t *testing.T) {
	srv := newTestServer(t)
	tok := login(t, srv)

	status, envelope := call(t, srv, tok, http.MethodPut, "", map[string]any{
		"resource": "posts",
		"data":     map[string]any{"name": "Contended"},
	})
	if status != http.StatusCreated {
		t.Fatalf("create status = %d", status)
	}
	var doc map[string]any
	if err := json.Unmarshal(envelope["data"], &doc); err != nil {
		t.Fatalf("decode data: %v", err)
	}

	// Creating again under the identical name lands on the same path,
	// since the pinned clock yields the same timestamp prefix.
	status, _ = call(t, srv, tok, http.MethodPut, "", map[string]any{
		"resource": "posts",
		"data":     map[string]any{"name": "Contended"},
	})
	if status != http.StatusConflict {
		t.Errorf("duplicate create status = %d, want 409", status)
	}
}

func TestPreviewEndpoint(t *testing.T) {
	srv := newTestServer(t)
	tok := login(t, srv)

	payload := base64.StdEncoding.EncodeToString([]byte("file-bytes"))
	status, envelope := call(t, srv, tok, http.MethodPut, "", map[string]any{
		"resource": "posts",
		"data": map[string]any{
			"name":  "With Attachment",
			"photo": map[string]any{"kind": "file", "path": "photo.jpg", "payload": payload},
		},
	})
	if status != http.StatusCreated {
		t.Fatalf("create status = %d, body = %v", status, envelope)
	}
	var doc map[string]any
	if err := json.Unmarshal(envelope["data"], &doc); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	previewURL, _ := doc["photo"].(map[string]any)["url"].(string)
	if previewURL == "" {
		t.Fatal("attachment has no preview url")
	}

	// The preview endpoint needs no bearer credential, only its token.
	resp, err := http.Get(srv.URL + previewURL)
	if err != nil {
		t.Fatalf("GET preview: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("preview status = %d", resp.StatusCode)
	}
	var body bytes.Buffer
	if _, err := body.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read body: %v", err)
	}
	decoded, err := base64.StdEncoding.DecodeString(body.String())
	if err != nil {
		t.Fatalf("preview body is not base64: %v", err)
	}
	if string(decoded) != "file-bytes" {
		t.Errorf("preview bytes = %q", decoded)
	}

	// Tampering with the path is rejected.
	u, _ := url.Parse(srv.URL + previewURL)
	q := u.Query()
	q.Set("path", "content/users/ada.json")
	u.RawQuery = q.Encode()
	resp2, err := http.Get(u.String())
	if err != nil {
		t.Fatalf("GET tampered preview: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusUnauthorized {
		t.Errorf("tampered preview status = %d, want 401", resp2.StatusCode)
	}
}
