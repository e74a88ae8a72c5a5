package mcpserver

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/designsystemsinternational/react-admin-github/internal/backend"
	"github.com/designsystemsinternational/react-admin-github/internal/resource"
)

func testServer(t *testing.T) *Server {
	t.Helper()

	store, err := backend.NewFS(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	svc := resource.NewService(store, resource.Options{
		Secret: []byte("test-secret"),
		Now:    func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) },
	})
	return New(svc)
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper; call the handlers directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_documents":
		result, err = srv.listDocuments(ctx, req)
	case "read_document":
		result, err = srv.readDocument(ctx, req)
	case "create_document":
		result, err = srv.createDocument(ctx, req)
	case "delete_document":
		result, err = srv.deleteDocument(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestCreateAndReadDocument(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "create_document", map[string]interface{}{
		"resource": "posts",
		"name":     "Hello World",
		"data":     `{"title":"First"}`,
	})
	if r.IsError {
		t.Fatalf("create failed: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), "2024-01-02-03-04-05-hello-world.json") {
		t.Errorf("create result = %q", resultText(r))
	}

	r = callTool(t, srv, "read_document", map[string]interface{}{
		"resource": "posts",
		"id":       "2024-01-02-03-04-05-hello-world.json",
	})
	if r.IsError {
		t.Fatalf("read failed: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), `"title": "First"`) {
		t.Errorf("read result = %q", resultText(r))
	}
}

func TestListDocuments(t *testing.T) {
	srv := testServer(t)

	callTool(t, srv, "create_document", map[string]interface{}{
		"resource": "posts",
		"name":     "Only Post",
		"data":     `{}`,
	})

	r := callTool(t, srv, "list_documents", map[string]interface{}{
		"resource": "posts",
	})
	if r.IsError {
		t.Fatalf("list failed: %s", resultText(r))
	}
	text := resultText(r)
	if !strings.Contains(text, `"total": 1`) || !strings.Contains(text, "only-post") {
		t.Errorf("list result = %q", text)
	}
}

func TestListMissingResourceIsEmpty(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "list_documents", map[string]interface{}{"resource": "ghosts"})
	if r.IsError {
		t.Fatalf("list failed: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), `"total": 0`) {
		t.Errorf("list result = %q", resultText(r))
	}
}

func TestReadDocumentMissing(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "read_document", map[string]interface{}{
		"resource": "posts",
		"id":       "nope.json",
	})
	if !r.IsError {
		t.Error("expected error result for missing document")
	}
}

func TestCreateDocumentRejectsBadJSON(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "create_document", map[string]interface{}{
		"resource": "posts",
		"name":     "Broken",
		"data":     "not json",
	})
	if !r.IsError {
		t.Error("expected error result for malformed data")
	}
}

func TestDeleteDocument(t *testing.T) {
	srv := testServer(t)

	callTool(t, srv, "create_document", map[string]interface{}{
		"resource": "posts",
		"name":     "Doomed",
		"data":     `{"title":"bye"}`,
	})

	r := callTool(t, srv, "delete_document", map[string]interface{}{
		"resource": "posts",
		"id":       "2024-01-02-03-04-05-doomed.json",
	})
	if r.IsError {
		t.Fatalf("delete failed: %s", resultText(r))
	}
	if !strings.Contains(resultText(r), `"title": "bye"`) {
		t.Errorf("delete result = %q", resultText(r))
	}

	r = callTool(t, srv, "read_document", map[string]interface{}{
		"resource": "posts",
		"id":       "2024-01-02-03-04-05-doomed.json",
	})
	if !r.IsError {
		t.Error("document still readable after delete")
	}
}

func TestToolMissingRequiredArgument(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "read_document", map[string]interface{}{"resource": "posts"})
	if !r.IsError {
		t.Error("expected error result for missing id")
	}
}
