// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes the resource operations as tools over stdio, for headless
// agent access without the HTTP layer.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/designsystemsinternational/react-admin-github/internal/models"
	"github.com/designsystemsinternational/react-admin-github/internal/resource"
)

// Server wraps the MCP server with resource tools.
type Server struct {
	mcp *server.MCPServer
	svc *resource.Service
}

// New creates a new MCP server with all resource tools registered.
func New(svc *resource.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"react-admin-github",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List the members of a resource, sorted and paginated."),
		mcp.WithString("resource", mcp.Required(), mcp.Description("Resource name (remote directory)")),
		mcp.WithNumber("page", mcp.Description("Page number, starting at 1")),
		mcp.WithNumber("perPage", mcp.Description("Page size, default 10")),
		mcp.WithString("sortField", mcp.Description("Field to sort on, e.g. createdAt")),
		mcp.WithString("sortOrder", mcp.Description("ASC for ascending, anything else descending")),
	), s.listDocuments)

	s.mcp.AddTool(mcp.NewTool("read_document",
		mcp.WithDescription("Read a single document by id, attachments resolved to preview URLs."),
		mcp.WithString("resource", mcp.Required(), mcp.Description("Resource name")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Document id (remote filename)")),
	), s.readDocument)

	s.mcp.AddTool(mcp.NewTool("create_document",
		mcp.WithDescription("Create a document in a resource. The name derives the slugged, "+
			"timestamped filename; data is the JSON document body."),
		mcp.WithString("resource", mcp.Required(), mcp.Description("Resource name")),
		mcp.WithString("name", mcp.Required(), mcp.Description("Name to derive the filename from")),
		mcp.WithString("data", mcp.Required(), mcp.Description("Document body as a JSON object")),
	), s.createDocument)

	s.mcp.AddTool(mcp.NewTool("delete_document",
		mcp.WithDescription("Delete a document by id. Returns the removed document."),
		mcp.WithString("resource", mcp.Required(), mcp.Description("Resource name")),
		mcp.WithString("id", mcp.Required(), mcp.Description("Document id (remote filename)")),
	), s.deleteDocument)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := req.RequireString("resource")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	params := resource.ListParams{
		Resource:  res,
		Page:      req.GetInt("page", 1),
		PerPage:   req.GetInt("perPage", 10),
		SortField: req.GetString("sortField", ""),
		SortOrder: req.GetString("sortOrder", ""),
	}
	items, total, err := s.svc.List(ctx, params)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(map[string]any{"items": items, "total": total}, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := req.RequireString("resource")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.svc.GetOne(ctx, res, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("read %s/%s: %v", res, id, err)), nil
	}
	out, _ := json.MarshalIndent(doc, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) createDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := req.RequireString("resource")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	name, err := req.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := req.RequireString("data")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var data models.Document
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("data is not a JSON object: %v", err)), nil
	}
	data["name"] = name

	doc, err := s.svc.Create(ctx, res, data)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(doc, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) deleteDocument(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, err := req.RequireString("resource")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	doc, err := s.svc.Delete(ctx, res, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("delete %s/%s: %v", res, id, err)), nil
	}
	out, _ := json.MarshalIndent(doc, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}
