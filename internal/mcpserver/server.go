// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes shelf tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/shelf/internal/apperr"
	"github.com/starford/shelf/internal/bookservice"
)

const formatURI = "shelf://book-format"

// Server wraps the MCP server with shelf tools.
type Server struct {
	mcp *server.MCPServer
	svc *bookservice.Service
}

// New creates a new MCP server with all shelf tools registered.
func New(svc *bookservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Shelf",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_books",
		mcp.WithDescription("List every book in the library, oldest first."),
	), s.listBooks)

	s.mcp.AddTool(mcp.NewTool("get_book",
		mcp.WithDescription("Read one book by id."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Book id")),
	), s.getBook)

	s.mcp.AddTool(mcp.NewTool("find_book",
		mcp.WithDescription("Find a book whose title, author and tags match exactly. Returns its id."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Exact title")),
		mcp.WithString("author", mcp.Required(), mcp.Description("Exact author")),
		mcp.WithString("tags", mcp.Description("Exact tags (empty if none)")),
	), s.findBook)

	s.mcp.AddTool(mcp.NewTool("add_book",
		mcp.WithDescription("Add a book. Read the record contract via the "+
			"shelf://book-format resource first."),
		mcp.WithString("title", mcp.Required(), mcp.Description("Book title")),
		mcp.WithString("author", mcp.Required(), mcp.Description("Book author")),
		mcp.WithString("tags", mcp.Description("Free-form tags")),
	), s.addBook)

	s.mcp.AddTool(mcp.NewTool("update_book",
		mcp.WithDescription("Overwrite title, author and tags of the book with the given id."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Book id")),
		mcp.WithString("title", mcp.Required(), mcp.Description("New title")),
		mcp.WithString("author", mcp.Required(), mcp.Description("New author")),
		mcp.WithString("tags", mcp.Description("New tags")),
	), s.updateBook)

	s.mcp.AddTool(mcp.NewTool("delete_book",
		mcp.WithDescription("Delete the book with the given id."),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Book id")),
	), s.deleteBook)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Book Record Contract",
			mcp.WithResourceDescription("Shape and rules of a book record."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
	)

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

func (s *Server) listBooks(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	books, err := s.svc.ListBooks(ctx)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(books), nil
}

func (s *Server) getBook(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	book, err := s.svc.GetBook(ctx, id)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(book), nil
}

func (s *Server) findBook(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	author, err := req.RequireString("author")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	book, err := s.svc.FindBook(ctx, title, author, optionalString(req, "tags"))
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(book), nil
}

func (s *Server) addBook(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	in, err := requireInput(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	book, err := s.svc.CreateBook(ctx, in)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %d", book.ID)), nil
}

func (s *Server) updateBook(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	in, err := requireInput(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if _, err := s.svc.UpdateBook(ctx, id, in, ""); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("updated: %d", id)), nil
}

func (s *Server) deleteBook(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := requireID(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.DeleteBook(ctx, id); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %d", id)), nil
}

func (s *Server) readFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     BookFormatContract,
		},
	}, nil
}

func requireID(req mcp.CallToolRequest) (int64, error) {
	f, ok := req.GetArguments()["id"].(float64)
	if !ok {
		return 0, fmt.Errorf("required argument \"id\" not found or not a number")
	}
	if f < 1 || f != float64(int64(f)) {
		return 0, fmt.Errorf("id must be a positive integer")
	}
	return int64(f), nil
}

func requireInput(req mcp.CallToolRequest) (bookservice.Input, error) {
	title, err := req.RequireString("title")
	if err != nil {
		return bookservice.Input{}, err
	}
	author, err := req.RequireString("author")
	if err != nil {
		return bookservice.Input{}, err
	}
	return bookservice.Input{Title: title, Author: author, Tags: optionalString(req, "tags")}, nil
}

func optionalString(req mcp.CallToolRequest, key string) string {
	v, _ := req.GetArguments()[key].(string)
	return v
}

// toolError converts a service error into a tool-level error result.
func toolError(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError("not found")
	case errors.Is(err, apperr.ErrValidation):
		return mcp.NewToolResultError(err.Error())
	default:
		return mcp.NewToolResultError("storage error: " + err.Error())
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}
