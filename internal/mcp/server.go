// Package mcp exposes the persona memory engine's boundary operations as
// MCP tools, so external assistants can read and write persona memory over
// stdio.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	ctxpkg "github.com/tienhdsn-000001/eidoid-pet-robot/internal/context"
	"github.com/tienhdsn-000001/eidoid-pet-robot/internal/memory"
)

// Server wires the memory manager and context renderer into an MCP tool
// server.
type Server struct {
	manager  *memory.Manager
	renderer *ctxpkg.Renderer
	opts     ctxpkg.Options
}

// NewServer creates the tool server.
func NewServer(manager *memory.Manager, renderer *ctxpkg.Renderer, opts ctxpkg.Options) *Server {
	return &Server{manager: manager, renderer: renderer, opts: opts}
}

// Serve registers the tools and blocks serving MCP over stdio.
func (s *Server) Serve(version string) error {
	srv := server.NewMCPServer("eidoid", version,
		server.WithToolCapabilities(false),
	)

	srv.AddTool(mcp.NewTool("persona_status",
		mcp.WithDescription("Summarise a persona's relationship state: interaction count, familiarity, evolution count."),
		mcp.WithString("persona", mcp.Required(), mcp.Description("Persona key, e.g. jarvis")),
	), s.handlePersonaStatus)

	srv.AddTool(mcp.NewTool("persona_context",
		mcp.WithDescription("Render the persona's combined long-term and recent-conversation context under a token budget."),
		mcp.WithString("persona", mcp.Required(), mcp.Description("Persona key")),
		mcp.WithNumber("max_tokens", mcp.Description("Token budget for the payload (default from config)")),
	), s.handlePersonaContext)

	srv.AddTool(mcp.NewTool("remember_fact",
		mcp.WithDescription("Teach the persona a fact about the user directly, bypassing pattern extraction."),
		mcp.WithString("persona", mcp.Required(), mcp.Description("Persona key")),
		mcp.WithString("text", mcp.Required(), mcp.Description("The fact text, e.g. \"User's name is Sarah\"")),
		mcp.WithString("category", mcp.Required(), mcp.Description("Fact category: name, location, occupation, like, dislike, favorite, possession, goal, intent")),
	), s.handleRememberFact)

	srv.AddTool(mcp.NewTool("record_interaction",
		mcp.WithDescription("Record one conversation turn into the persona's memory, running extraction on user turns."),
		mcp.WithString("persona", mcp.Required(), mcp.Description("Persona key")),
		mcp.WithString("text", mcp.Required(), mcp.Description("The utterance text")),
		mcp.WithString("speaker", mcp.Description("\"user\" (default) or \"assistant\"")),
	), s.handleRecordInteraction)

	srv.AddTool(mcp.NewTool("list_personas",
		mcp.WithDescription("List every persona with stored memory."),
	), s.handleListPersonas)

	return server.ServeStdio(srv)
}
