package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/tienhdsn-000001/eidoid-pet-robot/internal/memory"
)

func (s *Server) handlePersonaStatus(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	persona, err := req.RequireString("persona")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: persona"), nil
	}

	st := s.manager.Status(persona)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Persona: %s\n", st.Persona)
	fmt.Fprintf(&sb, "Interactions: %d\n", st.InteractionCount)
	fmt.Fprintf(&sb, "Familiarity: %d/100\n", st.Familiarity)
	fmt.Fprintf(&sb, "Evolutions: %d\n", st.EvolutionCount)
	return mcp.NewToolResultText(sb.String()), nil
}

func (s *Server) handlePersonaContext(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	persona, err := req.RequireString("persona")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: persona"), nil
	}

	opts := s.opts
	if maxTokens := req.GetInt("max_tokens", 0); maxTokens > 0 {
		opts.MaxTokens = maxTokens
	}

	payload := s.renderer.Payload(persona, opts)
	if payload == "" {
		return mcp.NewToolResultText("No memory yet for this persona."), nil
	}
	return mcp.NewToolResultText(payload), nil
}

func (s *Server) handleRememberFact(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	persona, err := req.RequireString("persona")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: persona"), nil
	}
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: text"), nil
	}
	categoryStr, err := req.RequireString("category")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: category"), nil
	}

	category := memory.FactCategory(categoryStr)
	if !memory.ValidFactCategory(category) {
		return mcp.NewToolResultError(fmt.Sprintf("invalid category %q (valid: name, location, occupation, like, dislike, favorite, possession, goal, intent)", categoryStr)), nil
	}

	pm := s.manager.Persona(persona)
	pm.LearnFact(memory.Fact{Text: text, Category: category})
	if saveErr := pm.Save(); saveErr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("fact recorded but save failed: %v", saveErr)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Remembered %s fact for %s.", category, persona)), nil
}

func (s *Server) handleRecordInteraction(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	persona, err := req.RequireString("persona")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: persona"), nil
	}
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: text"), nil
	}

	speaker := memory.SpeakerUser
	if req.GetString("speaker", "user") == string(memory.SpeakerAssistant) {
		speaker = memory.SpeakerAssistant
	}

	s.manager.RecordInteraction(persona, text, speaker)
	if saveErr := s.manager.Persona(persona).Save(); saveErr != nil {
		return mcp.NewToolResultError(fmt.Sprintf("turn recorded but save failed: %v", saveErr)), nil
	}
	return mcp.NewToolResultText("Recorded."), nil
}

func (s *Server) handleListPersonas(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	keys, err := s.manager.List()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list personas: %v", err)), nil
	}
	if len(keys) == 0 {
		return mcp.NewToolResultText("No personas stored."), nil
	}

	var sb strings.Builder
	for _, key := range keys {
		st := s.manager.Status(key)
		fmt.Fprintf(&sb, "%s — %d interactions, familiarity %d/100, %d evolutions\n",
			key, st.InteractionCount, st.Familiarity, st.EvolutionCount)
	}
	return mcp.NewToolResultText(sb.String()), nil
}
