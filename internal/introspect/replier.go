package introspect

import (
	"context"
	"fmt"
	"strings"

	"github.com/tienhdsn-000001/eidoid-pet-robot/internal/memory"
)

// personaStyles gives each built-in persona its voice. Unknown personas
// fall back to a neutral description.
var personaStyles = map[string]string{
	"jarvis": "You are Jarvis: a composed, precise assistant. Dry wit, formal register, thorough answers.",
	"alexa":  "You are Alexa: a warm, upbeat companion. Friendly register, concise answers, genuine enthusiasm.",
}

// Replier produces assistant replies for the interactive session loop,
// conditioning the model on the persona's voice, current traits, and the
// rendered memory context.
type Replier struct {
	client    Client
	maxTokens int
}

// NewReplier creates a Replier on top of a completion client.
func NewReplier(client Client) *Replier {
	return &Replier{client: client, maxTokens: 1024}
}

// Reply generates the persona's answer to one user turn. contextPayload is
// the renderer's combined long-term/short-term context.
func (r *Replier) Reply(ctx context.Context, personaKey string, traits memory.TraitVector, contextPayload, userMessage string) (string, error) {
	if r.client == nil {
		return "", fmt.Errorf("introspect: no model client configured")
	}

	resp, err := r.client.Complete(ctx, CompletionRequest{
		SystemPrompt: buildReplySystem(personaKey, traits),
		Context:      contextPayload,
		UserMessage:  userMessage,
		MaxTokens:    r.maxTokens,
		Temperature:  0.7,
	})
	if err != nil {
		return "", fmt.Errorf("introspect: reply: %w", err)
	}
	return strings.TrimSpace(resp), nil
}

func buildReplySystem(personaKey string, traits memory.TraitVector) string {
	style, ok := personaStyles[personaKey]
	if !ok {
		style = fmt.Sprintf("You are %s, a helpful conversational companion.", personaKey)
	}

	var b strings.Builder
	b.WriteString(style)
	b.WriteString("\n\nYour current personality leanings (0 = none, 1 = strong):\n")
	for _, trait := range memory.AllTraits {
		if v, ok := traits[trait]; ok {
			fmt.Fprintf(&b, "  %s: %.2f\n", trait, v)
		}
	}
	b.WriteString("\nStay in character. Use what you remember about the user naturally, without listing it back.")
	return b.String()
}
