// Package introspect talks to the external conversational model: it
// generates assistant replies for the session loop and produces the
// introspective trait-adjustment proposals consumed by the evolution
// scheduler.
package introspect

import (
	"context"
	"fmt"
)

// Provider name constants.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// CompletionRequest holds the parameters for a completion call.
type CompletionRequest struct {
	SystemPrompt string
	Context      string
	UserMessage  string
	MaxTokens    int
	Temperature  float64
}

// Client is the minimal completion surface the engine needs from a model
// provider.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// New constructs the Client for the named provider.
func New(provider, apiKey, model string) (Client, error) {
	switch provider {
	case ProviderAnthropic:
		return newClaude(apiKey, model), nil
	case ProviderOpenAI:
		return newOpenAI(apiKey, model), nil
	default:
		return nil, fmt.Errorf("introspect: unknown provider %q; valid providers: anthropic, openai", provider)
	}
}
