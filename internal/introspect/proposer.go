package introspect

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/tienhdsn-000001/eidoid-pet-robot/internal/memory"
)

const proposalSystemPrompt = `You tune the personality of a conversational persona based on its accumulated experience. Respond with a single JSON object mapping trait names to proposed values between 0.0 and 1.0. Only include traits that should shift. Respond with JSON only, no prose.`

// Proposer builds the introspection prompt from a persona snapshot, sends
// it through a Client, and parses the returned trait deltas. It satisfies
// the evolution scheduler's ProposalSource boundary.
type Proposer struct {
	client    Client
	maxTokens int
}

// NewProposer creates a Proposer on top of a completion client.
func NewProposer(client Client) *Proposer {
	return &Proposer{client: client, maxTokens: 512}
}

// ProposeTraitAdjustments asks the model how the persona's traits should
// shift given everything it remembers. A malformed response degrades to
// (nil, nil); the scheduler treats that as "skip this evolution".
func (p *Proposer) ProposeTraitAdjustments(ctx context.Context, snap memory.Snapshot) (memory.TraitVector, error) {
	if p.client == nil {
		return nil, nil
	}

	resp, err := p.client.Complete(ctx, CompletionRequest{
		SystemPrompt: proposalSystemPrompt,
		UserMessage:  buildIntrospectionPrompt(snap),
		MaxTokens:    p.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("introspect: propose trait adjustments: %w", err)
	}
	return parseProposalJSON(resp), nil
}

// buildIntrospectionPrompt summarizes the persona's experience: current
// traits, what it knows about the user, recurring topics, and the most
// significant remembered moments.
func buildIntrospectionPrompt(snap memory.Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Persona %q has completed %d interactions (familiarity %d/100, %d evolutions so far).\n\n",
		snap.PersonaKey, snap.Relationship.InteractionCount, snap.Relationship.Familiarity, snap.EvolutionCount)

	b.WriteString("Current traits:\n")
	for _, trait := range memory.AllTraits {
		if v, ok := snap.Traits[trait]; ok {
			fmt.Fprintf(&b, "  %s: %.2f\n", trait, v)
		}
	}

	if len(snap.Facts) > 0 {
		b.WriteString("\nWhat it knows about the user:\n")
		for _, f := range snap.Facts {
			fmt.Fprintf(&b, "  - %s\n", f.Text)
		}
	}

	if len(snap.Topics) > 0 {
		labels := make([]string, 0, len(snap.Topics))
		for label := range snap.Topics {
			labels = append(labels, string(label))
		}
		sort.Strings(labels)
		fmt.Fprintf(&b, "\nRecurring topics: %s\n", strings.Join(labels, ", "))
	}

	if len(snap.ImportantMemories) > 0 {
		b.WriteString("\nSignificant moments:\n")
		for _, m := range snap.ImportantMemories {
			fmt.Fprintf(&b, "  - %s\n", m.Content)
		}
	}

	b.WriteString("\nPropose how the traits should shift to better fit this relationship.")
	return b.String()
}

// parseProposalJSON extracts the trait map from the model's output.
// Lenient: searches for the first '{' and last '}' to handle models that
// wrap the object in extra prose or markdown fences. Malformed output
// yields nil rather than an error.
func parseProposalJSON(raw string) memory.TraitVector {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end <= start {
		return nil
	}

	var proposed map[string]float64
	if err := json.Unmarshal([]byte(raw[start:end+1]), &proposed); err != nil {
		return nil
	}
	if len(proposed) == 0 {
		return nil
	}

	out := make(memory.TraitVector, len(proposed))
	for name, value := range proposed {
		trait := memory.Trait(name)
		if !memory.ValidTrait(trait) {
			continue
		}
		out[trait] = value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
