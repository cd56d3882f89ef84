package context

import (
	"strings"

	"github.com/tienhdsn-000001/eidoid-pet-robot/internal/memory"
)

// Options controls how a persona's context payload is assembled.
type Options struct {
	// MaxTokens is the total budget for the payload.
	MaxTokens int
	// LongTermTokens caps the long-term summary. It is clipped to
	// three-quarters of MaxTokens so recent turns always get a share.
	LongTermTokens int
}

const (
	defaultMaxTokens      = 2000
	defaultLongTermTokens = 600
)

// Renderer combines a persona's long-term summary and short-term buffer
// into one payload under a single token budget. The long-term section is
// capped first; whatever remains goes to the most recent turns.
type Renderer struct {
	manager *memory.Manager
	counter Counter
}

// NewRenderer creates a Renderer.
func NewRenderer(manager *memory.Manager, counter Counter) *Renderer {
	if counter == nil {
		counter = HeuristicCounter{}
	}
	return &Renderer{manager: manager, counter: counter}
}

// Payload renders the context for one persona. When the short-term buffer
// is non-empty the result always includes at least a truncated slice of
// the newest turn, so the external model never sees an empty conversation.
func (r *Renderer) Payload(personaKey string, opts Options) string {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	if opts.LongTermTokens <= 0 {
		opts.LongTermTokens = defaultLongTermTokens
	}
	if cap := opts.MaxTokens * 3 / 4; opts.LongTermTokens > cap {
		opts.LongTermTokens = cap
	}

	pm := r.manager.Persona(personaKey)
	remaining := opts.MaxTokens

	var sections []string

	// Long-term summary first: it is already bounded and section-truncated
	// by the store, so a character cap derived from the token budget is
	// enough.
	longTerm := pm.RenderLongTermContext(opts.LongTermTokens * charsPerToken)
	if longTerm != "" {
		if used := r.counter.Count(longTerm); used <= remaining {
			sections = append(sections, longTerm)
			remaining -= used
		}
	}

	// Short-term turns fill the rest, newest kept preferentially but
	// rendered in chronological order.
	if shortTerm := r.renderRecentTurns(pm, remaining); shortTerm != "" {
		sections = append(sections, "Recent conversation:\n"+shortTerm)
	}

	return strings.Join(sections, "\n\n")
}

// renderRecentTurns walks the buffer newest to oldest, keeping turns while
// they fit. If not even the newest turn fits it is hard-truncated rather
// than dropped.
func (r *Renderer) renderRecentTurns(pm *memory.PersonaMemory, budget int) string {
	turns := pm.Turns()
	if len(turns) == 0 {
		return ""
	}

	var kept []string
	for i := len(turns) - 1; i >= 0; i-- {
		line := memory.FormatTurn(turns[i])
		cost := r.counter.Count(line) + 1 // newline
		if cost > budget {
			if len(kept) == 0 {
				// Always surface the newest turn, even clipped.
				if budget < 1 {
					budget = 1
				}
				kept = append(kept, r.counter.Truncate(line, budget))
			}
			break
		}
		kept = append(kept, line)
		budget -= cost
	}

	// kept is newest-first; reverse into chronological order.
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	return strings.Join(kept, "\n")
}
