package context

import (
	"strings"
	"testing"

	"github.com/tienhdsn-000001/eidoid-pet-robot/internal/memory"
)

func setupManager(t *testing.T) *memory.Manager {
	t.Helper()
	return memory.NewManager(nil, memory.DefaultTuning(), nil)
}

func TestPayload_EmptyPersona(t *testing.T) {
	r := NewRenderer(setupManager(t), HeuristicCounter{})

	if got := r.Payload("jarvis", Options{}); got != "" {
		t.Errorf("fresh persona should yield an empty payload, got %q", got)
	}
}

func TestPayload_IncludesRecentTurns(t *testing.T) {
	m := setupManager(t)
	m.RecordInteraction("jarvis", "hello there", memory.SpeakerUser)
	m.RecordInteraction("jarvis", "hi, good to see you", memory.SpeakerAssistant)

	r := NewRenderer(m, HeuristicCounter{})
	out := r.Payload("jarvis", Options{})

	if !strings.Contains(out, "Recent conversation:") {
		t.Errorf("missing conversation header:\n%s", out)
	}
	if !strings.Contains(out, "User: hello there") {
		t.Errorf("missing user turn:\n%s", out)
	}
	if !strings.Contains(out, "Assistant: hi, good to see you") {
		t.Errorf("missing assistant turn:\n%s", out)
	}
	// Chronological order: user turn first.
	if strings.Index(out, "User: hello there") > strings.Index(out, "Assistant:") {
		t.Error("turns should be chronological")
	}
}

func TestPayload_LongTermBeforeShortTerm(t *testing.T) {
	m := setupManager(t)
	m.RecordInteraction("jarvis", "I like hiking in the hills", memory.SpeakerUser)

	r := NewRenderer(m, HeuristicCounter{})
	out := r.Payload("jarvis", Options{})

	factsIdx := strings.Index(out, "Known facts")
	turnsIdx := strings.Index(out, "Recent conversation:")
	if factsIdx == -1 || turnsIdx == -1 {
		t.Fatalf("expected both sections:\n%s", out)
	}
	if factsIdx > turnsIdx {
		t.Error("long-term summary should precede recent turns")
	}
}

func TestPayload_NewestTurnSurvivesTinyBudget(t *testing.T) {
	m := setupManager(t)
	m.RecordInteraction("jarvis", "an older message that will not fit", memory.SpeakerUser)
	m.RecordInteraction("jarvis", "the newest message", memory.SpeakerUser)

	r := NewRenderer(m, HeuristicCounter{})
	out := r.Payload("jarvis", Options{MaxTokens: 4, LongTermTokens: 1})

	if out == "" {
		t.Fatal("payload must never be empty while the buffer has turns")
	}
	if !strings.Contains(out, "User: the n") {
		t.Errorf("expected a truncated slice of the newest turn:\n%s", out)
	}
	if strings.Contains(out, "older message") {
		t.Errorf("older turn should not fit:\n%s", out)
	}
}

func TestPayload_BudgetRespected(t *testing.T) {
	m := setupManager(t)
	for i := 0; i < 10; i++ {
		m.RecordInteraction("jarvis", strings.Repeat("chatter ", 20), memory.SpeakerUser)
	}

	counter := HeuristicCounter{}
	r := NewRenderer(m, counter)

	budget := 100
	out := r.Payload("jarvis", Options{MaxTokens: budget, LongTermTokens: 10})

	// Allow the header plus per-line newline slack.
	if got := counter.Count(out); got > budget+16 {
		t.Errorf("payload of %d tokens blows the %d budget", got, budget)
	}
}

func TestHeuristicCounter(t *testing.T) {
	c := HeuristicCounter{}

	if got := c.Count(""); got != 0 {
		t.Errorf("empty count: got %d", got)
	}
	if got := c.Count("abcd"); got != 1 {
		t.Errorf("4 chars: got %d, want 1", got)
	}
	if got := c.Count("abcde"); got != 2 {
		t.Errorf("5 chars round up: got %d, want 2", got)
	}
	if got := c.Truncate("abcdefgh", 1); got != "abcd" {
		t.Errorf("truncate: got %q, want %q", got, "abcd")
	}
	if got := c.Truncate("abc", 5); got != "abc" {
		t.Errorf("truncate under budget: got %q", got)
	}
	if got := c.Truncate("abc", 0); got != "" {
		t.Errorf("zero budget: got %q", got)
	}
}
