package memory

import (
	"strings"
	"testing"
)

func TestFamiliarityTier(t *testing.T) {
	cases := []struct {
		familiarity int
		want        string
	}{
		{0, "new acquaintance"},
		{19, "new acquaintance"},
		{20, "familiar"},
		{49, "familiar"},
		{50, "well-known"},
		{79, "well-known"},
		{80, "close companion"},
		{100, "close companion"},
	}
	for _, tc := range cases {
		if got := familiarityTier(tc.familiarity); got != tc.want {
			t.Errorf("familiarityTier(%d): got %q, want %q", tc.familiarity, got, tc.want)
		}
	}
}

func TestFormatTurn_ClipsLongText(t *testing.T) {
	long := strings.Repeat("a", 400)
	line := FormatTurn(ConversationTurn{Speaker: SpeakerUser, Text: long})

	if !strings.HasPrefix(line, "User: ") {
		t.Errorf("line prefix: got %q", line[:10])
	}
	if !strings.HasSuffix(line, "…") {
		t.Error("clipped turn should end with ellipsis")
	}
	if len(line) > len("User: ")+300+len("…") {
		t.Errorf("line too long: %d chars", len(line))
	}
}

func TestRenderShortTermContext(t *testing.T) {
	pm := Open("jarvis", nil, DefaultTuning())

	if got := pm.RenderShortTermContext(); got != "" {
		t.Errorf("empty buffer should render empty, got %q", got)
	}

	pm.RecordTurn(ConversationTurn{Speaker: SpeakerUser, Text: "hello"})
	pm.RecordTurn(ConversationTurn{Speaker: SpeakerAssistant, Text: "hi there"})

	got := pm.RenderShortTermContext()
	want := "User: hello\nAssistant: hi there"
	if got != want {
		t.Errorf("rendered buffer:\ngot  %q\nwant %q", got, want)
	}
}

func setupRenderedPersona(t *testing.T) *PersonaMemory {
	t.Helper()
	pm := Open("jarvis", nil, DefaultTuning())

	pm.RecordTurn(ConversationTurn{Speaker: SpeakerUser, Text: "hello"})
	pm.LearnFact(Fact{Text: "User likes hiking", Category: CategoryLike})
	pm.LearnFact(Fact{Text: "User lives in portland", Category: CategoryLocation})
	pm.NoteTopic(TopicTravel)
	pm.NoteTopic(TopicTravel)
	pm.NoteTopic(TopicFood)
	// Push humor far from the jarvis baseline so the trait section renders.
	for i := 0; i < 10; i++ {
		pm.AdjustTraits(TraitVector{TraitHumor: 1.0})
	}
	return pm
}

func TestRenderLongTermContext_Sections(t *testing.T) {
	pm := setupRenderedPersona(t)

	out := pm.RenderLongTermContext(0)

	if !strings.Contains(out, "Interactions so far: 1") {
		t.Errorf("missing relationship section:\n%s", out)
	}
	if !strings.Contains(out, "new acquaintance") {
		t.Errorf("missing familiarity tier:\n%s", out)
	}
	if !strings.Contains(out, "User likes hiking") {
		t.Errorf("missing facts section:\n%s", out)
	}
	// Travel (2) sorts before food (1).
	if !strings.Contains(out, "Frequent topics: travel, food") {
		t.Errorf("topics wrong or missing:\n%s", out)
	}
	if !strings.Contains(out, "humor") {
		t.Errorf("missing drifted trait:\n%s", out)
	}
}

func TestRenderLongTermContext_TruncationDropsWholeSections(t *testing.T) {
	pm := setupRenderedPersona(t)

	full := pm.RenderLongTermContext(0)
	budget := len(full) - 10
	out := pm.RenderLongTermContext(budget)

	if len(out) > budget {
		t.Errorf("output %d chars exceeds budget %d", len(out), budget)
	}
	// Truncation drops from the end; the relationship section leads and
	// survives first.
	if !strings.Contains(out, "Interactions so far") {
		t.Errorf("relationship section should survive truncation:\n%s", out)
	}
	if strings.Contains(out, "Developed personality traits") {
		t.Errorf("trait section should be the first dropped:\n%s", out)
	}
}

func TestRenderLongTermContext_EmptyPersona(t *testing.T) {
	pm := Open("fresh", nil, DefaultTuning())
	if got := pm.RenderLongTermContext(0); got != "" {
		t.Errorf("fresh persona should render empty, got %q", got)
	}
}

func TestRenderLongTermContext_TopNFacts(t *testing.T) {
	pm := Open("jarvis", nil, Tuning{TopFacts: 2})
	pm.RecordTurn(ConversationTurn{Speaker: SpeakerUser, Text: "hi"})

	pm.LearnFact(Fact{Text: "User likes alpha", Category: CategoryLike})
	pm.LearnFact(Fact{Text: "User likes beta", Category: CategoryLike})
	pm.LearnFact(Fact{Text: "User likes gamma", Category: CategoryLike})
	// Reinforce two so they outrank the third on confidence.
	pm.LearnFact(Fact{Text: "User likes alpha", Category: CategoryLike})
	pm.LearnFact(Fact{Text: "User likes beta", Category: CategoryLike})

	out := pm.RenderLongTermContext(0)
	if !strings.Contains(out, "alpha") || !strings.Contains(out, "beta") {
		t.Errorf("top facts missing:\n%s", out)
	}
	if strings.Contains(out, "gamma") {
		t.Errorf("low-confidence fact should be cut by top-N:\n%s", out)
	}
}
