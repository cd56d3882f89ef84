package memory

import (
	"context"
	"strings"
	"testing"
)

func TestManager_RecordInteraction_LearnsFromUserTurns(t *testing.T) {
	m := NewManager(nil, DefaultTuning(), nil)

	m.RecordInteraction("jarvis", "My name is Sarah and I live in Portland", SpeakerUser)

	pm := m.Persona("jarvis")
	if got := len(pm.Facts()); got != 2 {
		t.Errorf("facts: got %d, want 2", got)
	}
	if got := m.Status("jarvis").InteractionCount; got != 1 {
		t.Errorf("interaction count: got %d, want 1", got)
	}
}

func TestManager_AssistantTurnsBufferedNotExtracted(t *testing.T) {
	m := NewManager(nil, DefaultTuning(), nil)

	m.RecordInteraction("jarvis", "my name is Hal, pleased to meet you", SpeakerAssistant)

	pm := m.Persona("jarvis")
	if got := len(pm.Facts()); got != 0 {
		t.Errorf("assistant turns must not produce facts, got %d", got)
	}
	if got := len(pm.Turns()); got != 1 {
		t.Errorf("assistant turn should be buffered, got %d", got)
	}
}

func TestManager_PersonaIsolation(t *testing.T) {
	m := NewManager(nil, DefaultTuning(), nil)

	m.RecordInteraction("jarvis", "I like hiking", SpeakerUser)
	m.RecordInteraction("alexa", "I like painting", SpeakerUser)

	jarvisFacts := m.Persona("jarvis").Facts()
	alexaFacts := m.Persona("alexa").Facts()

	if len(jarvisFacts) != 1 || len(alexaFacts) != 1 {
		t.Fatalf("each persona should have one fact: %d / %d", len(jarvisFacts), len(alexaFacts))
	}
	if jarvisFacts[0].Text == alexaFacts[0].Text {
		t.Error("facts leaked between personas")
	}
	if m.Status("alexa").InteractionCount != 1 {
		t.Errorf("alexa interactions: got %d, want 1", m.Status("alexa").InteractionCount)
	}
}

func TestManager_StrongEmotionPromoted(t *testing.T) {
	m := NewManager(nil, DefaultTuning(), nil)

	m.RecordInteraction("jarvis", "This is amazing! I love it!", SpeakerUser)

	mems := m.Persona("jarvis").ImportantMemories()
	if len(mems) != 1 {
		t.Fatalf("expected one important memory, got %d", len(mems))
	}
	if !strings.Contains(mems[0].Content, "Strongly positive moment") {
		t.Errorf("memory content: got %q", mems[0].Content)
	}
}

func TestManager_MildEmotionNotPromoted(t *testing.T) {
	m := NewManager(nil, DefaultTuning(), nil)

	// One positive hit diluted across many words: rapport yes, memory no.
	m.RecordInteraction("jarvis", "on the whole I would say the weekend trip out to the coast was nice I suppose", SpeakerUser)

	pm := m.Persona("jarvis")
	if got := len(pm.ImportantMemories()); got != 0 {
		t.Errorf("mild emotion should not become an important memory, got %d", got)
	}
	if got := len(pm.Snapshot().Relationship.RapportEvents); got != 1 {
		t.Errorf("rapport events: got %d, want 1", got)
	}
}

func TestManager_OnCycleExit_SavesAndSteps(t *testing.T) {
	records := newFakeRecords()
	m := NewManager(records, DefaultTuning(), nil)

	m.RecordInteraction("jarvis", "hello there", SpeakerUser)
	m.OnCycleExit(context.Background(), "jarvis")

	if got := m.Status("jarvis").Familiarity; got != 2 {
		t.Errorf("familiarity: got %d, want 2", got)
	}
	if _, ok := records.data["jarvis"]; !ok {
		t.Error("cycle exit should persist the aggregate")
	}
}

func TestManager_List(t *testing.T) {
	records := newFakeRecords()
	records.data["alexa"] = []byte(`{"persona_key":"alexa"}`)

	m := NewManager(records, DefaultTuning(), nil)
	m.RecordInteraction("jarvis", "hi", SpeakerUser)

	keys, err := m.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(keys) != 2 || keys[0] != "alexa" || keys[1] != "jarvis" {
		t.Errorf("keys: got %v, want [alexa jarvis]", keys)
	}
}

func TestManager_Reset(t *testing.T) {
	records := newFakeRecords()
	m := NewManager(records, DefaultTuning(), nil)

	m.RecordInteraction("jarvis", "I like hiking", SpeakerUser)
	if err := m.Persona("jarvis").Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if err := m.Reset("jarvis"); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	if _, ok := records.data["jarvis"]; ok {
		t.Error("record should be deleted")
	}
	if got := len(m.Persona("jarvis").Facts()); got != 0 {
		t.Errorf("reset persona should start empty, got %d facts", got)
	}
}

func TestManager_ClearShortTerm(t *testing.T) {
	records := newFakeRecords()
	m := NewManager(records, DefaultTuning(), nil)

	m.RecordInteraction("jarvis", "I like hiking", SpeakerUser)
	if err := m.ClearShortTerm("jarvis"); err != nil {
		t.Fatalf("ClearShortTerm: %v", err)
	}

	pm := m.Persona("jarvis")
	if got := len(pm.Turns()); got != 0 {
		t.Errorf("buffer should be empty, got %d", got)
	}
	if got := len(pm.Facts()); got != 1 {
		t.Errorf("facts must survive, got %d", got)
	}
}

func TestManager_SaveAllFlushesLoadedPersonas(t *testing.T) {
	records := newFakeRecords()
	m := NewManager(records, DefaultTuning(), nil)

	m.RecordInteraction("jarvis", "hello", SpeakerUser)
	m.RecordInteraction("alexa", "hello", SpeakerUser)

	if err := m.SaveAll(); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}
	if len(records.data) != 2 {
		t.Errorf("expected 2 persisted personas, got %d", len(records.data))
	}
}
