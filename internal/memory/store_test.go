package memory

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeRecords is an in-memory RecordStore with scriptable failures.
type fakeRecords struct {
	mu       sync.Mutex
	data     map[string][]byte
	failPuts int
	puts     int
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{data: make(map[string][]byte)}
}

func (f *fakeRecords) Put(key string, snapshot []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.puts++
	if f.failPuts > 0 {
		f.failPuts--
		return errors.New("disk full")
	}
	f.data[key] = append([]byte(nil), snapshot...)
	return nil
}

func (f *fakeRecords) Get(key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.data[key]
	if !ok {
		return nil, ErrNoRecord
	}
	return append([]byte(nil), raw...), nil
}

func (f *fakeRecords) List() ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for k := range f.data {
		keys = append(keys, k)
	}
	return keys, nil
}

func (f *fakeRecords) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

func TestPersonaMemory_BufferFIFO(t *testing.T) {
	pm := Open("jarvis", nil, Tuning{BufferSize: 3})

	for _, text := range []string{"one", "two", "three", "four", "five"} {
		pm.RecordTurn(ConversationTurn{Speaker: SpeakerUser, Text: text})
	}

	turns := pm.Turns()
	if len(turns) != 3 {
		t.Fatalf("buffer length: got %d, want 3", len(turns))
	}
	for i, want := range []string{"three", "four", "five"} {
		if turns[i].Text != want {
			t.Errorf("turn[%d]: got %q, want %q", i, turns[i].Text, want)
		}
	}
	// Evicted turns still counted as interactions.
	if got := pm.Status().InteractionCount; got != 5 {
		t.Errorf("interaction count: got %d, want 5", got)
	}
}

func TestPersonaMemory_AssistantTurnsNotCounted(t *testing.T) {
	pm := Open("jarvis", nil, DefaultTuning())

	pm.RecordTurn(ConversationTurn{Speaker: SpeakerAssistant, Text: "hello there"})
	if got := pm.Status().InteractionCount; got != 0 {
		t.Errorf("assistant turn should not count as interaction, got %d", got)
	}
	if got := len(pm.Turns()); got != 1 {
		t.Errorf("assistant turn should still be buffered, got %d turns", got)
	}
}

func TestPersonaMemory_LearnFact_Reinforces(t *testing.T) {
	pm := Open("jarvis", nil, DefaultTuning())

	pm.LearnFact(Fact{Text: "User likes hiking", Category: CategoryLike})
	pm.LearnFact(Fact{Text: "user  LIKES   hiking", Category: CategoryLike})

	facts := pm.Facts()
	if len(facts) != 1 {
		t.Fatalf("expected dedup to one fact, got %d", len(facts))
	}
	if facts[0].ReinforcementCount != 2 {
		t.Errorf("reinforcement count: got %d, want 2", facts[0].ReinforcementCount)
	}
	// 0.6 initial + 0.1 delta.
	if facts[0].Confidence != 0.7 {
		t.Errorf("confidence: got %f, want 0.7", facts[0].Confidence)
	}
}

func TestPersonaMemory_LearnFact_ConfidenceCapped(t *testing.T) {
	pm := Open("jarvis", nil, DefaultTuning())

	for i := 0; i < 20; i++ {
		pm.LearnFact(Fact{Text: "User likes tea", Category: CategoryLike})
	}
	if got := pm.Facts()[0].Confidence; got > 1.0 {
		t.Errorf("confidence exceeded 1.0: %f", got)
	}
}

func TestPersonaMemory_LearnFact_SameTextDifferentCategory(t *testing.T) {
	pm := Open("jarvis", nil, DefaultTuning())

	pm.LearnFact(Fact{Text: "User likes coffee", Category: CategoryLike})
	pm.LearnFact(Fact{Text: "User likes coffee", Category: CategoryFavorite})

	if got := len(pm.Facts()); got != 2 {
		t.Errorf("facts are unique per (category, text): got %d, want 2", got)
	}
}

func TestPersonaMemory_LearnFact_InvalidDropped(t *testing.T) {
	pm := Open("jarvis", nil, DefaultTuning())

	pm.LearnFact(Fact{Text: "User is suspicious", Category: "star-sign"})
	pm.LearnFact(Fact{Text: "   ", Category: CategoryLike})

	if got := len(pm.Facts()); got != 0 {
		t.Errorf("invalid facts should be dropped, got %d", got)
	}
}

func TestPersonaMemory_FactEviction_StaleLoses(t *testing.T) {
	pm := Open("jarvis", nil, Tuning{MaxFacts: 2})

	// All facts get the same initial confidence, so recency decides.
	pm.LearnFact(Fact{Text: "User likes vinyl", Category: CategoryLike, LastSeen: time.Now().Add(-100 * time.Hour)})
	pm.LearnFact(Fact{Text: "User likes chess", Category: CategoryLike, LastSeen: time.Now()})
	pm.LearnFact(Fact{Text: "User likes rain", Category: CategoryLike, LastSeen: time.Now()})

	facts := pm.Facts()
	if len(facts) != 2 {
		t.Fatalf("expected cap of 2 facts, got %d", len(facts))
	}
	for _, f := range facts {
		if strings.Contains(f.Text, "vinyl") {
			t.Error("stale fact should have been evicted")
		}
	}
}

func TestPersonaMemory_NoteTopic_UnknownIgnored(t *testing.T) {
	pm := Open("jarvis", nil, DefaultTuning())

	pm.NoteTopic(TopicFood)
	pm.NoteTopic(TopicFood)
	pm.NoteTopic("gossip")

	topics := pm.Topics()
	if topics[TopicFood] != 2 {
		t.Errorf("food count: got %d, want 2", topics[TopicFood])
	}
	if _, ok := topics["gossip"]; ok {
		t.Error("unknown topic label should be ignored")
	}
}

func TestPersonaMemory_ImportantMemoryEviction(t *testing.T) {
	pm := Open("jarvis", nil, Tuning{MaxImportantMemories: 2})

	pm.AddImportantMemory("first big moment", 0.9)
	pm.AddImportantMemory("minor aside", 0.1)
	pm.AddImportantMemory("another big moment", 0.9)

	mems := pm.ImportantMemories()
	if len(mems) != 2 {
		t.Fatalf("expected cap of 2, got %d", len(mems))
	}
	// The low-weight entry present before the insert is the victim; the
	// incoming entry is never evicted by its own arrival.
	for _, m := range mems {
		if m.Content == "minor aside" {
			t.Error("lowest-scoring pre-existing entry should have been evicted")
		}
	}
	if mems[len(mems)-1].Content != "another big moment" {
		t.Errorf("newest entry should survive, got %+v", mems)
	}
}

func TestPersonaMemory_ImportantMemory_WeightClamped(t *testing.T) {
	pm := Open("jarvis", nil, DefaultTuning())

	pm.AddImportantMemory("overweight", 3.5)
	pm.AddImportantMemory("underweight", -1.0)

	mems := pm.ImportantMemories()
	if mems[0].Weight != 1.0 {
		t.Errorf("weight should clamp to 1.0, got %f", mems[0].Weight)
	}
	if mems[1].Weight != 0.0 {
		t.Errorf("weight should clamp to 0.0, got %f", mems[1].Weight)
	}
}

func TestPersonaMemory_RapportEventsBounded(t *testing.T) {
	pm := Open("jarvis", nil, Tuning{MaxRapportEvents: 5})

	for i := 0; i < 8; i++ {
		pm.AddRapportEvent(1)
	}
	pm.AddRapportEvent(0) // ignored

	snap := pm.Snapshot()
	if got := len(snap.Relationship.RapportEvents); got != 5 {
		t.Errorf("rapport events: got %d, want 5", got)
	}
}

func TestPersonaMemory_AdjustTraits(t *testing.T) {
	pm := Open("jarvis", nil, DefaultTuning())
	before := pm.Traits()

	pm.AdjustTraits(TraitVector{
		TraitHumor: 1.0,
		"sarcasm":  0.9, // unknown, dropped
	})

	after := pm.Traits()
	// 0.7*0.3 + 0.3*1.0 = 0.51 for jarvis humor.
	if after[TraitHumor] <= before[TraitHumor] {
		t.Errorf("humor should rise: %f -> %f", before[TraitHumor], after[TraitHumor])
	}
	if after[TraitFormality] != before[TraitFormality] {
		t.Error("traits absent from the proposal must be untouched")
	}
	if _, ok := after["sarcasm"]; ok {
		t.Error("unknown trait must not enter the vector")
	}
}

func TestPersonaMemory_CompleteSession_Saturates(t *testing.T) {
	pm := Open("jarvis", nil, DefaultTuning())

	for i := 0; i < 60; i++ {
		pm.CompleteSession()
	}
	if got := pm.Status().Familiarity; got != 100 {
		t.Errorf("familiarity should saturate at 100, got %d", got)
	}
}

func TestPersonaMemory_ClearShortTerm(t *testing.T) {
	pm := Open("jarvis", nil, DefaultTuning())
	pm.RecordTurn(ConversationTurn{Speaker: SpeakerUser, Text: "hello"})
	pm.LearnFact(Fact{Text: "User likes jazz", Category: CategoryLike})

	pm.ClearShortTerm()

	if got := len(pm.Turns()); got != 0 {
		t.Errorf("buffer should be empty, got %d turns", got)
	}
	if got := len(pm.Facts()); got != 1 {
		t.Errorf("facts must survive a buffer clear, got %d", got)
	}
}

func TestPersonaMemory_SaveAndReload(t *testing.T) {
	records := newFakeRecords()

	pm := Open("jarvis", records, DefaultTuning())
	pm.RecordTurn(ConversationTurn{Speaker: SpeakerUser, Text: "my day was fine"})
	pm.LearnFact(Fact{Text: "User likes jazz", Category: CategoryLike})
	pm.NoteTopic(TopicEntertainment)
	pm.AddImportantMemory("a great first chat", 0.8)
	pm.AdjustTraits(TraitVector{TraitWarmth: 1.0})
	pm.CompleteSession()

	if err := pm.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded := Open("jarvis", records, DefaultTuning())
	if got := len(reloaded.Facts()); got != 1 {
		t.Errorf("reloaded facts: got %d, want 1", got)
	}
	if got := reloaded.Topics()[TopicEntertainment]; got != 1 {
		t.Errorf("reloaded topic count: got %d, want 1", got)
	}
	if got := len(reloaded.ImportantMemories()); got != 1 {
		t.Errorf("reloaded important memories: got %d, want 1", got)
	}
	if got := reloaded.Status(); got.InteractionCount != 1 || got.Familiarity != 2 {
		t.Errorf("reloaded relationship: got %+v", got)
	}
	if got, want := reloaded.Traits()[TraitWarmth], pm.Traits()[TraitWarmth]; got != want {
		t.Errorf("reloaded warmth: got %f, want %f", got, want)
	}
	if got := len(reloaded.Turns()); got != 1 {
		t.Errorf("reloaded turns: got %d, want 1", got)
	}
}

func TestPersonaMemory_CorruptRecordLoadsEmpty(t *testing.T) {
	records := newFakeRecords()
	records.data["jarvis"] = []byte("{not json")

	pm := Open("jarvis", records, DefaultTuning())

	if got := pm.Status().InteractionCount; got != 0 {
		t.Errorf("corrupt record should load as empty, got %d interactions", got)
	}
	if got := pm.Traits()[TraitFormality]; got != 0.8 {
		t.Errorf("corrupt record should fall back to baseline traits, got %f", got)
	}
}

func TestPersonaMemory_SaveRetriesOnce(t *testing.T) {
	records := newFakeRecords()
	records.failPuts = 1

	pm := Open("jarvis", records, DefaultTuning())
	pm.RecordTurn(ConversationTurn{Speaker: SpeakerUser, Text: "hi"})

	if err := pm.Save(); err != nil {
		t.Fatalf("Save should succeed on retry: %v", err)
	}
	if pm.Degraded() {
		t.Error("one transient failure must not degrade the store")
	}
	if _, ok := records.data["jarvis"]; !ok {
		t.Error("snapshot should have been written on retry")
	}
}

func TestPersonaMemory_SaveDegradesAfterRetry(t *testing.T) {
	records := newFakeRecords()
	records.failPuts = 2

	pm := Open("jarvis", records, DefaultTuning())

	if err := pm.Save(); err == nil {
		t.Fatal("expected save error after failed retry")
	}
	if !pm.Degraded() {
		t.Error("store should be degraded after two failed puts")
	}

	// Degraded store runs memory-only: no further puts, no errors.
	putsBefore := records.puts
	if err := pm.Save(); err != nil {
		t.Errorf("degraded save should be a silent no-op, got %v", err)
	}
	if records.puts != putsBefore {
		t.Error("degraded store must not hit the record store again")
	}
}

func TestPersonaMemory_SnapshotIsDeepCopy(t *testing.T) {
	pm := Open("jarvis", nil, DefaultTuning())
	pm.LearnFact(Fact{Text: "User likes jazz", Category: CategoryLike})

	snap := pm.Snapshot()
	snap.Facts[0].Text = "tampered"
	snap.Traits[TraitHumor] = 0.0

	if pm.Facts()[0].Text == "tampered" {
		t.Error("snapshot facts must be independent of live state")
	}
	if pm.Traits()[TraitHumor] == 0.0 {
		t.Error("snapshot traits must be independent of live state")
	}
}
