package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"
)

// ErrNoRecord is returned by RecordStore.Get when no snapshot exists for a
// persona key.
var ErrNoRecord = errors.New("memory: no record for persona")

// RecordStore is the keyed durable store backing persona aggregates. A put
// must be atomic: a concurrent get never observes a partially written
// snapshot. Implementations may be a file per key, an embedded database, or
// a managed one — the contract is what matters.
type RecordStore interface {
	Put(key string, snapshot []byte) error
	Get(key string) ([]byte, error)
	List() ([]string, error)
	Delete(key string) error
}

// Tuning holds the engine's adjustable constants. The stated defaults come
// straight from the source policy; nothing in the hot path hard-codes them.
type Tuning struct {
	BufferSize            int
	MaxFacts              int
	MaxImportantMemories  int
	MaxRapportEvents      int
	InitialConfidence     float64
	ConfidenceDelta       float64
	FamiliarityStep       int
	EvolutionMemoryWeight float64
	TraitDeviationMin     float64
	TopFacts              int
	TopTopics             int
}

// DefaultTuning returns the engine defaults.
func DefaultTuning() Tuning {
	return Tuning{
		BufferSize:            12,
		MaxFacts:              100,
		MaxImportantMemories:  50,
		MaxRapportEvents:      50,
		InitialConfidence:     0.6,
		ConfidenceDelta:       0.1,
		FamiliarityStep:       2,
		EvolutionMemoryWeight: 0.9,
		TraitDeviationMin:     0.15,
		TopFacts:              5,
		TopTopics:             5,
	}
}

// normalize applies sane floors so a partially filled Tuning never
// disables the engine.
func (t Tuning) normalize() Tuning {
	d := DefaultTuning()
	if t.BufferSize <= 0 {
		t.BufferSize = d.BufferSize
	}
	if t.MaxFacts <= 0 {
		t.MaxFacts = d.MaxFacts
	}
	if t.MaxImportantMemories <= 0 {
		t.MaxImportantMemories = d.MaxImportantMemories
	}
	if t.MaxRapportEvents <= 0 {
		t.MaxRapportEvents = d.MaxRapportEvents
	}
	if t.InitialConfidence <= 0 {
		t.InitialConfidence = d.InitialConfidence
	}
	if t.ConfidenceDelta <= 0 {
		t.ConfidenceDelta = d.ConfidenceDelta
	}
	if t.FamiliarityStep <= 0 {
		t.FamiliarityStep = d.FamiliarityStep
	}
	if t.EvolutionMemoryWeight <= 0 {
		t.EvolutionMemoryWeight = d.EvolutionMemoryWeight
	}
	if t.TraitDeviationMin <= 0 {
		t.TraitDeviationMin = d.TraitDeviationMin
	}
	if t.TopFacts <= 0 {
		t.TopFacts = d.TopFacts
	}
	if t.TopTopics <= 0 {
		t.TopTopics = d.TopTopics
	}
	return t
}

// PersonaMemory is the full working-memory aggregate for one persona. All
// mutation goes through its methods under a single per-persona lock, so
// snapshots are always consistent and two personas never contend.
type PersonaMemory struct {
	key     string
	tuning  Tuning
	records RecordStore // nil means memory-only

	mu              sync.Mutex
	turns           []ConversationTurn
	facts           []Fact
	topics          map[TopicLabel]int
	important       []ImportantMemory
	relationship    Relationship
	traits          TraitVector
	evolutionCount  int
	cycleExits      int
	lastInteraction time.Time
	degraded        bool
}

// Open creates the aggregate for a persona key, restoring any persisted
// snapshot. A missing or corrupt record is treated as no prior memory:
// the persona starts from its trait baseline and a logged warning, never a
// fatal error.
func Open(key string, records RecordStore, tuning Tuning) *PersonaMemory {
	pm := &PersonaMemory{
		key:     key,
		tuning:  tuning.normalize(),
		records: records,
		topics:  make(map[TopicLabel]int),
		traits:  BaselineTraits(key),
	}

	if records == nil {
		return pm
	}

	raw, err := records.Get(key)
	switch {
	case errors.Is(err, ErrNoRecord):
		return pm
	case err != nil:
		log.Printf("[memory] load %s: %v — starting with empty memory", key, err)
		return pm
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		log.Printf("[memory] corrupt record for %s: %v — starting with empty memory", key, err)
		return pm
	}
	pm.restore(snap)
	return pm
}

// Key returns the persona identifier this aggregate is scoped to.
func (pm *PersonaMemory) Key() string { return pm.key }

// Degraded reports whether persistence has been disabled for the rest of
// the session after repeated save failures.
func (pm *PersonaMemory) Degraded() bool {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return pm.degraded
}

// RecordTurn appends a turn to the short-term buffer, evicting the oldest
// turn when the buffer is full. Strict FIFO, no scoring; never fails.
func (pm *PersonaMemory) RecordTurn(turn ConversationTurn) {
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now()
	}

	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.turns = append(pm.turns, turn)
	if len(pm.turns) > pm.tuning.BufferSize {
		pm.turns = pm.turns[len(pm.turns)-pm.tuning.BufferSize:]
	}

	if turn.Speaker == SpeakerUser {
		pm.relationship.InteractionCount++
		pm.lastInteraction = turn.Timestamp
	}
}

// normalizeFactText is the dedup key: case-folded, whitespace-collapsed.
func normalizeFactText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// LearnFact inserts a fact candidate or reinforces an existing one with
// the same (category, normalised text). Reinforcement bumps the count and
// nudges confidence upward, never above 1.0. When the fact cap is
// exceeded, the fact with the lowest composite score is evicted.
func (pm *PersonaMemory) LearnFact(candidate Fact) {
	if !ValidFactCategory(candidate.Category) {
		return
	}
	if strings.TrimSpace(candidate.Text) == "" {
		return
	}
	if candidate.LastSeen.IsZero() {
		candidate.LastSeen = time.Now()
	}

	pm.mu.Lock()
	defer pm.mu.Unlock()

	norm := normalizeFactText(candidate.Text)
	for i := range pm.facts {
		f := &pm.facts[i]
		if f.Category == candidate.Category && normalizeFactText(f.Text) == norm {
			f.ReinforcementCount++
			f.Confidence = min1(f.Confidence + pm.tuning.ConfidenceDelta)
			f.LastSeen = candidate.LastSeen
			return
		}
	}

	candidate.Confidence = pm.tuning.InitialConfidence
	if candidate.Confidence > 1.0 {
		candidate.Confidence = 1.0
	}
	candidate.ReinforcementCount = 1
	pm.facts = append(pm.facts, candidate)

	if len(pm.facts) > pm.tuning.MaxFacts {
		pm.evictFactLocked()
	}
}

// evictFactLocked removes the fact with the lowest composite score. Ties
// break to the lowest reinforcement count, then the oldest last-seen.
func (pm *PersonaMemory) evictFactLocked() {
	now := time.Now()
	victim := 0
	for i := 1; i < len(pm.facts); i++ {
		a, b := pm.facts[i], pm.facts[victim]
		sa := CompositeScore(a.Confidence, now.Sub(a.LastSeen))
		sb := CompositeScore(b.Confidence, now.Sub(b.LastSeen))
		switch {
		case sa < sb:
			victim = i
		case sa == sb && a.ReinforcementCount < b.ReinforcementCount:
			victim = i
		case sa == sb && a.ReinforcementCount == b.ReinforcementCount && a.LastSeen.Before(b.LastSeen):
			victim = i
		}
	}
	pm.facts = append(pm.facts[:victim], pm.facts[victim+1:]...)
}

// NoteTopic increments the counter for a topic label. The topic table is
// closed, so growth is bounded by construction and nothing is evicted.
func (pm *PersonaMemory) NoteTopic(label TopicLabel) {
	if _, ok := topicKeywords[label]; !ok {
		return
	}
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.topics[label]++
}

// AddImportantMemory stores a weighted moment. Weights outside [0,1] are
// clamped rather than rejected. Past the cap, the entry with the lowest
// composite score among those present before the insert is evicted.
func (pm *PersonaMemory) AddImportantMemory(content string, weight float64) {
	if strings.TrimSpace(content) == "" {
		return
	}
	weight = clamp01(weight)

	pm.mu.Lock()
	defer pm.mu.Unlock()

	if len(pm.important) >= pm.tuning.MaxImportantMemories {
		pm.evictImportantLocked()
	}
	pm.important = append(pm.important, ImportantMemory{
		Content:   content,
		Weight:    weight,
		Timestamp: time.Now(),
	})
}

// evictImportantLocked removes the entry with the lowest composite score.
// Ties break to the oldest timestamp, then insertion order.
func (pm *PersonaMemory) evictImportantLocked() {
	if len(pm.important) == 0 {
		return
	}
	now := time.Now()
	victim := 0
	for i := 1; i < len(pm.important); i++ {
		a, b := pm.important[i], pm.important[victim]
		sa := CompositeScore(a.Weight, now.Sub(a.Timestamp))
		sb := CompositeScore(b.Weight, now.Sub(b.Timestamp))
		if sa < sb || (sa == sb && a.Timestamp.Before(b.Timestamp)) {
			victim = i
		}
	}
	pm.important = append(pm.important[:victim], pm.important[victim+1:]...)
}

// AddRapportEvent appends a polarity marker, keeping only the most recent
// events. Non-±1 polarity is snapped to its sign; zero is ignored.
func (pm *PersonaMemory) AddRapportEvent(polarity int) {
	if polarity == 0 {
		return
	}
	if polarity > 0 {
		polarity = 1
	} else {
		polarity = -1
	}

	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.relationship.RapportEvents = append(pm.relationship.RapportEvents, RapportEvent{
		Polarity:  polarity,
		Timestamp: time.Now(),
	})
	if n := len(pm.relationship.RapportEvents); n > pm.tuning.MaxRapportEvents {
		pm.relationship.RapportEvents = pm.relationship.RapportEvents[n-pm.tuning.MaxRapportEvents:]
	}
}

// AdjustTraits applies the convex update law to every trait present in
// deltas: new = 0.7·old + 0.3·proposed, clamped to [0,1]. Traits absent
// from deltas are untouched; unknown trait names are dropped.
func (pm *PersonaMemory) AdjustTraits(deltas TraitVector) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	for trait, proposed := range deltas {
		if !ValidTrait(trait) {
			continue
		}
		pm.traits[trait] = blendTrait(pm.traits[trait], proposed)
	}
}

// CompleteSession marks one wake-to-sleep cycle finished: familiarity
// steps up by a small fixed amount, saturating at 100.
func (pm *PersonaMemory) CompleteSession() {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.relationship.Familiarity += pm.tuning.FamiliarityStep
	if pm.relationship.Familiarity > 100 {
		pm.relationship.Familiarity = 100
	}
}

// ClearShortTerm empties the conversation buffer, leaving long-term memory
// intact.
func (pm *PersonaMemory) ClearShortTerm() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.turns = nil
}

// Status returns the inspection summary for this persona.
func (pm *PersonaMemory) Status() Status {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return Status{
		Persona:          pm.key,
		InteractionCount: pm.relationship.InteractionCount,
		Familiarity:      pm.relationship.Familiarity,
		EvolutionCount:   pm.evolutionCount,
	}
}

// Snapshot returns a consistent copy of the full aggregate.
func (pm *PersonaMemory) Snapshot() Snapshot {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return pm.snapshotLocked()
}

func (pm *PersonaMemory) snapshotLocked() Snapshot {
	snap := Snapshot{
		PersonaKey:      pm.key,
		Turns:           append([]ConversationTurn(nil), pm.turns...),
		Facts:           append([]Fact(nil), pm.facts...),
		Topics:          make(map[TopicLabel]int, len(pm.topics)),
		Relationship:    pm.relationship,
		Traits:          pm.traits.Clone(),
		EvolutionCount:  pm.evolutionCount,
		CycleExits:      pm.cycleExits,
		LastInteraction: pm.lastInteraction,
		SavedAt:         time.Now(),
	}
	snap.ImportantMemories = append([]ImportantMemory(nil), pm.important...)
	snap.Relationship.RapportEvents = append([]RapportEvent(nil), pm.relationship.RapportEvents...)
	for k, v := range pm.topics {
		snap.Topics[k] = v
	}
	return snap
}

// restore rebuilds in-memory state from a snapshot. Missing fields keep
// their baseline defaults.
func (pm *PersonaMemory) restore(snap Snapshot) {
	pm.turns = snap.Turns
	if len(pm.turns) > pm.tuning.BufferSize {
		pm.turns = pm.turns[len(pm.turns)-pm.tuning.BufferSize:]
	}
	pm.facts = snap.Facts
	pm.important = snap.ImportantMemories
	pm.relationship = snap.Relationship
	pm.evolutionCount = snap.EvolutionCount
	pm.cycleExits = snap.CycleExits
	pm.lastInteraction = snap.LastInteraction
	if snap.Topics != nil {
		pm.topics = snap.Topics
	}
	for trait, v := range snap.Traits {
		if ValidTrait(trait) {
			pm.traits[trait] = clamp01(v)
		}
	}
}

// Save persists the aggregate through the record store. The snapshot is
// taken atomically under the lock; the write happens outside it, so a
// timer-driven save never blocks foreground mutation for the duration of
// the disk write. A failed put is retried once; after that the store goes
// memory-only for the rest of the session.
func (pm *PersonaMemory) Save() error {
	pm.mu.Lock()
	if pm.records == nil || pm.degraded {
		pm.mu.Unlock()
		return nil
	}
	snap := pm.snapshotLocked()
	pm.mu.Unlock()

	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("memory: encode snapshot for %s: %w", pm.key, err)
	}

	if err := pm.records.Put(pm.key, raw); err != nil {
		if retryErr := pm.records.Put(pm.key, raw); retryErr != nil {
			pm.mu.Lock()
			pm.degraded = true
			pm.mu.Unlock()
			log.Printf("[memory] save %s failed twice, continuing memory-only: %v", pm.key, retryErr)
			return fmt.Errorf("memory: save %s: %w", pm.key, retryErr)
		}
	}
	return nil
}

// incrementEvolution bumps the evolution counter; used by the scheduler
// when a proposal has been applied.
func (pm *PersonaMemory) incrementEvolution() int {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.evolutionCount++
	return pm.evolutionCount
}

// incrementCycleExits advances the cycle counter and returns its new
// value. The counter always advances, even when the evolution that a
// cycle would trigger is skipped, so a missed period is never permanent.
func (pm *PersonaMemory) incrementCycleExits() int {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	pm.cycleExits++
	return pm.cycleExits
}

// Traits returns a copy of the current trait vector.
func (pm *PersonaMemory) Traits() TraitVector {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return pm.traits.Clone()
}

// Facts returns a copy of the current fact set, ordered by confidence
// descending then most recent first.
func (pm *PersonaMemory) Facts() []Fact {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	out := append([]Fact(nil), pm.facts...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].LastSeen.After(out[j].LastSeen)
	})
	return out
}

// ImportantMemories returns a copy of the important-memory list in
// insertion order.
func (pm *PersonaMemory) ImportantMemories() []ImportantMemory {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return append([]ImportantMemory(nil), pm.important...)
}

// Topics returns a copy of the topic counters.
func (pm *PersonaMemory) Topics() map[TopicLabel]int {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	out := make(map[TopicLabel]int, len(pm.topics))
	for k, v := range pm.topics {
		out[k] = v
	}
	return out
}

// Turns returns the short-term buffer in chronological order.
func (pm *PersonaMemory) Turns() []ConversationTurn {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	return append([]ConversationTurn(nil), pm.turns...)
}

func min1(v float64) float64 {
	if v > 1.0 {
		return 1.0
	}
	return v
}
