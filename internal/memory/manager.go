package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// strongEmotionMin is the intensity above which a turn is promoted to an
// important memory.
const strongEmotionMin = 0.7

// Manager is the process-scoped registry mapping persona keys to their
// memory aggregates. It is constructed once at startup and passed by
// handle to every consumer; there is no ambient global instance. Each
// aggregate carries its own lock, so sessions for different personas never
// contend.
type Manager struct {
	records   RecordStore
	tuning    Tuning
	scheduler *Scheduler

	mu     sync.Mutex // guards the registry map only
	stores map[string]*PersonaMemory
}

// NewManager creates the registry. records may be nil for a memory-only
// engine (used by tests and degraded operation); scheduler may be nil to
// disable evolution.
func NewManager(records RecordStore, tuning Tuning, scheduler *Scheduler) *Manager {
	if scheduler == nil {
		scheduler = NewScheduler(DefaultEvolutionPeriod, nil)
	}
	return &Manager{
		records:   records,
		tuning:    tuning,
		scheduler: scheduler,
		stores:    make(map[string]*PersonaMemory),
	}
}

// Persona returns the aggregate for a key, loading it from the record
// store on first access. A persona with no prior record starts empty at
// its trait baseline.
func (m *Manager) Persona(key string) *PersonaMemory {
	m.mu.Lock()
	defer m.mu.Unlock()

	if pm, ok := m.stores[key]; ok {
		return pm
	}
	pm := Open(key, m.records, m.tuning)
	m.stores[key] = pm
	return pm
}

// RecordInteraction ingests one conversation turn: the turn enters the
// short-term buffer, and user utterances additionally run through the
// extractor to update facts, topics, rapport, and important memories.
// It never fails; malformed input degrades to a plain recorded turn.
func (m *Manager) RecordInteraction(personaKey, utterance string, speaker Speaker) {
	pm := m.Persona(personaKey)

	pm.RecordTurn(ConversationTurn{Speaker: speaker, Text: utterance})

	if speaker != SpeakerUser {
		return
	}

	ext := Extract(utterance)
	for _, fact := range ext.Facts {
		pm.LearnFact(fact)
	}
	for _, topic := range ext.Topics {
		pm.NoteTopic(topic)
	}
	if ext.Emotion.Polarity != 0 {
		pm.AddRapportEvent(ext.Emotion.Polarity)
		if ext.Emotion.Intensity >= strongEmotionMin {
			tone := "positive"
			if ext.Emotion.Polarity < 0 {
				tone = "negative"
			}
			pm.AddImportantMemory(
				fmt.Sprintf("Strongly %s moment: %q", tone, previewText(utterance, 120)),
				ext.Emotion.Intensity,
			)
		}
	}
}

// OnCycleExit marks the end of one wake-to-sleep cycle for a persona:
// familiarity steps up, the evolution scheduler runs, and the aggregate is
// persisted at this checkpoint. Returns true when an evolution fired.
func (m *Manager) OnCycleExit(ctx context.Context, personaKey string) bool {
	pm := m.Persona(personaKey)
	pm.CompleteSession()
	evolved := m.scheduler.OnCycleExit(ctx, pm)
	_ = pm.Save() // degraded mode already logged inside
	return evolved
}

// Status returns the inspection summary for a persona.
func (m *Manager) Status(personaKey string) Status {
	return m.Persona(personaKey).Status()
}

// SaveAll flushes every loaded aggregate. Called at shutdown and by the
// auto-save timer; safe to run concurrently with foreground mutation.
func (m *Manager) SaveAll() error {
	m.mu.Lock()
	stores := make([]*PersonaMemory, 0, len(m.stores))
	for _, pm := range m.stores {
		stores = append(stores, pm)
	}
	m.mu.Unlock()

	var firstErr error
	for _, pm := range stores {
		if err := pm.Save(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// List returns every persona key with stored or in-memory state, sorted.
func (m *Manager) List() ([]string, error) {
	keys := make(map[string]struct{})

	if m.records != nil {
		stored, err := m.records.List()
		if err != nil {
			return nil, fmt.Errorf("memory: list personas: %w", err)
		}
		for _, k := range stored {
			keys[k] = struct{}{}
		}
	}

	m.mu.Lock()
	for k := range m.stores {
		keys[k] = struct{}{}
	}
	m.mu.Unlock()

	out := make([]string, 0, len(keys))
	for k := range keys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out, nil
}

// ClearShortTerm empties a persona's conversation buffer and persists the
// trimmed record.
func (m *Manager) ClearShortTerm(personaKey string) error {
	pm := m.Persona(personaKey)
	pm.ClearShortTerm()
	return pm.Save()
}

// Reset destroys a persona's memory entirely: the durable record is
// deleted and the in-process aggregate is discarded so the next access
// starts from the baseline. Destructive; callers gate it behind explicit
// confirmation.
func (m *Manager) Reset(personaKey string) error {
	m.mu.Lock()
	delete(m.stores, personaKey)
	m.mu.Unlock()

	if m.records == nil {
		return nil
	}
	if err := m.records.Delete(personaKey); err != nil {
		return fmt.Errorf("memory: reset %s: %w", personaKey, err)
	}
	return nil
}

func previewText(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
