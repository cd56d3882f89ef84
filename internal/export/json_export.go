package export

import (
	"encoding/json"
	"time"
)

// JSONExporter renders ExportData as structured JSON.
type JSONExporter struct{}

type jsonOutput struct {
	Persona      string             `json:"persona"`
	Relationship jsonRelationship   `json:"relationship"`
	Traits       map[string]float64 `json:"traits"`
	Facts        []jsonFact         `json:"facts"`
	Topics       map[string]int     `json:"topics"`
	Memories     []jsonMemory       `json:"important_memories"`
	Evolutions   int                `json:"evolution_count"`
	SavedAt      time.Time          `json:"saved_at"`
}

type jsonRelationship struct {
	InteractionCount int `json:"interaction_count"`
	Familiarity      int `json:"familiarity"`
}

type jsonFact struct {
	Text          string    `json:"text"`
	Category      string    `json:"category"`
	Confidence    float64   `json:"confidence"`
	Reinforcement int       `json:"reinforcement_count"`
	LastSeen      time.Time `json:"last_seen"`
}

type jsonMemory struct {
	Content   string    `json:"content"`
	Weight    float64   `json:"weight"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *JSONExporter) Export(data ExportData) (string, error) {
	snap := data.Snapshot

	traits := make(map[string]float64, len(snap.Traits))
	for trait, value := range snap.Traits {
		traits[string(trait)] = value
	}

	facts := make([]jsonFact, 0, len(snap.Facts))
	for _, f := range snap.Facts {
		facts = append(facts, jsonFact{
			Text:          f.Text,
			Category:      string(f.Category),
			Confidence:    f.Confidence,
			Reinforcement: f.ReinforcementCount,
			LastSeen:      f.LastSeen,
		})
	}

	topics := make(map[string]int, len(snap.Topics))
	for label, count := range snap.Topics {
		topics[string(label)] = count
	}

	memories := make([]jsonMemory, 0, len(snap.ImportantMemories))
	for _, m := range snap.ImportantMemories {
		memories = append(memories, jsonMemory{
			Content:   m.Content,
			Weight:    m.Weight,
			Timestamp: m.Timestamp,
		})
	}

	out := jsonOutput{
		Persona: snap.PersonaKey,
		Relationship: jsonRelationship{
			InteractionCount: snap.Relationship.InteractionCount,
			Familiarity:      snap.Relationship.Familiarity,
		},
		Traits:     traits,
		Facts:      facts,
		Topics:     topics,
		Memories:   memories,
		Evolutions: snap.EvolutionCount,
		SavedAt:    snap.SavedAt,
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b) + "\n", nil
}
