// Package memory implements the per-persona memory and personality
// evolution engine: bounded working memory, fact learning with
// reinforcement, topic tracking, and convex trait updates.
package memory

import "time"

// FactCategory classifies a learned fact about the user.
type FactCategory string

const (
	CategoryName       FactCategory = "name"
	CategoryLocation   FactCategory = "location"
	CategoryOccupation FactCategory = "occupation"
	CategoryLike       FactCategory = "like"
	CategoryDislike    FactCategory = "dislike"
	CategoryFavorite   FactCategory = "favorite"
	CategoryPossession FactCategory = "possession"
	CategoryGoal       FactCategory = "goal"
	CategoryIntent     FactCategory = "intent"
)

// ValidFactCategory returns true if c is a recognised fact category.
func ValidFactCategory(c FactCategory) bool {
	switch c {
	case CategoryName, CategoryLocation, CategoryOccupation, CategoryLike,
		CategoryDislike, CategoryFavorite, CategoryPossession, CategoryGoal,
		CategoryIntent:
		return true
	}
	return false
}

// Fact is a single structured piece of learned information about the user.
// Facts are unique per (Category, normalised Text); re-learning an existing
// fact reinforces it instead of duplicating it.
type Fact struct {
	Text               string       `json:"text"`
	Category           FactCategory `json:"category"`
	Confidence         float64      `json:"confidence"`
	ReinforcementCount int          `json:"reinforcement_count"`
	LastSeen           time.Time    `json:"last_seen"`
}

// TopicLabel names a conversation topic from the closed topic table.
type TopicLabel string

const (
	TopicTechnology    TopicLabel = "technology"
	TopicWeather       TopicLabel = "weather"
	TopicEntertainment TopicLabel = "entertainment"
	TopicWork          TopicLabel = "work"
	TopicPersonal      TopicLabel = "personal"
	TopicHealth        TopicLabel = "health"
	TopicFood          TopicLabel = "food"
	TopicTravel        TopicLabel = "travel"
	TopicLearning      TopicLabel = "learning"
	TopicHobbies       TopicLabel = "hobbies"
)

// ImportantMemory records an emotionally or narratively significant moment,
// distinct from routine conversation turns.
type ImportantMemory struct {
	Content   string    `json:"content"`
	Weight    float64   `json:"weight"`
	Timestamp time.Time `json:"timestamp"`
}

// Speaker identifies who produced a conversation turn.
type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// ConversationTurn lives only in the short-term buffer. Turns are never
// persisted beyond the buffer window.
type ConversationTurn struct {
	Speaker   Speaker   `json:"speaker"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// RapportEvent marks a positive or negative moment with the user.
type RapportEvent struct {
	Polarity  int       `json:"polarity"` // +1 or -1
	Timestamp time.Time `json:"timestamp"`
}

// Relationship tracks how well the persona knows the user. Familiarity is
// derived from completed sessions and saturates at 100; it is never set
// directly.
type Relationship struct {
	InteractionCount int            `json:"interaction_count"`
	Familiarity      int            `json:"familiarity"`
	RapportEvents    []RapportEvent `json:"rapport_events,omitempty"`
}

// Trait names one dimension of a persona's personality.
type Trait string

const (
	TraitEnthusiasm        Trait = "enthusiasm"
	TraitWarmth            Trait = "warmth"
	TraitHumor             Trait = "humor"
	TraitFormality         Trait = "formality"
	TraitDetailOrientation Trait = "detail_orientation"
	TraitCuriosity         Trait = "curiosity"
)

// AllTraits lists the closed trait set in render order.
var AllTraits = []Trait{
	TraitEnthusiasm, TraitWarmth, TraitHumor,
	TraitFormality, TraitDetailOrientation, TraitCuriosity,
}

// ValidTrait returns true if t is a recognised trait.
func ValidTrait(t Trait) bool {
	for _, known := range AllTraits {
		if t == known {
			return true
		}
	}
	return false
}

// TraitVector maps each trait to its current strength in [0,1].
type TraitVector map[Trait]float64

// Clone returns an independent copy of the vector.
func (v TraitVector) Clone() TraitVector {
	out := make(TraitVector, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}

// Emotion is the sentiment reading for one utterance.
type Emotion struct {
	Polarity  int     `json:"polarity"` // -1, 0, +1
	Intensity float64 `json:"intensity"`
}

// Status summarises a persona's memory for inspection tooling.
type Status struct {
	Persona          string `json:"persona"`
	InteractionCount int    `json:"interaction_count"`
	Familiarity      int    `json:"familiarity"`
	EvolutionCount   int    `json:"evolution_count"`
}

// Snapshot is the persisted form of a persona's aggregate. Unknown fields
// are ignored on load and missing fields default to empty, so old records
// remain readable as the schema grows.
type Snapshot struct {
	PersonaKey        string             `json:"persona_key"`
	Turns             []ConversationTurn `json:"turns,omitempty"`
	Facts             []Fact             `json:"facts,omitempty"`
	Topics            map[TopicLabel]int `json:"topics,omitempty"`
	ImportantMemories []ImportantMemory  `json:"important_memories,omitempty"`
	Relationship      Relationship       `json:"relationship"`
	Traits            TraitVector        `json:"traits,omitempty"`
	EvolutionCount    int                `json:"evolution_count"`
	CycleExits        int                `json:"cycle_exits"`
	LastInteraction   time.Time          `json:"last_interaction"`
	SavedAt           time.Time          `json:"saved_at"`
}
