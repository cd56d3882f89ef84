package memory

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// familiarityTier maps the 0-100 familiarity scale to a label.
func familiarityTier(familiarity int) string {
	switch {
	case familiarity < 20:
		return "new acquaintance"
	case familiarity < 50:
		return "familiar"
	case familiarity < 80:
		return "well-known"
	default:
		return "close companion"
	}
}

const turnPreviewLimit = 300

// RenderShortTermContext renders the conversation buffer in chronological
// order, oldest first. Empty buffer renders to an empty string.
func (pm *PersonaMemory) RenderShortTermContext() string {
	pm.mu.Lock()
	turns := append([]ConversationTurn(nil), pm.turns...)
	pm.mu.Unlock()

	if len(turns) == 0 {
		return ""
	}

	var b strings.Builder
	for _, turn := range turns {
		b.WriteString(FormatTurn(turn))
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatTurn renders one buffered turn as a single "Role: text" line,
// clipping very long turns.
func FormatTurn(turn ConversationTurn) string {
	role := "User"
	if turn.Speaker == SpeakerAssistant {
		role = "Assistant"
	}
	text := turn.Text
	if len(text) > turnPreviewLimit {
		text = text[:turnPreviewLimit] + "…"
	}
	return role + ": " + text
}

// RenderLongTermContext produces the deterministic long-term summary:
// relationship line, top facts by confidence, top topics by count, and
// traits that have drifted from their baseline. Truncation to maxChars
// drops whole sections from the end (traits first, then topics, then
// facts) so the output is always well-formed.
func (pm *PersonaMemory) RenderLongTermContext(maxChars int) string {
	pm.mu.Lock()
	snap := pm.snapshotLocked()
	pm.mu.Unlock()

	sections := []string{
		renderRelationship(snap.Relationship),
		renderFacts(snap.Facts, pm.tuning.TopFacts),
		renderTopics(snap.Topics, pm.tuning.TopTopics),
		renderTraits(pm.key, snap.Traits, pm.tuning.TraitDeviationMin),
	}

	// Drop empty sections, keeping priority order.
	kept := sections[:0]
	for _, s := range sections {
		if s != "" {
			kept = append(kept, s)
		}
	}

	out := strings.Join(kept, "\n\n")
	for maxChars > 0 && len(out) > maxChars && len(kept) > 1 {
		kept = kept[:len(kept)-1]
		out = strings.Join(kept, "\n\n")
	}
	if maxChars > 0 && len(out) > maxChars {
		out = out[:maxChars]
	}
	return out
}

func renderRelationship(rel Relationship) string {
	if rel.InteractionCount == 0 {
		return ""
	}
	return fmt.Sprintf("Interactions so far: %d\nRelationship: %s",
		rel.InteractionCount, familiarityTier(rel.Familiarity))
}

func renderFacts(facts []Fact, topN int) string {
	if len(facts) == 0 {
		return ""
	}
	sorted := append([]Fact(nil), facts...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Confidence != sorted[j].Confidence {
			return sorted[i].Confidence > sorted[j].Confidence
		}
		return sorted[i].LastSeen.After(sorted[j].LastSeen)
	})
	if len(sorted) > topN {
		sorted = sorted[:topN]
	}

	var b strings.Builder
	b.WriteString("Known facts about the user:")
	for _, f := range sorted {
		fmt.Fprintf(&b, "\n  - %s", f.Text)
	}
	return b.String()
}

func renderTopics(topics map[TopicLabel]int, topK int) string {
	if len(topics) == 0 {
		return ""
	}
	type tc struct {
		label TopicLabel
		count int
	}
	sorted := make([]tc, 0, len(topics))
	for label, count := range topics {
		sorted = append(sorted, tc{label, count})
	}
	// Alphabetical tie-break keeps the summary deterministic.
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].count != sorted[j].count {
			return sorted[i].count > sorted[j].count
		}
		return sorted[i].label < sorted[j].label
	})
	if len(sorted) > topK {
		sorted = sorted[:topK]
	}

	labels := make([]string, len(sorted))
	for i, t := range sorted {
		labels[i] = string(t.label)
	}
	return "Frequent topics: " + strings.Join(labels, ", ")
}

func renderTraits(personaKey string, traits TraitVector, deviationMin float64) string {
	baseline := BaselineTraits(personaKey)

	var lines []string
	for _, trait := range AllTraits {
		value, ok := traits[trait]
		if !ok {
			continue
		}
		if math.Abs(value-baseline[trait]) <= deviationMin {
			continue
		}
		strength := "slightly"
		switch {
		case value > 0.7:
			strength = "strongly"
		case value > 0.4:
			strength = "moderately"
		}
		lines = append(lines, fmt.Sprintf("  - %s %s", strength, trait))
	}
	if len(lines) == 0 {
		return ""
	}
	return "Developed personality traits:\n" + strings.Join(lines, "\n")
}
