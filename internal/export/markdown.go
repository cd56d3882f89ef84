package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tienhdsn-000001/eidoid-pet-robot/internal/memory"
)

// MarkdownExporter renders a persona's memory as readable markdown.
type MarkdownExporter struct{}

func (e *MarkdownExporter) Export(data ExportData) (string, error) {
	snap := data.Snapshot

	var b strings.Builder
	fmt.Fprintf(&b, "# Persona: %s\n\n", snap.PersonaKey)

	fmt.Fprintf(&b, "## Relationship\n\n")
	fmt.Fprintf(&b, "| Interactions | %d |\n", snap.Relationship.InteractionCount)
	fmt.Fprintf(&b, "| Familiarity | %d/100 |\n", snap.Relationship.Familiarity)
	fmt.Fprintf(&b, "| Evolutions | %d |\n", snap.EvolutionCount)
	b.WriteString("\n")

	if len(snap.Traits) > 0 {
		b.WriteString("## Traits\n\n")
		for _, trait := range memory.AllTraits {
			if v, ok := snap.Traits[trait]; ok {
				fmt.Fprintf(&b, "- %s: %.2f\n", trait, v)
			}
		}
		b.WriteString("\n")
	}

	if len(snap.Facts) > 0 {
		b.WriteString("## Facts\n\n")
		for _, f := range snap.Facts {
			fmt.Fprintf(&b, "- %s (%s, confidence %.2f, seen %d time(s))\n",
				f.Text, f.Category, f.Confidence, f.ReinforcementCount)
		}
		b.WriteString("\n")
	}

	if len(snap.Topics) > 0 {
		b.WriteString("## Topics\n\n")
		labels := make([]string, 0, len(snap.Topics))
		for label := range snap.Topics {
			labels = append(labels, string(label))
		}
		sort.Strings(labels)
		for _, label := range labels {
			fmt.Fprintf(&b, "- %s (%d)\n", label, snap.Topics[memory.TopicLabel(label)])
		}
		b.WriteString("\n")
	}

	if len(snap.ImportantMemories) > 0 {
		b.WriteString("## Important Memories\n\n")
		for _, m := range snap.ImportantMemories {
			fmt.Fprintf(&b, "- %s (weight %.2f, %s)\n",
				m.Content, m.Weight, m.Timestamp.Format("2006-01-02"))
		}
		b.WriteString("\n")
	}

	return b.String(), nil
}
