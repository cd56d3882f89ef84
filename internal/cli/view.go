package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/tienhdsn-000001/eidoid-pet-robot/internal/memory"
)

func newViewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "view <persona>",
		Short: "Show everything a persona remembers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := openEngine()
			if err != nil {
				return err
			}
			defer eng.close()

			pm := eng.manager.Persona(args[0])
			snap := pm.Snapshot()

			fmt.Printf("\n=== %s ===\n\n", snap.PersonaKey)
			fmt.Printf("Relationship: %d interactions, familiarity %d/100, %d evolutions\n\n",
				snap.Relationship.InteractionCount, snap.Relationship.Familiarity, snap.EvolutionCount)

			fmt.Println("Traits:")
			for _, trait := range memory.AllTraits {
				if v, ok := snap.Traits[trait]; ok {
					fmt.Printf("  %-20s %.2f %s\n", trait, v, traitBar(v))
				}
			}

			if facts := pm.Facts(); len(facts) > 0 {
				fmt.Printf("\nFacts (%d):\n", len(facts))
				for _, f := range facts {
					fmt.Printf("  [%-10s] %s (confidence %.2f, seen %d time(s))\n",
						f.Category, f.Text, f.Confidence, f.ReinforcementCount)
				}
			}

			if len(snap.Topics) > 0 {
				labels := make([]string, 0, len(snap.Topics))
				for label := range snap.Topics {
					labels = append(labels, string(label))
				}
				sort.Slice(labels, func(i, j int) bool {
					a, b := snap.Topics[memory.TopicLabel(labels[i])], snap.Topics[memory.TopicLabel(labels[j])]
					if a != b {
						return a > b
					}
					return labels[i] < labels[j]
				})
				fmt.Printf("\nTopics:\n")
				for _, label := range labels {
					fmt.Printf("  %-15s %d\n", label, snap.Topics[memory.TopicLabel(label)])
				}
			}

			if len(snap.ImportantMemories) > 0 {
				fmt.Printf("\nImportant memories (%d):\n", len(snap.ImportantMemories))
				for _, m := range snap.ImportantMemories {
					fmt.Printf("  [%.2f] %s (%s)\n", m.Weight, m.Content, m.Timestamp.Format("2006-01-02"))
				}
			}

			if len(snap.Turns) > 0 {
				fmt.Printf("\nRecent conversation (%d turns):\n", len(snap.Turns))
				for _, turn := range snap.Turns {
					fmt.Printf("  %s\n", memory.FormatTurn(turn))
				}
			}

			fmt.Println()
			return nil
		},
	}
}

// traitBar draws a ten-step bar for a [0,1] trait value.
func traitBar(v float64) string {
	filled := int(v*10 + 0.5)
	if filled > 10 {
		filled = 10
	}
	bar := ""
	for i := 0; i < 10; i++ {
		if i < filled {
			bar += "█"
		} else {
			bar += "░"
		}
	}
	return bar
}
