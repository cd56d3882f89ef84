package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <persona>",
		Short: "Show a persona's relationship state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := openEngine()
			if err != nil {
				return err
			}
			defer eng.close()

			persona := args[0]
			st := eng.manager.Status(persona)
			pm := eng.manager.Persona(persona)
			snap := pm.Snapshot()

			fmt.Printf("\nPersona:      %s\n", st.Persona)
			fmt.Printf("Interactions: %d\n", st.InteractionCount)
			fmt.Printf("Familiarity:  %d/100\n", st.Familiarity)
			fmt.Printf("Evolutions:   %d\n", st.EvolutionCount)
			fmt.Printf("Facts:        %d\n", len(snap.Facts))
			fmt.Printf("Memories:     %d important\n", len(snap.ImportantMemories))
			if !snap.LastInteraction.IsZero() {
				fmt.Printf("Last seen:    %s\n", snap.LastInteraction.Format("2006-01-02 15:04"))
			}

			// DB file size.
			if fi, err := os.Stat(eng.cfg.DBPath()); err == nil {
				fmt.Printf("DB size:      %s\n", formatBytes(fi.Size()))
			}
			fmt.Println()
			return nil
		},
	}
}

func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
