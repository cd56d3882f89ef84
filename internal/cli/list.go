package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every persona with stored memory",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := openEngine()
			if err != nil {
				return err
			}
			defer eng.close()

			keys, err := eng.manager.List()
			if err != nil {
				return err
			}
			if len(keys) == 0 {
				fmt.Println("No personas stored. Run `eidoid session jarvis` to start one.")
				return nil
			}

			fmt.Printf("Personas (%d):\n\n", len(keys))
			for _, key := range keys {
				st := eng.manager.Status(key)
				fmt.Printf("  %-12s %4d interactions, familiarity %3d/100, %d evolutions\n",
					key, st.InteractionCount, st.Familiarity, st.EvolutionCount)
			}
			return nil
		},
	}
}
