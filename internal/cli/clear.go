package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear <persona>",
		Short: "Empty a persona's short-term conversation buffer",
		Long: `Clear the short-term conversation buffer only. Facts, topics, important
memories, relationship state, and traits are untouched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := openEngine()
			if err != nil {
				return err
			}
			defer eng.close()

			if err := eng.manager.ClearShortTerm(args[0]); err != nil {
				return err
			}
			fmt.Printf("Cleared short-term buffer for %s.\n", args[0])
			return nil
		},
	}
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <persona>",
		Short: "Permanently delete ALL memory for a persona",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			persona := args[0]
			if !confirmPrompt(fmt.Sprintf("This will permanently delete ALL memory for %q. Continue?", persona)) {
				fmt.Println("Aborted.")
				return nil
			}

			eng, err := openEngine()
			if err != nil {
				return err
			}
			defer eng.close()

			if err := eng.manager.Reset(persona); err != nil {
				return err
			}
			fmt.Printf("Reset %s — next session starts from the baseline personality.\n", persona)
			return nil
		},
	}
}
