// Package cli defines the Cobra command tree for the eidoid CLI.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// version, commit, date are set via -ldflags at build time.
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "eidoid",
	Short: "Persona memory and personality evolution engine",
	Long: `Eidoid gives conversational personas a persistent memory of the people
they talk to.

Each persona keeps a short-term conversation buffer, learns structured facts
about the user, tracks recurring topics and rapport, and slowly evolves its
personality traits across sessions. Memory survives restarts; a persona that
met you yesterday still knows you today.

Run 'eidoid session jarvis' to start talking.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute(v, c, d string) {
	version, commit, date = v, c, d
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(
		newSessionCmd(),
		newStatusCmd(),
		newViewCmd(),
		newListCmd(),
		newExportCmd(),
		newClearCmd(),
		newResetCmd(),
		newServeCmd(),
		newSetupCmd(),
		newVersionCmd(),
	)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("eidoid %s (commit %s, built %s)\n", version, commit, date)
		},
	}
}
