package cli

import (
	"github.com/spf13/cobra"

	"github.com/tienhdsn-000001/eidoid-pet-robot/internal/mcp"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve persona memory tools over MCP (stdio)",
		Long: `Expose the memory engine to external assistants as MCP tools:
persona_status, persona_context, remember_fact, record_interaction,
list_personas.

Stdout carries the MCP transport; diagnostics go to stderr.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := openEngine()
			if err != nil {
				return err
			}
			defer eng.close()

			server := mcp.NewServer(eng.manager, eng.renderer, eng.contextOptions())
			return server.Serve(version)
		},
	}
}
