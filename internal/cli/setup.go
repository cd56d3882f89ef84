package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tienhdsn-000001/eidoid-pet-robot/internal/config"
)

func newSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Interactive first-time configuration",
		Long:  "Configure the model provider, API key, and memory location for eidoid.",
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(os.Stdin)

			fmt.Println("Welcome to eidoid! Let's set up your personas.")
			fmt.Println()

			cfg := config.Default()

			// Step 1: Choose the model provider.
			fmt.Println("Which model should personas talk through?")
			fmt.Println("  [1] Claude (Anthropic)")
			fmt.Println("  [2] OpenAI")
			fmt.Println("  [3] None — record memory only")
			fmt.Print("> ")

			switch strings.TrimSpace(readLineBuf(reader)) {
			case "1":
				cfg.Model.Provider = "anthropic"
				fmt.Print("Enter your Anthropic API key (or press Enter to set ANTHROPIC_API_KEY later): ")
				if key := readLineBuf(reader); key != "" {
					cfg.Model.AnthropicKey = key
				}
			case "2":
				cfg.Model.Provider = "openai"
				fmt.Print("Enter your OpenAI API key (or press Enter to set OPENAI_API_KEY later): ")
				if key := readLineBuf(reader); key != "" {
					cfg.Model.OpenAIKey = key
				}
			case "3":
				cfg.Model.Provider = "anthropic" // resolved at session time; no key means memory-only
			default:
				fmt.Println("Unrecognized choice; defaulting to Claude.")
				cfg.Model.Provider = "anthropic"
			}

			fmt.Println()

			// Step 2: Memory location.
			fmt.Printf("Memory directory (press Enter for %s): ", cfg.MemoryDir)
			if dir := readLineBuf(reader); dir != "" {
				cfg.MemoryDir = dir
			}

			fmt.Println()

			if err := config.Save(cfg); err != nil {
				return fmt.Errorf("save config: %w", err)
			}

			path, _ := config.Path()
			fmt.Printf("Configuration saved to %s\n", path)
			fmt.Println("Run `eidoid session jarvis` to start talking.")

			return nil
		},
	}
}
