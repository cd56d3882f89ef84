package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/tienhdsn-000001/eidoid-pet-robot/internal/export"
)

func newExportCmd() *cobra.Command {
	var (
		format string
		all    bool
		outDir string
	)

	cmd := &cobra.Command{
		Use:   "export [persona]",
		Short: "Export persona memory as JSON or markdown",
		Long: `Render a persona's memory in a portable format.
Single-persona output goes to stdout — pipe it to a file.

Examples:
  eidoid export jarvis --format json > jarvis.json
  eidoid export jarvis --format markdown
  eidoid export --all --format json --out ./backup`,
		RunE: func(cmd *cobra.Command, args []string) error {
			exporter, ok := export.Get(strings.ToLower(format))
			if !ok {
				return fmt.Errorf("unknown format %q; valid formats: %s",
					format, strings.Join(export.ValidFormats(), ", "))
			}

			eng, err := openEngine()
			if err != nil {
				return err
			}
			defer eng.close()

			if all {
				return exportAll(eng, exporter, strings.ToLower(format), outDir)
			}

			if len(args) != 1 {
				return fmt.Errorf("persona name required (or use --all)")
			}

			pm := eng.manager.Persona(args[0])
			output, err := exporter.Export(export.ExportData{
				Snapshot: pm.Snapshot(),
				Status:   pm.Status(),
			})
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}

			_, err = os.Stdout.WriteString(output)
			return err
		},
	}

	cmd.Flags().StringVar(&format, "format", "markdown", "output format: json, markdown")
	cmd.Flags().BoolVar(&all, "all", false, "export every stored persona to files")
	cmd.Flags().StringVar(&outDir, "out", ".", "output directory for --all")

	return cmd
}

// exportAll writes one file per stored persona into outDir.
func exportAll(eng *engine, exporter export.Exporter, format, outDir string) error {
	keys, err := eng.manager.List()
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		fmt.Println("No personas stored.")
		return nil
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	ext := ".md"
	if format == "json" {
		ext = ".json"
	}

	bar := progressbar.NewOptions(len(keys),
		progressbar.OptionSetDescription("  Exporting personas"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish(),
	)

	for _, key := range keys {
		pm := eng.manager.Persona(key)
		output, err := exporter.Export(export.ExportData{
			Snapshot: pm.Snapshot(),
			Status:   pm.Status(),
		})
		if err != nil {
			return fmt.Errorf("export %s: %w", key, err)
		}

		path := filepath.Join(outDir, key+ext)
		if err := os.WriteFile(path, []byte(output), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		_ = bar.Add(1)
	}

	fmt.Printf("Exported %d personas to %s\n", len(keys), outDir)
	return nil
}
