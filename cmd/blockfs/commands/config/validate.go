package config

import (
	"fmt"

	"github.com/marmos91/blockfs/pkg/config"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate the blockfs configuration file.

Checks for syntax errors, missing required fields, and invalid values.

Examples:
  blockfs config validate
  blockfs config validate --config /etc/blockfs/config.yaml`,
	RunE: runConfigValidate,
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.MustLoad(configPath)
	if err != nil {
		return err
	}

	displayPath := configPath
	if displayPath == "" {
		displayPath = config.GetDefaultConfigPath()
		if !config.DefaultConfigExists() {
			displayPath += " (not found, using defaults)"
		}
	}

	var warnings []string
	if cfg.Compat.LeakBlocksOnRemove {
		warnings = append(warnings, "compat.leak_blocks_on_remove is set - removed files keep their blocks")
	}
	if cfg.Image.Backend == "memory" {
		warnings = append(warnings, "image.backend is memory - images are lost on exit")
	}
	if cfg.Image.Backend == "s3" && cfg.Image.S3.AccessKeyID == "" {
		warnings = append(warnings, "no S3 credentials configured - using the default AWS credential chain")
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file: %s\n", displayPath)
	_, _ = fmt.Fprintln(out, "Validation: OK")

	if len(warnings) > 0 {
		_, _ = fmt.Fprintln(out, "\nWarnings:")
		for _, w := range warnings {
			_, _ = fmt.Fprintf(out, "  - %s\n", w)
		}
	}

	g := cfg.Disk.Geometry()
	_, _ = fmt.Fprintf(out, "\nConfiguration summary:\n")
	_, _ = fmt.Fprintf(out, "  Disk:          %d blocks x %s\n", g.TotalBlocks, cfg.Disk.BlockSize)
	_, _ = fmt.Fprintf(out, "  Image:         %s (%s)\n", cfg.Image.Name, cfg.Image.Backend)
	_, _ = fmt.Fprintf(out, "  Log level:     %s\n", cfg.Logging.Level)
	return nil
}
