package commands

import (
	"errors"
	"fmt"

	"github.com/marmos91/blockfs/internal/cli/output"
	"github.com/marmos91/blockfs/internal/cli/prompt"
	"github.com/marmos91/blockfs/internal/logger"
	"github.com/marmos91/blockfs/pkg/config"
	"github.com/marmos91/blockfs/pkg/disk"
	"github.com/spf13/cobra"
)

var formatForce bool

var formatCmd = &cobra.Command{
	Use:   "format",
	Short: "Write a blank disk image",
	Long: `Write a zeroed disk image with the configured geometry.

An existing image is only replaced after confirmation, or with --force.

Examples:
  # Format the default image
  blockfs format

  # Format a named image without asking
  blockfs format --image scratch.bin --force`,
	RunE: runFormat,
}

func init() {
	formatCmd.Flags().BoolVarP(&formatForce, "force", "f", false, "Overwrite an existing image without confirmation")
}

func runFormat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := InitLogger(cfg); err != nil {
		return err
	}

	ctx := cmd.Context()
	p := output.NewPrinter(cmd.OutOrStdout(), output.FormatTable, cfg.Shell.Color)

	store, err := config.CreateImageStore(ctx, cfg.Image, nil)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	name := cfg.Image.Name
	exists, err := store.Exists(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to check image %q: %w", name, err)
	}
	if exists {
		ok, err := prompt.ConfirmWithForce(fmt.Sprintf("Image '%s' exists. Overwrite", name), formatForce)
		if errors.Is(err, prompt.ErrAborted) || (err == nil && !ok) {
			p.Warning("Aborted.")
			return nil
		}
		if err != nil {
			return err
		}
	}

	g := cfg.Disk.Geometry()
	d, err := disk.NewWithGeometry(g)
	if err != nil {
		return err
	}
	if err := store.Save(ctx, name, d.Image()); err != nil {
		return fmt.Errorf("failed to write image %q: %w", name, err)
	}

	logger.Debug("image formatted", logger.KeyImage, name, "block_size", g.BlockSize, "total_blocks", g.TotalBlocks)
	p.Success(fmt.Sprintf("Formatted '%s': %d blocks of %d bytes.", name, g.TotalBlocks, g.BlockSize))
	return nil
}
