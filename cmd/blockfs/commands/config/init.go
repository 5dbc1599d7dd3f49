package config

import (
	"fmt"

	"github.com/marmos91/blockfs/pkg/config"
	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a default configuration file",
	Long: `Write the default blockfs configuration.

By default the file is created at $XDG_CONFIG_HOME/blockfs/config.yaml.
Use --config to choose another path.

Examples:
  blockfs config init
  blockfs config init --config ./blockfs.yaml --force`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Force overwrite existing config file")
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")

	path, err := config.InitConfig(configPath, initForce)
	if err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Configuration file created at: %s\n", path)
	_, _ = fmt.Fprintln(out, "\nNext steps:")
	_, _ = fmt.Fprintln(out, "  1. Edit the configuration file to choose the disk geometry and image backend")
	_, _ = fmt.Fprintln(out, "  2. Start the shell with: blockfs shell")
	_, _ = fmt.Fprintf(out, "  3. Or specify the config: blockfs shell --config %s\n", path)
	return nil
}
