// Package commands implements the blockfs command line.
package commands

import (
	"github.com/marmos91/blockfs/cmd/blockfs/commands/config"
	"github.com/spf13/cobra"
)

var (
	// Version information injected at build time.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"

	// Global flags.
	cfgFile   string
	imageName string
)

var rootCmd = &cobra.Command{
	Use:   "blockfs",
	Short: "blockfs - a simulated block filesystem",
	Long: `blockfs simulates a tiny filesystem on top of a fixed-size block device:
a free-block bitmap, an inode table and a directory tree, driven from an
interactive shell. The raw disk image can be persisted to a local file,
a BadgerDB database or an S3 bucket.

Use "blockfs [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/blockfs/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&imageName, "image", "", "image name (overrides image.name)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(formatCmd)
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(config.Cmd)
	rootCmd.AddCommand(completionCmd)

	// Hide the default completion command (we provide our own)
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// GetConfigFile returns the config file path from the global flag.
func GetConfigFile() string {
	return cfgFile
}
