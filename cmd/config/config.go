// Package config implements the config command group: write a default
// configuration file to disk.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/not-ani/blockfile/internal/config"
)

// ConfigCmd is the parent command for config subcommands.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the blockfile configuration file",
}

var force bool

func init() {
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	ConfigCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration file",
	Args:  cobra.NoArgs,
	RunE:  runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	path := config.DefaultConfigPath()
	if !force {
		if _, err := os.Stat(config.ExpandPath(path)); err == nil {
			return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
		}
	}

	if err := config.WriteDefault(); err != nil {
		return fmt.Errorf("write default config; %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote default config to %s\n", path)
	return nil
}
