// Package cmd wires the blockfile command-line interface: global
// config/logging bootstrap plus the roots, index, search, preview, and
// capture command groups.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/not-ani/blockfile/cmd/capture"
	cfgcmd "github.com/not-ani/blockfile/cmd/config"
	"github.com/not-ani/blockfile/cmd/index"
	"github.com/not-ani/blockfile/cmd/preview"
	"github.com/not-ani/blockfile/cmd/roots"
	"github.com/not-ani/blockfile/cmd/search"
	"github.com/not-ani/blockfile/internal/config"
	"github.com/not-ani/blockfile/internal/logging"
)

// logManager is the global logging manager, created in init() and
// upgraded to file+JSON output once config has loaded.
var logManager *logging.Manager

var blockfileCmd = &cobra.Command{
	Use:   "blockfile",
	Short: "Index, search, and assemble DOCX sections",
	Long: "blockfile maintains a searchable index over a tree of DOCX documents and assembles derivative " +
		"\"capture\" documents by copying heading-delimited sections from source files while preserving " +
		"their original formatting.\n\n" +
		"Register a root with \"blockfile roots add\", run \"blockfile index\" to build the index, then use " +
		"\"blockfile search\" and \"blockfile capture insert\" against it.",
	PersistentPreRunE: runInitialize,
}

func init() {
	logManager = logging.NewManager()
	slog.SetDefault(logManager.Logger())

	blockfileCmd.AddCommand(roots.RootsCmd)
	blockfileCmd.AddCommand(index.IndexCmd)
	blockfileCmd.AddCommand(search.SearchCmd)
	blockfileCmd.AddCommand(preview.PreviewCmd)
	blockfileCmd.AddCommand(capture.CaptureCmd)
	blockfileCmd.AddCommand(cfgcmd.ConfigCmd)
}

func runInitialize(cmd *cobra.Command, args []string) error {
	logger := logManager.Logger()

	if err := config.Init(); err != nil {
		return err
	}

	cfg := config.Get()
	logFile := config.ExpandPath(cfg.LogFile)
	level, ok := logging.ParseLevel(cfg.LogLevel)
	if !ok {
		level = logging.DefaultLevel
		if cfg.LogLevel != "" {
			logger.Warn("invalid log level configured, using default", "configured", cfg.LogLevel, "default", "info")
		}
	}

	if err := logManager.Upgrade(logFile, level); err != nil {
		logger.Warn("failed to enable file logging, continuing with stderr only", "error", err)
	}

	return nil
}

// Execute runs the blockfile root command.
func Execute() error {
	blockfileCmd.SilenceErrors = true
	blockfileCmd.SilenceUsage = true

	defer func() { _ = logManager.Close() }()

	err := blockfileCmd.Execute()
	if err != nil {
		found, _, _ := blockfileCmd.Find(os.Args[1:])
		if found == nil {
			found = blockfileCmd
		}

		fmt.Printf("Error: %v\n", err)
		if !found.SilenceUsage {
			fmt.Printf("\n")
			found.SetOut(os.Stdout)
			_ = found.Usage()
		}

		return err
	}

	return nil
}
