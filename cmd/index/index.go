// Package index implements the index command: run index_root against
// a registered root and report progress as it goes.
package index

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	blockfile "github.com/not-ani/blockfile"
	"github.com/not-ani/blockfile/internal/config"
	"github.com/not-ani/blockfile/internal/progress"
	"github.com/not-ani/blockfile/internal/watch"
)

var (
	quiet      bool
	watchFlag  bool
	watchDelay time.Duration
)

// IndexCmd runs index_root for a registered root.
var IndexCmd = &cobra.Command{
	Use:   "index <path>",
	Short: "Index a DOCX root",
	Long: "Walk a root, parse changed DOCX files, and commit the resulting headings and authors " +
		"into the index, removing rows for files that disappeared.\n\n" +
		"With --watch, keeps running and reindexes after each burst of filesystem activity settles, " +
		"until interrupted.",
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	IndexCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress progress output")
	IndexCmd.Flags().BoolVar(&watchFlag, "watch", false, "Keep running and reindex on filesystem changes")
	IndexCmd.Flags().DurationVar(&watchDelay, "watch-debounce", 500*time.Millisecond, "Quiet period before a watched burst triggers a reindex")
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := config.Get()

	svc, err := blockfile.New(ctx, config.ExpandPath(cfg.Storage.DatabasePath), nil)
	if err != nil {
		return err
	}
	defer svc.Close()

	out := cmd.OutOrStdout()
	var sink progress.Sink
	if !quiet {
		sink = progress.SinkFunc(func(s progress.Snapshot) {
			fmt.Fprintf(out, "[%s] discovered=%d changed=%d processed=%d updated=%d skipped=%d removed=%d\n",
				s.Phase, s.Discovered, s.Changed, s.Processed, s.Updated, s.Skipped, s.Removed)
		})
	}

	runOnce := func() error {
		result, err := svc.IndexRoot(ctx, args[0], sink)
		if err != nil {
			return fmt.Errorf("index root; %w", err)
		}
		fmt.Fprintf(out, "Indexed %s: scanned=%d updated=%d skipped=%d removed=%d headings=%d (%dms)\n",
			args[0], result.Scanned, result.Updated, result.Skipped, result.Removed, result.HeadingsExtracted, result.ElapsedMs)
		return nil
	}

	if err := runOnce(); err != nil {
		return err
	}
	if !watchFlag {
		return nil
	}

	watchCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(out, "Watching %s for changes (ctrl-c to stop)...\n", args[0])
	return watch.Run(watchCtx, args[0], watchDelay, runOnce)
}
