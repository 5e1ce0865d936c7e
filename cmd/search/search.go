// Package search implements the search command: run search_index
// against the hybrid BM25/LIKE/fuzzy engine and print ranked hits.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	blockfile "github.com/not-ani/blockfile"
	"github.com/not-ani/blockfile/internal/config"
)

var (
	rootFlag  string
	limitFlag int
)

// SearchCmd runs search_index for a query.
var SearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the index for headings, authors, and file paths",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	SearchCmd.Flags().StringVar(&rootFlag, "root", "", "Scope the search to one registered root")
	SearchCmd.Flags().IntVar(&limitFlag, "limit", 0, "Maximum number of hits (0 uses the configured default)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := config.Get()

	svc, err := blockfile.New(ctx, config.ExpandPath(cfg.Storage.DatabasePath), nil)
	if err != nil {
		return err
	}
	defer svc.Close()

	limit := limitFlag
	if limit == 0 {
		limit = cfg.Search.DefaultLimit
	}

	query := strings.Join(args, " ")
	hits, err := svc.SearchIndex(ctx, query, rootFlag, limit)
	if err != nil {
		return fmt.Errorf("search index; %w", err)
	}

	out := cmd.OutOrStdout()
	if len(hits) == 0 {
		fmt.Fprintln(out, "No results.")
		return nil
	}

	for _, h := range hits {
		switch h.Kind {
		case "heading":
			fmt.Fprintf(out, "[heading] %s (order %d, level %d, score %.1f) — %s\n", h.Text, h.Order, h.Level, h.Score, h.RelativePath)
		case "author":
			fmt.Fprintf(out, "[author]  %s (score %.1f) — %s\n", h.Text, h.Score, h.RelativePath)
		default:
			fmt.Fprintf(out, "[file]    %s (score %.1f)\n", h.RelativePath, h.Score)
		}
	}
	return nil
}
