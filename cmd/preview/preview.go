// Package preview implements the preview command group: rendering a
// file's heading outline and a single heading's section as HTML.
package preview

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	blockfile "github.com/not-ani/blockfile"
	"github.com/not-ani/blockfile/internal/config"
)

// PreviewCmd is the parent command for file/heading preview.
var PreviewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Render a file's heading outline or one heading's section as HTML",
}

func init() {
	PreviewCmd.AddCommand(fileCmd)
	PreviewCmd.AddCommand(headingCmd)
}

var fileCmd = &cobra.Command{
	Use:   "file <file_id>",
	Short: "Show a file's heading outline and F8-cite blocks",
	Args:  cobra.ExactArgs(1),
	RunE:  runFile,
}

var headingCmd = &cobra.Command{
	Use:   "heading <file_id> <heading_order>",
	Short: "Render one heading's section as sanitized HTML",
	Args:  cobra.ExactArgs(2),
	RunE:  runHeading,
}

func openService(ctx context.Context) (*blockfile.Service, error) {
	cfg := config.Get()
	return blockfile.New(ctx, config.ExpandPath(cfg.Storage.DatabasePath), nil)
}

func runFile(cmd *cobra.Command, args []string) error {
	fileID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid file id %q; %w", args[0], err)
	}

	ctx := context.Background()
	svc, err := openService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	fp, err := svc.GetFilePreview(ctx, fileID)
	if err != nil {
		return fmt.Errorf("get file preview; %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s) — %d heading(s)\n", fp.FileName, fp.RelativePath, fp.HeadingCount)
	for _, h := range fp.Headings {
		fmt.Fprintf(out, "  [%d] H%d %s\n", h.Order, h.Level, h.Text)
	}
	for _, c := range fp.F8Cites {
		fmt.Fprintf(out, "  F8 cite [%d-%d]: %s\n", c.StartOrder, c.EndOrder, c.Text)
	}
	return nil
}

func runHeading(cmd *cobra.Command, args []string) error {
	fileID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid file id %q; %w", args[0], err)
	}
	headingOrder, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid heading order %q; %w", args[1], err)
	}

	ctx := context.Background()
	svc, err := openService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	html, err := svc.GetHeadingPreviewHTML(ctx, fileID, headingOrder)
	if err != nil {
		return fmt.Errorf("get heading preview html; %w", err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), html)
	return nil
}
