// Package capture implements the capture command group: inserting a
// heading-delimited section into a destination DOCX, listing and
// previewing capture targets, and reorganizing a target's headings.
package capture

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	blockfile "github.com/not-ani/blockfile"
	"github.com/not-ani/blockfile/internal/config"
)

// CaptureCmd is the parent command for insert/targets/preview/delete-heading/move-heading.
var CaptureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Assemble and reorganize capture DOCX files",
}

func init() {
	registerInsertCmd()
	CaptureCmd.AddCommand(targetsCmd)
	CaptureCmd.AddCommand(targetPreviewCmd)
	CaptureCmd.AddCommand(deleteHeadingCmd)
	CaptureCmd.AddCommand(moveHeadingCmd)
}

func openService(ctx context.Context) (*blockfile.Service, error) {
	cfg := config.Get()
	return blockfile.New(ctx, config.ExpandPath(cfg.Storage.DatabasePath), nil)
}

var (
	insertRoot          string
	insertSource        string
	insertTitle         string
	insertContent       string
	insertTarget        string
	insertHeadingLevel  int
	insertHeadingOrder  int
	insertSelectedOrder int
)

var insertCmd = &cobra.Command{
	Use:   "insert",
	Short: "Insert a heading's section (or plain content) into a capture DOCX",
	Args:  cobra.NoArgs,
	RunE:  runInsert,
}

func registerInsertCmd() {
	insertCmd.Flags().StringVar(&insertRoot, "root", "", "Registered root the source file lives under (required)")
	insertCmd.Flags().StringVar(&insertSource, "source", "", "Absolute path to the source DOCX (required)")
	insertCmd.Flags().StringVar(&insertTitle, "title", "", "Section title")
	insertCmd.Flags().StringVar(&insertContent, "content", "", "Section content; split into plain paragraphs when --heading-order is absent")
	insertCmd.Flags().StringVar(&insertTarget, "target", "", "Destination relative path (default BlockFile-Captures.docx)")
	insertCmd.Flags().IntVar(&insertHeadingLevel, "heading-level", 0, "Incoming section's heading level")
	insertCmd.Flags().IntVar(&insertHeadingOrder, "heading-order", 0, "Source heading's paragraph order; omit to copy plain paragraphs")
	insertCmd.Flags().IntVar(&insertSelectedOrder, "selected-target-heading-order", 0, "Destination heading to splice after")
	_ = insertCmd.MarkFlagRequired("root")
	_ = insertCmd.MarkFlagRequired("source")
	CaptureCmd.AddCommand(insertCmd)
}

func runInsert(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	svc, err := openService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	params := blockfile.InsertCaptureParams{
		RootPath:   insertRoot,
		SourcePath: insertSource,
		Title:      insertTitle,
		Content:    insertContent,
		TargetPath: insertTarget,
	}
	if cmd.Flags().Changed("heading-level") {
		v := insertHeadingLevel
		params.HeadingLevel = &v
	}
	if cmd.Flags().Changed("heading-order") {
		v := insertHeadingOrder
		params.HeadingOrder = &v
	}
	if cmd.Flags().Changed("selected-target-heading-order") {
		v := insertSelectedOrder
		params.SelectedTargetHeadingOrder = &v
	}

	result, err := svc.InsertCapture(ctx, params)
	if err != nil {
		return fmt.Errorf("insert capture; %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Inserted into %s\n", result.CapturePath)
	fmt.Fprintf(out, "Marker: %s\n", result.Marker)
	fmt.Fprintf(out, "Target: %s\n", result.TargetRelativePath)
	return nil
}

var targetsCmd = &cobra.Command{
	Use:   "targets <root>",
	Short: "List capture targets recorded under a root",
	Args:  cobra.ExactArgs(1),
	RunE:  runTargets,
}

func runTargets(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	svc, err := openService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	targets, err := svc.ListCaptureTargets(ctx, args[0])
	if err != nil {
		return fmt.Errorf("list capture targets; %w", err)
	}

	out := cmd.OutOrStdout()
	for _, t := range targets {
		fmt.Fprintf(out, "  %s (exists=%t, entries=%d)\n", t.RelativePath, t.Exists, t.EntryCount)
	}
	return nil
}

var targetPreviewCmd = &cobra.Command{
	Use:   "preview <root> <target>",
	Short: "Show a capture target's heading outline",
	Args:  cobra.ExactArgs(2),
	RunE:  runTargetPreview,
}

func runTargetPreview(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	svc, err := openService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	p, err := svc.GetCaptureTargetPreview(ctx, args[0], args[1])
	if err != nil {
		return fmt.Errorf("get capture target preview; %w", err)
	}

	out := cmd.OutOrStdout()
	if !p.Exists {
		fmt.Fprintf(out, "%s does not exist yet\n", p.RelativePath)
		return nil
	}
	fmt.Fprintf(out, "%s — %d heading(s)\n", p.RelativePath, p.HeadingCount)
	for _, h := range p.Headings {
		fmt.Fprintf(out, "  [%d] H%d %s\n", h.Order, h.Level, h.Text)
	}
	return nil
}

var deleteHeadingCmd = &cobra.Command{
	Use:   "delete-heading <root> <target> <heading_order>",
	Short: "Excise a heading's range from a capture target",
	Args:  cobra.ExactArgs(3),
	RunE:  runDeleteHeading,
}

func runDeleteHeading(cmd *cobra.Command, args []string) error {
	order, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("invalid heading order %q; %w", args[2], err)
	}

	ctx := context.Background()
	svc, err := openService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	p, err := svc.DeleteCaptureHeading(ctx, args[0], args[1], order)
	if err != nil {
		return fmt.Errorf("delete capture heading; %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s now has %d heading(s)\n", p.RelativePath, p.HeadingCount)
	return nil
}

var moveHeadingCmd = &cobra.Command{
	Use:   "move-heading <root> <target> <source_order> <target_order>",
	Short: "Move a heading's range to splice after another heading",
	Args:  cobra.ExactArgs(4),
	RunE:  runMoveHeading,
}

func runMoveHeading(cmd *cobra.Command, args []string) error {
	sourceOrder, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("invalid source order %q; %w", args[2], err)
	}
	targetOrder, err := strconv.Atoi(args[3])
	if err != nil {
		return fmt.Errorf("invalid target order %q; %w", args[3], err)
	}

	ctx := context.Background()
	svc, err := openService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	p, err := svc.MoveCaptureHeading(ctx, args[0], args[1], sourceOrder, targetOrder)
	if err != nil {
		return fmt.Errorf("move capture heading; %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s now has %d heading(s)\n", p.RelativePath, p.HeadingCount)
	return nil
}
