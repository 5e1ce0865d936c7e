// Package roots implements the roots command group: add, remove, and
// list registered DOCX roots.
package roots

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/not-ani/blockfile/internal/config"

	blockfile "github.com/not-ani/blockfile"
)

// RootsCmd is the parent command for add/remove/list.
var RootsCmd = &cobra.Command{
	Use:   "roots",
	Short: "Manage registered DOCX roots",
}

func init() {
	RootsCmd.AddCommand(addCmd)
	RootsCmd.AddCommand(removeCmd)
	RootsCmd.AddCommand(listCmd)
}

var addCmd = &cobra.Command{
	Use:   "add <path>",
	Short: "Register a directory as a DOCX root",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

var removeCmd = &cobra.Command{
	Use:   "remove <path>",
	Short: "Remove a registered root and everything indexed beneath it",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered roots",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func openService(ctx context.Context) (*blockfile.Service, error) {
	cfg := config.Get()
	return blockfile.New(ctx, config.ExpandPath(cfg.Storage.DatabasePath), nil)
}

func runAdd(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	svc, err := openService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	canonical, err := svc.AddRoot(ctx, args[0])
	if err != nil {
		return fmt.Errorf("add root; %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added root: %s\n", canonical)
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	svc, err := openService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	if err := svc.RemoveRoot(ctx, args[0]); err != nil {
		return fmt.Errorf("remove root; %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Removed root: %s\n", args[0])
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	svc, err := openService(ctx)
	if err != nil {
		return err
	}
	defer svc.Close()

	rootList, err := svc.ListRoots(ctx)
	if err != nil {
		return fmt.Errorf("list roots; %w", err)
	}

	out := cmd.OutOrStdout()
	if len(rootList) == 0 {
		fmt.Fprintln(out, "No roots registered.")
		fmt.Fprintln(out, "\nUse 'blockfile roots add <path>' to register one.")
		return nil
	}

	fmt.Fprintf(out, "Registered roots (%d):\n\n", len(rootList))
	for _, r := range rootList {
		fmt.Fprintf(out, "  %s\n", r.Path)
		fmt.Fprintf(out, "    Files: %d   Headings: %d   Last indexed: %s\n",
			r.FileCount, r.HeadingCount, formatMs(r.LastIndexedMs))
	}
	return nil
}

func formatMs(ms int64) string {
	if ms == 0 {
		return "never"
	}
	return time.UnixMilli(ms).Format("2006-01-02 15:04:05")
}
