// Package watch implements the --watch convenience on top of index_root:
// it watches a root's directory tree and triggers a debounced reindex
// after a burst of filesystem activity settles.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

const relevantOps = fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename

// Run watches root and its subdirectories (skipping dot-prefixed
// entries, matching the indexer's own discovery rule) and calls
// reindex once per burst of activity, debounced by quiet. It blocks
// until ctx is canceled or the watcher reports a fatal error.
func Run(ctx context.Context, root string, quiet time.Duration, reindex func() error) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create filesystem watcher for %q; %w", root, err)
	}
	defer w.Close()

	if err := addTree(w, root); err != nil {
		return fmt.Errorf("watch root %q; %w", root, err)
	}

	var timer *time.Timer
	pending := make(chan struct{}, 1)
	fire := func() {
		select {
		case pending <- struct{}{}:
		default:
		}
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&relevantOps == 0 {
				continue
			}
			if timer == nil {
				timer = time.AfterFunc(quiet, fire)
			} else {
				timer.Reset(quiet)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch root %q; %w", root, watchErr)

		case <-pending:
			if err := reindex(); err != nil {
				return err
			}
		}
	}
}

// addTree registers root and every non-hidden subdirectory beneath it
// with w, mirroring the indexer's discovery skip rule for dot-prefixed
// entries (fsnotify watches are per-directory, not recursive).
func addTree(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
