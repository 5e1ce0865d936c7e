package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRunTriggersReindexOnFileCreate(t *testing.T) {
	root := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, root, 30*time.Millisecond, func() error {
			calls <- struct{}{}
			return nil
		})
	}()

	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(root, "new.docx"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	select {
	case <-calls:
	case <-time.After(2 * time.Second):
		t.Fatal("expected reindex to fire after file create")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunSkipsHiddenDirectories(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatalf("mkdir hidden dir: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := make(chan struct{}, 4)
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, root, 30*time.Millisecond, func() error {
			calls <- struct{}{}
			return nil
		})
	}()

	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(root, ".git", "HEAD"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write file in hidden dir: %v", err)
	}

	select {
	case <-calls:
		t.Fatal("did not expect reindex for a change inside a hidden directory")
	case <-time.After(200 * time.Millisecond):
	}

	cancel()
	<-done
}
