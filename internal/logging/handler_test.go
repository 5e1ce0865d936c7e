package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSwappableHandlerSwapChangesOutputFormat(t *testing.T) {
	var buf bytes.Buffer
	text := slog.NewTextHandler(&buf, nil)
	sh := NewSwappableHandler(text)
	logger := slog.New(sh)

	logger.Info("first")
	if !strings.Contains(buf.String(), "msg=first") {
		t.Errorf("expected text-handler output, got %q", buf.String())
	}

	buf.Reset()
	sh.Swap(slog.NewJSONHandler(&buf, nil))
	logger.Info("second")
	if !strings.Contains(buf.String(), `"msg":"second"`) {
		t.Errorf("expected json-handler output after swap, got %q", buf.String())
	}
}

func TestSwappableHandlerWithAttrsKeepsAttributes(t *testing.T) {
	var buf bytes.Buffer
	sh := NewSwappableHandler(slog.NewTextHandler(&buf, nil))
	logger := slog.New(sh).With("component", "test")

	logger.Info("hello")
	if !strings.Contains(buf.String(), "component=test") {
		t.Errorf("expected attribute to be present, got %q", buf.String())
	}
}
