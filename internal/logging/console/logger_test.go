package console_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-vault-export/internal/logging"
	"github.com/goliatone/go-vault-export/internal/logging/console"
)

func TestConsoleLogger_WritesStructuredEntry(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2024, 3, 14, 15, 9, 26, 535897000, time.UTC)

	minLevel := console.LevelDebug
	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		TimeFunc: func() time.Time { return now },
		MinLevel: &minLevel,
	})

	logger := provider.GetLogger("vault.export")
	logger = logger.WithFields(map[string]any{"module": "vault.export"})
	ctx := logging.ContextWithFields(context.Background(), map[string]any{
		"run_id": "run-1234",
	})
	logger = logger.WithContext(ctx)

	logger.Info("export.file.written",
		"export_name", "Weekly Review.md",
		"tags", []string{"ops", "review"},
	)

	got := strings.TrimSpace(buf.String())
	want := `2024-03-14T15:09:26.535897Z INFO export.file.written export_name="Weekly Review.md" logger=vault.export module=vault.export run_id=run-1234 tags=ops,review`
	if got != want {
		t.Fatalf("unexpected log entry\nwant: %s\ngot:  %s", want, got)
	}
}

func TestConsoleLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	minLevel := console.LevelInfo
	provider := console.NewProvider(console.Options{
		Writer:   &buf,
		MinLevel: &minLevel,
	})

	logger := provider.GetLogger("vault.test")
	logger.Debug("ignored.debug", "foo", "bar")
	logger.Error("included.error", "error", errors.New("disk full"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected single log line, got %d", len(lines))
	}
	if !strings.Contains(lines[0], `included.error error="disk full"`) {
		t.Fatalf("expected error log to be written, got %s", lines[0])
	}
}

func TestConsoleLogger_TrailingArgumentKept(t *testing.T) {
	var buf bytes.Buffer
	provider := console.NewProvider(console.Options{Writer: &buf})

	provider.GetLogger("vault").Info("odd.args", "count", 3, "dangling")

	got := buf.String()
	if !strings.Contains(got, "count=3") || !strings.Contains(got, "field_1=dangling") {
		t.Fatalf("expected positional field for dangling arg, got %q", got)
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]console.Level{
		"trace":   console.LevelTrace,
		"DEBUG":   console.LevelDebug,
		"":        console.LevelInfo,
		"warning": console.LevelWarn,
		"error":   console.LevelError,
	}
	for input, want := range cases {
		got, ok := console.ParseLevel(input)
		if !ok || got != want {
			t.Fatalf("ParseLevel(%q) = %v,%v want %v", input, got, ok, want)
		}
	}
	if _, ok := console.ParseLevel("verbose"); ok {
		t.Fatalf("expected unknown level to be rejected")
	}
}
