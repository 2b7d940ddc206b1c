package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-vault-export/internal/tags"
)

func writeVault(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestCopyrightHeader(t *testing.T) {
	if got := CopyrightHeader(2024, "Jane Doe"); got != "© 2024 Jane Doe. All Rights Reserved.\n\n" {
		t.Fatalf("unexpected header %q", got)
	}
}

func TestExportRewritesStampsAndFlattens(t *testing.T) {
	source := t.TempDir()
	dest := filepath.Join(t.TempDir(), "staging", "nlm")
	writeVault(t, source, map[string]string{
		"a.md":            "---\ntags: [ops, review]\n---\nSee [[Note A]] and ![[Embed B]]\n",
		"projects/a.md":   "---\ntags: research\n---\nproject copy\n",
		"projects/b.md":   "no header\n",
		"tags.md":         "- ops\n",
		"pipeline_log.md": "## Run 2024-01-01 00:00:00\n",
		"image.png":       "binary",
		"upper.MD":        "ignored",
	})

	exporter, err := NewExporter(ExporterConfig{
		SourceRoot:      source,
		DestinationRoot: dest,
		ReservedNames:   []string{"tags.md", "pipeline_log.md"},
		Header:          CopyrightHeader(2024, "Jane Doe"),
	})
	if err != nil {
		t.Fatalf("NewExporter: %v", err)
	}

	result, err := exporter.Export(context.Background())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	if diff := cmp.Diff([]string{"a.md", "a.md", "b.md"}, result.Files); diff != "" {
		t.Fatalf("files mismatch (-want +got):\n%s", diff)
	}
	wantTags := tags.Map{
		"ops":      {"a.md"},
		"review":   {"a.md"},
		"research": {"a.md"},
	}
	if diff := cmp.Diff(wantTags, result.Tags); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}

	if got := readFile(t, filepath.Join(dest, "a.md")); got != "© 2024 Jane Doe. All Rights Reserved.\n\n---\ntags: research\n---\nproject copy\n" {
		t.Fatalf("expected the later traversal to win, got %q", got)
	}
	if got := readFile(t, filepath.Join(dest, "b.md")); got != "© 2024 Jane Doe. All Rights Reserved.\n\nno header\n" {
		t.Fatalf("unexpected b.md %q", got)
	}

	entries, err := os.ReadDir(dest)
	if err != nil {
		t.Fatalf("read dest: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected only a.md and b.md in destination, got %d entries", len(entries))
	}

	original := readFile(t, filepath.Join(source, "a.md"))
	if original != "---\ntags: [ops, review]\n---\nSee [[Note A]] and ![[Embed B]]\n" {
		t.Fatalf("source note must not be modified, got %q", original)
	}
}

func TestExportRewritesWikiSyntax(t *testing.T) {
	source := t.TempDir()
	dest := t.TempDir()
	writeVault(t, source, map[string]string{
		"note.md": "See [[Note A]] and ![[Embed B]]",
	})

	exporter, err := NewExporter(ExporterConfig{SourceRoot: source, DestinationRoot: dest, Header: "H\n\n"})
	if err != nil {
		t.Fatalf("NewExporter: %v", err)
	}
	if _, err := exporter.Export(context.Background()); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if got := readFile(t, filepath.Join(dest, "note.md")); got != "H\n\nSee Note A and Embed B" {
		t.Fatalf("unexpected export %q", got)
	}
}

func TestExportIsIdempotent(t *testing.T) {
	source := t.TempDir()
	dest := t.TempDir()
	writeVault(t, source, map[string]string{"n.md": "---\ntags: x\n---\nbody [[Link]]\n"})

	exporter, err := NewExporter(ExporterConfig{SourceRoot: source, DestinationRoot: dest, Header: "H\n\n"})
	if err != nil {
		t.Fatalf("NewExporter: %v", err)
	}
	if _, err := exporter.Export(context.Background()); err != nil {
		t.Fatalf("first export: %v", err)
	}
	first := readFile(t, filepath.Join(dest, "n.md"))
	if _, err := exporter.Export(context.Background()); err != nil {
		t.Fatalf("second export: %v", err)
	}
	if second := readFile(t, filepath.Join(dest, "n.md")); second != first {
		t.Fatalf("expected byte identical re-export:\n%q\n%q", first, second)
	}
}

func TestExportSkipsNestedDestination(t *testing.T) {
	source := t.TempDir()
	dest := filepath.Join(source, "export")
	writeVault(t, source, map[string]string{
		"n.md":          "note",
		"export/old.md": "previous output",
	})

	exporter, err := NewExporter(ExporterConfig{SourceRoot: source, DestinationRoot: dest, Header: "H\n\n"})
	if err != nil {
		t.Fatalf("NewExporter: %v", err)
	}
	result, err := exporter.Export(context.Background())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if diff := cmp.Diff([]string{"n.md"}, result.Files); diff != "" {
		t.Fatalf("files mismatch (-want +got):\n%s", diff)
	}
}

func TestExportDryRunWritesNothing(t *testing.T) {
	source := t.TempDir()
	dest := filepath.Join(t.TempDir(), "missing")
	writeVault(t, source, map[string]string{"n.md": "---\ntags: [a]\n---\n"})

	exporter, err := NewExporter(ExporterConfig{SourceRoot: source, DestinationRoot: dest, DryRun: true})
	if err != nil {
		t.Fatalf("NewExporter: %v", err)
	}
	result, err := exporter.Export(context.Background())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(result.Files) != 1 || len(result.Tags["a"]) != 1 {
		t.Fatalf("unexpected dry run result %+v", result)
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Fatalf("expected destination to stay absent, stat err=%v", err)
	}
}

func TestExportMissingSourceFails(t *testing.T) {
	exporter, err := NewExporter(ExporterConfig{
		SourceRoot:      filepath.Join(t.TempDir(), "absent"),
		DestinationRoot: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("NewExporter: %v", err)
	}
	if _, err := exporter.Export(context.Background()); err == nil {
		t.Fatal("expected error for missing source root")
	}
}

func TestExportCancelledContext(t *testing.T) {
	source := t.TempDir()
	writeVault(t, source, map[string]string{"n.md": "note"})
	exporter, err := NewExporter(ExporterConfig{SourceRoot: source, DestinationRoot: t.TempDir()})
	if err != nil {
		t.Fatalf("NewExporter: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := exporter.Export(ctx); err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestNewExporterRequiresRoots(t *testing.T) {
	if _, err := NewExporter(ExporterConfig{DestinationRoot: "x"}); err == nil {
		t.Fatal("expected error without source root")
	}
	if _, err := NewExporter(ExporterConfig{SourceRoot: "x"}); err == nil {
		t.Fatal("expected error without destination root")
	}
}
