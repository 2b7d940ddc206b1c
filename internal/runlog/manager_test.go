package runlog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

const testHeader = "© 2024 Jane Doe. All Rights Reserved.\n\n"

func TestLoadMissingLogIsEmpty(t *testing.T) {
	h, err := NewManager(7).Load(filepath.Join(t.TempDir(), "pipeline_log.md"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if h.Len() != 0 || h.Capacity() != 7 {
		t.Fatalf("expected empty history of 7, got len=%d cap=%d", h.Len(), h.Capacity())
	}
}

func TestParseRecordsIsLineAnchored(t *testing.T) {
	content := testHeader + "# Pipeline Log\n\n## Summary (Last 7 Runs)\n\n" +
		"- ## Run 2024-06-10 21:00:00\n- ## Run 2024-06-11 21:00:00\n\n---\n\n" +
		"## Run 2024-06-10 21:00:00\n\n**Exported files:** 1\n- a.md\n\n**Tags indexed:** 1\n\n" +
		"## Run 2024-06-11 21:00:00\n\n**Exported files:** 0\n\n**Tags indexed:** 0\n"

	records := ParseRecords(content)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Text() != "## Run 2024-06-10 21:00:00\n\n**Exported files:** 1\n- a.md\n\n**Tags indexed:** 1" {
		t.Fatalf("unexpected first record %q", records[0].Text())
	}
	if records[1].Header() != "## Run 2024-06-11 21:00:00" {
		t.Fatalf("unexpected second header %q", records[1].Header())
	}
}

func TestParseRecordsNormalisesCRLF(t *testing.T) {
	content := "# Pipeline Log\r\n\r\n## Summary (Last 7 Runs)\r\n\r\n" +
		"- ## Run 2024-01-01 00:00:00\r\n\r\n---\r\n\r\n" +
		"## Run 2024-01-01 00:00:00\r\n\r\n**Exported files:** 1\r\n- a.md\r\n\r\n**Tags indexed:** 2\r\n"

	records := ParseRecords(content)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Header() != "## Run 2024-01-01 00:00:00" {
		t.Fatalf("unexpected header %q", records[0].Header())
	}
	if strings.Contains(records[0].Text(), "\r") {
		t.Fatalf("expected LF only record text, got %q", records[0].Text())
	}
}

func TestRenderLayout(t *testing.T) {
	m := NewManager(7)
	h := NewHistory(7)
	h.Push(NewRecord(time.Date(2024, 6, 10, 21, 0, 0, 0, time.UTC), []string{"a.md"}, 2))
	h.Push(NewRecord(time.Date(2024, 6, 11, 21, 0, 0, 0, time.UTC), nil, 2))

	want := testHeader +
		"# Pipeline Log\n\n" +
		"## Summary (Last 7 Runs)\n\n" +
		"- ## Run 2024-06-10 21:00:00\n" +
		"- ## Run 2024-06-11 21:00:00\n" +
		"\n---\n\n" +
		"## Run 2024-06-10 21:00:00\n\n**Exported files:** 1\n- a.md\n\n**Tags indexed:** 2" +
		"\n\n" +
		"## Run 2024-06-11 21:00:00\n\n**Exported files:** 0\n\n**Tags indexed:** 2\n"

	if got := m.Render(testHeader, h); got != want {
		t.Fatalf("unexpected log:\n%s\nwant:\n%s", got, want)
	}
}

func TestSaveLoadRoundTripKeepsLastRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline_log.md")
	m := NewManager(7)
	start := time.Date(2024, 6, 1, 21, 0, 0, 0, time.UTC)

	var headers []string
	for day := 0; day < 10; day++ {
		h, err := m.Load(path)
		if err != nil {
			t.Fatalf("Load run %d: %v", day, err)
		}
		record := NewRecord(start.AddDate(0, 0, day), []string{"a.md"}, day)
		headers = append(headers, record.Header())
		h.Push(record)
		if err := m.Save(path, testHeader, h); err != nil {
			t.Fatalf("Save run %d: %v", day, err)
		}
	}

	h, err := m.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(headers[3:], h.Headers()); diff != "" {
		t.Fatalf("retained headers mismatch (-want +got):\n%s", diff)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	text := string(data)
	if strings.Count(text, "\n## Run ") != 7 {
		t.Fatalf("expected 7 detail records, got %d", strings.Count(text, "\n## Run "))
	}
	if strings.Count(text, "- ## Run ") != 7 {
		t.Fatalf("expected 7 summary lines, got %d", strings.Count(text, "- ## Run "))
	}
	if strings.Contains(text, headers[2]) {
		t.Fatalf("expected oldest runs to be evicted, found %q", headers[2])
	}
}

func TestSaveIsStableAcrossReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pipeline_log.md")
	m := NewManager(7)
	h := NewHistory(7)
	h.Push(NewRecord(time.Date(2024, 6, 10, 21, 0, 0, 0, time.UTC), []string{"a.md", "b.md"}, 4))
	if err := m.Save(path, testHeader, h); err != nil {
		t.Fatalf("Save: %v", err)
	}
	first, _ := os.ReadFile(path)

	reloaded, err := m.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := m.Save(path, testHeader, reloaded); err != nil {
		t.Fatalf("Save: %v", err)
	}
	second, _ := os.ReadFile(path)
	if string(first) != string(second) {
		t.Fatalf("expected stable rewrite:\n%s\n---\n%s", first, second)
	}
}
