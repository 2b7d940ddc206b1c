package runlog

import (
	"testing"
	"time"
)

func TestNewRecordFormat(t *testing.T) {
	at := time.Date(2024, 6, 10, 21, 5, 9, 0, time.UTC)
	record := NewRecord(at, []string{"b.md", "a.md"}, 3)

	want := "## Run 2024-06-10 21:05:09\n\n**Exported files:** 2\n- b.md\n- a.md\n\n**Tags indexed:** 3"
	if record.Text() != want {
		t.Fatalf("unexpected record:\n%q\nwant:\n%q", record.Text(), want)
	}
	if record.Header() != "## Run 2024-06-10 21:05:09" {
		t.Fatalf("unexpected header %q", record.Header())
	}
}

func TestNewRecordWithoutFiles(t *testing.T) {
	record := NewRecord(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), nil, 0)
	want := "## Run 2024-01-02 03:04:05\n\n**Exported files:** 0\n\n**Tags indexed:** 0"
	if record.Text() != want {
		t.Fatalf("unexpected record %q", record.Text())
	}
}

func TestRecordHeaderTrimsCarriageReturn(t *testing.T) {
	record := RecordFromText("## Run 2024-01-01 00:00:00\r\n\r\n**Exported files:** 0")
	if record.Header() != "## Run 2024-01-01 00:00:00" {
		t.Fatalf("unexpected header %q", record.Header())
	}
}
