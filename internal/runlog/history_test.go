package runlog

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHistoryEvictsOldest(t *testing.T) {
	h := NewHistory(3)
	for i := 1; i <= 5; i++ {
		h.Push(RecordFromText(fmt.Sprintf("## Run %d", i)))
	}

	if h.Len() != 3 || h.Capacity() != 3 {
		t.Fatalf("expected 3/3, got len=%d cap=%d", h.Len(), h.Capacity())
	}
	want := []string{"## Run 3", "## Run 4", "## Run 5"}
	if diff := cmp.Diff(want, h.Headers()); diff != "" {
		t.Fatalf("headers mismatch (-want +got):\n%s", diff)
	}
}

func TestHistoryRecordsIsACopy(t *testing.T) {
	h := NewHistory(2)
	h.Push(RecordFromText("## Run a"))
	records := h.Records()
	records[0] = RecordFromText("## Run mutated")

	if h.Records()[0].Header() != "## Run a" {
		t.Fatal("expected Records to return a copy")
	}
}

func TestNewHistoryClampsCapacity(t *testing.T) {
	h := NewHistory(0)
	h.Push(RecordFromText("## Run 1"))
	h.Push(RecordFromText("## Run 2"))
	if h.Capacity() != 1 || h.Len() != 1 || h.Headers()[0] != "## Run 2" {
		t.Fatalf("unexpected history %v (cap %d)", h.Headers(), h.Capacity())
	}
}
