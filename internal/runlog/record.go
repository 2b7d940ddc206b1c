package runlog

import (
	"fmt"
	"strings"
	"time"
)

// TimestampLayout formats the run header timestamp.
const TimestampLayout = "2006-01-02 15:04:05"

const recordPrefix = "## Run"

// Record is the rendered summary of one pipeline run. Records loaded from an
// existing log keep their text verbatim apart from surrounding whitespace.
type Record struct {
	text string
}

// NewRecord renders the record for a run that finished at the given time.
func NewRecord(at time.Time, files []string, tagCount int) Record {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n\n", recordPrefix, at.Format(TimestampLayout))
	fmt.Fprintf(&b, "**Exported files:** %d\n", len(files))
	for _, file := range files {
		fmt.Fprintf(&b, "- %s\n", file)
	}
	fmt.Fprintf(&b, "\n**Tags indexed:** %d\n", tagCount)
	return Record{text: strings.TrimSpace(b.String())}
}

// RecordFromText wraps already rendered record text.
func RecordFromText(text string) Record {
	return Record{text: strings.TrimSpace(text)}
}

// Text returns the record body without surrounding whitespace.
func (r Record) Text() string {
	return r.text
}

// Header returns the first line of the record, e.g. `## Run 2024-06-10 21:00:00`.
func (r Record) Header() string {
	header, _, _ := strings.Cut(r.text, "\n")
	return strings.TrimRight(header, "\r")
}
