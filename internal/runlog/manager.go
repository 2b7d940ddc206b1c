package runlog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/goliatone/go-vault-export/internal/logging"
	"github.com/goliatone/go-vault-export/pkg/interfaces"
)

var recordStart = regexp.MustCompile(`(?m)^## Run`)

// Manager loads, renders and saves the run log document.
type Manager struct {
	maxRuns int
	logger  interfaces.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the logger used for load and save events.
func WithLogger(logger interfaces.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager returns a manager retaining at most maxRuns records.
func NewManager(maxRuns int, opts ...ManagerOption) *Manager {
	m := &Manager{
		maxRuns: maxRuns,
		logger:  logging.NoOp(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MaxRuns reports the history capacity.
func (m *Manager) MaxRuns() int {
	return m.maxRuns
}

// Load reads the log at path into a history. A missing file yields an empty
// history; when the log holds more records than fit, the newest are kept.
func (m *Manager) Load(path string) (*History, error) {
	history := NewHistory(m.maxRuns)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			m.logger.Debug("runlog.load.missing", "path", path)
			return history, nil
		}
		return nil, fmt.Errorf("runlog: read %s: %w", path, err)
	}

	for _, record := range ParseRecords(string(data)) {
		history.Push(record)
	}
	m.logger.Debug("runlog.loaded", "path", path, "records", history.Len())
	return history, nil
}

// ParseRecords splits log text into records. Each record starts at a line
// beginning with `## Run` and extends to the next one or the end of text;
// anything before the first record is discarded. CRLF line endings are
// normalised to LF.
func ParseRecords(content string) []Record {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	starts := recordStart.FindAllStringIndex(content, -1)
	records := make([]Record, 0, len(starts))
	for i, loc := range starts {
		end := len(content)
		if i+1 < len(starts) {
			end = starts[i+1][0]
		}
		records = append(records, RecordFromText(content[loc[0]:end]))
	}
	return records
}

// Render produces the full log document for h.
func (m *Manager) Render(header string, h *History) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("# Pipeline Log\n\n")
	fmt.Fprintf(&b, "## Summary (Last %d Runs)\n\n", m.maxRuns)
	records := h.Records()
	for _, record := range records {
		fmt.Fprintf(&b, "- %s\n", record.Header())
	}
	b.WriteString("\n---\n\n")
	texts := make([]string, 0, len(records))
	for _, record := range records {
		texts = append(texts, record.Text())
	}
	b.WriteString(strings.Join(texts, "\n\n"))
	b.WriteString("\n")
	return b.String()
}

// Save renders h and overwrites the log at path.
func (m *Manager) Save(path, header string, h *History) error {
	if err := os.WriteFile(path, []byte(m.Render(header, h)), 0o644); err != nil {
		return fmt.Errorf("runlog: write %s: %w", path, err)
	}
	m.logger.Info("runlog.saved", "path", path, "records", h.Len())
	return nil
}
