package exportcmd

import (
	"path/filepath"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	runExportMessageType = "vault.export.run"
	previewMessageType   = "vault.export.preview"
	historyMessageType   = "vault.export.history"
)

// Run triggers recognised by RunExportCommand.
const (
	TriggerManual = "manual"
	TriggerWatch  = "watch"
)

// RunExportCommand runs the full export, index and log pipeline once.
type RunExportCommand struct {
	// Trigger records what started the run (manual or watch).
	Trigger string `json:"trigger"`
	// DryRun reports what would be written without touching any file.
	DryRun bool `json:"dry_run,omitempty"`
}

// Type implements command.Message.
func (RunExportCommand) Type() string { return runExportMessageType }

// Validate ensures the trigger is known before handlers execute.
func (cmd RunExportCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Trigger, validation.Required, validation.In(TriggerManual, TriggerWatch).
			Error("trigger must be manual or watch")),
	)
}

// PreviewCommand renders a markdown document to HTML.
type PreviewCommand struct {
	// Path is the markdown file to render: an exported note, the index or the log.
	Path string `json:"path"`
	// OutputDir receives `<slug>.html`; empty writes to the handler's output.
	OutputDir string `json:"output_dir,omitempty"`
	// Safe drops raw HTML found in the document.
	Safe bool `json:"safe,omitempty"`
}

// Type implements command.Message.
func (PreviewCommand) Type() string { return previewMessageType }

// Validate ensures a markdown path is supplied.
func (cmd PreviewCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Path, validation.Required, validation.By(func(value any) error {
			path := strings.TrimSpace(value.(string))
			if path == "" {
				return validation.NewError("vault.export.preview.path_required", "path is required")
			}
			if filepath.Ext(path) != ".md" {
				return validation.NewError("vault.export.preview.path_extension", "path must be a .md file")
			}
			return nil
		})),
	)
}

// HistoryCommand prints the run headers retained in the log.
type HistoryCommand struct{}

// Type implements command.Message.
func (HistoryCommand) Type() string { return historyMessageType }
