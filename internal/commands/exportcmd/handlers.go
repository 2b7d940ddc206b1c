package exportcmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	command "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-vault-export/internal/commands"
	"github.com/goliatone/go-vault-export/internal/export"
	"github.com/goliatone/go-vault-export/internal/logging"
	"github.com/goliatone/go-vault-export/internal/markdown"
	"github.com/goliatone/go-vault-export/internal/runlog"
	"github.com/goliatone/go-vault-export/pkg/interfaces"
)

const (
	runOperation     = "export.run"
	previewOperation = "export.preview"
	historyOperation = "export.history"

	exportExecutionFailed  = "EXPORT_EXECUTION_FAILED"
	previewExecutionFailed = "PREVIEW_EXECUTION_FAILED"
	historyExecutionFailed = "HISTORY_EXECUTION_FAILED"
)

var (
	_ command.Commander[RunExportCommand] = (*RunExportHandler)(nil)
	_ command.Commander[PreviewCommand]   = (*PreviewHandler)(nil)
	_ command.Commander[HistoryCommand]   = (*HistoryHandler)(nil)
)

// Runner executes one pipeline run. *export.Pipeline satisfies it.
type Runner interface {
	Run(ctx context.Context, opts export.RunOptions) (*export.RunResult, error)
}

// RunObserver receives the result of a successful run.
type RunObserver func(*export.RunResult)

// RunExportHandler runs the pipeline through the shared command handler.
type RunExportHandler struct {
	inner *commands.Handler[RunExportCommand]
}

// NewRunExportHandler binds a handler to runner. observer may be nil. Runs
// carry no execution timeout by default.
func NewRunExportHandler(runner Runner, logger interfaces.Logger, observer RunObserver, opts ...commands.HandlerOption[RunExportCommand]) *RunExportHandler {
	baseLogger := commands.EnsureLogger(logger)

	exec := func(ctx context.Context, msg RunExportCommand) error {
		result, err := runner.Run(ctx, export.RunOptions{DryRun: msg.DryRun})
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryCommand, "vault export run failed").
				WithTextCode(exportExecutionFailed)
		}
		logging.WithFields(baseLogger, map[string]any{
			"run_id":   result.RunID,
			"files":    len(result.Files),
			"tags":     len(result.Tags),
			"retained": len(result.History),
			"dry_run":  result.DryRun,
		}).Info("export.command.run.completed")
		if observer != nil {
			observer(result)
		}
		return nil
	}

	// a run must not be cut off between file writes, so it is unbounded
	// unless the caller passes WithTimeout
	handlerOpts := []commands.HandlerOption[RunExportCommand]{
		commands.WithTimeout[RunExportCommand](0),
		commands.WithLogger[RunExportCommand](baseLogger),
		commands.WithOperation[RunExportCommand](runOperation),
		commands.WithMessageFields[RunExportCommand](func(msg RunExportCommand) map[string]any {
			fields := map[string]any{"trigger": msg.Trigger}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			return fields
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &RunExportHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[RunExportCommand].
func (h *RunExportHandler) Execute(ctx context.Context, msg RunExportCommand) error {
	return h.inner.Execute(ctx, msg)
}

// PreviewHandler renders markdown documents to HTML.
type PreviewHandler struct {
	inner *commands.Handler[PreviewCommand]
}

// NewPreviewHandler renders with renderer (a default goldmark renderer when
// nil) and writes HTML to out unless the command names an output directory.
func NewPreviewHandler(renderer *markdown.GoldmarkRenderer, out io.Writer, logger interfaces.Logger, opts ...commands.HandlerOption[PreviewCommand]) *PreviewHandler {
	baseLogger := commands.EnsureLogger(logger)
	if renderer == nil {
		renderer = markdown.NewGoldmarkRenderer(markdown.RenderOptions{})
	}
	if out == nil {
		out = os.Stdout
	}

	exec := func(ctx context.Context, msg PreviewCommand) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := renderPreview(renderer, out, msg, baseLogger); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryCommand, "vault preview failed").
				WithTextCode(previewExecutionFailed)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[PreviewCommand]{
		commands.WithLogger[PreviewCommand](baseLogger),
		commands.WithOperation[PreviewCommand](previewOperation),
		commands.WithMessageFields[PreviewCommand](func(msg PreviewCommand) map[string]any {
			fields := map[string]any{"path": msg.Path}
			if msg.OutputDir != "" {
				fields["output_dir"] = msg.OutputDir
			}
			return fields
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &PreviewHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[PreviewCommand].
func (h *PreviewHandler) Execute(ctx context.Context, msg PreviewCommand) error {
	return h.inner.Execute(ctx, msg)
}

func renderPreview(renderer *markdown.GoldmarkRenderer, out io.Writer, msg PreviewCommand, logger interfaces.Logger) error {
	source, err := os.ReadFile(msg.Path)
	if err != nil {
		return fmt.Errorf("preview: read %s: %w", msg.Path, err)
	}

	if msg.Safe {
		renderer = markdown.NewGoldmarkRenderer(markdown.RenderOptions{SafeMode: true})
	}
	preview, err := markdown.RenderPreview(renderer, source)
	if err != nil {
		return err
	}

	if msg.OutputDir == "" {
		if _, err := out.Write(preview.HTML); err != nil {
			return fmt.Errorf("preview: write output: %w", err)
		}
		return nil
	}

	name, err := markdown.PreviewFileName(preview.Title, msg.Path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(msg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("preview: create %s: %w", msg.OutputDir, err)
	}
	target := filepath.Join(msg.OutputDir, name)
	if err := os.WriteFile(target, preview.HTML, 0o644); err != nil {
		return fmt.Errorf("preview: write %s: %w", target, err)
	}
	logger.Info("export.command.preview.written", "path", target, "title", preview.Title)
	return nil
}

// HistoryHandler lists the run headers retained in the log file.
type HistoryHandler struct {
	inner *commands.Handler[HistoryCommand]
}

// NewHistoryHandler reads logPath with a manager keeping maxRuns records and
// writes one header per line to out.
func NewHistoryHandler(logPath string, maxRuns int, out io.Writer, logger interfaces.Logger, opts ...commands.HandlerOption[HistoryCommand]) *HistoryHandler {
	baseLogger := commands.EnsureLogger(logger)
	if out == nil {
		out = os.Stdout
	}
	manager := runlog.NewManager(maxRuns, runlog.WithLogger(baseLogger))

	exec := func(ctx context.Context, _ HistoryCommand) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		history, err := manager.Load(logPath)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryCommand, "vault history failed").
				WithTextCode(historyExecutionFailed)
		}
		for _, header := range history.Headers() {
			if _, err := fmt.Fprintln(out, header); err != nil {
				return fmt.Errorf("history: write output: %w", err)
			}
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[HistoryCommand]{
		commands.WithLogger[HistoryCommand](baseLogger),
		commands.WithOperation[HistoryCommand](historyOperation),
		commands.WithMessageFields[HistoryCommand](func(HistoryCommand) map[string]any {
			return map[string]any{"log_file": logPath}
		}),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &HistoryHandler{inner: commands.NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[HistoryCommand].
func (h *HistoryHandler) Execute(ctx context.Context, msg HistoryCommand) error {
	return h.inner.Execute(ctx, msg)
}
