package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-vault-export/pkg/interfaces"
)

const (
	rootModule   = "vault"
	exportModule = "vault.export"
	tagsModule   = "vault.tags"
	runlogModule = "vault.runlog"
	watchModule  = "vault.watch"
)

const (
	fieldRunID      = "run_id"
	fieldSourcePath = "source_path"
	fieldExportName = "export_name"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger carries the
// module identifier as a structured field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// ExportLogger returns the logger namespace reserved for the exporter.
func ExportLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, exportModule)
}

// TagsLogger returns the logger namespace reserved for tag registry and index work.
func TagsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, tagsModule)
}

// RunLogLogger returns the logger namespace reserved for run log maintenance.
func RunLogLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, runlogModule)
}

// WatchLogger returns the logger namespace reserved for the vault watcher.
func WatchLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, watchModule)
}

// WithRunID tags every entry of the logger with the run correlation id.
func WithRunID(logger interfaces.Logger, runID string) interfaces.Logger {
	if trimmed := strings.TrimSpace(runID); trimmed != "" {
		return WithFields(logger, map[string]any{fieldRunID: trimmed})
	}
	return logger
}

// WithFileContext enriches the logger with the source path and exported name
// of the note being processed. Empty values are ignored.
func WithFileContext(logger interfaces.Logger, sourcePath, exportName string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(sourcePath); trimmed != "" {
		fields[fieldSourcePath] = trimmed
	}
	if trimmed := strings.TrimSpace(exportName); trimmed != "" {
		fields[fieldExportName] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
