package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-vault-export/pkg/interfaces"
)

// TelemetryStatus classifies how a command execution ended.
type TelemetryStatus string

const (
	TelemetryStatusSuccess      TelemetryStatus = "success"
	TelemetryStatusFailed       TelemetryStatus = "failed"
	TelemetryStatusContextError TelemetryStatus = "context_error"
)

// TelemetryInfo is handed to the telemetry callback once per execution.
// Logger already carries Fields.
type TelemetryInfo struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Error     error
	Status    TelemetryStatus
	Logger    interfaces.Logger
}

// Telemetry observes command outcomes.
type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

var telemetryEvents = map[TelemetryStatus]string{
	TelemetryStatusSuccess:      "command.execute.success",
	TelemetryStatusFailed:       "command.execute.failed",
	TelemetryStatusContextError: "command.execute.context_error",
}

// DefaultTelemetry logs one `command.execute.<status>` entry per execution,
// at info level on success and error level otherwise. fallback is used when
// info carries no logger.
func DefaultTelemetry[T command.Message](fallback interfaces.Logger) Telemetry[T] {
	fallback = EnsureLogger(fallback)
	return func(_ context.Context, _ T, info TelemetryInfo) {
		logger := info.Logger
		if logger == nil {
			logger = fallback
		}
		event, ok := telemetryEvents[info.Status]
		if !ok {
			event = telemetryEvents[TelemetryStatusFailed]
		}
		if info.Status == TelemetryStatusSuccess {
			logger.Info(event, "duration_ms", info.Duration.Milliseconds())
			return
		}
		logger.Error(event, "duration_ms", info.Duration.Milliseconds(), "error", info.Error)
	}
}
