package vaultexport

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/goliatone/go-vault-export/internal/commands"
	"github.com/goliatone/go-vault-export/internal/commands/exportcmd"
	"github.com/goliatone/go-vault-export/internal/export"
	"github.com/goliatone/go-vault-export/internal/logging"
	"github.com/goliatone/go-vault-export/internal/logging/console"
	"github.com/goliatone/go-vault-export/internal/logging/gologger"
	"github.com/goliatone/go-vault-export/internal/markdown"
	"github.com/goliatone/go-vault-export/internal/watch"
	"github.com/goliatone/go-vault-export/pkg/interfaces"
)

// RunResult exports the pipeline run summary.
type RunResult = export.RunResult

// Module is the top level runtime façade wiring configuration, logging,
// the pipeline and the command handlers together.
type Module struct {
	cfg      Config
	provider interfaces.LoggerProvider
	pipeline *export.Pipeline
	out      io.Writer
}

// Option configures a Module.
type Option func(*moduleOptions)

type moduleOptions struct {
	provider  interfaces.LoggerProvider
	logWriter io.Writer
	out       io.Writer
	pipeline  []export.PipelineOption
}

// WithLoggerProvider overrides the provider selected from Config.Logging.
func WithLoggerProvider(provider interfaces.LoggerProvider) Option {
	return func(o *moduleOptions) {
		o.provider = provider
	}
}

// WithLogWriter sends console provider output to w instead of stderr.
func WithLogWriter(w io.Writer) Option {
	return func(o *moduleOptions) {
		o.logWriter = w
	}
}

// WithOutput sets where previews and history listings are printed.
func WithOutput(w io.Writer) Option {
	return func(o *moduleOptions) {
		o.out = w
	}
}

// WithClock overrides the pipeline time source.
func WithClock(now func() time.Time) Option {
	return func(o *moduleOptions) {
		o.pipeline = append(o.pipeline, export.WithClock(now))
	}
}

// WithRunIDGenerator overrides how run ids are minted.
func WithRunIDGenerator(fn func() string) Option {
	return func(o *moduleOptions) {
		o.pipeline = append(o.pipeline, export.WithRunIDGenerator(fn))
	}
}

// New validates cfg and builds a module.
func New(cfg Config, opts ...Option) (*Module, error) {
	options := moduleOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		var err error
		provider, err = NewLoggerProvider(cfg.Logging, options.logWriter)
		if err != nil {
			return nil, err
		}
	}

	pipelineOpts := append([]export.PipelineOption{export.WithLoggerProvider(provider)}, options.pipeline...)
	pipeline, err := export.NewPipeline(cfg, pipelineOpts...)
	if err != nil {
		return nil, err
	}

	out := options.out
	if out == nil {
		out = os.Stdout
	}

	return &Module{
		cfg:      pipeline.Config(),
		provider: provider,
		pipeline: pipeline,
		out:      out,
	}, nil
}

// NewLoggerProvider selects the console or go-logger provider. w only
// applies to the console provider; nil means stderr.
func NewLoggerProvider(cfg LoggingConfig, w io.Writer) (interfaces.LoggerProvider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", "console":
		level, ok := console.ParseLevel(cfg.Level)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, cfg.Level)
		}
		return console.NewProvider(console.Options{Writer: w, MinLevel: &level}), nil
	case "gologger":
		return gologger.NewProvider(gologger.Config{
			Level:     cfg.Level,
			Format:    cfg.Format,
			AddSource: cfg.AddSource,
			Focus:     cfg.Focus,
		})
	default:
		return nil, fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, cfg.Provider)
	}
}

// Config returns the resolved configuration.
func (m *Module) Config() Config {
	return m.cfg
}

// LoggerProvider exposes the provider used by every module logger.
func (m *Module) LoggerProvider() interfaces.LoggerProvider {
	return m.provider
}

// Logger returns the root `vault` logger.
func (m *Module) Logger() interfaces.Logger {
	return logging.ModuleLogger(m.provider, "")
}

// RunHandler returns the command handler for pipeline runs.
func (m *Module) RunHandler(observer exportcmd.RunObserver) *exportcmd.RunExportHandler {
	return exportcmd.NewRunExportHandler(m.pipeline, commands.CommandLogger(m.provider, "export"), observer)
}

// PreviewHandler returns the command handler for HTML previews.
func (m *Module) PreviewHandler() *exportcmd.PreviewHandler {
	return exportcmd.NewPreviewHandler(
		markdown.NewGoldmarkRenderer(markdown.RenderOptions{}),
		m.out,
		commands.CommandLogger(m.provider, "preview"),
	)
}

// HistoryHandler returns the command handler listing retained runs.
func (m *Module) HistoryHandler() *exportcmd.HistoryHandler {
	return exportcmd.NewHistoryHandler(m.cfg.LogFile, m.cfg.MaxRuns, m.out, commands.CommandLogger(m.provider, "history"))
}

// Run executes the pipeline once through the run command handler.
func (m *Module) Run(ctx context.Context, dryRun bool) (*RunResult, error) {
	return m.run(ctx, exportcmd.TriggerManual, dryRun)
}

func (m *Module) run(ctx context.Context, trigger string, dryRun bool) (*RunResult, error) {
	var result *RunResult
	handler := m.RunHandler(func(r *export.RunResult) { result = r })
	if err := handler.Execute(ctx, exportcmd.RunExportCommand{Trigger: trigger, DryRun: dryRun}); err != nil {
		return nil, err
	}
	return result, nil
}

// Watcher returns a watcher that re-runs the pipeline after vault changes.
// The run log, the index and the destination tree are ignored so runs do
// not trigger themselves. report, when set, receives each successful result.
func (m *Module) Watcher(report func(*RunResult)) (*watch.Watcher, error) {
	runFn := func(ctx context.Context) error {
		result, err := m.run(ctx, exportcmd.TriggerWatch, false)
		if err != nil {
			return err
		}
		if report != nil {
			report(result)
		}
		return nil
	}
	return watch.New(watch.Config{
		Root:     m.cfg.SourceRoot,
		Debounce: m.cfg.Watch.Debounce,
		Ignore:   []string{m.cfg.LogFile, m.cfg.IndexFile, m.cfg.DestinationRoot},
	}, runFn, watch.WithLogger(logging.WatchLogger(m.provider)))
}
