package export

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-vault-export/internal/logging"
	"github.com/goliatone/go-vault-export/internal/runlog"
	"github.com/goliatone/go-vault-export/internal/runtimeconfig"
	"github.com/goliatone/go-vault-export/internal/tags"
	"github.com/goliatone/go-vault-export/pkg/interfaces"
)

// CompletionMessage is the line reported after a successful run.
func CompletionMessage(maxRuns int) string {
	return fmt.Sprintf("Export + merged taxonomy index complete. Markdown log updated with %d-run summary.", maxRuns)
}

// RunOptions tunes a single pipeline run.
type RunOptions struct {
	// DryRun reports what would be written without touching any file.
	DryRun bool
}

// RunResult summarises a pipeline run.
type RunResult struct {
	RunID  string
	DryRun bool
	// Files lists exported base names in traversal order.
	Files []string
	// Tags is the merged tag map written to the index.
	Tags   tags.Map
	Record runlog.Record
	// History holds the retained run headers after this run, oldest first.
	History []string
	Message string
}

// Pipeline runs registry loading, export, indexing and run logging in order.
type Pipeline struct {
	cfg      runtimeconfig.Config
	provider interfaces.LoggerProvider
	logger   interfaces.Logger
	now      func() time.Time
	newID    func() string
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithLoggerProvider sets the provider for the pipeline module loggers.
func WithLoggerProvider(provider interfaces.LoggerProvider) PipelineOption {
	return func(p *Pipeline) {
		p.provider = provider
	}
}

// WithClock overrides the time source used for the copyright year and the
// run timestamp.
func WithClock(now func() time.Time) PipelineOption {
	return func(p *Pipeline) {
		if now != nil {
			p.now = now
		}
	}
}

// WithRunIDGenerator overrides how run correlation ids are minted.
func WithRunIDGenerator(fn func() string) PipelineOption {
	return func(p *Pipeline) {
		if fn != nil {
			p.newID = fn
		}
	}
}

// NewPipeline validates cfg and returns a pipeline bound to it.
func NewPipeline(cfg runtimeconfig.Config, opts ...PipelineOption) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Pipeline{
		cfg:   cfg.Resolved(),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = logging.ModuleLogger(p.provider, "")
	return p, nil
}

// Config returns the resolved configuration.
func (p *Pipeline) Config() runtimeconfig.Config {
	return p.cfg
}

// Run performs one full export. Any I/O failure aborts the run and no
// record is logged for it.
func (p *Pipeline) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	runID := p.newID()
	startedAt := p.now()
	header := CopyrightHeader(startedAt.Year(), p.cfg.Owner)
	logger := logging.WithRunID(p.logger, runID)
	tagsLogger := logging.WithRunID(logging.TagsLogger(p.provider), runID)
	logger.Info("pipeline.run.start",
		"source_root", p.cfg.SourceRoot,
		"destination_root", p.cfg.DestinationRoot,
		"dry_run", opts.DryRun,
	)

	curated, err := tags.LoadCurated(p.cfg.TagsFile)
	if err != nil {
		logger.Error("pipeline.run.failed", "stage", "registry", "error", err)
		return nil, err
	}
	tagsLogger.Debug("tags.curated.loaded", "path", p.cfg.TagsFile, "count", len(curated))

	exporter, err := NewExporter(ExporterConfig{
		SourceRoot:      p.cfg.SourceRoot,
		DestinationRoot: p.cfg.DestinationRoot,
		ReservedNames:   p.cfg.ReservedNames(),
		Header:          header,
		DryRun:          opts.DryRun,
	}, WithExporterLogger(logging.WithRunID(logging.ExportLogger(p.provider), runID)))
	if err != nil {
		return nil, err
	}

	exported, err := exporter.Export(ctx)
	if err != nil {
		logger.Error("pipeline.run.failed", "stage", "export", "error", err)
		return nil, err
	}

	tagMap := exported.Tags
	tags.Merge(tagMap, curated)
	if !opts.DryRun {
		if err := tags.WriteIndex(p.cfg.IndexFile, header, tagMap); err != nil {
			logger.Error("pipeline.run.failed", "stage", "index", "error", err)
			return nil, err
		}
		tagsLogger.Info("tags.index.written", "path", p.cfg.IndexFile, "tags", len(tagMap))
	}

	manager := runlog.NewManager(p.cfg.MaxRuns,
		runlog.WithLogger(logging.WithRunID(logging.RunLogLogger(p.provider), runID)),
	)
	history, err := manager.Load(p.cfg.LogFile)
	if err != nil {
		logger.Error("pipeline.run.failed", "stage", "runlog", "error", err)
		return nil, err
	}
	record := runlog.NewRecord(p.now(), exported.Files, len(tagMap))
	history.Push(record)
	if !opts.DryRun {
		if err := manager.Save(p.cfg.LogFile, header, history); err != nil {
			logger.Error("pipeline.run.failed", "stage", "runlog", "error", err)
			return nil, err
		}
	}

	result := &RunResult{
		RunID:   runID,
		DryRun:  opts.DryRun,
		Files:   exported.Files,
		Tags:    tagMap,
		Record:  record,
		History: history.Headers(),
		Message: CompletionMessage(p.cfg.MaxRuns),
	}
	logger.Info("pipeline.run.complete",
		"files", len(result.Files),
		"tags", len(result.Tags),
		"duration", p.now().Sub(startedAt),
	)
	return result, nil
}
