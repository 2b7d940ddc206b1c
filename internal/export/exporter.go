package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-vault-export/internal/logging"
	"github.com/goliatone/go-vault-export/internal/markdown"
	"github.com/goliatone/go-vault-export/internal/tags"
	"github.com/goliatone/go-vault-export/pkg/interfaces"
)

// CopyrightHeader renders the notice stamped on every exported document.
func CopyrightHeader(year int, owner string) string {
	return fmt.Sprintf("© %d %s. All Rights Reserved.\n\n", year, owner)
}

// ExporterConfig controls a single export pass.
type ExporterConfig struct {
	SourceRoot      string
	DestinationRoot string
	// ReservedNames are control file base names that are never exported.
	ReservedNames []string
	// Header is prepended to every exported note.
	Header string
	// DryRun walks and extracts tags without creating or writing files.
	DryRun bool
}

// ExportResult describes what an export pass produced.
type ExportResult struct {
	// Files lists exported base names in traversal order, repeats included.
	Files []string
	// Tags maps header tags to the files declaring them.
	Tags tags.Map
}

// Exporter copies cleaned notes from the source tree into the destination.
type Exporter struct {
	cfg    ExporterConfig
	loader *markdown.Loader
	logger interfaces.Logger
}

// ExporterOption configures an Exporter.
type ExporterOption func(*Exporter)

// WithExporterLogger sets the exporter logger.
func WithExporterLogger(logger interfaces.Logger) ExporterOption {
	return func(e *Exporter) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExporter builds an exporter over cfg.SourceRoot. When the destination
// lies inside the source tree it is excluded from traversal.
func NewExporter(cfg ExporterConfig, opts ...ExporterOption) (*Exporter, error) {
	if strings.TrimSpace(cfg.SourceRoot) == "" {
		return nil, fmt.Errorf("export: source root is required")
	}
	if strings.TrimSpace(cfg.DestinationRoot) == "" {
		return nil, fmt.Errorf("export: destination root is required")
	}

	skip, err := nestedDir(cfg.SourceRoot, cfg.DestinationRoot)
	if err != nil {
		return nil, err
	}
	loaderCfg := markdown.LoaderConfig{Exclude: cfg.ReservedNames}
	if skip != "" {
		loaderCfg.SkipDirs = []string{skip}
	}

	e := &Exporter{
		cfg:    cfg,
		loader: markdown.NewLoader(os.DirFS(cfg.SourceRoot), loaderCfg),
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Export walks the source tree once. Every note is rewritten, stamped and
// written to <destination>/<base name>, so later notes with the same name
// overwrite earlier ones. The first I/O failure aborts the pass and files
// already written are left in place.
func (e *Exporter) Export(ctx context.Context) (*ExportResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	if !e.cfg.DryRun {
		if err := os.MkdirAll(e.cfg.DestinationRoot, 0o755); err != nil {
			return nil, fmt.Errorf("export: create destination %s: %w", e.cfg.DestinationRoot, err)
		}
	}

	result := &ExportResult{
		Files: []string{},
		Tags:  tags.Map{},
	}

	err := e.loader.Walk(ctx, func(doc *markdown.Document) error {
		fileLogger := logging.WithFileContext(e.logger, doc.Path, doc.Name)

		if !e.cfg.DryRun {
			target := filepath.Join(e.cfg.DestinationRoot, doc.Name)
			content := e.cfg.Header + markdown.StripWikiSyntax(string(doc.Source))
			if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
				return fmt.Errorf("export: write %s: %w", target, err)
			}
			fileLogger.Debug("export.file.written", "bytes", len(content))
		}
		result.Files = append(result.Files, doc.Name)

		tagResult, err := markdown.ReadTags(e.loader.FS(), doc.Path)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		if tagResult.Outcome != markdown.TagsFound {
			args := []any{"outcome", tagResult.Outcome.String()}
			if tagResult.Err != nil {
				args = append(args, "error", tagResult.Err)
			}
			fileLogger.Debug("export.file.tags_skipped", args...)
			return nil
		}
		result.Tags.Add(doc.Name, tagResult.Tags()...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("export.completed",
		"files", len(result.Files),
		"tags", len(result.Tags),
		"dry_run", e.cfg.DryRun,
	)
	return result, nil
}

// nestedDir returns dest relative to source, slash separated, when dest lies
// strictly inside source.
func nestedDir(source, dest string) (string, error) {
	absSource, err := filepath.Abs(source)
	if err != nil {
		return "", fmt.Errorf("export: resolve source %s: %w", source, err)
	}
	absDest, err := filepath.Abs(dest)
	if err != nil {
		return "", fmt.Errorf("export: resolve destination %s: %w", dest, err)
	}
	rel, err := filepath.Rel(absSource, absDest)
	if err != nil {
		return "", nil
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", nil
	}
	return filepath.ToSlash(rel), nil
}
