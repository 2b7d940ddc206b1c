package runtimeconfig

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrSourceRootRequired      = errors.New("vault config: source root is required")
	ErrDestinationRootRequired = errors.New("vault config: destination root is required")
	ErrOwnerRequired           = errors.New("vault config: copyright owner is required")
	ErrMaxRunsInvalid          = errors.New("vault config: max runs must be at least 1")
	ErrLoggingProviderUnknown  = errors.New("vault config: logging provider is invalid")
	ErrLoggingLevelInvalid     = errors.New("vault config: logging level is invalid")
	ErrLoggingFormatInvalid    = errors.New("vault config: logging format is invalid")
	ErrWatchDebounceInvalid    = errors.New("vault config: watch debounce must be positive")
)

const (
	DefaultTagsFileName  = "tags.md"
	DefaultIndexFileName = "tags_index.md"
	DefaultLogFileName   = "pipeline_log.md"
	DefaultMaxRuns       = 7
	DefaultDebounce      = 500 * time.Millisecond
)

// Config is the explicit configuration handed to the export pipeline. Paths
// left empty for the control files are derived from the roots by Resolved.
type Config struct {
	// SourceRoot is the vault directory that is traversed recursively.
	SourceRoot string `yaml:"source_root"`
	// DestinationRoot receives the flattened, cleaned copies and the tag index.
	DestinationRoot string `yaml:"destination_root"`
	// TagsFile is the curated tag list (defaults to <source>/tags.md).
	TagsFile string `yaml:"tags_file"`
	// IndexFile is the generated taxonomy (defaults to <destination>/tags_index.md).
	IndexFile string `yaml:"index_file"`
	// LogFile holds the bounded run history (defaults to <source>/pipeline_log.md).
	LogFile string `yaml:"log_file"`
	// MaxRuns caps the number of run records kept in the log.
	MaxRuns int `yaml:"max_runs"`
	// Owner is the name stamped into every copyright header.
	Owner   string        `yaml:"owner"`
	Logging LoggingConfig `yaml:"logging"`
	Watch   WatchConfig   `yaml:"watch"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `yaml:"provider"`
	Level     string   `yaml:"level"`
	Format    string   `yaml:"format"`
	AddSource bool     `yaml:"add_source"`
	Focus     []string `yaml:"focus"`
}

// WatchConfig tunes the filesystem watcher.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// DefaultConfig returns defaults matching the nightly export job.
func DefaultConfig() Config {
	return Config{
		MaxRuns: DefaultMaxRuns,
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		Watch: WatchConfig{
			Debounce: DefaultDebounce,
		},
	}
}

// Resolved returns a copy with cleaned roots and the control file paths
// derived from them when not set explicitly.
func (cfg Config) Resolved() Config {
	out := cfg
	out.SourceRoot = cleanPath(cfg.SourceRoot)
	out.DestinationRoot = cleanPath(cfg.DestinationRoot)
	if strings.TrimSpace(out.TagsFile) == "" && out.SourceRoot != "" {
		out.TagsFile = filepath.Join(out.SourceRoot, DefaultTagsFileName)
	}
	if strings.TrimSpace(out.LogFile) == "" && out.SourceRoot != "" {
		out.LogFile = filepath.Join(out.SourceRoot, DefaultLogFileName)
	}
	if strings.TrimSpace(out.IndexFile) == "" && out.DestinationRoot != "" {
		out.IndexFile = filepath.Join(out.DestinationRoot, DefaultIndexFileName)
	}
	out.TagsFile = cleanPath(out.TagsFile)
	out.LogFile = cleanPath(out.LogFile)
	out.IndexFile = cleanPath(out.IndexFile)
	if out.Watch.Debounce == 0 {
		out.Watch.Debounce = DefaultDebounce
	}
	return out
}

// ReservedNames lists the base names the exporter never copies.
func (cfg Config) ReservedNames() []string {
	resolved := cfg.Resolved()
	names := make([]string, 0, 2)
	for _, path := range []string{resolved.TagsFile, resolved.LogFile} {
		if path != "" {
			names = append(names, filepath.Base(path))
		}
	}
	return names
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.SourceRoot) == "" {
		return ErrSourceRootRequired
	}
	if strings.TrimSpace(cfg.DestinationRoot) == "" {
		return ErrDestinationRootRequired
	}
	if strings.TrimSpace(cfg.Owner) == "" {
		return ErrOwnerRequired
	}
	if cfg.MaxRuns < 1 {
		return fmt.Errorf("%w: %d", ErrMaxRunsInvalid, cfg.MaxRuns)
	}
	if cfg.Watch.Debounce < 0 {
		return ErrWatchDebounceInvalid
	}
	provider := normalizeProvider(cfg.Logging.Provider)
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

func cleanPath(path string) string {
	if strings.TrimSpace(path) == "" {
		return ""
	}
	return filepath.Clean(path)
}

func normalizeProvider(provider string) string {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return "console"
	}
	return provider
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
