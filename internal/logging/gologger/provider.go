package gologger

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-vault-export/internal/logging"
	"github.com/goliatone/go-vault-export/pkg/interfaces"
)

// Config mirrors the logging section of the vault config.
type Config struct {
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

var formats = map[string]func() glog.Option{
	"":        func() glog.Option { return glog.WithLoggerTypeConsole() },
	"console": func() glog.Option { return glog.WithLoggerTypeConsole() },
	"json":    func() glog.Option { return glog.WithLoggerTypeJSON() },
	"pretty":  func() glog.Option { return glog.WithLoggerTypePretty() },
}

var levels = map[string]string{
	"trace":   glog.Trace,
	"debug":   glog.Debug,
	"info":    glog.Info,
	"warn":    glog.Warn,
	"warning": glog.Warn,
	"error":   glog.Error,
	"fatal":   glog.Fatal,
}

// Provider hands out named go-logger children.
type Provider struct {
	root *glog.BaseLogger
}

// NewProvider builds the go-logger root from cfg. An unknown level falls back
// to the go-logger default; an unknown format is an error.
func NewProvider(cfg Config) (*Provider, error) {
	format, ok := formats[strings.ToLower(strings.TrimSpace(cfg.Format))]
	if !ok {
		return nil, fmt.Errorf("logging: unsupported go-logger format %q", cfg.Format)
	}
	options := []glog.Option{format()}
	if level, ok := levels[strings.ToLower(strings.TrimSpace(cfg.Level))]; ok {
		options = append(options, glog.WithLevel(level))
	}
	if cfg.AddSource {
		options = append(options, glog.WithAddSource(true))
	}

	root := glog.NewLogger(options...)

	focus := make([]string, 0, len(cfg.Focus))
	for _, name := range cfg.Focus {
		if name = strings.TrimSpace(name); name != "" {
			focus = append(focus, name)
		}
	}
	if len(focus) > 0 {
		root.Focus(focus...)
	}
	return &Provider{root: root}, nil
}

// GetLogger returns the child logger for name, or the root when name is blank.
func (p *Provider) GetLogger(name string) interfaces.Logger {
	if p == nil {
		return logging.NoOp()
	}
	if name = strings.TrimSpace(name); name == "" {
		return wrap(p.root)
	}
	return wrap(p.root.GetLogger(name))
}

func wrap(inner glog.Logger) interfaces.Logger {
	if inner == nil {
		return logging.NoOp()
	}
	return &adapter{inner: inner}
}

// adapter carries fields as key/value pairs when the wrapped logger cannot
// bind them itself.
type adapter struct {
	inner glog.Logger
	pairs []any
}

func (l *adapter) Trace(msg string, args ...any) { l.inner.Trace(msg, l.args(args)...) }
func (l *adapter) Debug(msg string, args ...any) { l.inner.Debug(msg, l.args(args)...) }
func (l *adapter) Info(msg string, args ...any)  { l.inner.Info(msg, l.args(args)...) }
func (l *adapter) Warn(msg string, args ...any)  { l.inner.Warn(msg, l.args(args)...) }
func (l *adapter) Error(msg string, args ...any) { l.inner.Error(msg, l.args(args)...) }
func (l *adapter) Fatal(msg string, args ...any) { l.inner.Fatal(msg, l.args(args)...) }

func (l *adapter) args(args []any) []any {
	if len(l.pairs) == 0 {
		return args
	}
	return append(slices.Clone(l.pairs), args...)
}

func (l *adapter) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return l
	}
	if bound, ok := l.inner.(glog.FieldsLogger); ok {
		return &adapter{inner: bound.WithFields(maps.Clone(fields)), pairs: l.pairs}
	}

	pairs := slices.Clone(l.pairs)
	for _, key := range slices.Sorted(maps.Keys(fields)) {
		pairs = append(pairs, key, fields[key])
	}
	return &adapter{inner: l.inner, pairs: pairs}
}

func (l *adapter) WithContext(ctx context.Context) interfaces.Logger {
	if ctx == nil {
		return l
	}
	return &adapter{inner: l.inner.WithContext(ctx), pairs: l.pairs}
}
