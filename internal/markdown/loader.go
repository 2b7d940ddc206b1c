package markdown

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"
)

const defaultExtension = ".md"

// Document is a note discovered under the vault root. Source holds the raw
// bytes exactly as read; the file on disk is never modified.
type Document struct {
	// Path is the slash-separated path relative to the loader root.
	Path string
	// Name is the base file name, used as the flattened export name.
	Name   string
	Source []byte
}

// LoaderConfig configures how notes are discovered within the vault.
type LoaderConfig struct {
	// Extension is the case-sensitive file suffix to match (defaults to ".md").
	Extension string
	// Exclude lists base names that are never loaded, wherever they appear.
	Exclude []string
	// SkipDirs lists slash-separated directories, relative to the root, that
	// are not descended into.
	SkipDirs []string
}

// Loader walks a filesystem and yields the notes it finds.
type Loader struct {
	fs        fs.FS
	extension string
	exclude   map[string]struct{}
	skipDirs  map[string]struct{}
}

// NewLoader constructs a Loader over the provided filesystem.
func NewLoader(filesystem fs.FS, cfg LoaderConfig) *Loader {
	extension := cfg.Extension
	if strings.TrimSpace(extension) == "" {
		extension = defaultExtension
	}

	exclude := make(map[string]struct{}, len(cfg.Exclude))
	for _, name := range cfg.Exclude {
		if name = strings.TrimSpace(name); name != "" {
			exclude[name] = struct{}{}
		}
	}

	skip := make(map[string]struct{}, len(cfg.SkipDirs))
	for _, dir := range cfg.SkipDirs {
		if dir = strings.TrimSpace(dir); dir != "" {
			skip[path.Clean(filepath.ToSlash(dir))] = struct{}{}
		}
	}

	return &Loader{
		fs:        filesystem,
		extension: extension,
		exclude:   exclude,
		skipDirs:  skip,
	}
}

// FS exposes the underlying filesystem.
func (l *Loader) FS() fs.FS {
	return l.fs
}

// Matches reports whether a base name qualifies as a note.
func (l *Loader) Matches(name string) bool {
	if !strings.HasSuffix(name, l.extension) {
		return false
	}
	_, excluded := l.exclude[name]
	return !excluded
}

// LoadFile reads a single note.
func (l *Loader) LoadFile(ctx context.Context, name string) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name = filepath.ToSlash(name)
	data, err := fs.ReadFile(l.fs, name)
	if err != nil {
		return nil, fmt.Errorf("markdown loader read %s: %w", name, err)
	}

	return &Document{
		Path:   name,
		Name:   path.Base(name),
		Source: data,
	}, nil
}

// Walk visits every matching note in lexical fs.WalkDir order and hands it
// to fn. The walk stops at the first error from the filesystem, the context,
// or fn.
func (l *Loader) Walk(ctx context.Context, fn func(*Document) error) error {
	return fs.WalkDir(l.fs, ".", func(name string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return fmt.Errorf("markdown loader walk %s: %w", name, walkErr)
		}

		if d.IsDir() {
			if _, skip := l.skipDirs[name]; skip && name != "." {
				return fs.SkipDir
			}
			return nil
		}

		if !l.Matches(d.Name()) {
			return nil
		}

		doc, err := l.LoadFile(ctx, name)
		if err != nil {
			return err
		}
		return fn(doc)
	})
}
