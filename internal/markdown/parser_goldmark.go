package markdown

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
)

// RenderOptions tunes HTML rendering for previews.
type RenderOptions struct {
	// Extensions names goldmark extensions; empty selects GFM, linkify and task lists.
	Extensions []string
	HardWraps  bool
	// SafeMode suppresses raw HTML embedded in notes.
	SafeMode bool
}

// GoldmarkRenderer turns markdown into HTML with goldmark. It is stateless
// and safe to reuse.
type GoldmarkRenderer struct {
	defaults RenderOptions
}

// NewGoldmarkRenderer constructs a renderer with the given defaults.
func NewGoldmarkRenderer(defaults RenderOptions) *GoldmarkRenderer {
	return &GoldmarkRenderer{defaults: defaults}
}

// Render converts markdown to HTML with the renderer defaults.
func (r *GoldmarkRenderer) Render(markdown []byte) ([]byte, error) {
	return r.RenderWithOptions(markdown, r.defaults)
}

// RenderWithOptions converts markdown to HTML with explicit options.
func (r *GoldmarkRenderer) RenderWithOptions(markdown []byte, opts RenderOptions) ([]byte, error) {
	engine := newGoldmarkEngine(opts)
	var buf bytes.Buffer
	if err := engine.Convert(markdown, &buf); err != nil {
		return nil, fmt.Errorf("markdown render: %w", err)
	}
	return buf.Bytes(), nil
}

func newGoldmarkEngine(opts RenderOptions) goldmark.Markdown {
	rendererOptions := []renderer.Option{}
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}
	if !opts.SafeMode {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}

	engineOptions := []goldmark.Option{
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	}
	if len(rendererOptions) > 0 {
		engineOptions = append(engineOptions, goldmark.WithRendererOptions(rendererOptions...))
	}
	if exts := collectExtensions(opts.Extensions); len(exts) > 0 {
		engineOptions = append(engineOptions, goldmark.WithExtensions(exts...))
	}

	return goldmark.New(engineOptions...)
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"autolink":      extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
}

// unknown extension names are ignored
func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{
			extension.GFM,
			extension.Linkify,
			extension.TaskList,
		}
	}

	var extenders []goldmark.Extender
	seen := map[string]struct{}{}
	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, ok := seen[key]; ok || key == "" {
			continue
		}
		if ext, ok := extensionRegistry[key]; ok {
			extenders = append(extenders, ext)
			seen[key] = struct{}{}
		}
	}
	return extenders
}
