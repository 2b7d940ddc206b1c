package markdown

import (
	"bytes"
	"fmt"
	"path"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/goliatone/go-slug"
	"gopkg.in/yaml.v3"
)

const copyrightMark = "©"

var yamlFormat = frontmatter.NewFormat("---", "---", yaml.Unmarshal)

// Preview is an HTML rendering of a note, the tag index or the run log.
type Preview struct {
	// Title comes from the header block, else the first level one heading.
	Title string
	Tags  []string
	HTML  []byte
}

type previewMeta struct {
	Title string `yaml:"title"`
}

// RenderPreview renders source to HTML. A leading copyright line stamped by
// the exporter is kept as the first paragraph, and the YAML header block
// after it is stripped from the body and used for the title and tags.
func RenderPreview(r *GoldmarkRenderer, source []byte) (*Preview, error) {
	if r == nil {
		r = NewGoldmarkRenderer(RenderOptions{})
	}

	stamp, rest := splitCopyright(source)

	var meta previewMeta
	body, err := frontmatter.Parse(bytes.NewReader(rest), &meta, yamlFormat)
	if err != nil {
		return nil, fmt.Errorf("markdown preview: parse header: %w", err)
	}

	document := append(append([]byte{}, stamp...), body...)
	html, err := r.Render(document)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(meta.Title)
	if title == "" {
		title = firstHeading(body)
	}

	return &Preview{
		Title: title,
		Tags:  ExtractTags(rest).Tags(),
		HTML:  html,
	}, nil
}

func splitCopyright(source []byte) ([]byte, []byte) {
	if !bytes.HasPrefix(source, []byte(copyrightMark)) {
		return nil, source
	}
	end := bytes.Index(source, []byte("\n\n"))
	if end < 0 {
		return source, nil
	}
	return source[:end+2], source[end+2:]
}

func firstHeading(body []byte) string {
	for _, line := range strings.Split(string(body), "\n") {
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return ""
}

// PreviewFileName returns the HTML file name for a preview, slugged from the
// title when present and from the note name otherwise.
func PreviewFileName(title, name string) (string, error) {
	candidate := strings.TrimSpace(title)
	if candidate == "" {
		candidate = strings.TrimSuffix(path.Base(name), path.Ext(name))
	}
	normalized, err := slug.Normalize(candidate)
	if err != nil {
		return "", fmt.Errorf("markdown preview: slug %q: %w", candidate, err)
	}
	if normalized == "" {
		return "", fmt.Errorf("markdown preview: empty slug for %q", name)
	}
	return normalized + ".html", nil
}
