package tags

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

const indexTitle = "# Tag Index\n\n"

// Map associates a tag with the exported file names that declare it, one
// entry per occurrence in traversal order.
type Map map[string][]string

// Add appends file to every tag in tags.
func (m Map) Add(file string, tags ...string) {
	for _, tag := range tags {
		m[tag] = append(m[tag], file)
	}
}

// Tags returns the tag names in ascending order.
func (m Map) Tags() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Files returns a sorted copy of the files recorded for tag.
func (m Map) Files(tag string) []string {
	files := append([]string{}, m[tag]...)
	sort.Strings(files)
	return files
}

// Merge adds every curated tag missing from m with no files. Existing
// entries are left untouched.
func Merge(m Map, curated Set) {
	for name := range curated {
		if _, ok := m[name]; !ok {
			m[name] = []string{}
		}
	}
}

// RenderIndex renders the taxonomy index document.
func RenderIndex(header string, m Map) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString(indexTitle)
	for _, tag := range m.Tags() {
		fmt.Fprintf(&b, "## %s\n", tag)
		for _, file := range m.Files(tag) {
			fmt.Fprintf(&b, "- %s\n", file)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// WriteIndex renders the index and overwrites path with it.
func WriteIndex(path, header string, m Map) error {
	if err := os.WriteFile(path, []byte(RenderIndex(header, m)), 0o644); err != nil {
		return fmt.Errorf("tags: write index %s: %w", path, err)
	}
	return nil
}
