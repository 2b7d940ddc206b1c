package tags

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"regexp"
	"sort"
	"strings"
)

var curatedLinePattern = regexp.MustCompile(`^-\s*([\p{L}\p{N}_]+)`)

// Set is a read only collection of curated tag names.
type Set map[string]struct{}

// NewSet builds a set from names.
func NewSet(names ...string) Set {
	set := make(Set, len(names))
	for _, name := range names {
		set[name] = struct{}{}
	}
	return set
}

// Has reports whether name is curated.
func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the names in ascending order.
func (s Set) Sorted() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadCurated reads the curated tag file at path. A missing file yields an
// empty set.
func LoadCurated(path string) (Set, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Set{}, nil
		}
		return nil, fmt.Errorf("tags: open curated %s: %w", path, err)
	}
	defer file.Close()

	set, err := ParseCurated(file)
	if err != nil {
		return nil, fmt.Errorf("tags: read curated %s: %w", path, err)
	}
	return set, nil
}

// ParseCurated collects `- name` bullets from r. The name is the run of
// letters, digits and underscores after the dash; other lines are ignored
// whatever their length.
func ParseCurated(r io.Reader) (Set, error) {
	set := Set{}
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if match := curatedLinePattern.FindStringSubmatch(strings.TrimSpace(line)); match != nil {
			set[match[1]] = struct{}{}
		}
		if errors.Is(err, io.EOF) {
			return set, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
