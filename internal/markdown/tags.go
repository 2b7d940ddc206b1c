package markdown

import (
	"bytes"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const headerFence = "---"

// TagOutcome classifies what ExtractTags found in a note.
type TagOutcome int

const (
	// TagsFound means the header declared a usable tags value.
	TagsFound TagOutcome = iota
	// TagsNoHeader means the note does not open with a header block.
	TagsNoHeader
	// TagsUnparseable means the header block is not a YAML mapping.
	TagsUnparseable
	// TagsMissing means the header parsed but has no usable tags value.
	TagsMissing
)

func (o TagOutcome) String() string {
	switch o {
	case TagsFound:
		return "found"
	case TagsNoHeader:
		return "no_header"
	case TagsUnparseable:
		return "unparseable"
	case TagsMissing:
		return "missing"
	default:
		return "unknown"
	}
}

// TagResult is the outcome of reading tags from a note header. Err is set
// only for TagsUnparseable and is informational; callers never abort on it.
type TagResult struct {
	Outcome TagOutcome
	Err     error
	tags    []string
}

// Tags returns the declared tags, or an empty sequence for every outcome
// other than TagsFound.
func (r TagResult) Tags() []string {
	if r.Outcome != TagsFound {
		return []string{}
	}
	return append([]string{}, r.tags...)
}

// HeaderBlock returns the text between the opening `---` at the very start
// of source and the next `---` after it.
func HeaderBlock(source []byte) ([]byte, bool) {
	if !bytes.HasPrefix(source, []byte(headerFence)) {
		return nil, false
	}
	rest := source[len(headerFence):]
	end := bytes.Index(rest, []byte(headerFence))
	if end < 0 {
		return nil, false
	}
	return rest[:end], true
}

// ExtractTags reads the `tags` field of the note's header block. A string
// value becomes a one element sequence and a sequence is taken as-is.
func ExtractTags(source []byte) TagResult {
	block, ok := HeaderBlock(source)
	if !ok {
		return TagResult{Outcome: TagsNoHeader}
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(block, &doc); err != nil {
		return TagResult{Outcome: TagsUnparseable, Err: fmt.Errorf("markdown: parse header: %w", err)}
	}
	if len(doc.Content) == 0 {
		return TagResult{Outcome: TagsMissing}
	}

	root := resolveAlias(doc.Content[0])
	switch {
	case root.Kind == yaml.MappingNode:
	case root.Kind == yaml.ScalarNode && root.Tag == "!!null":
		return TagResult{Outcome: TagsMissing}
	default:
		return TagResult{Outcome: TagsUnparseable, Err: fmt.Errorf("markdown: parse header: line %d: header is not a mapping", root.Line)}
	}

	value := lastValue(root, "tags")
	if value == nil {
		return TagResult{Outcome: TagsMissing}
	}

	switch value.Kind {
	case yaml.ScalarNode:
		if tag, ok := decodeScalar(value).(string); ok {
			return TagResult{Outcome: TagsFound, tags: []string{tag}}
		}
		return TagResult{Outcome: TagsMissing}
	case yaml.SequenceNode:
		tags := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			item = resolveAlias(item)
			if item.Kind != yaml.ScalarNode {
				continue
			}
			if tag, ok := scalarString(decodeScalar(item)); ok {
				tags = append(tags, tag)
			}
		}
		return TagResult{Outcome: TagsFound, tags: tags}
	default:
		return TagResult{Outcome: TagsMissing}
	}
}

// lastValue returns the value of the last occurrence of key in a mapping
// node. Repeated keys are legal in note headers; the last one wins.
func lastValue(mapping *yaml.Node, key string) *yaml.Node {
	var value *yaml.Node
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Kind == yaml.ScalarNode && mapping.Content[i].Value == key {
			value = mapping.Content[i+1]
		}
	}
	if value == nil {
		return nil
	}
	return resolveAlias(value)
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node != nil && node.Kind == yaml.AliasNode {
		node = node.Alias
	}
	return node
}

func decodeScalar(node *yaml.Node) any {
	var value any
	if err := node.Decode(&value); err != nil {
		return nil
	}
	return value
}

// ReadTags reads the note at name from fsys and extracts its tags. Only I/O
// failures are returned as errors.
func ReadTags(fsys fs.FS, name string) (TagResult, error) {
	source, err := fs.ReadFile(fsys, name)
	if err != nil {
		return TagResult{}, fmt.Errorf("markdown: read tags %s: %w", name, err)
	}
	return ExtractTags(source), nil
}

func scalarString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case uint64:
		return strconv.FormatUint(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), true
	case bool:
		return strconv.FormatBool(v), true
	case time.Time:
		if v.Hour() == 0 && v.Minute() == 0 && v.Second() == 0 && v.Nanosecond() == 0 {
			return v.Format("2006-01-02"), true
		}
		return v.Format(time.RFC3339), true
	default:
		return "", false
	}
}
