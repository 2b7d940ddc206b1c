package runtimeconfig

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON []byte

// ErrConfigInvalid wraps schema violations found in a config file.
var ErrConfigInvalid = errors.New("vault config: file does not match schema")

// Issue is a single schema violation with its JSON pointer location.
type Issue struct {
	Location string
	Message  string
}

// FileError reports every schema issue found in a config file.
type FileError struct {
	Path   string
	Issues []Issue
}

func (e *FileError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		location := issue.Location
		if location == "" {
			location = "#"
		}
		parts = append(parts, fmt.Sprintf("%s: %s", location, issue.Message))
	}
	return fmt.Sprintf("vault config %s: %s", e.Path, strings.Join(parts, "; "))
}

func (e *FileError) Unwrap() error {
	return ErrConfigInvalid
}

var (
	compiledOnce   sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

// LoadFile reads a YAML config file, validates it against the embedded schema
// and overlays it on DefaultConfig. Relative paths inside the file are
// resolved against the file's directory.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("vault config: read %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes config bytes. origin is used for error messages and as the
// base for relative paths; pass "" to leave relative paths untouched.
func Parse(data []byte, origin string) (Config, error) {
	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("vault config: decode %s: %w", origin, err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	if err := validateDocument(raw, origin); err != nil {
		return Config{}, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("vault config: decode %s: %w", origin, err)
	}

	if origin != "" {
		base := filepath.Dir(origin)
		for _, field := range []*string{&cfg.SourceRoot, &cfg.DestinationRoot, &cfg.TagsFile, &cfg.IndexFile, &cfg.LogFile} {
			*field = relativeTo(base, *field)
		}
	}
	return cfg, nil
}

func validateDocument(raw any, origin string) error {
	schema, err := configSchema()
	if err != nil {
		return fmt.Errorf("vault config: compile schema: %w", err)
	}

	// round trip through JSON so the validator sees float64 numbers and
	// string-keyed maps only
	encoded, err := json.Marshal(raw)
	if err != nil {
		return &FileError{Path: origin, Issues: []Issue{{Message: err.Error()}}}
	}
	var doc any
	if err := json.Unmarshal(encoded, &doc); err != nil {
		return &FileError{Path: origin, Issues: []Issue{{Message: err.Error()}}}
	}

	if err := schema.Validate(doc); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			return &FileError{Path: origin, Issues: collectIssues(validationErr)}
		}
		return &FileError{Path: origin, Issues: []Issue{{Message: err.Error()}}}
	}
	return nil
}

func configSchema() (*jsonschema.Schema, error) {
	compiledOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource("config.schema.json", bytes.NewReader(schemaJSON)); err != nil {
			compileErr = err
			return
		}
		compiledSchema, compileErr = compiler.Compile("config.schema.json")
	})
	return compiledSchema, compileErr
}

func collectIssues(err *jsonschema.ValidationError) []Issue {
	var issues []Issue
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, Issue{
				Location: strings.TrimSpace(node.InstanceLocation),
				Message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(err)
	return issues
}

func relativeTo(base, path string) string {
	if strings.TrimSpace(path) == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
