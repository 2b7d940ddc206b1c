package logging

import (
	"maps"

	"github.com/goliatone/go-vault-export/pkg/interfaces"
)

// WithFields attaches structured fields to a logger. Callers can pass nil or
// an empty map to skip allocation.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	copied := make(map[string]any, len(fields))
	maps.Copy(copied, fields)
	return logger.WithFields(copied)
}
