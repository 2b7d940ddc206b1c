package commands

import (
	"strings"

	"github.com/goliatone/go-vault-export/internal/logging"
	"github.com/goliatone/go-vault-export/pkg/interfaces"
)

// CommandLogger returns the `vault.commands.<handler>` logger, tagged with the
// handler name so run, preview and history entries can be told apart.
func CommandLogger(provider interfaces.LoggerProvider, handler string) interfaces.Logger {
	handler = strings.ToLower(strings.TrimSpace(handler))
	if handler == "" {
		return logging.ModuleLogger(provider, "vault.commands")
	}
	return logging.WithFields(logging.ModuleLogger(provider, "vault.commands."+handler), map[string]any{
		"handler": handler,
	})
}
