package vaultexport

import "github.com/goliatone/go-vault-export/internal/runtimeconfig"

var (
	ErrSourceRootRequired      = runtimeconfig.ErrSourceRootRequired
	ErrDestinationRootRequired = runtimeconfig.ErrDestinationRootRequired
	ErrOwnerRequired           = runtimeconfig.ErrOwnerRequired
	ErrMaxRunsInvalid          = runtimeconfig.ErrMaxRunsInvalid
	ErrLoggingProviderUnknown  = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid     = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid    = runtimeconfig.ErrLoggingFormatInvalid
	ErrWatchDebounceInvalid    = runtimeconfig.ErrWatchDebounceInvalid
	ErrConfigInvalid           = runtimeconfig.ErrConfigInvalid
)

type (
	Config          = runtimeconfig.Config
	LoggingConfig   = runtimeconfig.LoggingConfig
	WatchConfig     = runtimeconfig.WatchConfig
	ConfigFileError = runtimeconfig.FileError
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}

// LoadConfig reads a YAML config file over the defaults.
func LoadConfig(path string) (Config, error) {
	return runtimeconfig.LoadFile(path)
}
