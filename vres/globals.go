package internal

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

var (
	// DefaultAppName is used for config discovery and the ignore-file name
	DefaultAppName        = "vres"
	DefaultIgnoreFileName = "." + DefaultAppName + "-ignore"
	DefaultManifestName   = "catalog"

	// DefaultConfigPath is the default directory searched for a catalog manifest
	DefaultConfigPath = filepath.Join(getHomeDir(), ".config", DefaultAppName)

	// DefaultKeySeparator is the canonical separator used by lookup keys
	DefaultKeySeparator = "/"
)

func getHomeDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		cwd, cwdErr := os.Getwd()
		if cwdErr != nil {
			return "/tmp"
		}
		return cwd
	}
	return homeDir
}

// GetLogger returns a properly configured zerolog logger instance
func GetLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
