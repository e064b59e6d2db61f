package config

import (
	"os"
	"path/filepath"

	"akara-desktop/internal/domain"
)

// DefaultBackendURL is used when no other backend location is configured.
const DefaultBackendURL = "http://localhost:8001"

// DefaultSettings returns baseline local configuration for first launch.
func DefaultSettings() domain.Settings {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return domain.Settings{
		BackendURL: DefaultBackendURL,
		OutputDir:  filepath.Join(homeDir, "Music", "Akara"),
	}
}

// SettingsPath returns the settings file location under the user's home.
func SettingsPath(homeDir string) string {
	return filepath.Join(homeDir, ".akara", "settings.json")
}
