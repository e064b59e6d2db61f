package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"akara-desktop/internal/domain"
)

// Environment variables consulted for the backend location, in priority order.
const (
	EnvBackendURL       = "AKARA_BACKEND_URL"
	EnvLegacyBackendURL = "REACT_APP_BACKEND_URL"
	EnvDebug            = "AKARA_DEBUG"
)

// envFiles are probed in order; the first one that exists is loaded.
var envFiles = []string{
	".env",
	".env.local",
	"frontend/.env",
}

// LoadEnv loads the first .env file found. Missing files are not an error;
// variables already present in the process environment are never overridden.
func LoadEnv() (string, error) {
	return loadEnvFrom(envFiles)
}

func loadEnvFrom(paths []string) (string, error) {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return "", fmt.Errorf("load %s: %w", path, err)
		}
		return path, nil
	}
	return "", nil
}

// ResolveBackendURL picks the backend base URL from the flag value, the
// environment, persisted settings, and finally the built-in default.
func ResolveBackendURL(flagValue string, settings domain.Settings) string {
	candidates := []string{
		flagValue,
		os.Getenv(EnvBackendURL),
		os.Getenv(EnvLegacyBackendURL),
		settings.BackendURL,
		DefaultBackendURL,
	}
	for _, candidate := range candidates {
		if trimmed := strings.TrimSpace(candidate); trimmed != "" {
			return strings.TrimRight(trimmed, "/")
		}
	}
	return DefaultBackendURL
}

// DebugEnabled reports whether verbose logging was requested via environment.
func DebugEnabled() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(EnvDebug))) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}
