package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"akara-desktop/internal/domain"
)

func TestResolveBackendURLPrecedence(t *testing.T) {
	settings := domain.Settings{BackendURL: "http://from-settings:8001"}

	t.Run("flag wins", func(t *testing.T) {
		t.Setenv(EnvBackendURL, "http://from-env:8001")
		assert.Equal(t, "http://from-flag:9000", ResolveBackendURL(" http://from-flag:9000/ ", settings))
	})

	t.Run("env over legacy env", func(t *testing.T) {
		t.Setenv(EnvBackendURL, "http://from-env:8001")
		t.Setenv(EnvLegacyBackendURL, "http://legacy:8001")
		assert.Equal(t, "http://from-env:8001", ResolveBackendURL("", settings))
	})

	t.Run("legacy env over settings", func(t *testing.T) {
		t.Setenv(EnvBackendURL, "")
		t.Setenv(EnvLegacyBackendURL, "http://legacy:8001/")
		assert.Equal(t, "http://legacy:8001", ResolveBackendURL("", settings))
	})

	t.Run("settings then default", func(t *testing.T) {
		t.Setenv(EnvBackendURL, "")
		t.Setenv(EnvLegacyBackendURL, "")
		assert.Equal(t, "http://from-settings:8001", ResolveBackendURL("", settings))
		assert.Equal(t, DefaultBackendURL, ResolveBackendURL("", domain.Settings{}))
	})
}

func TestLoadEnvFromFirstExistingFile(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "missing.env")
	second := filepath.Join(dir, "app.env")
	require.NoError(t, os.WriteFile(second, []byte("AKARA_TEST_ONLY_VALUE=loaded\n"), 0o644))
	t.Setenv("AKARA_TEST_ONLY_VALUE", "")
	require.NoError(t, os.Unsetenv("AKARA_TEST_ONLY_VALUE"))

	loaded, err := loadEnvFrom([]string{first, second})
	require.NoError(t, err)
	assert.Equal(t, second, loaded)
	assert.Equal(t, "loaded", os.Getenv("AKARA_TEST_ONLY_VALUE"))
}

func TestLoadEnvFromNoFiles(t *testing.T) {
	loaded, err := loadEnvFrom([]string{filepath.Join(t.TempDir(), "nope.env")})
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestDebugEnabled(t *testing.T) {
	t.Setenv(EnvDebug, "TRUE")
	assert.True(t, DebugEnabled())
	t.Setenv(EnvDebug, "0")
	assert.False(t, DebugEnabled())
}
