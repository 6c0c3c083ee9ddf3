package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// noDotenv points DOTENV_FILE at a path that does not exist so a developer's
// local .env cannot leak into the test.
func noDotenv(t *testing.T) {
	t.Setenv("DOTENV_FILE", filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoad(t *testing.T) {
	noDotenv(t)
	t.Setenv("API_KEY", "test-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "gemini", cfg.VisionBackend)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, int64(20<<20), cfg.MaxUploadBytes)
	assert.Equal(t, "test-key", cfg.APIKey)
}

func TestLoadCustomValues(t *testing.T) {
	noDotenv(t)
	t.Setenv("LISTEN_ADDR", ":9000")
	t.Setenv("VISION_BACKEND", "claude")
	t.Setenv("API_KEY", "sk-test123")
	t.Setenv("SESSION_TTL", "5m")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "claude", cfg.VisionBackend)
	assert.Equal(t, "sk-test123", cfg.APIKey)
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL)
}

func TestLoadMissingAPIKey(t *testing.T) {
	noDotenv(t)
	t.Setenv("API_KEY", "")

	_, err := Load()
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestLoadOllamaNeedsNoKey(t *testing.T) {
	noDotenv(t)
	t.Setenv("API_KEY", "")
	t.Setenv("VISION_BACKEND", "ollama")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "ollama", cfg.VisionBackend)
}

func TestLoadUnknownBackend(t *testing.T) {
	noDotenv(t)
	t.Setenv("API_KEY", "k")
	t.Setenv("VISION_BACKEND", "carrier-pigeon")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadDotenvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("OLLAMA_MODEL=moondream\n"), 0600))
	t.Setenv("DOTENV_FILE", path)
	t.Setenv("API_KEY", "k")
	// Registered so t.Setenv restores the variable godotenv sets.
	t.Setenv("OLLAMA_MODEL", "")
	require.NoError(t, os.Unsetenv("OLLAMA_MODEL"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "moondream", cfg.OllamaModel)
}
