package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "resell.sqlite3", cfg.DBPath)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 120, cfg.RateLimit)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 1, cfg.LowStockThreshold)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("RESELL_ADDR", "127.0.0.1:9000")
	t.Setenv("RESELL_LOG_FORMAT", "json")
	t.Setenv("RESELL_LOW_STOCK_THRESHOLD", "3")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Addr)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 3, cfg.LowStockThreshold)
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("RESELL_DB=/tmp/shop.sqlite3\n"), 0o600))
	// godotenv never overrides variables that are already set.
	t.Setenv("RESELL_DB", "")
	os.Unsetenv("RESELL_DB")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/shop.sqlite3", cfg.DBPath)
	os.Unsetenv("RESELL_DB")
}

func TestLoadMissingEnvFileIsIgnored(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.env"))
	require.NoError(t, err)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("RESELL_LOG_FORMAT", "xml")
	_, err := Load("")
	require.Error(t, err)
}
