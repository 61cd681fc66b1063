package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"server_addr":           "0.0.0.0:9000",
		"database_dsn":          "postgres://json",
		"api_key":               "json-key",
		"s3_bucket":             "bucket",
		"external_call_timeout": "2s",
		"retry_base_delay":      "50ms",
		"lockout_backend":       "bolt",
		"cors_allowed_origins":  []string{"https://shop.example"},
	})

	t.Run("loads from json", func(t *testing.T) {
		cfg := &Config{}
		cfg.LoadDefaults()
		require.NoError(t, parseJson(cfg, []string{"-config", path}))

		assert.Equal(t, "0.0.0.0:9000", cfg.ServerAddr)
		assert.Equal(t, "postgres://json", cfg.DatabaseDSN)
		assert.Equal(t, "json-key", cfg.APIKey)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, 2*time.Second, cfg.ExternalCallTimeout)
		assert.Equal(t, 50*time.Millisecond, cfg.RetryBaseDelay)
		assert.Equal(t, "bolt", cfg.LockoutBackend)
		assert.Equal(t, []string{"https://shop.example"}, cfg.CORSAllowedOrigins)

		// absent keys keep defaults
		assert.Equal(t, "us-east-1", cfg.S3Region)
		assert.Equal(t, int64(10<<20), cfg.MaxPhotoBytes)
		assert.True(t, cfg.RunMigrations)
	})

	t.Run("no config flag means no changes", func(t *testing.T) {
		cfg := &Config{ServerAddr: "defaults:1234"}
		require.NoError(t, parseJson(cfg, []string{"-a", ":1"}))
		assert.Equal(t, "defaults:1234", cfg.ServerAddr)
	})

	t.Run("missing file", func(t *testing.T) {
		cfg := &Config{}
		require.Error(t, parseJson(cfg, []string{"-c", filepath.Join(t.TempDir(), "nope.json")}))
	})

	t.Run("invalid JSON", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		cfg := &Config{}
		require.Error(t, parseJson(cfg, []string{"-c", bad}))
	})
}
