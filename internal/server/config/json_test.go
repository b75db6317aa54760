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
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, map[string]any{
		"endpoint_addr_http":        "www.example:9000",
		"database_dsn":              "postgres://journal",
		"secret_key":                "my_secret_key",
		"session_validity_duration": "45m",
		"secure_cookies":            true,
		"advice_strategy":           "gemini",
		"gemini_api_key":            "key-123",
		"generation_timeout":        "5s",
		"chart_window":              10,
		"s3_bucket":                 "bucket",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", path}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "www.example:9000", cfg.EndpointAddrHTTP)
		assert.Equal(t, "postgres://journal", cfg.DatabaseDSN)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, 45*time.Minute, cfg.SessionValidityDuration)
		assert.True(t, cfg.SecureCookies)
		assert.Equal(t, AdviceGemini, cfg.AdviceStrategy)
		assert.Equal(t, "key-123", cfg.GeminiAPIKey)
		assert.Equal(t, 5*time.Second, cfg.GenerationTimeout)
		assert.Equal(t, 10, cfg.ChartWindow)
		assert.Equal(t, "bucket", cfg.S3Bucket)
	})

	t.Run("absent keys keep current values", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", path}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, ":50051", cfg.EndpointAddrGRPC)
		assert.Equal(t, "gemini-2.0-flash", cfg.GeminiModel)
		assert.Equal(t, "@every 15m", cfg.SessionCleanupSchedule)
	})

	t.Run("no config flag means no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{EndpointAddrHTTP: "defaults:1234"}
		parseJson(cfg)
		assert.Equal(t, &Config{EndpointAddrHTTP: "defaults:1234"}, cfg)
	})

	t.Run("missing file panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(t.TempDir(), "nope.json")}
		assert.Panics(t, func() { parseJson(&Config{}) })
	})

	t.Run("malformed file panics", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
		os.Args = []string{"testbin", "-c", bad}
		assert.Panics(t, func() { parseJson(&Config{}) })
	})
}
