package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/moodjournal/internal/flagx"
	"github.com/dmitrijs2005/moodjournal/internal/timex"
)

// JsonConfig is the on-disk shape of the optional JSON config file.
// Durations accept "15m"-style strings or integer nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP        string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC        string         `json:"endpoint_addr_grpc"`
	DatabaseDSN             string         `json:"database_dsn"`
	SecretKey               string         `json:"secret_key"`
	SessionValidityDuration timex.Duration `json:"session_validity_duration"`
	SecureCookies           *bool          `json:"secure_cookies"`
	LogLevel                string         `json:"log_level"`
	AdviceStrategy          string         `json:"advice_strategy"`
	GeminiAPIKey            string         `json:"gemini_api_key"`
	GeminiModel             string         `json:"gemini_model"`
	GenerationTimeout       timex.Duration `json:"generation_timeout"`
	ChartWindow             int            `json:"chart_window"`
	LoginRateLimit          int            `json:"login_rate_limit"`
	LoginRateBurst          int            `json:"login_rate_burst"`
	SessionCleanupSchedule  string         `json:"session_cleanup_schedule"`
	S3RootUser              string         `json:"s3_root_user"`
	S3RootPassword          string         `json:"s3_root_password"`
	S3Bucket                string         `json:"s3_bucket"`
	S3Region                string         `json:"s3_region"`
	S3BaseEndpoint          string         `json:"s3_base_endpoint"`
}

// parseJson overlays values from the file named by -c/-config. Keys that are
// absent from the file keep their current value. An unreadable or malformed
// file panics: the server must not start on a config it could not read.
func parseJson(config *Config) {
	path := flagx.JsonConfigFlags()
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.SessionValidityDuration.Duration > 0 {
		config.SessionValidityDuration = c.SessionValidityDuration.Duration
	}
	if c.SecureCookies != nil {
		config.SecureCookies = *c.SecureCookies
	}
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.AdviceStrategy, c.AdviceStrategy)
	setString(&config.GeminiAPIKey, c.GeminiAPIKey)
	setString(&config.GeminiModel, c.GeminiModel)
	if c.GenerationTimeout.Duration > 0 {
		config.GenerationTimeout = c.GenerationTimeout.Duration
	}
	setInt(&config.ChartWindow, c.ChartWindow)
	setInt(&config.LoginRateLimit, c.LoginRateLimit)
	setInt(&config.LoginRateBurst, c.LoginRateBurst)
	setString(&config.SessionCleanupSchedule, c.SessionCleanupSchedule)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}
