package config

import (
	"errors"
	"io/fs"
	"strconv"
	"time"

	"github.com/dmitrijs2005/moodjournal/internal/flagx"
	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// EnvConfig lists the environment variables the server reads. Unset
// variables leave the corresponding Config field untouched.
type EnvConfig struct {
	EndpointAddrHTTP        string        `env:"HTTP_ADDR"`
	EndpointAddrGRPC        string        `env:"GRPC_ADDR"`
	DatabaseDSN             string        `env:"DATABASE_URL"`
	SecretKey               string        `env:"SECRET_KEY"`
	SessionValidityDuration time.Duration `env:"SESSION_TTL"`
	SecureCookies           string        `env:"SECURE_COOKIES"`
	LogLevel                string        `env:"LOG_LEVEL"`
	AdviceStrategy          string        `env:"ADVICE_STRATEGY"`
	GeminiAPIKey            string        `env:"GEMINI_API_KEY"`
	GeminiModel             string        `env:"GEMINI_MODEL"`
	GenerationTimeout       time.Duration `env:"GENERATION_TIMEOUT"`
	ChartWindow             int           `env:"CHART_WINDOW"`
	S3RootUser              string        `env:"S3_ROOT_USER"`
	S3RootPassword          string        `env:"S3_ROOT_PASSWORD"`
	S3Bucket                string        `env:"S3_BUCKET"`
	S3Region                string        `env:"S3_REGION"`
	S3BaseEndpoint          string        `env:"S3_BASE_ENDPOINT"`
}

// loadDotEnv reads the dotenv file named by -env (default ".env") into the
// process environment. Variables already set win over the file. A missing
// default file is not an error.
func loadDotEnv() {
	path := flagx.EnvFileFlags()
	explicit := path != ""
	if !explicit {
		path = ".env"
	}

	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return
		}
		panic(err)
	}
}

// parseEnv overlays environment variables onto config.
func parseEnv(config *Config) {
	loadDotEnv()

	e := &EnvConfig{}
	if err := envdecode.Decode(e); err != nil {
		if errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
			return
		}
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, e.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, e.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, e.DatabaseDSN)
	setString(&config.SecretKey, e.SecretKey)
	if e.SessionValidityDuration > 0 {
		config.SessionValidityDuration = e.SessionValidityDuration
	}
	if e.SecureCookies != "" {
		v, err := strconv.ParseBool(e.SecureCookies)
		if err != nil {
			panic(err)
		}
		config.SecureCookies = v
	}
	setString(&config.LogLevel, e.LogLevel)
	setString(&config.AdviceStrategy, e.AdviceStrategy)
	setString(&config.GeminiAPIKey, e.GeminiAPIKey)
	setString(&config.GeminiModel, e.GeminiModel)
	if e.GenerationTimeout > 0 {
		config.GenerationTimeout = e.GenerationTimeout
	}
	setInt(&config.ChartWindow, e.ChartWindow)
	setString(&config.S3RootUser, e.S3RootUser)
	setString(&config.S3RootPassword, e.S3RootPassword)
	setString(&config.S3Bucket, e.S3Bucket)
	setString(&config.S3Region, e.S3Region)
	setString(&config.S3BaseEndpoint, e.S3BaseEndpoint)
}
