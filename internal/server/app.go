// Package server wires configuration, storage, services and transports of
// the journal server and runs them until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/moodjournal/internal/common"
	"github.com/dmitrijs2005/moodjournal/internal/logging"
	"github.com/dmitrijs2005/moodjournal/internal/server/advice"
	"github.com/dmitrijs2005/moodjournal/internal/server/config"
	gs "github.com/dmitrijs2005/moodjournal/internal/server/grpc"
	"github.com/dmitrijs2005/moodjournal/internal/server/housekeeping"
	"github.com/dmitrijs2005/moodjournal/internal/server/httpserver"
	"github.com/dmitrijs2005/moodjournal/internal/server/objectstore"
	"github.com/dmitrijs2005/moodjournal/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/moodjournal/internal/server/services"
)

const startupTimeout = 30 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	http    *httpserver.Server
	grpc    *gs.GRPCServer
	janitor *housekeeping.SessionJanitor
}

// NewApp connects to PostgreSQL, applies migrations and builds every
// component. Any failure here means the server must not start.
func NewApp(c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	if c.SecretKey == config.DevSecretKey {
		key, err := common.MakeRandHexString(32)
		if err != nil {
			return nil, fmt.Errorf("secret key generation error: %w", err)
		}
		logger.Warn(ctx, "SECRET_KEY not set, using an ephemeral key; sessions end on restart")
		c.SecretKey = key
	}

	db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	sessions := services.NewSessionService(db, rm, c.SecretKey, c.SessionValidityDuration)

	gen := newGenerator(ctx, c, logger)
	deps := httpserver.Deps{
		Accounts:  services.NewAccountService(db, rm),
		Sessions:  sessions,
		Entries:   services.NewEntryService(db, rm),
		Advisor:   newAdvisor(c, gen, logger),
		Companion: advice.NewCompanion(gen, c.GenerationTimeout, logger),
		Health:    db.PingContext,
	}

	if c.ExportEnabled() {
		store, err := objectstore.NewS3Store(ctx, objectstore.Options{
			Region:       c.S3Region,
			AccessKey:    c.S3RootUser,
			SecretKey:    c.S3RootPassword,
			BaseEndpoint: c.S3BaseEndpoint,
			Bucket:       c.S3Bucket,
		})
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("object store init error: %w", err)
		}
		deps.Export = services.NewExportService(db, rm, store)
	}

	hs, err := httpserver.NewServer(deps, httpserver.Options{
		Address:       c.EndpointAddrHTTP,
		ChartWindow:   c.ChartWindow,
		SecureCookies: c.SecureCookies,
		LoginRate:     c.LoginRateLimit,
		LoginBurst:    c.LoginRateBurst,
	}, logger)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("http server init error: %w", err)
	}

	janitor, err := housekeeping.NewSessionJanitor(c.SessionCleanupSchedule, sessions, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &App{
		config:  c,
		logger:  logger,
		db:      db,
		http:    hs,
		grpc:    gs.NewGRPCServer(c.EndpointAddrGRPC, logger),
		janitor: janitor,
	}, nil
}

// newGenerator returns nil when no API key is configured, which makes
// advice and chat answer with their fallback text.
func newGenerator(ctx context.Context, c *config.Config, logger logging.Logger) advice.Generator {
	if c.GeminiAPIKey == "" {
		logger.Warn(ctx, "GEMINI_API_KEY not set, generated replies will use fallback text")
		return nil
	}
	gen, err := advice.NewGeminiGenerator(ctx, c.GeminiAPIKey, c.GeminiModel)
	if err != nil {
		logger.Error(ctx, "gemini client init failed, generated replies will use fallback text", "error", err)
		return nil
	}
	return gen
}

func newAdvisor(c *config.Config, gen advice.Generator, logger logging.Logger) advice.Advisor {
	if c.AdviceStrategy == config.AdviceGemini {
		return advice.NewGenerativeAdvisor(gen, c.GenerationTimeout, logger)
	}
	return advice.NewKeywordAdvisor(nil)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.grpc.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.http.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.janitor.Run(ctx)
	}()

	app.grpc.SetServing(true)

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
