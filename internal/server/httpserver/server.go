// Package httpserver serves the journal's web pages and JSON endpoints.
package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/moodjournal/internal/logging"
	"github.com/dmitrijs2005/moodjournal/internal/server/advice"
	"github.com/dmitrijs2005/moodjournal/internal/server/metrics"
	"github.com/dmitrijs2005/moodjournal/internal/server/models"
	"github.com/gorilla/mux"
)

const shutdownTimeout = 10 * time.Second

type AccountService interface {
	Register(ctx context.Context, username, pin string) (*models.Account, error)
	Authenticate(ctx context.Context, username, pin string) (*models.Account, error)
}

type SessionService interface {
	Open(ctx context.Context, account *models.Account) (string, time.Time, error)
	Resolve(ctx context.Context, token string) (*models.Identity, error)
	Close(ctx context.Context, sessionID string) error
}

type EntryService interface {
	Append(ctx context.Context, accountID, content, moodRaw string) (*models.Entry, error)
	History(ctx context.Context, accountID string) ([]*models.Entry, error)
	Series(ctx context.Context, accountID string, window int) ([]models.MoodPoint, error)
	MoodCounts(ctx context.Context, accountID string) ([]models.MoodCount, error)
}

type ExportService interface {
	Export(ctx context.Context, id *models.Identity) (string, error)
}

type Companion interface {
	Reply(ctx context.Context, displayName, message string) string
}

// Deps are the collaborators behind the routes. Export may be nil, which
// disables /export.
type Deps struct {
	Accounts  AccountService
	Sessions  SessionService
	Entries   EntryService
	Export    ExportService
	Advisor   advice.Advisor
	Companion Companion
	Health    func(ctx context.Context) error
}

type Options struct {
	Address       string
	ChartWindow   int
	SecureCookies bool
	LoginRate     int
	LoginBurst    int
}

type Server struct {
	deps     Deps
	opts     Options
	renderer *Renderer
	limiter  *RateLimiter
	logger   logging.Logger
	router   *mux.Router
}

func NewServer(deps Deps, opts Options, l logging.Logger) (*Server, error) {
	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}

	logger := l.With("module", "http_server")
	s := &Server{
		deps:     deps,
		opts:     opts,
		renderer: renderer,
		limiter:  NewRateLimiter(opts.LoginRate, opts.LoginBurst, logger),
		logger:   logger,
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(metrics.InstrumentHandler, securityHeaders)

	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	r.HandleFunc("/register", s.handleRegisterForm).Methods(http.MethodGet)
	r.HandleFunc("/register", s.limiter.Limit(s.handleRegister)).Methods(http.MethodPost)
	r.HandleFunc("/login", s.handleLoginForm).Methods(http.MethodGet)
	r.HandleFunc("/login", s.limiter.Limit(s.handleLogin)).Methods(http.MethodPost)
	r.HandleFunc("/logout", s.handleLogout).Methods(http.MethodGet)

	r.HandleFunc("/", s.requireSession(s.handleHome)).Methods(http.MethodGet)
	r.HandleFunc("/save", s.requireSession(s.handleSave)).Methods(http.MethodPost)
	r.HandleFunc("/history", s.requireSession(s.handleHistory)).Methods(http.MethodGet)
	r.HandleFunc("/dashboard", s.requireSession(s.handleDashboard)).Methods(http.MethodGet)
	r.HandleFunc("/ai-chat", s.requireSession(s.handleChatPage)).Methods(http.MethodGet)
	r.HandleFunc("/chat", s.requireSession(s.handleChat)).Methods(http.MethodPost)

	if s.deps.Export != nil {
		r.HandleFunc("/export", s.requireSession(s.handleExport)).Methods(http.MethodGet)
	}

	return r
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully. It returns
// only after in-flight requests have finished or the shutdown timed out.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Address)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", ln.Addr().String())

	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-stopped
	return nil
}
