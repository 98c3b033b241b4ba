package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/resume-builder/internal/autosave"
	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/editor"
	"github.com/jonathan/resume-builder/internal/export"
	"github.com/jonathan/resume-builder/internal/logging"
	"github.com/jonathan/resume-builder/internal/records"
	"github.com/jonathan/resume-builder/internal/server/middleware"
	"github.com/jonathan/resume-builder/internal/server/ratelimit"
	"github.com/jonathan/resume-builder/internal/store"
	"github.com/jonathan/resume-builder/internal/types"
	"golang.org/x/sync/errgroup"
)

// Server represents the HTTP server
type Server struct {
	responder
	cfg         *config.ServerConfig
	httpServer  *http.Server
	store       store.Store
	records     *records.Service
	editors     *editor.Manager
	exporter    *export.Pipeline
	rateLimiter *ratelimit.Limiter
	jwtService  *JWTService
	userService *UserService
	authHandler *AuthHandler
	validator   *validator.Validate
	closers     []func() error
	shutdown    chan struct{}
}

// Deps are the collaborators a Server is built from.
type Deps struct {
	Store     store.Store
	Users     UserStore
	Engine    export.Engine
	Scheduler autosave.Scheduler
	JWT       *config.JWTConfig
	Password  *config.PasswordConfig
	RateLimit *ratelimit.Config
	Log       *logging.Logger
}

// New creates a server from the environment. With DATABASE_URL set, users and
// resumes live in PostgreSQL and store changes fan out over Redis when
// REDIS_ADDR is set. With SQLITE_PATH set they live in that file. Otherwise
// everything is kept in memory.
func New(ctx context.Context, cfg *config.ServerConfig, log *logging.Logger) (*Server, error) {
	passwordConfig, err := config.NewPasswordConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create password config: %w", err)
	}
	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT config: %w", err)
	}

	deps := Deps{
		JWT:       jwtConfig,
		Password:  passwordConfig,
		RateLimit: ratelimit.LoadConfig(),
		Log:       log,
	}
	var closers []func() error

	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		closers = append(closers, func() error { database.Close(); return nil })
		if err := database.Migrate(ctx); err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}

		var notifier store.Notifier = store.NewLocalNotifier()
		if cfg.RedisAddr != "" {
			rn, err := store.NewRedisNotifier(log, cfg.RedisAddr, cfg.RedisChannel)
			if err != nil {
				database.Close()
				return nil, fmt.Errorf("failed to connect to redis: %w", err)
			}
			notifier = rn
		}
		pg := store.NewSQL(database, notifier, log)
		if err := pg.Start(ctx); err != nil {
			_ = pg.Close()
			database.Close()
			return nil, fmt.Errorf("failed to start store notifier: %w", err)
		}
		closers = append(closers, pg.Close)
		deps.Store = pg
		deps.Users = database
	} else if cfg.SQLitePath != "" {
		lite, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		closers = append(closers, lite.Close)
		nodes := store.NewSQL(lite, store.NewLocalNotifier(), log)
		if err := nodes.Start(ctx); err != nil {
			_ = lite.Close()
			return nil, fmt.Errorf("failed to start store notifier: %w", err)
		}
		closers = append(closers, nodes.Close)
		deps.Store = nodes
		deps.Users = lite
	} else {
		log.Warn("neither DATABASE_URL nor SQLITE_PATH set, keeping users and resumes in memory")
		deps.Store = store.NewMemory()
		deps.Users = db.NewMemoryUsers()
	}

	browser := export.NewBrowser(export.BrowserOptions{ChromePath: cfg.ChromePath, Timeout: cfg.ExportTimeout})
	closers = append(closers, func() error { browser.Close(); return nil })
	deps.Engine = browser

	s, err := NewWithDeps(cfg, deps)
	if err != nil {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
		return nil, err
	}
	s.closers = closers
	return s, nil
}

// NewWithDeps creates a server over explicit collaborators.
func NewWithDeps(cfg *config.ServerConfig, deps Deps) (*Server, error) {
	if deps.Store == nil || deps.Users == nil || deps.Engine == nil {
		return nil, fmt.Errorf("store, users and export engine are required")
	}
	if deps.JWT == nil || deps.Password == nil {
		return nil, fmt.Errorf("JWT and password configuration are required")
	}
	if deps.Log == nil {
		deps.Log = logging.NewNop()
	}

	s := &Server{
		responder: responder{log: deps.Log},
		cfg:       cfg,
		store:     deps.Store,
		records:   records.NewService(deps.Store, deps.Log),
		editors: editor.NewManager(deps.Store, editor.Options{
			AutosaveDelay: cfg.AutosaveDelay,
			Scheduler:     deps.Scheduler,
			Log:           deps.Log,
		}),
		exporter: export.NewPipeline(deps.Engine, export.Options{
			Timeout: cfg.ExportTimeout,
			Log:     deps.Log,
		}),
		rateLimiter: ratelimit.NewLimiter(deps.RateLimit),
		validator:   types.Validator(),
		shutdown:    make(chan struct{}),
	}

	s.userService = NewUserService(deps.Users, deps.Password)
	s.jwtService = NewJWTService(deps.JWT)
	s.authHandler = NewAuthHandler(s.userService, s.jwtService, deps.Log)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(s.routes()))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.ExportTimeout + 30*time.Second, // exports can take most of the export timeout
		IdleTimeout:  60 * time.Second,
	}
	s.httpServer.RegisterOnShutdown(func() { close(s.shutdown) })
	return s, nil
}

func (s *Server) routes() *http.ServeMux {
	auth := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	protected := func(h http.HandlerFunc) http.Handler { return auth(h) }

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	// Accounts
	mux.HandleFunc("POST /auth/register", s.authHandler.Register)
	mux.HandleFunc("POST /auth/login", s.authHandler.Login)
	mux.Handle("POST /auth/logout", protected(s.authHandler.Logout))
	mux.Handle("GET /auth/me", protected(s.authHandler.Me))
	mux.Handle("PUT /auth/password", protected(s.authHandler.UpdatePassword))

	// Dashboard and stored records
	mux.Handle("GET /resumes", protected(s.handleListResumes))
	mux.Handle("GET /resumes/events", protected(s.handleDashboardEvents))
	mux.Handle("POST /resumes", protected(s.handleCreateResume))
	mux.Handle("POST /resumes/import", protected(s.handleImportResume))
	mux.Handle("GET /resumes/{id}", protected(s.handleGetResume))
	mux.Handle("DELETE /resumes/{id}", protected(s.handleDeleteResume))
	mux.Handle("POST /resumes/{id}/duplicate", protected(s.handleDuplicateResume))
	mux.Handle("PUT /resumes/{id}/appearance", protected(s.handleUpdateAppearance))

	// Editing sessions
	mux.Handle("POST /resumes/{id}/session", protected(s.handleOpenSession))
	mux.Handle("GET /resumes/{id}/session", protected(s.handleGetSession))
	mux.Handle("DELETE /resumes/{id}/session", protected(s.handleCloseSession))
	mux.Handle("GET /resumes/{id}/session/events", protected(s.handleSessionEvents))
	mux.Handle("POST /resumes/{id}/session/save", protected(s.handleSaveSession))
	mux.Handle("PUT /resumes/{id}/session/title", protected(s.handleSetTitle))
	mux.Handle("PUT /resumes/{id}/session/sections/{section}", protected(s.handleUpdateSection))
	mux.Handle("POST /resumes/{id}/session/sections/{section}/entries", protected(s.handleAddEntry))
	mux.Handle("DELETE /resumes/{id}/session/sections/{section}/entries/{entry}", protected(s.handleRemoveEntry))
	mux.Handle("PUT /resumes/{id}/session/sections/{section}/entries/{entry}/current", protected(s.handleSetCurrent))
	mux.Handle("POST /resumes/{id}/session/sections/{section}/entries/{entry}/items", protected(s.handleAddItem))
	mux.Handle("DELETE /resumes/{id}/session/sections/{section}/entries/{entry}/items/{index}", protected(s.handleRemoveItem))

	// Preview and export
	mux.Handle("GET /resumes/{id}/preview", protected(s.handlePreview))
	mux.Handle("GET /resumes/{id}/export.pdf", protected(s.handleExport))
	mux.Handle("GET /resumes/{id}/print.pdf", protected(s.handlePrint))
	return mux
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves until ctx is cancelled or the process receives SIGINT/SIGTERM,
// then shuts down gracefully and releases every collaborator.
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	err := g.Wait()
	s.Close()
	s.log.Info("server stopped")
	return err
}

// Close ends editing sessions, which start their final saves, and releases
// the rate limiter, browser, store and database.
func (s *Server) Close() {
	s.editors.CloseAll()
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			s.log.Warn("failed to release resource", "error", err)
		}
	}
	s.closers = nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	origin := s.cfg.CORSOrigin
	if origin == "" {
		origin = config.DefaultCORSOrigin
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Expose-Headers", "Content-Disposition, X-Export-Tier")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(s.extractClientID(r), r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, r, info)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

// Flush keeps streaming responses working through the recorder.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"remote", r.RemoteAddr,
			"duration", time.Since(start),
		)
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// extractClientID extracts the client identifier from the request.
// This uses the IP address from RemoteAddr; X-Forwarded-For is not trusted.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, r *http.Request, info ratelimit.Info) {
	response := map[string]interface{}{
		"error":       "rate_limit_exceeded",
		"message":     "Rate limit exceeded. Please try again later.",
		"next_action": NextActionRetry,
		"limit":       info.Limit,
		"remaining":   info.Remaining,
		"reset_at":    info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		secs := int(info.RetryAfter.Round(time.Second) / time.Second)
		secs = max(secs, 1)
		response["retry_after"] = secs
		w.Header().Set("Retry-After", fmt.Sprintf("%d", secs))
	}

	s.log.Warn("rate limit exceeded",
		"path", r.URL.Path,
		"limit", info.Limit,
		"reset_at", info.ResetTime.Format(time.RFC3339),
	)
	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
