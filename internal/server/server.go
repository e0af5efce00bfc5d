// Package server exposes a tools.Router over HTTP.
//
// Routes:
//
//	GET  /healthz               ping the database
//	GET  /v1/capabilities       router name, instructions, capabilities
//	GET  /v1/tools              operation catalog
//	POST /v1/tools/{name}       call a tool; body is the argument object
//	GET  /v1/resources          empty list
//	GET  /v1/resources/*        not found
//	GET  /v1/prompts            empty list
//	GET  /v1/prompts/{name}     not found
//
// Failures are written as {"error":{"kind":"...","message":"..."}} with a
// status derived from the error kind.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/koustreak/sqlbridge/internal/errs"
	"github.com/koustreak/sqlbridge/internal/logger"
	"github.com/koustreak/sqlbridge/internal/tools"
)

// maxBodyBytes caps tool-call request bodies.
const maxBodyBytes = 10 << 20

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config holds HTTP server settings.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the settings used when none are configured.
func DefaultConfig() *Config {
	return &Config{
		Addr:            ":8080",
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Server serves a tools.Router over HTTP.
type Server struct {
	cfg    *Config
	router *tools.Router
	db     Pinger
	log    *logger.Logger
	mux    chi.Router
}

// New wires the routes. A nil cfg uses DefaultConfig; a nil log uses the
// global logger.
func New(cfg *Config, router *tools.Router, db Pinger, log *logger.Logger) *Server {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if log == nil {
		log = logger.FromContext(context.Background())
	}
	s := &Server{cfg: cfg, router: router, db: db, log: log}
	s.mux = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, errs.Newf(errs.ErrKindNotFound, "no route for %s %s", r.Method, r.URL.Path))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeErrorStatus(w, http.StatusMethodNotAllowed,
			errs.Newf(errs.ErrKindInvalidInput, "method %s not allowed on %s", r.Method, r.URL.Path))
	})

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/capabilities", s.handleCapabilities)
		r.Get("/tools", s.handleListTools)
		r.Post("/tools/{name}", s.handleCallTool)
		r.Get("/resources", s.handleListResources)
		r.Get("/resources/*", s.handleReadResource)
		r.Get("/prompts", s.handleListPrompts)
		r.Get("/prompts/{name}", s.handleGetPrompt)
	})
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.mux,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.With().Str("addr", s.cfg.Addr).Logger().Info("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errs.Wrap(errs.ErrKindConnectionFailed, "server stopped", err)
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errs.Wrap(errs.ErrKindTimeout, "graceful shutdown failed", err)
	}
	return nil
}
