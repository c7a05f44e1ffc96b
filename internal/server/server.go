// Package server implements the psdatlas HTTP API.
//
// Routes:
//
//	GET  /healthz         build information
//	POST /v1/pack         regions -> atlas layout (JSON)
//	POST /v1/serialize    packed regions -> PSDB buffer
//	POST /v1/convert      regions -> packed PSDB buffer, atlas size in headers
//	GET  /v1/jobs         recent conversion jobs
//	GET  /v1/jobs/{id}    one job
//
// Errors are returned as {"code": "...", "message": "..."} with status 400
// for validation failures, 404 for missing resources and 500 otherwise.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/psdatlas/pkg/jobs"
)

// DefaultMaxBodyBytes limits request bodies when Options.MaxBodyBytes is zero.
const DefaultMaxBodyBytes = 8 << 20

const shutdownTimeout = 10 * time.Second

// Options configures a Server.
type Options struct {
	// Jobs receives a record of every /v1/convert call. Nil means no history.
	Jobs jobs.Store

	// Logger receives one line per request. Nil means log.Default().
	Logger *log.Logger

	// MaxBodyBytes caps request bodies. Zero means DefaultMaxBodyBytes.
	MaxBodyBytes int64
}

// Server is the HTTP API. It is an http.Handler.
type Server struct {
	router  chi.Router
	jobs    jobs.Store
	logger  *log.Logger
	maxBody int64
}

// New builds a server with all routes registered.
func New(opts Options) *Server {
	s := &Server{
		jobs:    opts.Jobs,
		logger:  opts.Logger,
		maxBody: opts.MaxBodyBytes,
	}
	if s.jobs == nil {
		s.jobs = jobs.NullStore{}
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.maxBody <= 0 {
		s.maxBody = DefaultMaxBodyBytes
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Use(s.limitBody)
		r.Post("/pack", s.handlePack)
		r.Post("/serialize", s.handleSerialize)
		r.Post("/convert", s.handleConvert)
		r.Get("/jobs", s.handleListJobs)
		r.Get("/jobs/{id}", s.handleGetJob)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "NOT_FOUND", "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", r.Method+" not allowed on "+r.URL.Path)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
