// Package server implements the seqflow HTTP API.
//
// Routes:
//
//	GET    /healthz
//	POST   /api/v1/parse                  diagram text → intermediate model
//	POST   /api/v1/layout                 diagram text → positioned graph
//	POST   /api/v1/render?format=&engine= diagram text → artifact
//	POST   /api/v1/diagrams               save a diagram
//	GET    /api/v1/diagrams               list saved diagrams
//	GET    /api/v1/diagrams/{id}          fetch one
//	PUT    /api/v1/diagrams/{id}          replace its source
//	DELETE /api/v1/diagrams/{id}          delete it
//	GET    /api/v1/diagrams/{id}/render   render a saved diagram
//
// Request bodies are raw diagram text, or {"name": ..., "source": ...} when
// the Content-Type is application/json. A document without the
// sequenceDiagram header is answered with 422 and an empty graph so clients
// can keep drawing something.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/seqflow/pkg/pipeline"
	"github.com/matzehuels/seqflow/pkg/storage"
)

// Server serves the API. Handlers share one runner and one store; both are
// safe for concurrent use.
type Server struct {
	runner   *pipeline.Runner
	store    storage.Store
	defaults pipeline.Options
	logger   *log.Logger
}

// New creates a server. defaults supplies the layout grid and the render
// settings that requests do not override.
func New(runner *pipeline.Runner, store storage.Store, defaults pipeline.Options, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	if store == nil {
		store = storage.NewMemoryStore()
	}
	return &Server{runner: runner, store: store, defaults: defaults, logger: logger}
}

// Handler returns the chi router with all routes and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/parse", s.handleParse)
		r.Post("/layout", s.handleLayout)
		r.Post("/render", s.handleRender)

		r.Route("/diagrams", func(r chi.Router) {
			r.Post("/", s.handleCreate)
			r.Get("/", s.handleList)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGet)
				r.Put("/", s.handleUpdate)
				r.Delete("/", s.handleDelete)
				r.Get("/render", s.handleRenderStored)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeErrorMessage(w, http.StatusNotFound, "NOT_FOUND", "no route for "+r.Method+" "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeErrorMessage(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", r.Method+" not allowed on "+r.URL.Path)
	})
	return r
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully,
// waiting at most shutdownTimeout for in-flight requests.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln, shutdownTimeout)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "timeout", shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
