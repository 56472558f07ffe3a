package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/favdl/internal/tasks"
)

// Server runs a [Router] on a TCP listener in the background.
type Server struct {
	srv    *http.Server
	ln     net.Listener
	logger *log.Logger
	errs   chan error
}

// NewServer creates a Server for router on addr. Port 0 picks a free port.
func NewServer(addr string, router Router, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
		errs:   make(chan error, 1),
	}
}

// Start binds the listener and serves requests until [Server.Shutdown].
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.srv.Addr, err)
	}
	s.ln = ln

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("progress server stopped", "error", err)
			s.errs <- err
		}
		close(s.errs)
	}()

	s.logger.Info("progress server listening", "addr", s.Addr())
	return nil
}

// Addr returns the bound address, or the configured one before Start.
func (s *Server) Addr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.srv.Addr
}

// Shutdown stops accepting requests and waits for active ones until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.ln == nil {
		return nil
	}
	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down progress server: %w", err)
	}
	return <-s.errs
}

// NewProgressRouter registers the health, progress and (when history is non-nil) runs handlers,
// plus an index of those endpoints at /.
func NewProgressRouter(progress *tasks.Progress, history HistoryLister, logger *log.Logger) *BasicRouter {
	if logger == nil {
		logger = log.Default()
	}

	r := NewBasicRouter()
	r.Use(Recover(logger), Logging(logger), CORS())
	r.Handle(http.MethodGet, "/health", HealthHandler{})
	r.Handler(NewProgressHandler(progress, 0))
	if history != nil {
		r.Handle(http.MethodGet, "/runs", NewRunsHandler(history, 0))
	}
	r.Handle(http.MethodGet, "/{$}", indexHandler(r.Paths()))
	return r
}

// indexHandler lists the available endpoints at the root path.
func indexHandler(paths []string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string][]string{"endpoints": paths})
	})
}
