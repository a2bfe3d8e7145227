// Package server exposes the orchestration engine over HTTP and streams
// self-healing runs over WebSocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ShayCichocki/architect/internal/orchestrator"
)

// Server is the architect HTTP API server.
type Server struct {
	addr    string
	workDir string
	engine  *orchestrator.Engine
	logger  *zap.Logger
	mux     *http.ServeMux
	server  *http.Server
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithWorkDir sets the directory terminal commands run in.
func WithWorkDir(dir string) Option {
	return func(s *Server) { s.workDir = dir }
}

// New creates a new API server.
func New(addr string, engine *orchestrator.Engine, opts ...Option) *Server {
	s := &Server{
		addr:    addr,
		workDir: ".",
		engine:  engine,
		logger:  zap.NewNop(),
		mux:     http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerRoutes()
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("POST /api/orchestrate", s.handleOrchestrate)
	s.mux.HandleFunc("POST /api/query", s.handleQuery)
	s.mux.HandleFunc("POST /api/terminal", s.handleTerminal)
	s.mux.HandleFunc("GET /api/terminal/ws", s.handleTerminalWS)
}

// Handler returns the HTTP handler with request ids, access logs and panic recovery.
func (s *Server) Handler() http.Handler {
	return s.withRequestID(s.withAccessLog(s.withRecover(s.mux)))
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
// Request contexts derive from ctx, so hijacked WebSocket runs stop with it.
func (s *Server) ListenAndServe(ctx context.Context) error {
	s.server.BaseContext = func(net.Listener) context.Context { return ctx }

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api server listening", zap.String("addr", s.addr), zap.String("work_dir", s.workDir))
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve api: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown api: %w", err)
	}
	<-errCh
	return nil
}

// writeJSON writes a JSON response.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		s.logger.Warn("json encode", zap.Error(err))
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, code string) {
	s.writeJSON(w, status, map[string]string{"error": code})
}

// readJSON decodes a JSON request body into v.
func readJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return errors.New("empty request body")
	}
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
