// Package server exposes the generator over HTTP: the web page, a JSON API
// and a websocket stream.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/zbiljic/blueprint/internal/config"
	"github.com/zbiljic/blueprint/internal/metrics"
	"github.com/zbiljic/blueprint/pkg/artifact"
	"github.com/zbiljic/blueprint/pkg/versioninfo"
)

const shutdownTimeout = 30 * time.Second

// Options configures a Server.
type Options struct {
	Config  config.ServerConfig
	Metrics *metrics.Metrics
	Logger  *slog.Logger
	Version versioninfo.Info
}

// Server serves the generator.
type Server struct {
	gen      *artifact.Generator
	cfg      config.ServerConfig
	metrics  *metrics.Metrics
	logger   *slog.Logger
	version  versioninfo.Info
	limiter  *rate.Limiter
	upgrader websocket.Upgrader
}

// New creates a Server for gen.
func New(gen *artifact.Generator, opts Options) *Server {
	s := &Server{
		gen:     gen,
		cfg:     opts.Config,
		metrics: opts.Metrics,
		logger:  opts.Logger,
		version: opts.Version,
	}

	if s.metrics == nil {
		s.metrics = metrics.New()
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.cfg.RateLimit > 0 {
		burst := max(s.cfg.RateBurst, 1)
		s.limiter = rate.NewLimiter(rate.Limit(s.cfg.RateLimit), burst)
	}

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}

	return s
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
}

// Handler returns the router wrapped in recovery and CORS handling.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	s.RegisterRoutes(r)

	cors := handlers.CORS(
		handlers.AllowedOrigins(s.allowedOrigins()),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{s.logger}),
		handlers.PrintRecoveryStack(false),
	)

	return recovery(cors(r))
}

// RegisterRoutes registers all routes on r.
func (s *Server) RegisterRoutes(r *mux.Router) {
	r.Handle("/", s.route("/", s.handleIndex())).Methods(http.MethodGet)
	r.Handle("/", s.route("/", s.limit(s.handleIndexForm))).Methods(http.MethodPost)

	api := r.PathPrefix("/api/v1").Subrouter()

	api.Handle("/generate", s.route("/api/v1/generate", s.limit(s.handleGenerate))).Methods(http.MethodPost)
	api.Handle("/generate/ws", s.route("/api/v1/generate/ws", s.limit(s.handleStream))).Methods(http.MethodGet)
	api.Handle("/artifacts/{kind}", s.route("/api/v1/artifacts/{kind}", s.limit(s.handleArtifact))).Methods(http.MethodPost)
	api.Handle("/health", s.route("/api/v1/health", http.HandlerFunc(s.handleHealth))).Methods(http.MethodGet)
	api.Handle("/version", s.route("/api/v1/version", http.HandlerFunc(s.handleVersion))).Methods(http.MethodGet)

	// Prometheus
	r.Handle("/metrics", s.metrics.Handler())
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.Addr(),
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout.Std(),
		WriteTimeout: s.cfg.WriteTimeout.Std(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			s.logger.Error("http server failed", "err", err)
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	s.logger.Info("shutting down http server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("http server shutdown error", "err", err)
		return err
	}

	s.logger.Info("service stopped")
	return nil
}

func (s *Server) route(name string, h http.Handler) http.Handler {
	return s.metrics.Wrap(name, h)
}

// limit rejects requests above the configured rate with 429.
func (s *Server) limit(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.limiter != nil && !s.limiter.Allow() {
			s.metrics.IncError("server", "rate_limited")
			writeJSON(w, http.StatusTooManyRequests, apiError{Error: "too many requests", Kind: "rate_limited"})
			return
		}
		h(w, r)
	})
}

func (s *Server) allowedOrigins() []string {
	if len(s.cfg.AllowedOrigins) == 0 {
		return []string{"*"}
	}
	return s.cfg.AllowedOrigins
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origins := s.allowedOrigins()
	if slices.Contains(origins, "*") {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || slices.Contains(origins, origin)
}

type recoveryLogger struct {
	logger *slog.Logger
}

func (l recoveryLogger) Println(v ...any) {
	l.logger.Error("panic recovered", "err", fmt.Sprint(v...))
}
