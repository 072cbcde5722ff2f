// Package api exposes the assistant, the dataset explorer and the rainfall
// views over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"agriinsight/internal/applog"
	"agriinsight/internal/domain"
	"agriinsight/internal/metrics"
	"agriinsight/internal/weather"
)

// Service is the application surface served over HTTP.
type Service interface {
	Ask(ctx context.Context, query string) string
	Records(ctx context.Context) domain.Table
	Insight(query string, table domain.Table) string
	Rainfall(ctx context.Context, name string, days int) (*domain.RainfallSeries, error)
	LatestRainfall(ctx context.Context, name string) (*domain.RainfallReading, error)
	CompareRainfall(ctx context.Context, names []string, days int) []weather.Comparison
	States() []string
}

// ServerConfig configures the listener.
type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultServerConfig returns local-only defaults. Write timeout covers a
// model call plus the rainfall fan-out.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Host:         "127.0.0.1",
		Port:         8080,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
	}
}

// Server is the HTTP API server.
type Server struct {
	config  *ServerConfig
	svc     Service
	httpSrv *http.Server
}

// NewServer creates a server over svc. A nil config uses defaults.
func NewServer(config *ServerConfig, svc Service) *Server {
	if config == nil {
		config = DefaultServerConfig()
	}
	return &Server{config: config, svc: svc}
}

// Start listens until Stop is called.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	applog.Info("api server starting", "addr", addr)
	return s.httpSrv.ListenAndServe()
}

// Stop shuts the server down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpSrv != nil {
		return s.httpSrv.Shutdown(ctx)
	}
	return nil
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", metrics.Handler())

	NewHandler(s.svc).RegisterRoutes(r)
	return r
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		applog.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
