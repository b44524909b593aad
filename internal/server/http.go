// Package server exposes rendering, health checks and metrics over HTTP.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmmcquay/hexreport/internal/health"
	"github.com/dmmcquay/hexreport/internal/logging"
	"github.com/dmmcquay/hexreport/internal/metrics"
	"github.com/dmmcquay/hexreport/internal/ratelimit"
	"github.com/dmmcquay/hexreport/internal/render"
)

// Options configures the HTTP server.
type Options struct {
	Addr         string
	MaxBodyBytes int64
	ReportTitle  string
	// RateLimiter throttles the /v1 endpoints. nil disables throttling.
	RateLimiter *ratelimit.Limiter
}

// HTTPServer serves the render API next to health and metrics endpoints.
type HTTPServer struct {
	server     *http.Server
	logger     logging.ContextLogger
	checker    *health.Checker
	prometheus *metrics.PrometheusCollector
	api        *API
}

// NewHTTPServer wires the routes. Every request gets correlation and
// request IDs and is counted in Prometheus.
func NewHTTPServer(opts Options, logger logging.ContextLogger, checker *health.Checker, renderer *render.Renderer) *HTTPServer {
	prometheus := metrics.NewPrometheusCollector()
	api := NewAPI(renderer, logger, prometheus, opts.MaxBodyBytes, opts.ReportTitle)

	mux := http.NewServeMux()

	mux.HandleFunc("/health", checker.LivenessHandler())
	mux.HandleFunc("/ready", checker.ReadinessHandler())
	mux.Handle("/metrics", promhttp.Handler())

	limit := RateLimitMiddleware(opts.RateLimiter, prometheus)
	mux.Handle("/v1/report", limit(http.HandlerFunc(api.HandleReport)))
	mux.Handle("/v1/board", limit(http.HandlerFunc(api.HandleBoard)))
	mux.Handle("/v1/movelist", limit(http.HandlerFunc(api.HandleMoveList)))

	handler := RequestIDMiddleware(PrometheusMiddleware(prometheus)(mux))

	return &HTTPServer{
		server: &http.Server{
			Addr:              opts.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		logger:     logger,
		checker:    checker,
		prometheus: prometheus,
		api:        api,
	}
}

// Handler returns the root handler with all middleware applied.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

// Start listens on the configured address and serves in the background.
// It returns once the listener is bound.
func (s *HTTPServer) Start() error {
	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return err
	}
	s.logger.Info("Starting HTTP server", "addr", ln.Addr().String())

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", "error", err)
		}
	}()

	return nil
}

// Stop gracefully stops the HTTP server.
func (s *HTTPServer) Stop(ctx context.Context) error {
	s.logger.Info("Stopping HTTP server")
	return s.server.Shutdown(ctx)
}
