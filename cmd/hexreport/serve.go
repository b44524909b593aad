package main

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/dmmcquay/hexreport/internal/health"
	mcptools "github.com/dmmcquay/hexreport/internal/mcp"
	"github.com/dmmcquay/hexreport/internal/metrics"
	"github.com/dmmcquay/hexreport/internal/ratelimit"
	httpserver "github.com/dmmcquay/hexreport/internal/server"
	"github.com/dmmcquay/hexreport/internal/shutdown"
)

const (
	cacheStatsInterval = 15 * time.Second
	shutdownTimeout    = 10 * time.Second
)

// serve runs the HTTP server and the MCP stdio server until stdin closes
// or a signal arrives.
func (a *app) serve() error {
	logger := a.logger
	logger.Info("Starting hexreport server version %s (commit: %s, built: %s)",
		a.cfg.Server.Version, GitCommit, BuildTime)

	stopper := shutdown.NewManager(logger)
	stopSignals := stopper.HandleSignals()
	defer stopSignals()

	// Set up health checker
	healthChecker := health.NewChecker(logger, a.cfg.Server.Version, GitCommit)
	healthChecker.SetRecorder(a.prometheus)
	healthChecker.RegisterDetailedCheck("renderer", health.RenderCheck(a.renderer))
	healthChecker.RegisterDetailedCheck("cache", health.CacheCheck(a.cache))

	limiter := ratelimit.NewLimiter(&a.cfg.RateLimit, logger)
	if limiter != nil {
		logger.Info("Rate limiting enabled",
			"requests_per_min", a.cfg.RateLimit.RequestsPerMin,
			"burst", a.cfg.RateLimit.BurstSize)
	}

	httpServer := httpserver.NewHTTPServer(httpserver.Options{
		Addr:         a.cfg.Server.HTTPAddr,
		MaxBodyBytes: a.cfg.Server.MaxBodyBytes,
		ReportTitle:  a.cfg.Render.ReportTitle,
		RateLimiter:  limiter,
	}, logger, healthChecker, a.renderer)
	if err := httpServer.Start(); err != nil {
		return err
	}
	logger.Info("HTTP server started", "addr", a.cfg.Server.HTTPAddr)
	stopper.Register("http", httpServer.Stop)

	statsDone := make(chan struct{})
	go a.publishCacheStatsEvery(cacheStatsInterval, statsDone)
	stopper.Register("cache-stats", func(context.Context) error {
		close(statsDone)
		a.publishCacheStats()
		return nil
	})

	// Create MCP server
	mcpServer := server.NewMCPServer(
		a.cfg.Server.Name,
		a.cfg.Server.Version,
		server.WithToolCapabilities(true),
		server.WithLogging(),
	)

	middleware := mcptools.NewMiddleware(logger, metrics.NewCollector(), a.prometheus)
	middleware.SetRateLimiter(limiter)
	toolsHandler := mcptools.NewToolsHandler(a.renderer, healthChecker, logger)
	toolsHandler.SetMiddleware(middleware)
	toolsHandler.SetReportTitle(a.cfg.Render.ReportTitle)
	toolsHandler.RegisterTools(mcpServer)

	logger.Info("hexreport MCP server ready")

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ServeStdio(mcpServer)
	}()

	var serveErr error
	select {
	case serveErr = <-errCh:
		if serveErr == nil {
			logger.Info("MCP client disconnected")
		}
	case <-stopper.Context().Done():
		logger.Info("Server stopped by shutdown request")
	}

	if err := stopper.Shutdown(shutdownTimeout); err != nil && serveErr == nil {
		serveErr = err
	}
	return serveErr
}
