package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dmmcquay/hexreport/internal/cache"
	"github.com/dmmcquay/hexreport/internal/config"
	"github.com/dmmcquay/hexreport/internal/logging"
	"github.com/dmmcquay/hexreport/internal/metrics"
	"github.com/dmmcquay/hexreport/internal/render"
)

var (
	// Version information injected at build time.
	GitCommit string = "unknown"
	BuildTime string = "unknown"
)

const usage = `Usage:
  hexreport [flags] report <referee.log> <report.html>
  hexreport [flags] serve

Flags:
`

func main() {
	// Parse command line flags
	var showVersion bool
	var title string
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.StringVar(&title, "title", "", "Report title (overrides config)")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	// Handle version flag
	if showVersion {
		fmt.Printf("hexreport version 0.1.0\n")
		fmt.Printf("Git commit: %s\n", GitCommit)
		fmt.Printf("Build time: %s\n", BuildTime)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	// Load configuration
	configPath := config.GetConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if title != "" {
		cfg.Render.ReportTitle = title
	}

	logger := logging.NewLoggerFromConfig(&logging.Config{
		Level:   cfg.Logging.Level,
		Format:  logging.LogFormat(cfg.Logging.Format),
		Service: cfg.Server.Name,
		Version: cfg.Server.Version,
		Prefix:  cfg.Logging.Prefix,
	})
	if configPath != "" {
		logger.Debug("Loaded configuration", "path", configPath)
	}

	app := newApp(cfg, logger)

	switch args[0] {
	case "report":
		if len(args) != 3 {
			flag.Usage()
			os.Exit(2)
		}
		if err := app.writeReport(args[1], args[2]); err != nil {
			logger.Error("Failed to write report", "error", err)
			os.Exit(1)
		}
	case "serve":
		if err := app.serve(); err != nil {
			logger.Error("Server error", "error", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", args[0])
		flag.Usage()
		os.Exit(2)
	}
}

// app holds the pieces shared by both commands.
type app struct {
	cfg        *config.Config
	logger     logging.ContextLogger
	renderer   *render.Renderer
	cache      *cache.Manager
	prometheus *metrics.PrometheusCollector
}

func newApp(cfg *config.Config, logger logging.ContextLogger) *app {
	prom := metrics.NewPrometheusCollector()

	renderer := render.NewRenderer(cfg.Render.Style(), logger)
	renderer.SetObserver(prom)

	cacheManager := cache.NewManager(&cfg.Cache, logger)
	if cacheManager.IsEnabled() {
		renderer.SetCache(cacheManager)
	}

	return &app{
		cfg:        cfg,
		logger:     logger,
		renderer:   renderer,
		cache:      cacheManager,
		prometheus: prom,
	}
}

// publishCacheStats copies the cache size into the Prometheus gauges.
func (a *app) publishCacheStats() {
	if !a.cache.IsEnabled() {
		return
	}
	stats := a.cache.Stats()
	a.prometheus.SetCacheStats(float64(stats.Items), float64(stats.Size))
}

func (a *app) publishCacheStatsEvery(interval time.Duration, done <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			a.publishCacheStats()
		case <-done:
			return
		}
	}
}
