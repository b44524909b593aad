package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/dmmcquay/hexreport/internal/render"
)

type Config struct {
	// Board drawing
	Render RenderConfig `json:"render" yaml:"render"`

	// Server configuration
	Server ServerConfig `json:"server" yaml:"server"`

	// Logging configuration
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// Rendered match cache
	Cache CacheConfig `json:"cache" yaml:"cache"`

	// Per-client throttling of render requests
	RateLimit RateLimitConfig `json:"rateLimit" yaml:"rateLimit"`
}

type RenderConfig struct {
	HexHeight    float64 `json:"hexHeight" yaml:"hexHeight"`
	MarginY      float64 `json:"marginY" yaml:"marginY"`
	DisplayWidth int     `json:"displayWidth" yaml:"displayWidth"`
	EmptyFill    string  `json:"emptyFill" yaml:"emptyFill"`
	BlackFill    string  `json:"blackFill" yaml:"blackFill"`
	WhiteFill    string  `json:"whiteFill" yaml:"whiteFill"`
	Stroke       string  `json:"stroke" yaml:"stroke"`
	StrokeWidth  int     `json:"strokeWidth" yaml:"strokeWidth"`
	ReportTitle  string  `json:"reportTitle" yaml:"reportTitle"`
}

type ServerConfig struct {
	Name         string `json:"name" yaml:"name"`
	Version      string `json:"version" yaml:"version"`
	Description  string `json:"description" yaml:"description"`
	HTTPAddr     string `json:"httpAddr" yaml:"httpAddr"`
	MaxBodyBytes int64  `json:"maxBodyBytes" yaml:"maxBodyBytes"`
}

type LoggingConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
	Prefix string `json:"prefix" yaml:"prefix"`
}

type CacheConfig struct {
	Enabled      bool  `json:"enabled" yaml:"enabled"`
	MaxItems     int   `json:"maxItems" yaml:"maxItems"`
	MaxSizeBytes int64 `json:"maxSizeBytes" yaml:"maxSizeBytes"`
	TTLSeconds   int   `json:"ttlSeconds" yaml:"ttlSeconds"`
}

type RateLimitConfig struct {
	Enabled        bool `json:"enabled" yaml:"enabled"`
	RequestsPerMin int  `json:"requestsPerMin" yaml:"requestsPerMin"`
	BurstSize      int  `json:"burstSize" yaml:"burstSize"`
	// IdleMinutes drops a client's bucket after this long without requests.
	IdleMinutes int `json:"idleMinutes" yaml:"idleMinutes"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	style := render.DefaultStyle()
	return &Config{
		Render: RenderConfig{
			HexHeight:    style.Geometry.HexHeight,
			MarginY:      style.Geometry.MarginY,
			DisplayWidth: style.DisplayWidth,
			EmptyFill:    style.EmptyFill,
			BlackFill:    style.BlackFill,
			WhiteFill:    style.WhiteFill,
			Stroke:       style.Stroke,
			StrokeWidth:  style.StrokeWidth,
			ReportTitle:  "Hex Results",
		},
		Server: ServerConfig{
			Name:         "hexreport",
			Version:      "0.1.0",
			Description:  "Hex match board and move list renderer",
			HTTPAddr:     ":8080",
			MaxBodyBytes: 8 << 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Prefix: "[hexreport] ",
		},
		Cache: CacheConfig{
			Enabled:      true,
			MaxItems:     1000,
			MaxSizeBytes: 64 << 20,
			TTLSeconds:   0,
		},
		RateLimit: RateLimitConfig{
			Enabled:        false,
			RequestsPerMin: 120,
			BurstSize:      20,
			IdleMinutes:    30,
		},
	}
}

func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		switch strings.ToLower(filepath.Ext(configPath)) {
		case ".yaml", ".yml":
			err = yaml.Unmarshal(data, cfg)
		default:
			err = json.Unmarshal(data, cfg)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("HEXREPORT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("HEXREPORT_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("HEXREPORT_HTTP_ADDR"); v != "" {
		c.Server.HTTPAddr = v
	}
	if v := os.Getenv("HEXREPORT_CACHE_ENABLED"); v != "" {
		c.Cache.Enabled = cast.ToBool(strings.ToLower(v))
	}
	if v := os.Getenv("HEXREPORT_RATE_LIMIT_ENABLED"); v != "" {
		c.RateLimit.Enabled = cast.ToBool(strings.ToLower(v))
	}
	if v := os.Getenv("HEXREPORT_HEX_HEIGHT"); v != "" {
		if h, err := cast.ToFloat64E(v); err == nil {
			c.Render.HexHeight = h
		}
	}
}

func (c *Config) validate() error {
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", "json", "text":
	default:
		return fmt.Errorf("unknown log format %q", c.Logging.Format)
	}

	defaults := render.DefaultStyle()
	if c.Render.HexHeight < 2 {
		c.Render.HexHeight = 2
	}
	if c.Render.MarginY < 0 {
		c.Render.MarginY = 0
	}
	if c.Render.DisplayWidth < 0 {
		c.Render.DisplayWidth = 0
	}
	if c.Render.StrokeWidth < 0 {
		c.Render.StrokeWidth = 0
	}
	if c.Render.EmptyFill == "" {
		c.Render.EmptyFill = defaults.EmptyFill
	}
	if c.Render.BlackFill == "" {
		c.Render.BlackFill = defaults.BlackFill
	}
	if c.Render.WhiteFill == "" {
		c.Render.WhiteFill = defaults.WhiteFill
	}
	if c.Render.Stroke == "" {
		c.Render.Stroke = defaults.Stroke
	}

	if c.Server.MaxBodyBytes < 1024 {
		c.Server.MaxBodyBytes = 1024
	}

	if c.Cache.Enabled {
		if c.Cache.MaxItems < 1 {
			c.Cache.MaxItems = 1
		}
		if c.Cache.MaxSizeBytes < 0 {
			c.Cache.MaxSizeBytes = 0
		}
		if c.Cache.TTLSeconds < 0 {
			c.Cache.TTLSeconds = 0
		}
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerMin < 1 {
			return fmt.Errorf("rate limit requestsPerMin must be positive, got %d", c.RateLimit.RequestsPerMin)
		}
		if c.RateLimit.BurstSize < 1 {
			c.RateLimit.BurstSize = 1
		}
		if c.RateLimit.IdleMinutes < 1 {
			c.RateLimit.IdleMinutes = 1
		}
	}

	return nil
}

// Style converts the render section into a board style.
func (c RenderConfig) Style() render.Style {
	return render.Style{
		Geometry:     render.Geometry{HexHeight: c.HexHeight, MarginY: c.MarginY},
		DisplayWidth: c.DisplayWidth,
		EmptyFill:    c.EmptyFill,
		BlackFill:    c.BlackFill,
		WhiteFill:    c.WhiteFill,
		Stroke:       c.Stroke,
		StrokeWidth:  c.StrokeWidth,
	}
}

func GetConfigPath() string {
	// Check environment variable first
	if path := os.Getenv("HEXREPORT_CONFIG"); path != "" {
		return path
	}

	// Check current directory
	if _, err := os.Stat("config.json"); err == nil {
		return "config.json"
	}

	// Check the XDG config directories
	for _, name := range []string{"hexreport/config.json", "hexreport/config.yaml"} {
		if path, err := xdg.SearchConfigFile(name); err == nil {
			return path
		}
	}

	return ""
}
