// Package health runs readiness checks for the renderer and its cache and
// serves them over HTTP and the health tool.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/dmmcquay/hexreport/internal/logging"
)

// Status represents the health status of a component.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	// StatusDegraded means the component works but not as configured.
	StatusDegraded Status = "degraded"
)

// ErrDegraded marks a check failure that leaves the component usable.
var ErrDegraded = errors.New("degraded")

const checkTimeout = 5 * time.Second

// Check reports a component's health.
type Check func(ctx context.Context) error

// DetailedCheck also returns metadata shown with the component.
type DetailedCheck func(ctx context.Context) (map[string]interface{}, error)

// Recorder receives one result per check run. *metrics.PrometheusCollector
// satisfies it.
type Recorder interface {
	RecordHealthCheck(check string, healthy bool)
}

type Component struct {
	Name        string                 `json:"name"`
	Status      Status                 `json:"status"`
	Message     string                 `json:"message,omitempty"`
	LastChecked time.Time              `json:"last_checked"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

type Response struct {
	Status     Status      `json:"status"`
	Timestamp  time.Time   `json:"timestamp"`
	Components []Component `json:"components,omitempty"`
	Version    string      `json:"version,omitempty"`
	GitCommit  string      `json:"git_commit,omitempty"`
}

// Checker runs registered checks in parallel.
type Checker struct {
	logger    logging.ContextLogger
	checks    map[string]DetailedCheck
	recorder  Recorder
	mu        sync.RWMutex
	version   string
	gitCommit string
}

func NewChecker(logger logging.ContextLogger, version, gitCommit string) *Checker {
	return &Checker{
		logger:    logger,
		checks:    make(map[string]DetailedCheck),
		version:   version,
		gitCommit: gitCommit,
	}
}

// SetRecorder sets the metrics sink for check results.
func (c *Checker) SetRecorder(r Recorder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recorder = r
}

// RegisterCheck registers a plain check.
func (c *Checker) RegisterCheck(name string, check Check) {
	c.RegisterDetailedCheck(name, func(ctx context.Context) (map[string]interface{}, error) {
		return nil, check(ctx)
	})
}

// RegisterDetailedCheck registers a check that reports metadata.
func (c *Checker) RegisterDetailedCheck(name string, check DetailedCheck) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// CheckHealth runs every check. The overall status is the worst
// component status. Components are sorted by name.
func (c *Checker) CheckHealth(ctx context.Context) Response {
	c.mu.RLock()
	defer c.mu.RUnlock()

	response := Response{
		Status:     StatusHealthy,
		Timestamp:  time.Now().UTC(),
		Version:    c.version,
		GitCommit:  c.gitCommit,
		Components: make([]Component, 0, len(c.checks)),
	}

	results := make(chan Component, len(c.checks))
	var wg sync.WaitGroup
	for name, check := range c.checks {
		wg.Add(1)
		go func(name string, check DetailedCheck) {
			defer wg.Done()
			results <- c.run(ctx, name, check)
		}(name, check)
	}
	wg.Wait()
	close(results)

	for comp := range results {
		response.Components = append(response.Components, comp)
		switch comp.Status {
		case StatusUnhealthy:
			response.Status = StatusUnhealthy
		case StatusDegraded:
			if response.Status == StatusHealthy {
				response.Status = StatusDegraded
			}
		}
	}
	sort.Slice(response.Components, func(i, j int) bool {
		return response.Components[i].Name < response.Components[j].Name
	})

	return response
}

func (c *Checker) run(ctx context.Context, name string, check DetailedCheck) Component {
	comp := Component{
		Name:        name,
		Status:      StatusHealthy,
		LastChecked: time.Now().UTC(),
	}

	checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	meta, err := check(checkCtx)
	comp.Metadata = meta
	if err != nil {
		comp.Message = err.Error()
		if errors.Is(err, ErrDegraded) {
			comp.Status = StatusDegraded
			c.logger.WithField("component", name).Warn("Health check degraded", "error", err)
		} else {
			comp.Status = StatusUnhealthy
			c.logger.WithField("component", name).Error("Health check failed", "error", err)
		}
	}

	if c.recorder != nil {
		c.recorder.RecordHealthCheck(name, comp.Status == StatusHealthy)
	}
	return comp
}

// LivenessHandler reports healthy whenever the process can serve requests.
func (c *Checker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		response := Response{
			Status:    StatusHealthy,
			Timestamp: time.Now().UTC(),
			Version:   c.version,
			GitCommit: c.gitCommit,
		}

		if err := json.NewEncoder(w).Encode(response); err != nil {
			c.logger.Error("Failed to encode liveness response", "error", err)
		}
	}
}

// ReadinessHandler runs all checks. Unhealthy answers 503; degraded still
// answers 200.
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithNewIDs(r.Context())
		logger := c.logger.WithContext(ctx)

		logger.Debug("Performing readiness check")

		response := c.CheckHealth(ctx)

		w.Header().Set("Content-Type", "application/json")
		statusCode := http.StatusOK
		if response.Status == StatusUnhealthy {
			statusCode = http.StatusServiceUnavailable
		}
		w.WriteHeader(statusCode)

		if err := json.NewEncoder(w).Encode(response); err != nil {
			logger.Error("Failed to encode readiness response", "error", err)
		}
	}
}
