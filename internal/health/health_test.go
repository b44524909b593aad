package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dmmcquay/hexreport/internal/logging"
)

func testLogger() logging.ContextLogger {
	return logging.NewLoggerAdapter(logging.NewLoggerWithWriter(io.Discard, "test", "debug"))
}

type recordingRecorder struct {
	mu      sync.Mutex
	results map[string]bool
}

func (r *recordingRecorder) RecordHealthCheck(check string, healthy bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[check] = healthy
}

func TestNewChecker(t *testing.T) {
	checker := NewChecker(testLogger(), "1.0.0", "abc123")

	if checker == nil {
		t.Fatal("Expected non-nil checker")
	}
	if checker.version != "1.0.0" {
		t.Errorf("Expected version 1.0.0, got %s", checker.version)
	}
	if checker.gitCommit != "abc123" {
		t.Errorf("Expected git commit abc123, got %s", checker.gitCommit)
	}
}

func TestCheckHealth(t *testing.T) {
	tests := []struct {
		name           string
		checks         map[string]error
		expectedStatus Status
	}{
		{
			name:           "no checks",
			checks:         map[string]error{},
			expectedStatus: StatusHealthy,
		},
		{
			name:           "all healthy",
			checks:         map[string]error{"renderer": nil, "cache": nil},
			expectedStatus: StatusHealthy,
		},
		{
			name:           "one degraded",
			checks:         map[string]error{"renderer": nil, "cache": fmt.Errorf("off: %w", ErrDegraded)},
			expectedStatus: StatusDegraded,
		},
		{
			name: "unhealthy beats degraded",
			checks: map[string]error{
				"renderer": errors.New("self-test failed"),
				"cache":    fmt.Errorf("off: %w", ErrDegraded),
			},
			expectedStatus: StatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewChecker(testLogger(), "1.0.0", "abc123")
			for name, err := range tt.checks {
				checkErr := err
				checker.RegisterCheck(name, func(ctx context.Context) error {
					return checkErr
				})
			}

			response := checker.CheckHealth(context.Background())

			if response.Status != tt.expectedStatus {
				t.Errorf("Expected status %s, got %s", tt.expectedStatus, response.Status)
			}
			if len(response.Components) != len(tt.checks) {
				t.Fatalf("Expected %d components, got %d", len(tt.checks), len(response.Components))
			}
			for i := 1; i < len(response.Components); i++ {
				if response.Components[i-1].Name > response.Components[i].Name {
					t.Errorf("Components not sorted: %v", response.Components)
				}
			}
			for _, comp := range response.Components {
				err := tt.checks[comp.Name]
				switch {
				case err == nil && comp.Status != StatusHealthy:
					t.Errorf("Expected component %s to be healthy", comp.Name)
				case errors.Is(err, ErrDegraded) && comp.Status != StatusDegraded:
					t.Errorf("Expected component %s to be degraded", comp.Name)
				case err != nil && !errors.Is(err, ErrDegraded) && comp.Status != StatusUnhealthy:
					t.Errorf("Expected component %s to be unhealthy", comp.Name)
				}
			}
		})
	}
}

func TestDetailedCheckAndRecorder(t *testing.T) {
	checker := NewChecker(testLogger(), "1.0.0", "")
	rec := &recordingRecorder{results: map[string]bool{}}
	checker.SetRecorder(rec)

	checker.RegisterDetailedCheck("cache", func(ctx context.Context) (map[string]interface{}, error) {
		return map[string]interface{}{"items": 3}, nil
	})
	checker.RegisterCheck("renderer", func(ctx context.Context) error {
		return errors.New("broken")
	})

	response := checker.CheckHealth(context.Background())

	if got := response.Components[0].Metadata["items"]; got != 3 {
		t.Errorf("Expected items metadata 3, got %v", got)
	}
	if response.Components[1].Message != "broken" {
		t.Errorf("Expected message 'broken', got %q", response.Components[1].Message)
	}
	if !rec.results["cache"] || rec.results["renderer"] {
		t.Errorf("Unexpected recorded results: %v", rec.results)
	}
}

func TestCheckHealthTimeout(t *testing.T) {
	checker := NewChecker(testLogger(), "1.0.0", "abc123")
	checker.RegisterCheck("slow", func(ctx context.Context) error {
		select {
		case <-time.After(10 * time.Second):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	response := checker.CheckHealth(ctx)
	if d := time.Since(start); d > 6*time.Second {
		t.Errorf("Check took too long: %v", d)
	}

	if len(response.Components) != 1 {
		t.Fatalf("Expected 1 component, got %d", len(response.Components))
	}
	if response.Components[0].Status != StatusUnhealthy {
		t.Error("Expected component to be unhealthy due to timeout")
	}
}

func TestLivenessHandler(t *testing.T) {
	checker := NewChecker(testLogger(), "1.0.0", "abc123")

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	checker.LivenessHandler()(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}

	var response Response
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Status != StatusHealthy {
		t.Errorf("Expected healthy status, got %s", response.Status)
	}
	if response.Version != "1.0.0" || response.GitCommit != "abc123" {
		t.Errorf("Unexpected build info: %s %s", response.Version, response.GitCommit)
	}
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name           string
		checks         map[string]error
		expectedCode   int
		expectedStatus Status
	}{
		{
			name:           "no checks - healthy",
			checks:         map[string]error{},
			expectedCode:   http.StatusOK,
			expectedStatus: StatusHealthy,
		},
		{
			name:           "degraded is still ready",
			checks:         map[string]error{"cache": ErrDegraded},
			expectedCode:   http.StatusOK,
			expectedStatus: StatusDegraded,
		},
		{
			name:           "one unhealthy",
			checks:         map[string]error{"cache": nil, "renderer": errors.New("broken")},
			expectedCode:   http.StatusServiceUnavailable,
			expectedStatus: StatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewChecker(testLogger(), "1.0.0", "abc123")
			for name, err := range tt.checks {
				checkErr := err
				checker.RegisterCheck(name, func(ctx context.Context) error {
					return checkErr
				})
			}

			req := httptest.NewRequest(http.MethodGet, "/ready", nil)
			rec := httptest.NewRecorder()
			checker.ReadinessHandler()(rec, req)

			if rec.Code != tt.expectedCode {
				t.Errorf("Expected status %d, got %d", tt.expectedCode, rec.Code)
			}

			var response Response
			if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if response.Status != tt.expectedStatus {
				t.Errorf("Expected status %s, got %s", tt.expectedStatus, response.Status)
			}
		})
	}
}

func TestConcurrentHealthChecks(t *testing.T) {
	checker := NewChecker(testLogger(), "1.0.0", "abc123")
	for i := 0; i < 5; i++ {
		checker.RegisterCheck(string(rune('a'+i)), func(ctx context.Context) error {
			time.Sleep(20 * time.Millisecond)
			return nil
		})
	}

	start := time.Now()
	response := checker.CheckHealth(context.Background())
	duration := time.Since(start)

	// Sequential would take 100ms
	if duration > 80*time.Millisecond {
		t.Errorf("Checks took too long, might not be parallel: %v", duration)
	}
	if response.Status != StatusHealthy {
		t.Errorf("Expected healthy status, got %s", response.Status)
	}
}
