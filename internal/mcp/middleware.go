package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/dmmcquay/hexreport/internal/logging"
	"github.com/dmmcquay/hexreport/internal/metrics"
	"github.com/dmmcquay/hexreport/internal/ratelimit"
)

// stdioClient identifies the single client of a stdio server.
const stdioClient = "stdio"

type clientIDKey struct{}

// WithClientID tags ctx with the caller used for rate limiting.
func WithClientID(ctx context.Context, clientID string) context.Context {
	return context.WithValue(ctx, clientIDKey{}, clientID)
}

func extractClientID(ctx context.Context) string {
	if id, ok := ctx.Value(clientIDKey{}).(string); ok && id != "" {
		return id
	}
	return stdioClient
}

// ToolRecorder receives one observation per tool call.
// *metrics.PrometheusCollector satisfies it.
type ToolRecorder interface {
	RecordToolCall(tool, status string, durationSecs float64)
	RecordRateLimited(surface string)
}

// Middleware wraps MCP tool handlers with logging and metrics.
type Middleware struct {
	logger   logging.ContextLogger
	metrics  *metrics.Collector
	recorder ToolRecorder
	limiter  *ratelimit.Limiter
}

// NewMiddleware creates a new middleware instance. recorder may be nil.
func NewMiddleware(logger logging.ContextLogger, metrics *metrics.Collector, recorder ToolRecorder) *Middleware {
	return &Middleware{
		logger:   logger,
		metrics:  metrics,
		recorder: recorder,
	}
}

// SetRateLimiter throttles wrapped tools per client. A nil limiter
// disables throttling.
func (m *Middleware) SetRateLimiter(limiter *ratelimit.Limiter) {
	m.limiter = limiter
}

// ToolHandler is the function signature for MCP tool handlers.
type ToolHandler func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// WrapTool wraps a tool handler with logging and metrics. A result with
// IsError set counts as an error even though the handler returned nil.
func (m *Middleware) WrapTool(toolName string, handler ToolHandler) ToolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		ctx = logging.WithNewIDs(ctx)
		logger := m.logger.WithContext(ctx).WithField("tool", toolName)

		clientID := extractClientID(ctx)
		logger.Info("Tool request received", "client", clientID, "arguments", argumentKeys(request))

		if allowed, wait := m.limiter.Allow(clientID); !allowed {
			if m.metrics != nil {
				m.metrics.RecordToolCall(toolName, "rate_limited", time.Since(start))
			}
			if m.recorder != nil {
				m.recorder.RecordRateLimited("mcp")
				m.recorder.RecordToolCall(toolName, "rate_limited", time.Since(start).Seconds())
			}
			return mcp.NewToolResultError(fmt.Sprintf("rate limit exceeded, retry in %s", wait.Round(time.Millisecond))), nil
		}

		result, err := handler(ctx, request)
		duration := time.Since(start)

		status := "success"
		switch {
		case err != nil:
			status = "error"
			logger.Error("Tool request failed", "error", err, "duration", duration)
		case result != nil && result.IsError:
			status = "error"
			logger.Warn("Tool returned an error result", "duration", duration)
		default:
			logger.Info("Tool request completed", "duration", duration)
		}

		if m.metrics != nil {
			m.metrics.RecordToolCall(toolName, status, duration)
		}
		if m.recorder != nil {
			m.recorder.RecordToolCall(toolName, status, duration.Seconds())
		}

		return result, err
	}
}

// argumentKeys lists argument names only; match bodies and logs can be
// large.
func argumentKeys(request mcp.CallToolRequest) []string {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	return keys
}
