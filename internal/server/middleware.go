package server

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/dmmcquay/hexreport/internal/logging"
	"github.com/dmmcquay/hexreport/internal/metrics"
	"github.com/dmmcquay/hexreport/internal/ratelimit"
)

// knownPaths bounds the path label; anything else is counted as "other".
var knownPaths = map[string]bool{
	"/health":      true,
	"/ready":       true,
	"/metrics":     true,
	"/v1/report":   true,
	"/v1/board":    true,
	"/v1/movelist": true,
}

// PrometheusMiddleware adds Prometheus metrics to HTTP handlers.
func PrometheusMiddleware(collector *metrics.PrometheusCollector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(wrapped, r)

			path := r.URL.Path
			if !knownPaths[path] {
				path = "other"
			}
			collector.RecordHTTPRequest(
				r.Method,
				path,
				strconv.Itoa(wrapped.statusCode),
				time.Since(start).Seconds(),
			)
		})
	}
}

// RequestIDMiddleware attaches correlation and request IDs to the request
// context. A caller-supplied X-Correlation-ID is kept; the request ID is
// echoed in X-Request-ID.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if id := r.Header.Get("X-Correlation-ID"); id != "" {
			ctx = logging.ContextWithCorrelationID(ctx, id)
		}
		ctx = logging.WithNewIDs(ctx)

		if id, ok := logging.RequestIDFromContext(ctx); ok {
			w.Header().Set("X-Request-ID", id)
		}
		if id, ok := logging.CorrelationIDFromContext(ctx); ok {
			w.Header().Set("X-Correlation-ID", id)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RateLimitMiddleware rejects requests over the client's budget with 429
// and a Retry-After header. Clients are told apart by X-Client-ID, then by
// remote host.
func RateLimitMiddleware(limiter *ratelimit.Limiter, collector *metrics.PrometheusCollector) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, wait := limiter.Allow(clientID(r))
			if !allowed {
				collector.RecordRateLimited("http")
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientID(r *http.Request) string {
	if id := r.Header.Get("X-Client-ID"); id != "" {
		return id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (w *responseWriter) WriteHeader(statusCode int) {
	if !w.written {
		w.statusCode = statusCode
		w.written = true
		w.ResponseWriter.WriteHeader(statusCode)
	}
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.written = true
	}
	return w.ResponseWriter.Write(b)
}
