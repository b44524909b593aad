// Package shutdown stops the components of a running server in reverse
// start order.
package shutdown

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmmcquay/hexreport/internal/logging"
)

type step struct {
	name string
	fn   func(context.Context) error
}

// Manager coordinates graceful shutdown.
type Manager struct {
	logger logging.ContextLogger

	mu    sync.Mutex
	steps []step

	ctx    context.Context
	cancel context.CancelFunc

	once sync.Once
	err  error
	done chan struct{}
}

func NewManager(logger logging.ContextLogger) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Register adds a component. Components stop in reverse order of
// registration.
func (m *Manager) Register(name string, fn func(context.Context) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, step{name: name, fn: fn})
}

// Context is cancelled as soon as shutdown is requested.
func (m *Manager) Context() context.Context {
	return m.ctx
}

// Trigger requests shutdown without waiting for it.
func (m *Manager) Trigger(reason string) {
	if m.ctx.Err() == nil {
		m.logger.Info("Shutdown requested", "reason", reason)
	}
	m.cancel()
}

// HandleSignals triggers shutdown on SIGINT or SIGTERM. The returned
// function stops listening.
func (m *Manager) HandleSignals() func() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigCh:
			m.Trigger(fmt.Sprintf("signal %s", sig))
		case <-m.ctx.Done():
		}
	}()
	return func() { signal.Stop(sigCh) }
}

// Shutdown stops every registered component within timeout and returns
// their joined errors. Later calls return the first result.
func (m *Manager) Shutdown(timeout time.Duration) error {
	m.once.Do(func() {
		m.Trigger("shutdown")
		m.logger.Info("Starting graceful shutdown", "timeout", timeout)

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		m.mu.Lock()
		steps := make([]step, len(m.steps))
		copy(steps, m.steps)
		m.mu.Unlock()

		var errs []error
		for i := len(steps) - 1; i >= 0; i-- {
			if err := m.stop(ctx, steps[i]); err != nil {
				errs = append(errs, err)
			}
		}
		m.err = errors.Join(errs...)

		if m.err != nil {
			m.logger.Error("Graceful shutdown completed with errors", "errors", len(errs))
		} else {
			m.logger.Info("Graceful shutdown completed successfully")
		}
		close(m.done)
	})
	<-m.done
	return m.err
}

func (m *Manager) stop(ctx context.Context, s step) error {
	if err := ctx.Err(); err != nil {
		m.logger.Error("Skipped component, shutdown timed out", "component", s.name)
		return fmt.Errorf("%s: %w", s.name, err)
	}
	start := time.Now()
	if err := s.fn(ctx); err != nil {
		m.logger.Error("Failed to shutdown component", "component", s.name, "error", err, "elapsed", time.Since(start))
		return fmt.Errorf("%s: %w", s.name, err)
	}
	m.logger.Info("Component shutdown complete", "component", s.name, "elapsed", time.Since(start))
	return nil
}

// Done is closed once Shutdown has finished.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}
