package health

import (
	"context"
	"errors"
	"testing"

	"github.com/dmmcquay/hexreport/internal/cache"
	"github.com/dmmcquay/hexreport/internal/config"
	"github.com/dmmcquay/hexreport/internal/logging"
	"github.com/dmmcquay/hexreport/internal/render"
)

func TestRenderCheck(t *testing.T) {
	r := render.NewRenderer(render.DefaultStyle(), logging.Nop())

	meta, err := RenderCheck(r)(context.Background())
	if err != nil {
		t.Fatalf("Expected self-test to pass, got %v", err)
	}
	if meta["hex_height"] != 500.0 {
		t.Errorf("Expected hex_height 500, got %v", meta["hex_height"])
	}
	if n, ok := meta["svg_bytes"].(int); !ok || n == 0 {
		t.Errorf("Expected svg_bytes, got %v", meta["svg_bytes"])
	}
}

func TestRenderCheckCanceled(t *testing.T) {
	r := render.NewRenderer(render.DefaultStyle(), logging.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := RenderCheck(r)(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestCacheCheck(t *testing.T) {
	enabled := cache.NewManager(&config.CacheConfig{Enabled: true, MaxItems: 5}, logging.Nop())
	enabled.Put("k", "v", 10)

	meta, err := CacheCheck(enabled)(context.Background())
	if err != nil {
		t.Fatalf("Expected enabled cache to be healthy, got %v", err)
	}
	if meta["items"] != 1 {
		t.Errorf("Expected 1 item, got %v", meta["items"])
	}

	disabled := cache.NewManager(&config.CacheConfig{Enabled: false}, logging.Nop())
	_, err = CacheCheck(disabled)(context.Background())
	if !errors.Is(err, ErrDegraded) {
		t.Errorf("Expected disabled cache to be degraded, got %v", err)
	}
}
