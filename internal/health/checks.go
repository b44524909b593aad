package health

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmmcquay/hexreport/internal/cache"
	"github.com/dmmcquay/hexreport/internal/hex"
	"github.com/dmmcquay/hexreport/internal/render"
)

// selfTestMatch is a 3x3 game Black wins down column a.
var selfTestMatch = hex.Match{
	BoardSide: 3,
	MatchID:   "self-test",
	Moves:     []string{"a1", "b1", "a2", "b2", "a3"},
}

// RenderCheck replays and draws a known match with the renderer's style.
// It does not touch the renderer's cache or metrics.
func RenderCheck(r *render.Renderer) DetailedCheck {
	return func(ctx context.Context) (map[string]interface{}, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m := selfTestMatch
		b, err := hex.BuildBitboard(&m)
		if err != nil {
			return nil, fmt.Errorf("self-test replay: %w", err)
		}
		if w := b.Winner(); w != hex.Black {
			return nil, fmt.Errorf("self-test winner is %q, want %q", w, hex.Black)
		}

		style := r.Style()
		svg := render.BoardSVG(b, style, m.MatchID)
		if n := strings.Count(svg, "<path"); n != m.BoardSide*m.BoardSide {
			return nil, fmt.Errorf("self-test drew %d cells, want %d", n, m.BoardSide*m.BoardSide)
		}
		return map[string]interface{}{
			"hex_height": style.Geometry.HexHeight,
			"svg_bytes":  len(svg),
		}, nil
	}
}

// CacheCheck reports cache statistics. A disabled cache is degraded.
func CacheCheck(m *cache.Manager) DetailedCheck {
	return func(ctx context.Context) (map[string]interface{}, error) {
		if !m.IsEnabled() {
			return map[string]interface{}{"enabled": false}, fmt.Errorf("cache disabled: %w", ErrDegraded)
		}
		stats := m.Stats()
		return map[string]interface{}{
			"enabled":    true,
			"items":      stats.Items,
			"size_bytes": stats.Size,
			"hit_rate":   stats.HitRate,
			"evictions":  stats.Evictions,
		}, nil
	}
}
