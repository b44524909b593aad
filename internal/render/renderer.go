package render

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmmcquay/hexreport/internal/hex"
	"github.com/dmmcquay/hexreport/internal/logging"
)

// ElementKind names the three parts emitted for every match.
type ElementKind string

const (
	ElementBoard     ElementKind = "board"
	ElementList      ElementKind = "list"
	ElementSeparator ElementKind = "separator"
)

// Element is one piece of output destined for the results container.
type Element struct {
	Kind    ElementKind
	MatchID string
	Content string
}

// RenderedMatch is the output for one match. When Err is set the match
// could not be decoded; Board and BoardSVG are empty, MoveList is still
// filled in.
type RenderedMatch struct {
	Match    *hex.Match
	Board    *hex.Bitboard
	BoardSVG string
	MoveList string
	Err      error
}

// Elements returns board, list and separator, in that order.
func (r RenderedMatch) Elements() []Element {
	board := r.BoardSVG
	if r.Err != nil {
		board = ""
	}
	return []Element{
		{Kind: ElementBoard, MatchID: r.Match.MatchID, Content: board},
		{Kind: ElementList, MatchID: r.Match.MatchID, Content: r.MoveList},
		{Kind: ElementSeparator, MatchID: r.Match.MatchID},
	}
}

// Flatten lays out the elements of all results in input order.
func Flatten(results []RenderedMatch) []Element {
	out := make([]Element, 0, 3*len(results))
	for _, r := range results {
		out = append(out, r.Elements()...)
	}
	return out
}

// Cache stores rendered matches. *cache.Manager satisfies it.
type Cache interface {
	MatchKey(m *hex.Match) (string, error)
	Get(key string) (interface{}, bool)
	Put(key string, value interface{}, size int64)
}

// Observer receives render metrics. *metrics.PrometheusCollector
// satisfies it.
type Observer interface {
	RecordRender(outcome string, durationSecs float64)
	RecordMoveError(reason string)
	RecordCacheHit()
	RecordCacheMiss()
}

// Renderer turns matches into RenderedMatch values. It holds no per-call
// state and may be shared between goroutines.
type Renderer struct {
	style    Style
	logger   logging.ContextLogger
	cache    Cache
	observer Observer
}

// NewRenderer creates a renderer with the given style.
func NewRenderer(style Style, logger logging.ContextLogger) *Renderer {
	return &Renderer{
		style:  style,
		logger: logger,
	}
}

// SetCache enables caching of rendered matches.
func (r *Renderer) SetCache(c Cache) {
	r.cache = c
}

// SetObserver sets the metrics sink.
func (r *Renderer) SetObserver(o Observer) {
	r.observer = o
}

// Style returns the style boards are drawn with.
func (r *Renderer) Style() Style {
	return r.style
}

// RenderMatch renders a single match.
func (r *Renderer) RenderMatch(m *hex.Match) RenderedMatch {
	start := time.Now()

	key := ""
	if r.cache != nil {
		k, err := r.cache.MatchKey(m)
		if err != nil {
			r.logger.Warn("Failed to compute cache key", "match", m.MatchID, "error", err)
		} else {
			key = k
			if v, ok := r.cache.Get(key); ok {
				if cached, ok := v.(RenderedMatch); ok {
					r.observeCache(true)
					cached.Match = m
					cached.Board = cached.Board.Clone()
					return cached
				}
			}
			r.observeCache(false)
		}
	}

	result := r.render(m)

	outcome := "success"
	if result.Err != nil {
		outcome = "error"
		r.logger.Warn("Match could not be decoded", "match", m.MatchID, "error", result.Err)
		if r.observer != nil {
			r.observer.RecordMoveError(moveErrorReason(result.Err))
		}
	} else {
		r.logger.Debug("Rendered match", "match", m.MatchID, "moves", len(m.Moves))
	}
	if r.observer != nil {
		r.observer.RecordRender(outcome, time.Since(start).Seconds())
	}

	if key != "" && result.Err == nil {
		stored := result
		stored.Board = result.Board.Clone()
		r.cache.Put(key, stored, int64(len(result.BoardSVG)+len(result.MoveList)))
	}
	return result
}

func (r *Renderer) render(m *hex.Match) RenderedMatch {
	result := RenderedMatch{
		Match:    m,
		MoveList: FormatMoveList(m),
	}
	b, err := hex.BuildBitboard(m)
	if err != nil {
		result.Err = fmt.Errorf("match %q: %w", m.MatchID, err)
		return result
	}
	result.Board = b
	result.BoardSVG = BoardSVG(b, r.style, m.MatchID)
	return result
}

// RenderAll renders every match in order. Failures are reported per match
// through RenderedMatch.Err; the joined error is non-nil when any match
// failed.
func (r *Renderer) RenderAll(matches []hex.Match) ([]RenderedMatch, error) {
	results := make([]RenderedMatch, len(matches))
	var errs []error
	for i := range matches {
		results[i] = r.RenderMatch(&matches[i])
		if results[i].Err != nil {
			errs = append(errs, results[i].Err)
		}
	}
	return results, errors.Join(errs...)
}

func (r *Renderer) observeCache(hit bool) {
	if r.observer == nil {
		return
	}
	if hit {
		r.observer.RecordCacheHit()
	} else {
		r.observer.RecordCacheMiss()
	}
}

func moveErrorReason(err error) string {
	switch {
	case errors.Is(err, hex.ErrMalformedMove):
		return "malformed"
	case errors.Is(err, hex.ErrOutOfBounds):
		return "out_of_bounds"
	case errors.Is(err, hex.ErrOccupied):
		return "occupied"
	case errors.Is(err, hex.ErrBoardSide):
		return "board_side"
	default:
		return "other"
	}
}
