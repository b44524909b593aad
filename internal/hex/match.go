// Package hex models finished Hex matches: move decoding, bitboards,
// connection checks and the referee log format.
package hex

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cast"
)

// Stone colors as they appear in referee logs and match records.
const (
	Black = 'X'
	White = 'O'
	None  = ' '
)

// MaxSide is the largest board whose columns can be named by a single
// letter. Row and column masks are 32 bits wide, so every side fits.
const MaxSide = 26

// DefaultSide is used when a match does not state its board size.
const DefaultSide = 11

// NoTime marks a move whose elapsed time was not recorded.
const NoTime = -1

// Match is a finished match record.
type Match struct {
	BoardSide int      `json:"board_side"`
	MatchID   string   `json:"match_id"`
	XID       string   `json:"x_id"`
	OID       string   `json:"o_id"`
	Winner    string   `json:"winner,omitempty"`
	Moves     []string `json:"move"`
	TimeMS    []int    `json:"time_ms,omitempty"`

	// ReplayErr is set by the log parser when the move history could not
	// be replayed onto a board.
	ReplayErr error `json:"-"`
}

// UnmarshalJSON accepts board_side as a number or a numeric string.
func (m *Match) UnmarshalJSON(data []byte) error {
	type plain Match
	aux := struct {
		*plain
		BoardSide interface{} `json:"board_side"`
	}{plain: (*plain)(m)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	side := 0
	switch v := aux.BoardSide.(type) {
	case nil:
	case float64:
		side = cast.ToInt(v)
	case string:
		if v != "" {
			n, err := cast.ToIntE(v)
			if err != nil {
				return fmt.Errorf("invalid board_side %q: %w", v, err)
			}
			side = n
		}
	default:
		return fmt.Errorf("invalid board_side: %v", v)
	}
	m.BoardSide = side
	return nil
}

// ApplyDefaults fills in fields a caller may leave out. A zero board
// side means DefaultSide.
func (m *Match) ApplyDefaults() {
	if m.BoardSide == 0 {
		m.BoardSide = DefaultSide
	}
}

// WinnerColor returns Black, White or None.
func (m *Match) WinnerColor() byte {
	switch m.Winner {
	case "X":
		return Black
	case "O":
		return White
	default:
		return None
	}
}

// Time returns the elapsed time of move i and whether it was recorded.
func (m *Match) Time(i int) (int, bool) {
	if i < 0 || i >= len(m.TimeMS) || m.TimeMS[i] < 0 {
		return 0, false
	}
	return m.TimeMS[i], true
}

// ColorOf returns the color that plays move index i. Black moves first.
func ColorOf(i int) byte {
	if i%2 == 0 {
		return Black
	}
	return White
}
