package hex

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrMalformedMove is returned for strings that are not <letter><number>.
	ErrMalformedMove = errors.New("malformed move")
	// ErrOutOfBounds is returned for coordinates outside the board.
	ErrOutOfBounds = errors.New("move out of bounds")
	// ErrOccupied is returned when a move lands on a cell that already holds a stone.
	ErrOccupied = errors.New("cell already occupied")
	// ErrBoardSide is returned for board sizes that cannot be represented.
	ErrBoardSide = errors.New("invalid board side")
)

// Coord is a 0-based board coordinate.
type Coord struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// String formats the coordinate in move notation, e.g. {3,2} -> "c4".
func (c Coord) String() string {
	return fmt.Sprintf("%c%d", 'a'+c.Col, c.Row+1)
}

// MoveError describes a move that could not be applied.
type MoveError struct {
	Index int
	Move  string
	Err   error
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("move %d %q: %v", e.Index+1, e.Move, e.Err)
}

func (e *MoveError) Unwrap() error {
	return e.Err
}

// ValidateSide checks that side can be drawn and encoded.
func ValidateSide(side int) error {
	if side < 1 || side > MaxSide {
		return fmt.Errorf("%w: %d (want 1..%d)", ErrBoardSide, side, MaxSide)
	}
	return nil
}

// DecodeMove parses a move such as "c4" into a coordinate on a board of
// the given side. The letter selects the column, the number the row.
func DecodeMove(move string, side int) (Coord, error) {
	if len(move) < 2 || move[0] < 'a' || move[0] > 'z' {
		return Coord{}, ErrMalformedMove
	}
	for i := 1; i < len(move); i++ {
		if move[i] < '0' || move[i] > '9' {
			return Coord{}, ErrMalformedMove
		}
	}
	row, err := strconv.Atoi(move[1:])
	if err != nil {
		return Coord{}, ErrMalformedMove
	}

	c := Coord{Row: row - 1, Col: int(move[0] - 'a')}
	if c.Row < 0 || c.Row >= side || c.Col >= side {
		return Coord{}, fmt.Errorf("%w: %s on %dx%d board", ErrOutOfBounds, move, side, side)
	}
	return c, nil
}
