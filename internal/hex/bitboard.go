package hex

// Bitboard stores stones one bit per cell. XRow[r] has bit c set when
// Black holds (r, c); OCol[c] has bit r set when White holds (r, c).
type Bitboard struct {
	Side int      `json:"board_side"`
	XRow []uint32 `json:"x_row"`
	OCol []uint32 `json:"o_col"`
}

// NewBitboard returns an empty board. side must already be validated.
func NewBitboard(side int) *Bitboard {
	return &Bitboard{
		Side: side,
		XRow: make([]uint32, side),
		OCol: make([]uint32, side),
	}
}

// Clone returns a copy that shares no storage with b.
func (b *Bitboard) Clone() *Bitboard {
	if b == nil {
		return nil
	}
	return &Bitboard{
		Side: b.Side,
		XRow: append([]uint32(nil), b.XRow...),
		OCol: append([]uint32(nil), b.OCol...),
	}
}

// Occupied reports whether any stone sits on c.
func (b *Bitboard) Occupied(c Coord) bool {
	return b.XRow[c.Row]&(1<<uint(c.Col)) != 0 || b.OCol[c.Col]&(1<<uint(c.Row)) != 0
}

// Place puts a stone of the given color on c.
func (b *Bitboard) Place(c Coord, color byte) error {
	if c.Row < 0 || c.Row >= b.Side || c.Col < 0 || c.Col >= b.Side {
		return ErrOutOfBounds
	}
	if b.Occupied(c) {
		return ErrOccupied
	}
	if color == Black {
		b.XRow[c.Row] |= 1 << uint(c.Col)
	} else {
		b.OCol[c.Col] |= 1 << uint(c.Row)
	}
	return nil
}

// At returns the stone on (row, col). Black is tested first, so a cell
// that somehow carries both bits reads as Black.
func (b *Bitboard) At(row, col int) byte {
	if b.XRow[row]&(1<<uint(col)) != 0 {
		return Black
	}
	if b.OCol[col]&(1<<uint(row)) != 0 {
		return White
	}
	return None
}

// Stones counts the stones of each color.
func (b *Bitboard) Stones() (black, white int) {
	for i := 0; i < b.Side; i++ {
		black += popcount(b.XRow[i])
		white += popcount(b.OCol[i])
	}
	return black, white
}

func popcount(v uint32) int {
	n := 0
	for v != 0 {
		v &= v - 1
		n++
	}
	return n
}

// BuildBitboard replays the moves of m. Even indices are Black's moves,
// odd indices White's. The first bad move stops the replay and is
// reported as a *MoveError.
func BuildBitboard(m *Match) (*Bitboard, error) {
	if err := ValidateSide(m.BoardSide); err != nil {
		return nil, err
	}
	b := NewBitboard(m.BoardSide)
	for i, mv := range m.Moves {
		c, err := DecodeMove(mv, m.BoardSide)
		if err != nil {
			return b, &MoveError{Index: i, Move: mv, Err: err}
		}
		if err := b.Place(c, ColorOf(i)); err != nil {
			return b, &MoveError{Index: i, Move: mv, Err: err}
		}
	}
	return b, nil
}
