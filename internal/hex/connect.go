package hex

// connected reports whether the stones in lines join line 0 to the last
// line. lines is either XRow (Black, top to bottom) or OCol (White, left
// to right); both share the same neighbourhood once transposed: cell k
// of line i touches cells k and k-1 of line i+1, and k and k+1 of line
// i-1.
func connected(lines []uint32, side int) bool {
	if side == 0 {
		return false
	}
	mask := uint32(1)<<uint(side) - 1

	reach := make([]uint32, side)
	reach[0] = lines[0] & mask
	for changed := true; changed; {
		changed = false
		for i := 0; i < side; i++ {
			seed := reach[i]
			if i > 0 {
				seed |= reach[i-1] | reach[i-1]>>1
			}
			if i < side-1 {
				seed |= reach[i+1] | reach[i+1]<<1
			}
			grown := spread(seed&lines[i]&mask, lines[i]&mask)
			if grown != reach[i] {
				reach[i] = grown
				changed = true
			}
		}
	}
	return reach[side-1] != 0
}

// spread extends seed sideways through adjacent stones of line.
func spread(seed, line uint32) uint32 {
	for {
		next := (seed | seed<<1 | seed>>1) & line
		if next == seed {
			return seed
		}
		seed = next
	}
}

// Winner returns Black when Black joins the top and bottom rows, White
// when White joins the left and right columns, and None otherwise.
func (b *Bitboard) Winner() byte {
	if connected(b.XRow, b.Side) {
		return Black
	}
	if connected(b.OCol, b.Side) {
		return White
	}
	return None
}

// ReplayWinner replays m move by move and returns the color that first
// completes a connection, along with the number of moves played until
// then. Moves after the winning one are ignored.
func ReplayWinner(m *Match) (byte, int, error) {
	if err := ValidateSide(m.BoardSide); err != nil {
		return None, 0, err
	}
	b := NewBitboard(m.BoardSide)
	for i, mv := range m.Moves {
		c, err := DecodeMove(mv, m.BoardSide)
		if err != nil {
			return None, i, &MoveError{Index: i, Move: mv, Err: err}
		}
		if err := b.Place(c, ColorOf(i)); err != nil {
			return None, i, &MoveError{Index: i, Move: mv, Err: err}
		}
		if w := b.Winner(); w != None {
			return w, i + 1, nil
		}
	}
	return None, len(m.Moves), nil
}
