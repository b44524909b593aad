package hex

import (
	"fmt"
	"strings"
)

// FormatBoard draws the board as text, one row per line, each row shifted
// one space further right than the one above:
//
//	   a  b  c
//	 1 X  .  .  1
//	  2 .  O  .  2
//	   3 .  .  X  3
//	      a  b  c
func FormatBoard(b *Bitboard) string {
	var sb strings.Builder
	letters := columnLetters(b.Side)

	sb.WriteString("   ")
	sb.WriteString(letters)
	sb.WriteByte('\n')
	for i := 0; i < b.Side; i++ {
		sb.WriteString(strings.Repeat(" ", i))
		fmt.Fprintf(&sb, "%2d ", i+1)
		for j := 0; j < b.Side; j++ {
			switch b.At(i, j) {
			case Black:
				sb.WriteByte('X')
			case White:
				sb.WriteByte('O')
			default:
				sb.WriteByte('.')
			}
			sb.WriteString("  ")
		}
		fmt.Fprintf(&sb, "%d\n", i+1)
	}
	sb.WriteString(strings.Repeat(" ", b.Side+3))
	sb.WriteString(letters)
	sb.WriteByte('\n')
	return sb.String()
}

func columnLetters(side int) string {
	parts := make([]string, side)
	for j := range parts {
		parts[j] = string(rune('a' + j))
	}
	return strings.Join(parts, "  ")
}
