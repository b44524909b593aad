package render

import (
	"strconv"
	"strings"

	"github.com/dmmcquay/hexreport/internal/hex"
)

// MoveListHeader is the column header of every move table.
const MoveListHeader = "#    X   O\t\ttime X\ttime O \n"

// FormatMoves renders the move table: the column header, then one line
// per move pair with both elapsed times. A trailing Black move without a
// reply gets a line with only its own time.
func FormatMoves(m *hex.Match) string {
	var sb strings.Builder
	sb.WriteString(MoveListHeader)

	last := len(m.Moves) - 1
	for i, mv := range m.Moves {
		if i%2 == 0 {
			n := i/2 + 1
			sb.WriteString(strconv.Itoa(n))
			sb.WriteString(". ")
			if n <= 9 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(mv)

		switch {
		case i%2 == 1:
			sb.WriteString("\t\t")
			sb.WriteString(timeText(m, i-1))
			sb.WriteByte('\t')
			sb.WriteString(timeText(m, i))
			sb.WriteByte('\n')
		case i == last:
			sb.WriteString("\t\t")
			sb.WriteString(timeText(m, i))
			sb.WriteByte('\n')
		case len(mv) == 3:
			sb.WriteByte(' ')
		default:
			sb.WriteString("  ")
		}
	}
	return sb.String()
}

func timeText(m *hex.Match, i int) string {
	ms, ok := m.Time(i)
	if !ok {
		return ""
	}
	return strconv.Itoa(ms)
}

// PlayerLine formats "Black: <id>" or "White: <id>", prefixed with '+'
// for the winner and a space otherwise.
func PlayerLine(m *hex.Match, color byte) string {
	marker := " "
	if m.WinnerColor() == color {
		marker = "+"
	}
	if color == hex.Black {
		return marker + "Black: " + m.XID
	}
	return marker + "White: " + m.OID
}

// FormatMoveList is the full text panel: match id, both players and the
// move table.
func FormatMoveList(m *hex.Match) string {
	var sb strings.Builder
	sb.WriteString(m.MatchID)
	sb.WriteByte('\n')
	sb.WriteString(PlayerLine(m, hex.Black))
	sb.WriteByte('\n')
	sb.WriteString(PlayerLine(m, hex.White))
	sb.WriteByte('\n')
	sb.WriteString(FormatMoves(m))
	return sb.String()
}
