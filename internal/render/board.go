package render

import (
	"bytes"
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo"

	"github.com/dmmcquay/hexreport/internal/hex"
)

// Style controls board geometry and colors.
type Style struct {
	Geometry     Geometry
	DisplayWidth int
	EmptyFill    string
	BlackFill    string
	WhiteFill    string
	Stroke       string
	StrokeWidth  int
}

// DefaultStyle matches the classic report look: cream cells, grey outlines.
func DefaultStyle() Style {
	return Style{
		Geometry:     Geometry{HexHeight: 500, MarginY: 20},
		DisplayWidth: 500,
		EmptyFill:    "#f2eac7",
		BlackFill:    "#000",
		WhiteFill:    "#fff",
		Stroke:       "#aaa",
		StrokeWidth:  1,
	}
}

func (s Style) fill(stone byte) string {
	switch stone {
	case hex.Black:
		return s.BlackFill
	case hex.White:
		return s.WhiteFill
	default:
		return s.EmptyFill
	}
}

// DrawBoard writes b as a standalone SVG element. Cells are drawn row by
// row; a cell is black when its bit is set in XRow, else white when set
// in OCol, else empty.
func DrawBoard(w io.Writer, b *hex.Bitboard, style Style, title string) {
	vw, vh := Extent(style.Geometry, b.Side)
	dw := style.DisplayWidth
	if dw <= 0 {
		dw = vw
	}
	dh := dw
	if vw > 0 {
		dh = dw * vh / vw
	}

	canvas := svg.New(w)
	canvas.Startview(dw, dh, 0, 0, vw, vh)
	if title != "" {
		canvas.Title(title)
	}
	canvas.Gid("cells")
	for i := 0; i < b.Side; i++ {
		for j := 0; j < b.Side; j++ {
			cell := Cell(style.Geometry, i, j)
			canvas.Path(cell.PathData(),
				fmt.Sprintf(`fill="%s" stroke="%s" stroke-width="%d"`,
					style.fill(b.At(i, j)), style.Stroke, style.StrokeWidth))
		}
	}
	canvas.Gend()
	canvas.End()
}

// BoardSVG is DrawBoard into a string.
func BoardSVG(b *hex.Bitboard, style Style, title string) string {
	var buf bytes.Buffer
	DrawBoard(&buf, b, style, title)
	return buf.String()
}
