// Package render turns finished Hex matches into SVG boards, move lists
// and HTML reports.
package render

import (
	"fmt"
	"math"
	"strings"
)

// Geometry fixes the size of a hexagon and the top margin of the board.
type Geometry struct {
	HexHeight float64
	MarginY   float64
}

// HexWidth is the flat-to-flat width of a hexagon, H * sqrt(3)/2.
func (g Geometry) HexWidth() float64 {
	return math.Sqrt(3) / 2 * g.HexHeight
}

// Point is a rounded pixel coordinate.
type Point struct {
	X int
	Y int
}

// Polygon is one hexagonal cell, pointy side up. Vertices run clockwise
// starting at the upper-left corner.
type Polygon struct {
	Center   Point
	Vertices [6]Point
}

// Cell returns the hexagon for (row, col). Each row is shifted right by
// half a hexagon width relative to the row above it, which gives the
// rhombus shape of a Hex board.
func Cell(g Geometry, row, col int) Polygon {
	hh := g.HexHeight
	hw := g.HexWidth()
	xoff := float64(row+1) * 0.5 * hw

	cx := int(math.Round(xoff + 0.5*hw + float64(col)*hw))
	cy := int(math.Round(g.MarginY + 0.5*hh + float64(row)*0.75*hh))
	x, y := float64(cx), float64(cy)

	left := int(math.Round(x - 0.5*hw))
	right := int(math.Round(x + 0.5*hw))
	upper := int(math.Round(y - 0.25*hh))
	lower := int(math.Round(y + 0.25*hh))

	return Polygon{
		Center: Point{X: cx, Y: cy},
		Vertices: [6]Point{
			{X: left, Y: upper},
			{X: cx, Y: int(math.Round(y - 0.5*hh))},
			{X: right, Y: upper},
			{X: right, Y: lower},
			{X: cx, Y: int(math.Round(y + 0.5*hh))},
			{X: left, Y: lower},
		},
	}
}

// PathData renders the polygon as an SVG path: M, five L segments, Z.
func (p Polygon) PathData() string {
	var sb strings.Builder
	for i, v := range p.Vertices {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&sb, "%s%d,%d", cmd, v.X, v.Y)
	}
	fmt.Fprintf(&sb, "L%d,%dZ", p.Vertices[0].X, p.Vertices[0].Y)
	return sb.String()
}

// Extent returns the width and height needed to show a side x side board,
// with MarginY of room below and to the right.
func Extent(g Geometry, side int) (int, int) {
	if side <= 0 {
		return 0, 0
	}
	last := Cell(g, side-1, side-1)
	width := last.Vertices[2].X + int(math.Ceil(g.MarginY))
	height := last.Vertices[4].Y + int(math.Ceil(g.MarginY))
	return width, height
}
