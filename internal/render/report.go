package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dmmcquay/hexreport/internal/hex"
)

//go:embed templates/report.html
var templateFS embed.FS

var reportTemplate = template.Must(
	template.New("report.html").
		Funcs(template.FuncMap{
			"svg":   inlineSVG,
			"moves": FormatMoves,
		}).
		ParseFS(templateFS, "templates/report.html"),
)

// Report is a complete results page.
type Report struct {
	ID        string
	Title     string
	Generated time.Time
	XWins     int
	OWins     int
	Matches   []RenderedMatch
}

// NewReport wraps rendered matches in a report with a fresh ID.
func NewReport(title string, matches []RenderedMatch) *Report {
	r := &Report{
		ID:        uuid.NewString(),
		Title:     title,
		Generated: time.Now().UTC(),
		Matches:   matches,
	}
	for _, m := range matches {
		switch m.Match.WinnerColor() {
		case hex.Black:
			r.XWins++
		case hex.White:
			r.OWins++
		}
	}
	return r
}

// WriteReport writes the report as a single HTML page. Each match
// contributes a board, a move list and a separator, in order.
func WriteReport(w io.Writer, r *Report) error {
	if err := reportTemplate.Execute(w, r); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// inlineSVG drops the XML prolog so the drawing can sit inside HTML.
func inlineSVG(s string) template.HTML {
	if i := strings.Index(s, "<svg"); i > 0 {
		s = s[i:]
	}
	return template.HTML(s) // #nosec G203 -- generated by DrawBoard, titles are escaped by svgo
}
