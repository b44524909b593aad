package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"

	"github.com/dmmcquay/hexreport/internal/hex"
	"github.com/dmmcquay/hexreport/internal/logging"
	"github.com/dmmcquay/hexreport/internal/metrics"
	"github.com/dmmcquay/hexreport/internal/render"
)

// API holds the render endpoints.
type API struct {
	renderer     *render.Renderer
	logger       logging.ContextLogger
	prometheus   *metrics.PrometheusCollector
	maxBodyBytes int64
	reportTitle  string
}

func NewAPI(renderer *render.Renderer, logger logging.ContextLogger, prometheus *metrics.PrometheusCollector, maxBodyBytes int64, reportTitle string) *API {
	if maxBodyBytes <= 0 {
		maxBodyBytes = 8 << 20
	}
	if reportTitle == "" {
		reportTitle = "Hex Results"
	}
	return &API{
		renderer:     renderer,
		logger:       logger,
		prometheus:   prometheus,
		maxBodyBytes: maxBodyBytes,
		reportTitle:  reportTitle,
	}
}

type errorResponse struct {
	Error string `json:"error"`
	Move  string `json:"move,omitempty"`
	Index int    `json:"index,omitempty"`
}

// HandleReport renders a full HTML report. The body is either a referee
// log or, with Content-Type application/json, an array of matches.
// The optional title query parameter overrides the configured title.
func (a *API) HandleReport(w http.ResponseWriter, r *http.Request) {
	if !a.allowPost(w, r) {
		return
	}
	logger := a.logger.WithContext(r.Context())

	body, ok := a.readBody(w, r)
	if !ok {
		return
	}

	var matches []hex.Match
	if isJSON(r) {
		if err := json.Unmarshal(body, &matches); err != nil {
			a.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid match list: %w", err))
			return
		}
		for i := range matches {
			matches[i].ApplyDefaults()
		}
	} else {
		parsed, err := hex.ParseLog(bytes.NewReader(body))
		if err != nil {
			a.writeError(w, http.StatusBadRequest, err)
			return
		}
		matches = parsed.Matches
		a.prometheus.RecordLogParsed(len(matches))
		for i := range matches {
			if matches[i].ReplayErr != nil {
				logger.Warn("Referee log replay problem", "match", matches[i].MatchID, "error", matches[i].ReplayErr)
			}
		}
	}

	results, err := a.renderer.RenderAll(matches)
	if err != nil {
		logger.Warn("Some matches could not be rendered", "error", err)
	}

	title := a.reportTitle
	if t := r.URL.Query().Get("title"); t != "" {
		title = t
	}
	report := render.NewReport(title, results)

	var buf bytes.Buffer
	if err := render.WriteReport(&buf, report); err != nil {
		logger.Error("Failed to write report", "error", err)
		a.writeError(w, http.StatusInternalServerError, err)
		return
	}
	a.prometheus.RecordReport(len(results))
	logger.Info("Rendered report", "report", report.ID, "matches", len(results))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Report-ID", report.ID)
	_, _ = w.Write(buf.Bytes())
}

// HandleBoard renders one match as SVG, or as text with ?format=text.
func (a *API) HandleBoard(w http.ResponseWriter, r *http.Request) {
	m, ok := a.decodeMatch(w, r)
	if !ok {
		return
	}

	result := a.renderer.RenderMatch(m)
	if result.Err != nil {
		a.writeMatchError(w, result.Err)
		return
	}

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, hex.FormatBoard(result.Board))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = io.WriteString(w, result.BoardSVG)
}

// HandleMoveList renders the move table of one match. Moves are not
// replayed, so a match with bad moves still gets its list.
func (a *API) HandleMoveList(w http.ResponseWriter, r *http.Request) {
	m, ok := a.decodeMatch(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, render.FormatMoveList(m))
}

func (a *API) decodeMatch(w http.ResponseWriter, r *http.Request) (*hex.Match, bool) {
	if !a.allowPost(w, r) {
		return nil, false
	}
	body, ok := a.readBody(w, r)
	if !ok {
		return nil, false
	}
	var m hex.Match
	if err := json.Unmarshal(body, &m); err != nil {
		a.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid match: %w", err))
		return nil, false
	}
	m.ApplyDefaults()
	return &m, true
}

func (a *API) allowPost(w http.ResponseWriter, r *http.Request) bool {
	if r.Method == http.MethodPost {
		return true
	}
	w.Header().Set("Allow", http.MethodPost)
	a.writeError(w, http.StatusMethodNotAllowed, errors.New("method not allowed"))
	return false
}

func (a *API) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, a.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.writeError(w, http.StatusRequestEntityTooLarge, err)
		} else {
			a.writeError(w, http.StatusBadRequest, err)
		}
		return nil, false
	}
	return body, true
}

func (a *API) writeMatchError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: err.Error()}
	var moveErr *hex.MoveError
	if errors.As(err, &moveErr) {
		resp.Move = moveErr.Move
		resp.Index = moveErr.Index + 1
	}
	a.writeJSON(w, http.StatusUnprocessableEntity, resp)
}

func (a *API) writeError(w http.ResponseWriter, status int, err error) {
	a.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (a *API) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Error("Failed to encode response", "error", err)
	}
}

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "application/json"
}
