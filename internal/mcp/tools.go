// Package mcp exposes the renderer as MCP tools.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cast"

	"github.com/dmmcquay/hexreport/internal/health"
	"github.com/dmmcquay/hexreport/internal/hex"
	"github.com/dmmcquay/hexreport/internal/logging"
	"github.com/dmmcquay/hexreport/internal/render"
)

// ToolsHandler serves the rendering tools.
type ToolsHandler struct {
	renderer    *render.Renderer
	checker     *health.Checker
	logger      logging.ContextLogger
	middleware  *Middleware
	reportTitle string
}

// NewToolsHandler creates a new tools handler. checker may be nil, in
// which case the health tool only reports metrics.
func NewToolsHandler(renderer *render.Renderer, checker *health.Checker, logger logging.ContextLogger) *ToolsHandler {
	return &ToolsHandler{
		renderer:    renderer,
		checker:     checker,
		logger:      logger,
		reportTitle: "Hex Results",
	}
}

// SetMiddleware sets the middleware for the tools handler.
func (h *ToolsHandler) SetMiddleware(middleware *Middleware) {
	h.middleware = middleware
}

// SetReportTitle sets the default title of renderReport pages.
func (h *ToolsHandler) SetReportTitle(title string) {
	if title != "" {
		h.reportTitle = title
	}
}

func matchOptions() []mcp.ToolOption {
	return []mcp.ToolOption{
		mcp.WithString("match",
			mcp.Description(`Match record as JSON: {"board_side":11,"match_id":"...","x_id":"...","o_id":"...","winner":"X","move":["a1","b2"],"time_ms":[10,20]}`),
		),
		mcp.WithString("moves",
			mcp.Description("Moves separated by spaces or commas, Black first (used when match is not given)"),
		),
		mcp.WithNumber("boardSide",
			mcp.Description("Board side length, 1-26 (default: 11, used with moves)"),
		),
	}
}

// RegisterTools registers all tools with the MCP server.
func (h *ToolsHandler) RegisterTools(s *server.MCPServer) {
	renderBoardTool := mcp.NewTool("renderBoard",
		append([]mcp.ToolOption{
			mcp.WithDescription("Draw the final position of a Hex match as an SVG image"),
		}, matchOptions()...)...,
	)
	boardHandler := h.HandleRenderBoard
	if h.middleware != nil {
		boardHandler = h.middleware.WrapTool("renderBoard", boardHandler)
	}
	s.AddTool(renderBoardTool, boardHandler)

	moveListTool := mcp.NewTool("moveList",
		append([]mcp.ToolOption{
			mcp.WithDescription("Format the move table of a Hex match with elapsed times"),
		}, matchOptions()...)...,
	)
	listHandler := h.HandleMoveList
	if h.middleware != nil {
		listHandler = h.middleware.WrapTool("moveList", listHandler)
	}
	s.AddTool(moveListTool, listHandler)

	showBoardTool := mcp.NewTool("showBoard",
		append([]mcp.ToolOption{
			mcp.WithDescription("Print a Hex position as text and report who has connected"),
		}, matchOptions()...)...,
	)
	showHandler := h.HandleShowBoard
	if h.middleware != nil {
		showHandler = h.middleware.WrapTool("showBoard", showHandler)
	}
	s.AddTool(showBoardTool, showHandler)

	renderReportTool := mcp.NewTool("renderReport",
		mcp.WithDescription("Render every match of a referee log into one HTML report"),
		mcp.WithString("log",
			mcp.Description("Referee log text"),
			mcp.Required(),
		),
		mcp.WithString("title",
			mcp.Description("Report title"),
		),
	)
	reportHandler := h.HandleRenderReport
	if h.middleware != nil {
		reportHandler = h.middleware.WrapTool("renderReport", reportHandler)
	}
	s.AddTool(renderReportTool, reportHandler)

	healthTool := mcp.NewTool("health",
		mcp.WithDescription("Report renderer health and tool statistics"),
	)
	healthHandler := h.HandleHealth
	if h.middleware != nil {
		healthHandler = h.middleware.WrapTool("health", healthHandler)
	}
	s.AddTool(healthTool, healthHandler)
}

// HandleRenderBoard handles the renderBoard tool.
func (h *ToolsHandler) HandleRenderBoard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx = logging.WithNewIDs(ctx)
	logger := h.logger.WithContext(ctx).WithField("tool", "renderBoard")

	m, err := matchFromArgs(request)
	if err != nil {
		return nil, err
	}
	logger.Debug("Rendering board", "match", m.MatchID, "moves", len(m.Moves))

	result := h.renderer.RenderMatch(m)
	if result.Err != nil {
		return mcp.NewToolResultError(result.Err.Error()), nil
	}
	return mcp.NewToolResultText(result.BoardSVG), nil
}

// HandleMoveList handles the moveList tool.
func (h *ToolsHandler) HandleMoveList(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx = logging.WithNewIDs(ctx)
	logger := h.logger.WithContext(ctx).WithField("tool", "moveList")

	m, err := matchFromArgs(request)
	if err != nil {
		return nil, err
	}
	logger.Debug("Formatting move list", "match", m.MatchID, "moves", len(m.Moves))

	return mcp.NewToolResultText(render.FormatMoveList(m)), nil
}

// HandleShowBoard handles the showBoard tool.
func (h *ToolsHandler) HandleShowBoard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx = logging.WithNewIDs(ctx)
	logger := h.logger.WithContext(ctx).WithField("tool", "showBoard")

	m, err := matchFromArgs(request)
	if err != nil {
		return nil, err
	}

	b, err := hex.BuildBitboard(m)
	if err != nil {
		logger.Debug("Match could not be replayed", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	var sb strings.Builder
	sb.WriteString(hex.FormatBoard(b))
	black, white := b.Stones()
	fmt.Fprintf(&sb, "\nStones: X %d, O %d\n", black, white)

	winner, played, err := hex.ReplayWinner(m)
	switch {
	case err != nil:
		return nil, fmt.Errorf("failed to replay match: %w", err)
	case winner == hex.None:
		sb.WriteString("No connection yet\n")
	default:
		fmt.Fprintf(&sb, "%c connects after move %d\n", winner, played)
	}

	return mcp.NewToolResultText(sb.String()), nil
}

// HandleRenderReport handles the renderReport tool.
func (h *ToolsHandler) HandleRenderReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx = logging.WithNewIDs(ctx)
	logger := h.logger.WithContext(ctx).WithField("tool", "renderReport")

	args, err := argsMap(request)
	if err != nil {
		return nil, err
	}
	text := cast.ToString(args["log"])
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("log is required")
	}
	title := cast.ToString(args["title"])
	if title == "" {
		title = h.reportTitle
	}

	parsed, err := hex.ParseLog(strings.NewReader(text))
	if err != nil {
		return nil, err
	}
	results, err := h.renderer.RenderAll(parsed.Matches)
	if err != nil {
		logger.Warn("Some matches could not be rendered", "error", err)
	}

	if h.middleware != nil && h.middleware.metrics != nil {
		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
			}
		}
		h.middleware.metrics.RecordMatches(len(results)-failed, failed)
	}

	report := render.NewReport(title, results)
	var sb strings.Builder
	if err := render.WriteReport(&sb, report); err != nil {
		return nil, err
	}
	logger.Info("Rendered report", "report", report.ID, "matches", len(results))

	return mcp.NewToolResultText(sb.String()), nil
}

// HandleHealth handles the health tool.
func (h *ToolsHandler) HandleHealth(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ctx = logging.WithNewIDs(ctx)

	out := map[string]interface{}{}
	if h.checker != nil {
		out["health"] = h.checker.CheckHealth(ctx)
	}
	if h.middleware != nil && h.middleware.metrics != nil {
		out["metrics"] = h.middleware.metrics.GetStats()
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to format health: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func argsMap(request mcp.CallToolRequest) (map[string]interface{}, error) {
	args := request.Params.Arguments
	if args == nil {
		return nil, errors.New("missing arguments")
	}
	m, ok := args.(map[string]interface{})
	if !ok {
		return nil, errors.New("invalid arguments format")
	}
	return m, nil
}

// matchFromArgs builds a match from either the match argument (a JSON
// string or an object) or from moves plus boardSide.
func matchFromArgs(request mcp.CallToolRequest) (*hex.Match, error) {
	args, err := argsMap(request)
	if err != nil {
		return nil, err
	}

	m := &hex.Match{}
	switch v := args["match"].(type) {
	case nil:
		movesArg, ok := args["moves"]
		if !ok {
			return nil, errors.New("must provide either 'match' or 'moves'")
		}
		m.Moves = splitMoves(movesArg)
		m.BoardSide = cast.ToInt(args["boardSide"])
	case string:
		if err := json.Unmarshal([]byte(v), m); err != nil {
			return nil, fmt.Errorf("failed to parse match: %w", err)
		}
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal match: %w", err)
		}
		if err := json.Unmarshal(data, m); err != nil {
			return nil, fmt.Errorf("failed to parse match: %w", err)
		}
	}

	m.ApplyDefaults()
	return m, nil
}

func splitMoves(v interface{}) []string {
	if s, ok := v.(string); ok {
		return strings.FieldsFunc(s, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n'
		})
	}
	return cast.ToStringSlice(v)
}
