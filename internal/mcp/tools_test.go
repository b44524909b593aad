package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmmcquay/hexreport/internal/health"
	"github.com/dmmcquay/hexreport/internal/logging"
	"github.com/dmmcquay/hexreport/internal/metrics"
	"github.com/dmmcquay/hexreport/internal/render"
)

const refereeLog = `Match_01 11x11
X: alpha
O: beta
Xa1 #1 t=10ms
Ob1 #2 t=12ms
X.
Match_02 11x11
X: beta
O: alpha
Xc3 #1 t=5ms
`

func newHandler(t *testing.T) *ToolsHandler {
	t.Helper()
	logger := logging.Nop()
	renderer := render.NewRenderer(render.DefaultStyle(), logger)
	checker := health.NewChecker(logger, "test", "abc123")
	checker.RegisterDetailedCheck("renderer", health.RenderCheck(renderer))

	handler := NewToolsHandler(renderer, checker, logger)
	handler.SetMiddleware(NewMiddleware(logger, metrics.NewCollector(), nil))
	return handler
}

func request(name string, args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func TestRegisterTools(t *testing.T) {
	handler := newHandler(t)
	s := server.NewMCPServer("hexreport-test", "test", server.WithToolCapabilities(true))
	assert.NotPanics(t, func() { handler.RegisterTools(s) })
}

func TestRenderBoardTool(t *testing.T) {
	handler := newHandler(t)
	ctx := context.Background()

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{
			name: "match as JSON string",
			args: map[string]interface{}{
				"match": `{"board_side":3,"match_id":"m1","move":["a1","b2"]}`,
			},
		},
		{
			name: "match as object",
			args: map[string]interface{}{
				"match": map[string]interface{}{
					"board_side": 3,
					"match_id":   "m1",
					"move":       []interface{}{"a1", "b2"},
				},
			},
		},
		{
			name: "moves and boardSide",
			args: map[string]interface{}{
				"moves":     "a1, b2",
				"boardSide": float64(3),
			},
		},
		{
			name: "moves as list",
			args: map[string]interface{}{
				"moves":     []interface{}{"a1", "b2"},
				"boardSide": "3",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := handler.HandleRenderBoard(ctx, request("renderBoard", tt.args))
			require.NoError(t, err)
			assert.False(t, result.IsError)

			svg := resultText(t, result)
			assert.True(t, strings.HasPrefix(svg, "<svg"), svg)
			assert.Equal(t, 9, strings.Count(svg, "<path"))
		})
	}
}

func TestRenderBoardDefaultSide(t *testing.T) {
	handler := newHandler(t)
	result, err := handler.HandleRenderBoard(context.Background(),
		request("renderBoard", map[string]interface{}{"moves": "k11"}))
	require.NoError(t, err)
	assert.Equal(t, 121, strings.Count(resultText(t, result), "<path"))
}

func TestRenderBoardBadMove(t *testing.T) {
	handler := newHandler(t)
	result, err := handler.HandleRenderBoard(context.Background(),
		request("renderBoard", map[string]interface{}{"moves": "a1 a1", "boardSide": 3}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "occupied")
}

func TestToolArgumentErrors(t *testing.T) {
	handler := newHandler(t)
	ctx := context.Background()

	_, err := handler.HandleRenderBoard(ctx, mcp.CallToolRequest{})
	assert.EqualError(t, err, "missing arguments")

	_, err = handler.HandleMoveList(ctx, request("moveList", map[string]interface{}{}))
	assert.EqualError(t, err, "must provide either 'match' or 'moves'")

	_, err = handler.HandleShowBoard(ctx, request("showBoard", map[string]interface{}{"match": "{"}))
	assert.ErrorContains(t, err, "failed to parse match")

	_, err = handler.HandleRenderReport(ctx, request("renderReport", map[string]interface{}{"log": "  "}))
	assert.EqualError(t, err, "log is required")
}

func TestMoveListTool(t *testing.T) {
	handler := newHandler(t)
	args := map[string]interface{}{
		"match": map[string]interface{}{
			"board_side": 11,
			"match_id":   "Match_07",
			"x_id":       "alpha",
			"o_id":       "beta",
			"winner":     "O",
			"move":       []interface{}{"a1", "b2", "zz"},
			"time_ms":    []interface{}{1, 2, 3},
		},
	}

	result, err := handler.HandleMoveList(context.Background(), request("moveList", args))
	require.NoError(t, err)

	out := resultText(t, result)
	assert.True(t, strings.HasPrefix(out, "Match_07\n"), out)
	assert.Contains(t, out, "+White: beta")
	assert.Contains(t, out, render.MoveListHeader)
	assert.Contains(t, out, "2.  zz\t\t3\n")
}

func TestShowBoardTool(t *testing.T) {
	handler := newHandler(t)
	ctx := context.Background()

	result, err := handler.HandleShowBoard(ctx,
		request("showBoard", map[string]interface{}{"moves": "a1 b1 a2 b2 a3", "boardSide": 3}))
	require.NoError(t, err)
	out := resultText(t, result)
	assert.Contains(t, out, "Stones: X 3, O 2")
	assert.Contains(t, out, "X connects after move 5")

	result, err = handler.HandleShowBoard(ctx,
		request("showBoard", map[string]interface{}{"moves": "a1", "boardSide": 3}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "No connection yet")

	result, err = handler.HandleShowBoard(ctx,
		request("showBoard", map[string]interface{}{"moves": "d1", "boardSide": 3}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "out of bounds")
}

func TestRenderReportTool(t *testing.T) {
	handler := newHandler(t)
	handler.SetReportTitle("Club night")

	result, err := handler.HandleRenderReport(context.Background(),
		request("renderReport", map[string]interface{}{"log": refereeLog}))
	require.NoError(t, err)

	out := resultText(t, result)
	assert.Contains(t, out, "<title>Club night</title>")
	assert.Equal(t, 2, strings.Count(out, "<svg"))
	assert.Equal(t, 2, strings.Count(out, `<div class="separator">`))
	assert.Less(t, strings.Index(out, "Match_01"), strings.Index(out, "Match_02"))

	result, err = handler.HandleRenderReport(context.Background(),
		request("renderReport", map[string]interface{}{"log": refereeLog, "title": "Finals"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "<title>Finals</title>")

	matches := handler.middleware.metrics.GetStats()["matches"].(map[string]interface{})
	assert.Equal(t, int64(4), matches["rendered"])
	assert.Equal(t, int64(0), matches["failed"])
}

func TestHealthTool(t *testing.T) {
	handler := newHandler(t)
	ctx := context.Background()

	wrapped := handler.middleware.WrapTool("renderBoard", handler.HandleRenderBoard)
	_, err := wrapped(ctx, request("renderBoard", map[string]interface{}{"moves": "a1"}))
	require.NoError(t, err)

	result, err := handler.HandleHealth(ctx, request("health", nil))
	require.NoError(t, err)

	var out struct {
		Health  health.Response `json:"health"`
		Metrics struct {
			Tools map[string]struct {
				Calls int64 `json:"calls"`
			} `json:"tools"`
		} `json:"metrics"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &out))
	assert.Equal(t, health.StatusHealthy, out.Health.Status)
	assert.Equal(t, int64(1), out.Metrics.Tools["renderBoard"].Calls)
}

func TestSplitMoves(t *testing.T) {
	assert.Equal(t, []string{"a1", "b2", "c3"}, splitMoves("a1, b2\tc3\n"))
	assert.Equal(t, []string{"a1"}, splitMoves("a1"))
	assert.Equal(t, []string{"a1", "b2"}, splitMoves([]interface{}{"a1", "b2"}))
	assert.Empty(t, splitMoves(""))
}
