// Package mcpadapter exposes ranking and interval estimation as MCP tools.
package mcpadapter

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kirillkom/nonprofit-scan/internal/core/domain"
	"github.com/kirillkom/nonprofit-scan/internal/core/ports"
	"github.com/kirillkom/nonprofit-scan/internal/report"
)

const (
	RankToolName     = "rank_filings"
	IntervalToolName = "wilson_interval"
)

type Defaults struct {
	Keyword string
	TopK    int
	Z       float64
}

type Handlers struct {
	ranker    ports.CorpusRanker
	evaluator ports.AuditEvaluator
	defaults  Defaults
}

func NewHandlers(ranker ports.CorpusRanker, evaluator ports.AuditEvaluator, defaults Defaults) *Handlers {
	if defaults.Z == 0 {
		defaults.Z = domain.DefaultZ
	}
	return &Handlers{ranker: ranker, evaluator: evaluator, defaults: defaults}
}

func NewServer(name, version string, h *Handlers) *server.MCPServer {
	s := server.NewMCPServer(name, version, server.WithToolCapabilities(false))

	s.AddTool(mcp.NewTool(RankToolName,
		mcp.WithDescription("Scan the filing corpus, keep organizations whose mission matches a keyword and list the top ones by total revenue."),
		mcp.WithString("keyword", mcp.Description("Case-insensitive regular expression matched against the mission text.")),
		mcp.WithNumber("top_k", mcp.Description("Number of organizations to return, 0 for all.")),
	), h.Rank)

	s.AddTool(mcp.NewTool(IntervalToolName,
		mcp.WithDescription("Wilson score interval for a labeling accuracy estimate."),
		mcp.WithNumber("successes", mcp.Required(), mcp.Description("Number of labels judged correct.")),
		mcp.WithNumber("total", mcp.Required(), mcp.Description("Number of labels reviewed.")),
		mcp.WithNumber("z", mcp.Description("Normal quantile, 1.645 for a 90% interval.")),
	), h.Interval)

	return s
}

func (h *Handlers) Rank(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := domain.RankQuery{
		Keyword: req.GetString("keyword", h.defaults.Keyword),
		TopK:    req.GetInt("top_k", h.defaults.TopK),
	}
	if query.TopK < 0 {
		return mcp.NewToolResultError("top_k must be >= 0"), nil
	}

	scan, err := h.ranker.Rank(ctx, query)
	if err != nil {
		slog.Warn("mcp_tool_failed", "tool", RankToolName, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}

	var buf bytes.Buffer
	if err := report.WriteScanSummary(&buf, scan); err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func (h *Handlers) Interval(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	successes, err := req.RequireInt("successes")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	total, err := req.RequireInt("total")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	eval, err := h.evaluator.EvaluateCounts(successes, total, req.GetFloat("z", h.defaults.Z))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var buf bytes.Buffer
	if err := report.WriteEvaluation(&buf, eval); err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(buf.String()), nil
}
