package httpadapter

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kirillkom/nonprofit-scan/internal/config"
	"github.com/kirillkom/nonprofit-scan/internal/core/domain"
	"github.com/kirillkom/nonprofit-scan/internal/core/ports"
	"github.com/kirillkom/nonprofit-scan/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	cfg       config.Config
	ranker    ports.CorpusRanker
	evaluator ports.AuditEvaluator
	metrics   *metrics.HTTPServerMetrics
}

func NewRouter(
	cfg config.Config,
	ranker ports.CorpusRanker,
	evaluator ports.AuditEvaluator,
	httpMetrics *metrics.HTTPServerMetrics,
) *Router {
	if httpMetrics == nil {
		httpMetrics = metrics.NewHTTPServerMetrics(serviceName)
	}
	return &Router{
		cfg:       cfg,
		ranker:    ranker,
		evaluator: evaluator,
		metrics:   httpMetrics,
	}
}

func (rt *Router) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("POST /v1/rank", rt.rank)
	api.HandleFunc("POST /v1/intervals", rt.intervals)

	var guarded http.Handler = validateRequestMiddleware(apiSpec, api)
	guarded = backpressureMiddleware(guarded, rt.cfg.APIMaxInFlight, 2*time.Second)
	guarded = rateLimitMiddleware(guarded, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	mux.Handle("GET /metrics", rt.metrics.Handler())
	mux.Handle("/v1/", guarded)

	return requestIDMiddleware(accessLogMiddleware(rt.metrics.Middleware(serviceName, mux)))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type rankRequest struct {
	Keyword *string `json:"keyword"`
	TopK    *int    `json:"top_k"`
}

type rankedRecord struct {
	SourceID string  `json:"source_id"`
	Name     *string `json:"name"`
	Mission  *string `json:"mission"`
	Revenue  float64 `json:"revenue"`
}

type rankResponse struct {
	RunID      string         `json:"run_id"`
	Keyword    string         `json:"keyword"`
	TopK       int            `json:"top_k"`
	Scanned    int            `json:"scanned"`
	Extracted  int            `json:"extracted"`
	Matched    int            `json:"matched"`
	DurationMS float64        `json:"duration_ms"`
	Ranked     []rankedRecord `json:"ranked"`
}

func (rt *Router) rank(w http.ResponseWriter, r *http.Request) {
	var req rankRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	query := domain.RankQuery{Keyword: rt.cfg.ScanKeyword, TopK: rt.cfg.ScanTopK}
	if req.Keyword != nil {
		query.Keyword = *req.Keyword
	}
	if req.TopK != nil {
		query.TopK = *req.TopK
	}

	report, err := rt.ranker.Rank(r.Context(), query)
	if err != nil {
		writeError(w, err)
		return
	}
	rt.metrics.RecordRanking(serviceName, report.Matched)
	annotateRequest(r.Context(), "run_id", report.RunID, "keyword", report.Keyword, "matched", report.Matched)

	resp := rankResponse{
		RunID:      report.RunID,
		Keyword:    report.Keyword,
		TopK:       report.TopK,
		Scanned:    report.Scanned,
		Extracted:  report.Extracted,
		Matched:    report.Matched,
		DurationMS: float64(report.Duration.Microseconds()) / 1000.0,
		Ranked:     make([]rankedRecord, 0, len(report.Ranked)),
	}
	for _, rec := range report.Ranked {
		resp.Ranked = append(resp.Ranked, rankedRecord{
			SourceID: rec.SourceID,
			Name:     optional(rec.OrganizationName),
			Mission:  optional(rec.MissionText),
			Revenue:  rec.Revenue,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func optional(f domain.TextField) *string {
	if !f.Found {
		return nil
	}
	v := f.Value
	return &v
}

type intervalRequest struct {
	Successes *int    `json:"successes"`
	Total     *int    `json:"total"`
	Z         float64 `json:"z"`
	Judgments []*bool `json:"judgments"`
}

type intervalResponse struct {
	Successes int     `json:"successes"`
	Total     int     `json:"total"`
	Accuracy  float64 `json:"accuracy"`
	Z         float64 `json:"z"`
	Lower     float64 `json:"lower"`
	Upper     float64 `json:"upper"`
}

func (rt *Router) intervals(w http.ResponseWriter, r *http.Request) {
	var req intervalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	var (
		eval domain.Evaluation
		err  error
	)
	switch {
	case req.Judgments != nil:
		eval, err = rt.evaluator.Evaluate(judgmentEntries(req.Judgments), req.Z)
	case req.Successes != nil && req.Total != nil:
		eval, err = rt.evaluator.EvaluateCounts(*req.Successes, *req.Total, req.Z)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "either judgments or successes and total are required"})
		rt.metrics.RecordInterval(serviceName, "invalid")
		return
	}
	if err != nil {
		rt.metrics.RecordInterval(serviceName, "rejected")
		writeError(w, err)
		return
	}
	rt.metrics.RecordInterval(serviceName, "ok")
	annotateRequest(r.Context(), "successes", eval.Successes, "total", eval.Total)

	writeJSON(w, http.StatusOK, intervalResponse{
		Successes: eval.Successes,
		Total:     eval.Total,
		Accuracy:  eval.Accuracy,
		Z:         eval.Z,
		Lower:     eval.Interval.Lower,
		Upper:     eval.Interval.Upper,
	})
}

// judgmentEntries maps true/false/null onto correct/incorrect/unset.
func judgmentEntries(judgments []*bool) []domain.AuditEntry {
	entries := make([]domain.AuditEntry, len(judgments))
	for i, j := range judgments {
		switch {
		case j == nil:
			entries[i].Judgment = domain.JudgmentUnset
		case *j:
			entries[i].Judgment = domain.JudgmentCorrect
		default:
			entries[i].Judgment = domain.JudgmentIncorrect
		}
	}
	return entries
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
