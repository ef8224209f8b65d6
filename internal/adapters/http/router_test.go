package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kirillkom/nonprofit-scan/internal/config"
	"github.com/kirillkom/nonprofit-scan/internal/core/domain"
	"github.com/kirillkom/nonprofit-scan/internal/core/usecase"
)

type rankerFake struct {
	got    domain.RankQuery
	report *domain.ScanReport
	err    error
}

func (f *rankerFake) Rank(_ context.Context, query domain.RankQuery) (*domain.ScanReport, error) {
	f.got = query
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

func newTestHandler(cfg config.Config, ranker *rankerFake) http.Handler {
	if ranker == nil {
		ranker = &rankerFake{report: &domain.ScanReport{}}
	}
	return NewRouter(cfg, ranker, usecase.NewAuditUseCase(nil), nil).Handler()
}

func postJSON(t *testing.T, handler http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	return res
}

func decodeBody(t *testing.T, res *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.NewDecoder(bytes.NewReader(res.Body.Bytes())).Decode(&out); err != nil {
		t.Fatalf("decode response: %v (body=%s)", err, res.Body.String())
	}
	return out
}

func TestHealthz(t *testing.T) {
	handler := newTestHandler(config.Config{}, nil)
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	if res.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected request id header")
	}
}

func TestRankReturnsRankedRecords(t *testing.T) {
	ranker := &rankerFake{report: &domain.ScanReport{
		RunID:   "run-1",
		Keyword: "religion",
		TopK:    5,
		Scanned: 3,
		Matched: 1,
		Ranked: []domain.ExtractedRecord{{
			SourceID:         "a.xml",
			OrganizationName: domain.Present("A"),
			Revenue:          1234.5,
		}},
	}}
	handler := newTestHandler(config.Config{ScanKeyword: "default", ScanTopK: 7}, ranker)

	res := postJSON(t, handler, "/v1/rank", `{"keyword":"religion"}`)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	if ranker.got.Keyword != "religion" || ranker.got.TopK != 7 {
		t.Fatalf("unexpected query: %+v", ranker.got)
	}
	body := decodeBody(t, res)
	ranked, _ := body["ranked"].([]any)
	if len(ranked) != 1 {
		t.Fatalf("expected one ranked record, got %v", body["ranked"])
	}
	first := ranked[0].(map[string]any)
	if first["name"] != "A" || first["revenue"] != 1234.5 || first["mission"] != nil {
		t.Fatalf("unexpected ranked record: %v", first)
	}
}

func TestRankRejectsSchemaViolations(t *testing.T) {
	handler := newTestHandler(config.Config{}, nil)

	for _, body := range []string{`{"top_k":-1}`, `{"keyword":5}`, `{"unknown":true}`} {
		res := postJSON(t, handler, "/v1/rank", body)
		if res.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, res.Code)
		}
	}
}

func TestRankMapsDomainErrors(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{err: domain.WrapError(domain.ErrInvalidInput, "compile keyword", errors.New("bad")), want: http.StatusBadRequest},
		{err: domain.WrapError(domain.ErrTemporary, "list", errors.New("busy")), want: http.StatusServiceUnavailable},
		{err: errors.New("boom"), want: http.StatusInternalServerError},
	}
	for _, tc := range cases {
		handler := newTestHandler(config.Config{}, &rankerFake{err: tc.err})
		res := postJSON(t, handler, "/v1/rank", `{"keyword":"x"}`)
		if res.Code != tc.want {
			t.Fatalf("error %v: expected %d, got %d", tc.err, tc.want, res.Code)
		}
	}
}

func TestIntervalsFromCounts(t *testing.T) {
	handler := newTestHandler(config.Config{}, nil)

	res := postJSON(t, handler, "/v1/intervals", `{"successes":15,"total":30}`)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	body := decodeBody(t, res)
	lower, _ := body["lower"].(float64)
	upper, _ := body["upper"].(float64)
	if !(lower < 0.5 && 0.5 < upper) || body["z"] != domain.DefaultZ {
		t.Fatalf("unexpected interval: %v", body)
	}
}

func TestIntervalsFromJudgments(t *testing.T) {
	handler := newTestHandler(config.Config{}, nil)

	res := postJSON(t, handler, "/v1/intervals", `{"judgments":[true,true,false],"z":1.96}`)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.Code, res.Body.String())
	}
	body := decodeBody(t, res)
	if body["successes"] != float64(2) || body["total"] != float64(3) {
		t.Fatalf("unexpected counts: %v", body)
	}
}

func TestIntervalsRejectsIncompleteSample(t *testing.T) {
	handler := newTestHandler(config.Config{}, nil)

	res := postJSON(t, handler, "/v1/intervals", `{"judgments":[true,null,false]}`)
	if res.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", res.Code, res.Body.String())
	}
	if !strings.Contains(decodeBody(t, res)["error"].(string), "1 of 3") {
		t.Fatalf("expected unset row count in error, got %s", res.Body.String())
	}
}

func TestIntervalsStatusCodes(t *testing.T) {
	handler := newTestHandler(config.Config{}, nil)
	cases := map[string]int{
		`{"successes":0,"total":0}`:  http.StatusUnprocessableEntity,
		`{"successes":5,"total":3}`:  http.StatusBadRequest,
		`{"successes":-1,"total":3}`: http.StatusBadRequest,
		`{"z":1.96}`:                 http.StatusBadRequest,
	}
	for body, want := range cases {
		if res := postJSON(t, handler, "/v1/intervals", body); res.Code != want {
			t.Fatalf("body %s: expected %d, got %d", body, want, res.Code)
		}
	}
}

func TestMetricsEndpoint(t *testing.T) {
	handler := newTestHandler(config.Config{}, nil)
	postJSON(t, handler, "/v1/intervals", `{"successes":1,"total":2}`)

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(res.Body.String(), "npscan_interval_requests_total") {
		t.Fatalf("expected interval counter in metrics output")
	}
}
