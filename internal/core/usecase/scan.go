package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/nonprofit-scan/internal/core/domain"
	"github.com/kirillkom/nonprofit-scan/internal/core/ports"
)

type ScanUseCase struct {
	lister    ports.CorpusLister
	extractor ports.RecordExtractor
	publisher ports.EventPublisher
	observer  ports.PipelineObserver
	workers   int
}

func NewScanUseCase(
	lister ports.CorpusLister,
	extractor ports.RecordExtractor,
	publisher ports.EventPublisher,
	observer ports.PipelineObserver,
	workers int,
) *ScanUseCase {
	if observer == nil {
		observer = noopObserver{}
	}
	return &ScanUseCase{
		lister:    lister,
		extractor: extractor,
		publisher: publisher,
		observer:  observer,
		workers:   workers,
	}
}

// ExtractAll lists the corpus and extracts every document on the worker pool.
// It returns the number of listed documents and the records that parsed. A
// run cancelled before every document was extracted returns ctx's error.
func (uc *ScanUseCase) ExtractAll(ctx context.Context) (int, []domain.ExtractedRecord, error) {
	ids, err := uc.lister.List(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("list corpus: %w", err)
	}
	slog.Info("scan_started", "documents", len(ids), "workers", uc.workers)

	records := RunPool(ctx, ids, uc.workers, uc.extractOne)
	if err := ctx.Err(); err != nil {
		slog.Warn("scan_cancelled", "documents", len(ids), "extracted", len(records))
		return 0, nil, fmt.Errorf("extract corpus: %w", err)
	}
	return len(ids), records, nil
}

func (uc *ScanUseCase) Rank(ctx context.Context, query domain.RankQuery) (*domain.ScanReport, error) {
	keep, err := KeywordPredicate(query.Keyword)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	scanned, records, err := uc.ExtractAll(ctx)
	if err != nil {
		return nil, err
	}

	matched := FilterRank(records, keep, ByRevenue, 0)
	ranked := matched
	if query.TopK > 0 && len(ranked) > query.TopK {
		ranked = ranked[:query.TopK]
	}

	report := &domain.ScanReport{
		RunID:     uuid.NewString(),
		Keyword:   query.Keyword,
		TopK:      query.TopK,
		Scanned:   scanned,
		Extracted: len(records),
		Matched:   len(matched),
		Ranked:    ranked,
		Duration:  time.Since(start),
	}
	slog.Info("scan_completed",
		"run_id", report.RunID,
		"scanned", report.Scanned,
		"extracted", report.Extracted,
		"matched", report.Matched,
		"keyword", report.Keyword,
		"duration_ms", float64(report.Duration.Microseconds())/1000.0,
	)

	uc.publish(ctx, *report)
	return report, nil
}

func (uc *ScanUseCase) extractOne(ctx context.Context, id string) (domain.ExtractedRecord, bool) {
	uc.observer.StartDocument()
	start := time.Now()
	rec, ok := uc.extractor.Extract(ctx, id)
	uc.observer.FinishDocument(time.Since(start), ok)
	return rec, ok
}

func (uc *ScanUseCase) publish(ctx context.Context, report domain.ScanReport) {
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.PublishScanCompleted(ctx, report); err != nil {
		slog.Warn("scan_publish_failed", "run_id", report.RunID, "error", err)
	}
}

type noopObserver struct{}

func (noopObserver) StartDocument() {}

func (noopObserver) FinishDocument(time.Duration, bool) {}

func (noopObserver) ObserveClassification(time.Duration, error) {}
