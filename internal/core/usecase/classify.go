package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/nonprofit-scan/internal/core/domain"
	"github.com/kirillkom/nonprofit-scan/internal/core/ports"
)

type recordSource interface {
	ExtractAll(ctx context.Context) (int, []domain.ExtractedRecord, error)
}

type ClassifyOptions struct {
	Workers    int
	Limit      int
	SampleSize int
	Seed       uint64
}

type ClassifyUseCase struct {
	source     recordSource
	classifier ports.Classifier
	workbook   ports.AuditWorkbook
	observer   ports.PipelineObserver
	opts       ClassifyOptions
}

func NewClassifyUseCase(
	source recordSource,
	classifier ports.Classifier,
	workbook ports.AuditWorkbook,
	observer ports.PipelineObserver,
	opts ClassifyOptions,
) *ClassifyUseCase {
	if observer == nil {
		observer = noopObserver{}
	}
	if opts.SampleSize <= 0 {
		opts.SampleSize = 30
	}
	return &ClassifyUseCase{
		source:     source,
		classifier: classifier,
		workbook:   workbook,
		observer:   observer,
		opts:       opts,
	}
}

type labelOutcome struct {
	record domain.LabeledRecord
	failed bool
}

// Label classifies the mission of every extracted record (up to Limit), draws
// the audit sample and writes both to the workbook at workbookPath.
func (uc *ClassifyUseCase) Label(ctx context.Context, workbookPath string) (*domain.ClassifyReport, error) {
	if strings.TrimSpace(workbookPath) == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "label missions", fmt.Errorf("workbook path is required"))
	}

	_, records, err := uc.source.ExtractAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("extract records: %w", err)
	}
	if uc.opts.Limit > 0 && len(records) > uc.opts.Limit {
		records = records[:uc.opts.Limit]
	}

	outcomes := RunPool(ctx, records, uc.opts.Workers, uc.labelOne)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("classify missions: %w", err)
	}

	report := &domain.ClassifyReport{
		RunID:     uuid.NewString(),
		Extracted: len(records),
		Records:   make([]domain.LabeledRecord, 0, len(outcomes)),
	}
	for _, outcome := range outcomes {
		report.Records = append(report.Records, outcome.record)
		if outcome.failed {
			report.Failed++
		} else if outcome.record.Label != "" {
			report.Labeled++
		}
	}

	for _, rec := range Sample(report.Records, uc.opts.SampleSize, uc.opts.Seed) {
		report.Sample = append(report.Sample, domain.AuditEntry{Record: rec, Judgment: domain.JudgmentUnset})
	}

	if err := uc.workbook.WriteAudit(workbookPath, report.Records, report.Sample); err != nil {
		return nil, fmt.Errorf("write audit workbook: %w", err)
	}

	slog.Info("classify_completed",
		"run_id", report.RunID,
		"records", report.Extracted,
		"labeled", report.Labeled,
		"failed", report.Failed,
		"sample", len(report.Sample),
		"workbook", workbookPath,
	)
	return report, nil
}

func (uc *ClassifyUseCase) labelOne(ctx context.Context, rec domain.ExtractedRecord) (labelOutcome, bool) {
	out := labelOutcome{record: domain.LabeledRecord{ExtractedRecord: rec}}
	if !rec.MissionText.Found {
		return out, true
	}

	start := time.Now()
	label, err := uc.classifier.Classify(ctx, rec.MissionText.Value)
	uc.observer.ObserveClassification(time.Since(start), err)
	if err != nil {
		slog.Warn("classify_failed", "source_id", rec.SourceID, "error", err)
		out.failed = true
		return out, true
	}
	out.record.Label = strings.TrimSpace(label)
	return out, true
}
