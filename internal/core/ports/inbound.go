package ports

import (
	"context"

	"github.com/kirillkom/nonprofit-scan/internal/core/domain"
)

// CorpusRanker is the inbound contract for extraction, filtering and ranking.
type CorpusRanker interface {
	Rank(ctx context.Context, query domain.RankQuery) (*domain.ScanReport, error)
}

// MissionLabeler labels extracted missions and prepares the audit workbook.
type MissionLabeler interface {
	Label(ctx context.Context, workbookPath string) (*domain.ClassifyReport, error)
}

// AuditEvaluator turns a reviewed sample into an accuracy estimate.
type AuditEvaluator interface {
	Evaluate(entries []domain.AuditEntry, z float64) (domain.Evaluation, error)
	EvaluateCounts(successes, total int, z float64) (domain.Evaluation, error)
}
