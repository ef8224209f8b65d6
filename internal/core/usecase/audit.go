package usecase

import (
	"fmt"

	"github.com/kirillkom/nonprofit-scan/internal/core/domain"
	"github.com/kirillkom/nonprofit-scan/internal/core/ports"
)

type AuditUseCase struct {
	workbook ports.AuditWorkbook
}

func NewAuditUseCase(workbook ports.AuditWorkbook) *AuditUseCase {
	return &AuditUseCase{workbook: workbook}
}

func (uc *AuditUseCase) EvaluateWorkbook(path string, z float64) (domain.Evaluation, error) {
	entries, err := uc.workbook.ReadAudit(path)
	if err != nil {
		return domain.Evaluation{}, fmt.Errorf("read audit workbook: %w", err)
	}
	return uc.Evaluate(entries, z)
}

// Evaluate refuses to produce an estimate while any entry is still unset.
func (uc *AuditUseCase) Evaluate(entries []domain.AuditEntry, z float64) (domain.Evaluation, error) {
	unset, successes := 0, 0
	for _, entry := range entries {
		switch entry.Judgment {
		case domain.JudgmentUnset:
			unset++
		case domain.JudgmentCorrect:
			successes++
		}
	}
	if unset > 0 {
		return domain.Evaluation{}, domain.WrapError(
			domain.ErrIncompleteAuditSample,
			"evaluate audit sample",
			fmt.Errorf("%d of %d rows have no judgment; fill human_ok with 1 (reasonable) or 0 (not)", unset, len(entries)),
		)
	}
	return uc.EvaluateCounts(successes, len(entries), z)
}

func (uc *AuditUseCase) EvaluateCounts(successes, total int, z float64) (domain.Evaluation, error) {
	if z == 0 {
		z = domain.DefaultZ
	}
	interval, err := domain.WilsonInterval(successes, total, z)
	if err != nil {
		return domain.Evaluation{}, err
	}
	return domain.Evaluation{
		Successes: successes,
		Total:     total,
		Accuracy:  float64(successes) / float64(total),
		Z:         z,
		Interval:  interval,
	}, nil
}
