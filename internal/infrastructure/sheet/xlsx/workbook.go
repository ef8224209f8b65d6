package xlsx

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/nonprofit-scan/internal/core/domain"
)

const (
	ResultsSheet = "results"
	AuditSheet   = "audit"
	JudgmentCol  = "human_ok"
)

var recordHeaders = []string{"source_id", "organization_name", "mission_text", "revenue", "label"}

// Workbook stores labeled results and the audit sample as an XLSX file that a
// reviewer fills in by hand.
type Workbook struct{}

func New() *Workbook {
	return &Workbook{}
}

func (w *Workbook) WriteAudit(path string, labeled []domain.LabeledRecord, sample []domain.AuditEntry) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ResultsSheet); err != nil {
		return fmt.Errorf("rename results sheet: %w", err)
	}
	if _, err := f.NewSheet(AuditSheet); err != nil {
		return fmt.Errorf("create audit sheet: %w", err)
	}

	if err := writeRow(f, ResultsSheet, 1, headerRow(recordHeaders)); err != nil {
		return err
	}
	for i, rec := range labeled {
		if err := writeRow(f, ResultsSheet, i+2, recordRow(rec)); err != nil {
			return err
		}
	}

	auditHeaders := append(append([]string{}, recordHeaders...), JudgmentCol)
	if err := writeRow(f, AuditSheet, 1, headerRow(auditHeaders)); err != nil {
		return err
	}
	for i, entry := range sample {
		row := append(recordRow(entry.Record), judgmentCell(entry.Judgment))
		if err := writeRow(f, AuditSheet, i+2, row); err != nil {
			return err
		}
	}

	for _, sheet := range []string{ResultsSheet, AuditSheet} {
		_ = f.SetColWidth(sheet, "A", "A", 28)
		_ = f.SetColWidth(sheet, "B", "B", 36)
		_ = f.SetColWidth(sheet, "C", "C", 60)
		_ = f.SetColWidth(sheet, "D", "E", 14)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	slog.Info("audit_workbook_written", "path", path, "results", len(labeled), "sample", len(sample))
	return nil
}

// ReadAudit parses the reviewed audit sheet. Blank judgments stay unset;
// values other than the accepted yes/no spellings are rejected.
func (w *Workbook) ReadAudit(path string) ([]domain.AuditEntry, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(AuditSheet)
	if err != nil {
		return nil, fmt.Errorf("read audit sheet: %w", err)
	}
	if len(rows) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "read audit sheet", fmt.Errorf("sheet %q has no header", AuditSheet))
	}

	cols := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		cols[strings.TrimSpace(strings.ToLower(name))] = i
	}
	if _, ok := cols[JudgmentCol]; !ok {
		return nil, domain.WrapError(domain.ErrInvalidInput, "read audit sheet", fmt.Errorf("missing %s column", JudgmentCol))
	}

	entries := make([]domain.AuditEntry, 0, len(rows)-1)
	for i, row := range rows[1:] {
		cell := func(name string) string {
			idx, ok := cols[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}
		if isBlankRow(row) {
			continue
		}

		judgment, err := ParseJudgment(cell(JudgmentCol))
		if err != nil {
			return nil, domain.WrapError(domain.ErrInvalidInput, "read audit sheet", fmt.Errorf("row %d: %w", i+2, err))
		}
		entries = append(entries, domain.AuditEntry{
			Record:   parseRecord(cell),
			Judgment: judgment,
		})
	}
	return entries, nil
}

func ParseJudgment(raw string) (domain.Judgment, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "":
		return domain.JudgmentUnset, nil
	case "1", "true", "yes", "y":
		return domain.JudgmentCorrect, nil
	case "0", "false", "no", "n":
		return domain.JudgmentIncorrect, nil
	default:
		return domain.JudgmentUnset, fmt.Errorf("unrecognized %s value %q", JudgmentCol, raw)
	}
}

func judgmentCell(j domain.Judgment) any {
	switch j {
	case domain.JudgmentCorrect:
		return 1
	case domain.JudgmentIncorrect:
		return 0
	default:
		return ""
	}
}

func headerRow(names []string) []any {
	out := make([]any, len(names))
	for i, name := range names {
		out[i] = name
	}
	return out
}

func recordRow(rec domain.LabeledRecord) []any {
	return []any{
		rec.SourceID,
		rec.OrganizationName.Value,
		rec.MissionText.Value,
		rec.Revenue,
		rec.Label,
	}
}

func parseRecord(cell func(string) string) domain.LabeledRecord {
	rec := domain.LabeledRecord{Label: cell("label")}
	rec.SourceID = cell("source_id")
	if name := cell("organization_name"); name != "" {
		rec.OrganizationName = domain.Present(name)
	}
	if mission := cell("mission_text"); mission != "" {
		rec.MissionText = domain.Present(mission)
	}
	if revenue, err := strconv.ParseFloat(cell("revenue"), 64); err == nil {
		rec.Revenue = revenue
	}
	return rec
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("cell name: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
