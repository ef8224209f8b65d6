// Package report renders ranking and evaluation results as plain text.
package report

import (
	"fmt"
	"io"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/kirillkom/nonprofit-scan/internal/core/domain"
)

const unnamed = "(unnamed)"

var printer = message.NewPrinter(language.English)

// Money formats an amount with thousands separators and two decimals.
func Money(v float64) string {
	return printer.Sprintf("%.2f", v)
}

func WriteRanking(w io.Writer, records []domain.ExtractedRecord) error {
	for i, rec := range records {
		name := rec.OrganizationName.Value
		if !rec.OrganizationName.Found {
			name = unnamed
		}
		if _, err := fmt.Fprintf(w, "%d. %s => $%s\n", i+1, name, Money(rec.Revenue)); err != nil {
			return err
		}
	}
	return nil
}

// WriteScanSummary prints the corpus counts followed by the ranking. The
// heading counts the printed rows, so a top-K of 0 (all) reads correctly.
func WriteScanSummary(w io.Writer, report *domain.ScanReport) error {
	if _, err := fmt.Fprintf(w, "Found %d filings, %d parsed.\n%d nonprofits matched the keyword '%s'.\n\nTop %d matching nonprofits by revenue:\n",
		report.Scanned, report.Extracted, report.Matched, report.Keyword, len(report.Ranked)); err != nil {
		return err
	}
	return WriteRanking(w, report.Ranked)
}

// ConfidenceLabel renders z as the two-sided confidence level it stands for,
// e.g. "90 %" for 1.645.
func ConfidenceLabel(z float64) string {
	level := 100 * (1 - 2*upperTail(z))
	return fmt.Sprintf("%.0f %%", level)
}

func WriteEvaluation(w io.Writer, eval domain.Evaluation) error {
	_, err := fmt.Fprintf(w, "Accuracy %d/%d = %.3f\n%s Wilson CI: (%.3f, %.3f)\n",
		eval.Successes, eval.Total, eval.Accuracy,
		ConfidenceLabel(eval.Z), eval.Interval.Lower, eval.Interval.Upper)
	return err
}
