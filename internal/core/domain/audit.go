package domain

import "time"

type Judgment int

const (
	JudgmentUnset Judgment = iota
	JudgmentCorrect
	JudgmentIncorrect
)

func (j Judgment) String() string {
	switch j {
	case JudgmentCorrect:
		return "correct"
	case JudgmentIncorrect:
		return "incorrect"
	default:
		return "unset"
	}
}

// AuditEntry is one row of the human-reviewed sample.
type AuditEntry struct {
	Record   LabeledRecord `json:"record"`
	Judgment Judgment      `json:"judgment"`
}

type Evaluation struct {
	Successes int                `json:"successes"`
	Total     int                `json:"total"`
	Accuracy  float64            `json:"accuracy"`
	Z         float64            `json:"z"`
	Interval  ConfidenceInterval `json:"interval"`
}

// ScanReport summarizes one extraction and ranking run.
type ScanReport struct {
	RunID     string            `json:"run_id"`
	Keyword   string            `json:"keyword"`
	TopK      int               `json:"top_k"`
	Scanned   int               `json:"scanned"`
	Extracted int               `json:"extracted"`
	Matched   int               `json:"matched"`
	Ranked    []ExtractedRecord `json:"ranked"`
	Duration  time.Duration     `json:"duration"`
}

// ClassifyReport summarizes one labeling run.
type ClassifyReport struct {
	RunID     string          `json:"run_id"`
	Extracted int             `json:"extracted"`
	Labeled   int             `json:"labeled"`
	Failed    int             `json:"failed"`
	Records   []LabeledRecord `json:"-"`
	Sample    []AuditEntry    `json:"-"`
}
