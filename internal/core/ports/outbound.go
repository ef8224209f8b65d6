package ports

import (
	"context"
	"io"
	"time"

	"github.com/kirillkom/nonprofit-scan/internal/core/domain"
)

// CorpusLister enumerates the identifiers of every document to process.
type CorpusLister interface {
	List(ctx context.Context) ([]string, error)
}

// ObjectStorage opens source documents by identifier.
type ObjectStorage interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// RecordExtractor parses one document. It never fails loudly: malformed or
// unreadable documents report ok=false.
type RecordExtractor interface {
	Extract(ctx context.Context, id string) (domain.ExtractedRecord, bool)
}

// Classifier assigns an opaque label to a mission text.
type Classifier interface {
	Classify(ctx context.Context, text string) (string, error)
}

// EventPublisher announces finished runs to downstream consumers.
type EventPublisher interface {
	PublishScanCompleted(ctx context.Context, report domain.ScanReport) error
}

// AuditWorkbook persists labeled results with the audit sample and reads the
// reviewed sample back.
type AuditWorkbook interface {
	WriteAudit(path string, labeled []domain.LabeledRecord, sample []domain.AuditEntry) error
	ReadAudit(path string) ([]domain.AuditEntry, error)
}

// PipelineObserver receives per-unit measurements.
type PipelineObserver interface {
	StartDocument()
	FinishDocument(duration time.Duration, extracted bool)
	ObserveClassification(duration time.Duration, err error)
}
