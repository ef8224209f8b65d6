package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/nonprofit-scan/internal/core/domain"
	"github.com/kirillkom/nonprofit-scan/internal/infrastructure/resilience"
)

const DefaultSubject = "filings.scan.completed"

var classifyNATSError = resilience.TransportClassifier(nil,
	nats.ErrNoServers,
	nats.ErrTimeout,
	nats.ErrConnectionClosed,
	nats.ErrDisconnected,
)

type Publisher struct {
	conn     *nats.Conn
	subject  string
	executor *resilience.Executor
}

type Options struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
}

func New(url, subject string) (*Publisher, error) {
	return NewWithOptions(url, subject, Options{})
}

func NewWithOptions(url, subject string, options Options) (*Publisher, error) {
	if subject == "" {
		subject = DefaultSubject
	}
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := false
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}

	conn, err := nats.Connect(
		url,
		nats.Name("nonprofit-scan"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Publisher{
		conn:     conn,
		subject:  subject,
		executor: options.ResilienceExecutor,
	}, nil
}

func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}

// scanCompleted is the wire form of a run summary. Ranked records are sent
// without mission text to keep messages small.
type scanCompleted struct {
	RunID      string        `json:"run_id"`
	Keyword    string        `json:"keyword"`
	TopK       int           `json:"top_k"`
	Scanned    int           `json:"scanned"`
	Extracted  int           `json:"extracted"`
	Matched    int           `json:"matched"`
	DurationMS float64       `json:"duration_ms"`
	Ranked     []rankedEntry `json:"ranked"`
}

type rankedEntry struct {
	SourceID string  `json:"source_id"`
	Name     string  `json:"name"`
	Revenue  float64 `json:"revenue"`
}

func encodeScanCompleted(report domain.ScanReport) ([]byte, error) {
	msg := scanCompleted{
		RunID:      report.RunID,
		Keyword:    report.Keyword,
		TopK:       report.TopK,
		Scanned:    report.Scanned,
		Extracted:  report.Extracted,
		Matched:    report.Matched,
		DurationMS: float64(report.Duration.Microseconds()) / 1000.0,
		Ranked:     make([]rankedEntry, 0, len(report.Ranked)),
	}
	for _, rec := range report.Ranked {
		msg.Ranked = append(msg.Ranked, rankedEntry{
			SourceID: rec.SourceID,
			Name:     rec.OrganizationName.Value,
			Revenue:  rec.Revenue,
		})
	}
	return json.Marshal(msg)
}

func (p *Publisher) PublishScanCompleted(ctx context.Context, report domain.ScanReport) error {
	payload, err := encodeScanCompleted(report)
	if err != nil {
		return fmt.Errorf("marshal scan summary: %w", err)
	}

	call := func(_ context.Context) error {
		if err := p.conn.Publish(p.subject, payload); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}

	if p.executor != nil {
		err = p.executor.Execute(ctx, "nats.publish", call, classifyNATSError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return resilience.WrapTemporary("nats publish", err, classifyNATSError)
	}
	return nil
}
