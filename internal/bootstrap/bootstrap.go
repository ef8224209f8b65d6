package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/kirillkom/nonprofit-scan/internal/config"
	"github.com/kirillkom/nonprofit-scan/internal/core/ports"
	"github.com/kirillkom/nonprofit-scan/internal/core/usecase"
	"github.com/kirillkom/nonprofit-scan/internal/infrastructure/extractor/xmlpath"
	"github.com/kirillkom/nonprofit-scan/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/nonprofit-scan/internal/infrastructure/llm/openaicompat"
	"github.com/kirillkom/nonprofit-scan/internal/infrastructure/queue/nats"
	"github.com/kirillkom/nonprofit-scan/internal/infrastructure/resilience"
	"github.com/kirillkom/nonprofit-scan/internal/infrastructure/sheet/xlsx"
	"github.com/kirillkom/nonprofit-scan/internal/infrastructure/storage/localfs"
)

type App struct {
	Config config.Config

	ScanUC     *usecase.ScanUseCase
	ClassifyUC *usecase.ClassifyUseCase
	AuditUC    *usecase.AuditUseCase

	closeFn func()
}

// New wires the pipeline. observer may be nil; classifier may be nil, in
// which case the configured backend is built.
func New(_ context.Context, cfg config.Config, observer ports.PipelineObserver, classifier ports.Classifier) (*App, error) {
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid config: %v", errs)
	}

	paths, err := config.LoadFieldPaths(cfg.FieldPathsFile)
	if err != nil {
		return nil, fmt.Errorf("load field paths: %w", err)
	}

	lister, storage, err := newCorpus(cfg)
	if err != nil {
		return nil, err
	}
	extractor := xmlpath.NewExtractor(storage, paths)

	closers := []func(){}
	var publisher ports.EventPublisher
	if cfg.NATSURL != "" {
		natsPublisher, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			ResilienceExecutor: resilience.NewExecutor(resilience.DefaultConfig()),
		})
		if err != nil {
			return nil, fmt.Errorf("init event publisher: %w", err)
		}
		publisher = natsPublisher
		closers = append(closers, natsPublisher.Close)
	}

	if classifier == nil {
		classifier, err = newClassifier(cfg)
		if err != nil {
			return nil, err
		}
	}

	workbook := xlsx.New()
	scanUC := usecase.NewScanUseCase(lister, extractor, publisher, observer, cfg.ScanWorkers)
	classifyUC := usecase.NewClassifyUseCase(scanUC, classifier, workbook, observer, usecase.ClassifyOptions{
		Workers:    cfg.ClassifyWorkers,
		Limit:      cfg.ClassifyLimit,
		SampleSize: cfg.AuditSize,
		Seed:       cfg.AuditSeed,
	})
	auditUC := usecase.NewAuditUseCase(workbook)

	return &App{
		Config:     cfg,
		ScanUC:     scanUC,
		ClassifyUC: classifyUC,
		AuditUC:    auditUC,
		closeFn: func() {
			for _, closeFn := range closers {
				closeFn()
			}
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

// newCorpus returns the lister and the storage it reads from. Relative
// manifest entries resolve against the manifest's directory.
func newCorpus(cfg config.Config) (ports.CorpusLister, ports.ObjectStorage, error) {
	if cfg.CorpusManifest != "" {
		storage, err := localfs.New(filepath.Dir(cfg.CorpusManifest), cfg.CorpusSuffix)
		if err != nil {
			return nil, nil, fmt.Errorf("init corpus storage: %w", err)
		}
		return localfs.NewManifest(cfg.CorpusManifest, cfg.CorpusSuffix), storage, nil
	}
	storage, err := localfs.New(cfg.CorpusRoot, cfg.CorpusSuffix)
	if err != nil {
		return nil, nil, fmt.Errorf("init corpus storage: %w", err)
	}
	return storage, storage, nil
}

func newClassifier(cfg config.Config) (ports.Classifier, error) {
	executor := resilience.NewExecutor(resilience.Config{
		RateLimit:      cfg.ClassifyRPS,
		RateBurst:      1,
		BreakerEnabled: true,
	})

	switch cfg.ClassifierBackend {
	case "openai":
		var apiKey string
		if cfg.OpenAIAPIKeyFile != "" {
			key, err := openaicompat.ReadAPIKey(cfg.OpenAIAPIKeyFile)
			if err != nil {
				return nil, fmt.Errorf("init classifier: %w", err)
			}
			apiKey = key
		}
		slog.Debug("classifier_backend", "backend", "openai", "model", cfg.OpenAIModel)
		return openaicompat.New(cfg.OpenAIURL, cfg.OpenAIModel, apiKey, openaicompat.Options{
			MaxTokens:   cfg.ClassifyMaxTokens,
			Temperature: cfg.ClassifyTemperature,
			Executor:    executor,
		}), nil
	default:
		slog.Debug("classifier_backend", "backend", "ollama", "model", cfg.OllamaGenModel)
		client := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, ollama.Options{
			MaxTokens:   cfg.ClassifyMaxTokens,
			Temperature: cfg.ClassifyTemperature,
			Executor:    executor,
		})
		return ollama.NewClassifier(client), nil
	}
}
