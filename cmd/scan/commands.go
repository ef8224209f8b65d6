package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kirillkom/nonprofit-scan/internal/bootstrap"
	"github.com/kirillkom/nonprofit-scan/internal/config"
	"github.com/kirillkom/nonprofit-scan/internal/core/domain"
	"github.com/kirillkom/nonprofit-scan/internal/core/usecase"
	"github.com/kirillkom/nonprofit-scan/internal/infrastructure/sheet/xlsx"
	"github.com/kirillkom/nonprofit-scan/internal/observability/logging"
	"github.com/kirillkom/nonprofit-scan/internal/observability/metrics"
	"github.com/kirillkom/nonprofit-scan/internal/report"
)

func newRootCommand() *cobra.Command {
	var (
		root     string
		manifest string
		workers  int
	)

	cfg := config.Load()
	rootCmd := &cobra.Command{
		Use:           "scan",
		Short:         "Scan IRS 990 e-file filings and audit mission labels",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			slog.SetDefault(logging.New(os.Stderr, "scan", cfg.LogLevel))
			if cmd.Flags().Changed("root") {
				cfg.CorpusRoot = root
			}
			if cmd.Flags().Changed("manifest") {
				cfg.CorpusManifest = manifest
			}
			if cmd.Flags().Changed("workers") {
				cfg.ScanWorkers = workers
			}
		},
	}
	rootCmd.PersistentFlags().StringVar(&root, "root", cfg.CorpusRoot, "corpus directory")
	rootCmd.PersistentFlags().StringVar(&manifest, "manifest", cfg.CorpusManifest, "file listing one filing path per line")
	rootCmd.PersistentFlags().IntVarP(&workers, "workers", "w", cfg.ScanWorkers, "extraction workers, 0 means one per CPU")

	rootCmd.AddCommand(newRankCommand(&cfg), newClassifyCommand(&cfg), newAuditCommand(&cfg))
	return rootCmd
}

func newRankCommand(cfg *config.Config) *cobra.Command {
	var (
		keyword string
		topK    int
	)
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank organizations whose mission matches a keyword by total revenue",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, stopMetrics, err := newApp(cmd, *cfg)
			if err != nil {
				return err
			}
			defer app.Close()
			defer stopMetrics()

			scan, err := app.ScanUC.Rank(cmd.Context(), domain.RankQuery{Keyword: keyword, TopK: topK})
			if err != nil {
				return fail(err)
			}
			return report.WriteScanSummary(cmd.OutOrStdout(), scan)
		},
	}
	cmd.Flags().StringVarP(&keyword, "keyword", "k", cfg.ScanKeyword, "case-insensitive mission pattern")
	cmd.Flags().IntVarP(&topK, "top", "n", cfg.ScanTopK, "number of organizations to print, 0 for all")
	return cmd
}

func newClassifyCommand(cfg *config.Config) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Label missions with the configured model and write an audit workbook",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, stopMetrics, err := newApp(cmd, *cfg)
			if err != nil {
				return err
			}
			defer app.Close()
			defer stopMetrics()

			result, err := app.ClassifyUC.Label(cmd.Context(), out)
			if err != nil {
				return fail(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s: %d labeled, %d failed, %d rows to review\n",
				out, result.Labeled, result.Failed, len(result.Sample))
			fmt.Fprintf(cmd.OutOrStdout(), "fill '%s' in the %s sheet, then run: scan audit %s\n", xlsx.JudgmentCol, xlsx.AuditSheet, out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "audit.xlsx", "workbook to write")
	return cmd
}

func newAuditCommand(cfg *config.Config) *cobra.Command {
	var (
		z         float64
		successes int
		total     int
	)
	cmd := &cobra.Command{
		Use:     "audit [workbook]",
		Aliases: []string{"ci"},
		Short:   "Estimate labeling accuracy with a Wilson interval",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			auditUC := usecase.NewAuditUseCase(xlsx.New())

			var (
				eval domain.Evaluation
				err  error
			)
			switch {
			case len(args) == 1:
				eval, err = auditUC.EvaluateWorkbook(args[0], z)
			case cmd.Flags().Changed("total"):
				eval, err = auditUC.EvaluateCounts(successes, total, z)
			default:
				err = domain.WrapError(domain.ErrInvalidInput, "audit", errors.New("pass a reviewed workbook or --successes/--total"))
			}
			if err != nil {
				return fail(err)
			}
			return report.WriteEvaluation(cmd.OutOrStdout(), eval)
		},
	}
	cmd.Flags().Float64Var(&z, "z", cfg.AuditZ, "normal quantile for the interval")
	cmd.Flags().IntVar(&successes, "successes", 0, "number of correct labels")
	cmd.Flags().IntVar(&total, "total", 0, "number of reviewed labels")
	return cmd
}

// newApp wires the pipeline and, when METRICS_PORT is set, serves pipeline
// metrics for the lifetime of the command.
func newApp(cmd *cobra.Command, cfg config.Config) (*bootstrap.App, func(), error) {
	pipelineMetrics := metrics.NewPipelineMetrics("scan", nil)
	app, err := bootstrap.New(cmd.Context(), cfg, pipelineMetrics, nil)
	if err != nil {
		return nil, nil, fail(err)
	}

	stop := func() {}
	if cfg.MetricsPort != "" {
		server := &http.Server{
			Addr:              ":" + cfg.MetricsPort,
			Handler:           pipelineMetrics.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("metrics_server_failed", "error", err)
			}
		}()
		stop = func() { _ = server.Close() }
	}
	return app, stop, nil
}

func fail(err error) error {
	slog.Error("command_failed", "error", err)
	fmt.Fprintln(os.Stderr, "error:", err)
	return err
}
