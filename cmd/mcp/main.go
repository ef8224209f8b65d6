package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	mcpadapter "github.com/kirillkom/nonprofit-scan/internal/adapters/mcp"
	"github.com/kirillkom/nonprofit-scan/internal/bootstrap"
	"github.com/kirillkom/nonprofit-scan/internal/config"
	"github.com/kirillkom/nonprofit-scan/internal/observability/logging"
)

const version = "0.1.0"

func main() {
	cfg := config.Load()
	// stdout carries the protocol stream.
	slog.SetDefault(logging.New(os.Stderr, "mcp", cfg.LogLevel))

	app, err := bootstrap.New(context.Background(), cfg, nil, nil)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	handlers := mcpadapter.NewHandlers(app.ScanUC, app.AuditUC, mcpadapter.Defaults{
		Keyword: cfg.ScanKeyword,
		TopK:    cfg.ScanTopK,
		Z:       cfg.AuditZ,
	})
	if err := server.ServeStdio(mcpadapter.NewServer("nonprofit-scan", version, handlers)); err != nil {
		slog.Error("mcp_server_failed", "error", err)
		os.Exit(1)
	}
}
