package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/wilhg/polaris-mcp/pkg/config"
	"github.com/wilhg/polaris-mcp/pkg/mcpserver"
	"github.com/wilhg/polaris-mcp/pkg/otel"
	"github.com/wilhg/polaris-mcp/pkg/tools"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	var showVersion bool
	var configPath string
	var traceStderr bool

	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.StringVar(&configPath, "config", getEnv("POLARIS_MCP_CONFIG", ""), "path to JSON config file (optional)")
	flag.BoolVar(&traceStderr, "trace-stderr", false, "emit trace spans to stderr")
	flag.Parse()

	if showVersion {
		fmt.Printf("polaris-mcp %s (commit=%s, date=%s)\n", version, commit, date)
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	// Stdout carries the MCP protocol; everything else goes to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := otel.Init(ctx, otel.Config{
		ServiceName:    "polaris-mcp",
		ServiceVersion: version,
		UseStderr:      traceStderr,
	})
	if err != nil {
		log.Error("otel init failed", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdown(context.Background()) }()

	dispatcher, err := tools.NewDispatcher(cfg, log)
	if err != nil {
		log.Error("failed to build tool registry", "error", err)
		os.Exit(1)
	}
	log.Info("starting server", "name", cfg.ServerName, "project", cfg.ProjectID, "tools", len(dispatcher.Tools()))

	srv := mcpserver.New(cfg.ServerName, version, dispatcher)
	if err := srv.Run(ctx); err != nil && ctx.Err() == nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}

func getEnv(key string, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
