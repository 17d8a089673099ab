// Command underwriter-mcp exposes the loan calculator to agents over MCP on
// stdio. Logs go to stderr since stdout carries the protocol.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/MikeSquared-Agency/Underwriter/internal/config"
	"github.com/MikeSquared-Agency/Underwriter/internal/mcptool"
	"github.com/MikeSquared-Agency/Underwriter/internal/present"
	"github.com/MikeSquared-Agency/Underwriter/internal/regulations"
	"github.com/MikeSquared-Agency/Underwriter/internal/simulation"
	"github.com/MikeSquared-Agency/Underwriter/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logging.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pol := cfg.Policy
	if cfg.Database.URL != "" {
		db, err := store.NewPostgresStore(ctx, cfg.Database.URL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		pol, err = store.Resolve(ctx, db, cfg.Database.PolicyVersion)
		db.Close()
		if err != nil {
			logger.Error("failed to load policy", "version", cfg.Database.PolicyVersion, "error", err)
			os.Exit(1)
		}
	}

	engine, err := simulation.NewEngine(pol)
	if err != nil {
		logger.Error("invalid policy", "error", err)
		os.Exit(1)
	}
	presenter, err := present.New()
	if err != nil {
		logger.Error("failed to load message catalog", "error", err)
		os.Exit(1)
	}

	var regs regulations.Client
	if cfg.Regulations.URL != "" {
		regs = regulations.NewHTTPClient(cfg.Regulations.URL)
	}

	server := mcptool.NewServer(engine, presenter, regs, logger)
	logger.Info("MCP server starting", "policy_version", pol.Version, "regulatory_search", regs != nil)
	if err := server.Serve(ctx); err != nil {
		logger.Error("MCP server error", "error", err)
		os.Exit(1)
	}
}
