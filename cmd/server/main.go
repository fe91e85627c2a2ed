// Command server serves the inventory grid over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/stockpilot/internal/analysis"
	"github.com/JonMunkholm/stockpilot/internal/config"
	"github.com/JonMunkholm/stockpilot/internal/logging"
	"github.com/JonMunkholm/stockpilot/internal/session"
	"github.com/JonMunkholm/stockpilot/internal/web"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Values in .env override the inherited environment.
	envLoaded := godotenv.Overload() == nil

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("starting stockpilot",
		"addr", cfg.Server.Addr(),
		"dotenv", envLoaded,
		"session_ttl", cfg.Session.TTL,
		"max_workspaces", cfg.Session.MaxWorkspaces,
		"analysis_enabled", cfg.Analysis.Enabled(),
	)
	slog.Debug("effective configuration", "config", cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessions := session.NewManager(session.Options{
		TTL:           cfg.Session.TTL,
		MaxWorkspaces: cfg.Session.MaxWorkspaces,
	})
	go sessions.StartJanitor(ctx, cfg.Session.SweepInterval)

	server := web.NewServer(cfg, sessions, newAnalyzer(cfg.Analysis))
	server.StartBackground(ctx)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start() }()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down", "timeout", cfg.Server.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("server stopped", "workspaces_dropped", sessions.Len())
	return nil
}

func newAnalyzer(cfg config.AnalysisConfig) *analysis.Client {
	client := analysis.NewClient(analysis.Config{
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		Endpoint:    cfg.Endpoint,
		Timeout:     cfg.Timeout,
		SampleRows:  cfg.SampleRows,
		Temperature: cfg.Temperature,
	}, analysis.WithLimiter(analysis.NewLimiter(cfg.MaxConcurrent, cfg.MaxWaitTime)))
	if !client.Enabled() {
		slog.Warn("GEMINI_API_KEY not set, analysis disabled")
	}
	return client
}
