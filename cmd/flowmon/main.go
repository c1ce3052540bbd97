package main

import (
	"context"
	"embed"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flowmon/internal/config"
	"flowmon/internal/monitor"
	"flowmon/internal/report"
	"flowmon/internal/telemetry"
	"flowmon/internal/web"
)

//go:embed static/*
var staticFiles embed.FS

func main() {
	// Parse configuration
	cfg, err := config.ParseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.ParseLogLevel()}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	// Initialize components
	client := telemetry.New(cfg.APIURL, cfg.Timeout, cfg.FlowTimeout, logger.With("component", "telemetry"))
	mon := monitor.New(cfg, client, logger.With("component", "monitor"))
	reports := report.NewGenerator(logger.With("component", "report"))
	webServer := web.New(mon, reports, cfg.ReportDir, cfg.Port, staticFiles, logger.With("component", "web"))

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := mon.Start(); err != nil {
		logger.Error("Failed to start monitor", "error", err)
		os.Exit(1)
	}

	go func() {
		if err := webServer.Start(); err != nil {
			logger.Error("Failed to start web server", "error", err)
			os.Exit(1)
		}
	}()

	logger.Info("Dashboard available", "url", fmt.Sprintf("http://localhost:%d", cfg.Port), "backend", cfg.APIURL)

	<-sigChan
	logger.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := webServer.Shutdown(ctx); err != nil {
		logger.Warn("Web server shutdown", "error", err)
	}
	mon.Stop()
	mon.Wait()
}
