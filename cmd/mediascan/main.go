package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mediascan/internal/config"
	"mediascan/internal/database"
	"mediascan/internal/logging"
	"mediascan/internal/memory"
	"mediascan/internal/scanner"
)

// logObserver reports scan progress through the standard logger.
type logObserver struct{}

func (logObserver) OnProgress(done, total int, phase string) {
	switch phase {
	case "resolve":
		if done == 0 {
			logging.Info("Resolving duplicates...")
		}
	default:
		logging.Info("Scanned %d/%d files", done, total)
	}
}

func main() {
	startTime := time.Now()

	memory.ConfigureFromEnv()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Configuration error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg.DatabasePath)
	if err != nil {
		logging.Fatal("Failed to initialize database: %v", err)
	}
	defer db.Close()
	logging.Info("Database ready in %v", time.Since(startTime).Round(time.Millisecond))

	if cfg.MetricsEnabled {
		go func() {
			addr := ":" + cfg.MetricsPort
			logging.Info("Metrics endpoint listening on %s/metrics", addr)
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(addr, mux); err != nil {
				logging.Error("Metrics endpoint failed: %v", err)
			}
		}()
	}

	s := scanner.New(cfg, db)
	s.SetObserver(logObserver{})

	report, err := s.Scan(ctx)
	if err != nil {
		logging.Fatal("Scan failed: %v", err)
	}

	for _, scanErr := range report.Errors {
		logging.Warn("Could not process %s: %s", scanErr.Path, scanErr.Message)
	}

	stats := report.Stats
	logging.Info("Library: %d files (%d images, %d videos), %d duplicates, %d junk, %d bytes total",
		stats.TotalFiles, stats.Images, stats.Videos, stats.Duplicates, stats.Junk, stats.TotalSize)
	logging.Info("Done in %v", time.Since(startTime).Round(time.Millisecond))
}
