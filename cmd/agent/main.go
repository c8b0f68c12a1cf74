package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"github.com/videoaudit/audit-agent/internal/analysis"
	"github.com/videoaudit/audit-agent/internal/api"
	"github.com/videoaudit/audit-agent/internal/cloud"
	"github.com/videoaudit/audit-agent/internal/config"
	"github.com/videoaudit/audit-agent/internal/db"
	"github.com/videoaudit/audit-agent/internal/logging"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run() error {
	startTime := time.Now()

	// .env is optional; environment variables win either way.
	_ = godotenv.Load()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting audit agent", "version", config.Version, "data_dir", cfg.DataDir())

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	repo := analysis.NewRepository(database.Conn())

	deviceID, err := ensureDeviceID(repo)
	if err != nil {
		return fmt.Errorf("failed to ensure device ID: %w", err)
	}

	authToken, err := ensureAuthToken(repo)
	if err != nil {
		return fmt.Errorf("failed to ensure auth token: %w", err)
	}

	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Println("║                  VIDEO AUDIT AGENT v0.1.0                 ║")
	fmt.Println("╠═══════════════════════════════════════════════════════════╣")
	fmt.Printf("║  API URL:    http://127.0.0.1:%-27d ║\n", cfg.Port())
	fmt.Printf("║  Auth Token: %-45s ║\n", authToken)
	fmt.Printf("║  Device ID:  %-45s ║\n", deviceID[:16]+"...")
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()

	var client analysis.Client
	if cfg.AnalysisURL() != "" {
		client = cloud.NewHTTPClient(cfg.AnalysisURL(), logging.WithComponent(logger, "cloud"))
		logger.Info("analysis service configured", "base_url", cfg.AnalysisURL())
	} else {
		client = cloud.NewStubClient(cfg.Scoring(), logging.WithComponent(logger, "cloud"))
		logger.Info("no analysis service configured, running in offline mode")
	}

	orchestrator := analysis.NewOrchestrator(client, repo, cfg.Scoring(), cfg.UploadTimeout(), logging.WithComponent(logger, "orchestrator"))

	digest := cron.New()
	digestLogger := logging.WithComponent(logger, "digest")
	_, err = digest.AddFunc(cfg.DigestSchedule(), func() {
		logHistoryDigest(repo, digestLogger)
	})
	if err != nil {
		return fmt.Errorf("invalid digest schedule %q: %w", cfg.DigestSchedule(), err)
	}
	digest.Start()
	defer digest.Stop()

	apiServer := api.NewServer(api.ServerConfig{
		Port:         cfg.Port(),
		Orchestrator: orchestrator,
		Repository:   repo,
		Scoring:      cfg.Scoring(),
		Logger:       logger,
		StartTime:    startTime,
		DeviceID:     deviceID,
	})

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("received shutdown signal", "signal", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

// logHistoryDigest emits a periodic summary of the stored analyses.
func logHistoryDigest(repo analysis.Repository, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	total, err := repo.CountArtifacts(ctx)
	if err != nil {
		logger.Error("history digest failed", "error", err)
		return
	}

	artifacts, err := repo.ListArtifacts(ctx, 0)
	if err != nil {
		logger.Error("history digest failed", "error", err)
		return
	}

	scored := 0
	scoreSum := 0
	degraded := 0
	for _, a := range artifacts {
		if a.RetentionScore != nil {
			scored++
			scoreSum += *a.RetentionScore
		}
		if a.Degraded {
			degraded++
		}
	}

	avg := 0.0
	if scored > 0 {
		avg = float64(scoreSum) / float64(scored)
	}

	logger.Info("history digest",
		"total", total,
		"scored", scored,
		"avg_score", fmt.Sprintf("%.1f", avg),
		"degraded", degraded,
	)
}

func ensureDeviceID(repo analysis.Repository) (string, error) {
	ctx := context.Background()

	existing, err := repo.GetConfig(ctx, "device_id")
	if err == nil && existing != "" {
		return existing, nil
	}

	idBytes := make([]byte, 16)
	if _, err := rand.Read(idBytes); err != nil {
		return "", err
	}
	deviceID := hex.EncodeToString(idBytes)

	if err := repo.SetConfig(ctx, "device_id", deviceID); err != nil {
		return "", err
	}

	return deviceID, nil
}

func ensureAuthToken(repo analysis.Repository) (string, error) {
	ctx := context.Background()

	existing, err := repo.GetConfig(ctx, "auth_token")
	if err == nil && existing != "" {
		return existing, nil
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := hex.EncodeToString(tokenBytes)

	if err := repo.SetConfig(ctx, "auth_token", token); err != nil {
		return "", err
	}

	return token, nil
}
