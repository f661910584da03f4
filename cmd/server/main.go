package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/con169/smart-textbook/internal/api"
	"github.com/con169/smart-textbook/internal/config"
	"github.com/con169/smart-textbook/internal/document"
	"github.com/con169/smart-textbook/internal/ingest"
	"github.com/con169/smart-textbook/internal/llm"
	"github.com/con169/smart-textbook/internal/qa"
	"github.com/con169/smart-textbook/internal/tts"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Error("cannot create upload directory", "dir", cfg.UploadDir, "error", err)
		os.Exit(1)
	}

	layout := document.Layout{Dir: cfg.UploadDir}
	store := document.NewStore()
	history := document.NewHistoryLog(layout)
	sweeper := document.NewSweeper(layout, store, cfg.AudioRetention, log)

	llmClient := llm.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.LLMTimeout)
	ttsClient := tts.NewClient(cfg.ElevenLabsAPIKey)

	ingestSvc := ingest.NewService(layout, store, cfg.MaxUploadBytes, log)
	orch := qa.NewOrchestrator(llmClient, cfg.ChunkTokenBudget, cfg.RelevanceFilter, log)

	srv := api.NewServer(store, history, sweeper, ingestSvc, orch, llmClient, ttsClient, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Periodic sweep of stale temp audio.
	sweepDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(15 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-sweepDone:
				return
			case <-ticker.C:
				sweeper.Sweep(false)
			}
		}
	}()

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		close(sweepDone)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		llmClient.Close()
		ttsClient.Close()
	}()

	log.Info("starting smart-textbook", "port", cfg.Port, "upload_dir", cfg.UploadDir)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
