package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"pathfinder/internal/api"
	"pathfinder/internal/config"
	"pathfinder/internal/keywords"
	"pathfinder/internal/lang"
	"pathfinder/internal/registry"
	"pathfinder/internal/repository"
	"pathfinder/internal/retrieval"
	"pathfinder/internal/service"
	"pathfinder/internal/store"
	"pathfinder/internal/transcribe"
)

var (
	configPath = flag.String("config", "", "Path to config file")
)

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	// Initialize database (knowledge-base entries only; user data is never persisted)
	db, err := repository.NewDB(cfg.Database.Path)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()
	kbRepo := repository.NewKBRepository(db)

	// Initialize vector store over the job corpus
	var searcher retrieval.Searcher
	vectorStore, err := store.New(ctx, &cfg.Corpus, logger)
	if err != nil {
		logger.Warn("Failed to initialize vector store, retrieval disabled", zap.Error(err))
		// Continue degraded - retrieval requests report service unavailable
	} else {
		searcher = vectorStore
	}

	// Model registry
	reg := registry.New(&cfg.LLM)

	// Language capabilities
	detector := lang.NewDetector()
	var translator retrieval.Translator
	if cfg.Translate.APIKey != "" {
		gt, err := lang.NewGoogleTranslator(ctx, cfg.Translate.APIKey)
		if err != nil {
			logger.Warn("Failed to initialize translator, Burmese replies disabled", zap.Error(err))
		} else {
			defer gt.Close()
			translator = gt
		}
	}

	// Keyword extractor
	extractor := keywords.New()
	if !extractor.Available() {
		logger.Warn("Keyword extractor running degraded, CV analysis will report no signal")
	}

	// Orchestrator and services
	orchestrator := retrieval.NewOrchestrator(reg, searcher, detector, translator, logger)
	chatService := service.NewChatService(orchestrator, extractor, logger)
	kbService := service.NewKBService(reg, service.NewWikiSource(), kbRepo, vectorStore, cfg.LLM.DefaultModel, logger)

	var whisperClient *transcribe.Client
	if cfg.Whisper.URL != "" {
		whisperClient = transcribe.NewClient(cfg.Whisper.URL)
	}
	speechService := service.NewSpeechService(whisperClient, logger)

	// Setup router
	handler := api.NewHandler(chatService, kbService, speechService, searcher, logger)
	router := api.SetupRouter(handler, api.RouterConfig{
		APIKey:       cfg.Admin.APIKey,
		AllowOrigins: []string{"*"},
	})

	// Create HTTP server. Write timeout is generous because streaming
	// responses stay open for the duration of a generation.
	srv := &http.Server{
		Addr:         cfg.Address(),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting Pathfinder server", zap.String("address", cfg.Address()))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}
