package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/deepcosmos1/LLM-RAG/internal/config"
	"github.com/deepcosmos1/LLM-RAG/internal/llm"
	"github.com/deepcosmos1/LLM-RAG/internal/pipeline"
	"github.com/deepcosmos1/LLM-RAG/internal/prompt"
	"github.com/deepcosmos1/LLM-RAG/internal/scheduler"
	"github.com/deepcosmos1/LLM-RAG/internal/session"
	"github.com/deepcosmos1/LLM-RAG/internal/storage"
	"github.com/deepcosmos1/LLM-RAG/internal/telegram"
	"github.com/deepcosmos1/LLM-RAG/internal/telemetry"
	"github.com/deepcosmos1/LLM-RAG/internal/ws"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.New()
	if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
		log.Fatalf("SUPABASE_URL and SUPABASE_KEY are required")
	}
	if cfg.LLMProvider == llm.ProviderOpenAI && cfg.GroqAPIKey == "" {
		log.Fatalf("GROQ_API_KEY is required for the %s provider", cfg.LLMProvider)
	}

	factory := &llm.Factory{
		OpenAIAPIKey:     cfg.GroqAPIKey,
		OpenAIBaseURL:    cfg.OpenAIBaseURL,
		YandexOAuthToken: cfg.YandexOAuthToken,
		YandexFolderID:   cfg.YandexFolderID,
	}
	llmClient, err := factory.CreateClient(cfg.LLMProvider, cfg.GroqModel)
	if err != nil {
		log.Fatalf("failed to create llm client: %v", err)
	}

	store, err := telemetry.NewStore(cfg.SupabaseURL, cfg.SupabaseKey, cfg.ApplyGeneratedFilter)
	if err != nil {
		log.Fatalf("failed to init telemetry store: %v", err)
	}

	prompts := prompt.New()
	registry := session.NewRegistry()

	orch := pipeline.New(
		registry,
		pipeline.NewLLMTranslator(llmClient, prompts),
		pipeline.NewStoreFetcher(store),
		pipeline.NewLLMComposer(llmClient, prompts),
		prompts,
	).WithStageTimeout(cfg.StageTimeout)

	if cfg.ExchangeLogPath != "" {
		rec, err := storage.NewFileRecorder(cfg.ExchangeLogPath)
		if err != nil {
			log.Printf("failed to init exchange recorder: %v", err)
		} else {
			orch.WithRecorder(rec)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.SessionIdleTTL > 0 {
		sweeper := scheduler.New(cfg.SweepSchedule)
		sweeper.SetSweepFunction(func() int { return registry.Sweep(cfg.SessionIdleTTL) })
		if err := sweeper.Start(); err != nil {
			log.Fatalf("failed to start session sweeper: %v", err)
		}
		defer sweeper.Stop()
	}

	if cfg.TelegramBotToken != "" {
		bot, err := telegram.New(cfg.TelegramBotToken, orch)
		if err != nil {
			log.Fatalf("failed to create telegram gateway: %v", err)
		}
		go bot.Start(ctx)
		log.Printf("🤖 Telegram gateway enabled")
	}

	server := ws.NewServer(cfg.ListenAddr, orch, cfg.AllowedOrigins)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
