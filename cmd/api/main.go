// Package main is the entry point for the API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/evolution-todo/chat-platform/internal/agent"
	"github.com/evolution-todo/chat-platform/internal/config"
	"github.com/evolution-todo/chat-platform/internal/events"
	"github.com/evolution-todo/chat-platform/internal/handler"
	"github.com/evolution-todo/chat-platform/internal/llm"
	"github.com/evolution-todo/chat-platform/internal/middleware"
	"github.com/evolution-todo/chat-platform/internal/service"
	"github.com/evolution-todo/chat-platform/internal/store"
	"github.com/evolution-todo/chat-platform/internal/task"
	"github.com/evolution-todo/chat-platform/internal/tool"
	"github.com/evolution-todo/chat-platform/pkg/logger"
	"github.com/evolution-todo/chat-platform/pkg/tracing"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting API server")

	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "chat-platform", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// One pool shared by the conversation store and the task store.
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to create database pool", zap.Error(err))
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Error("failed to reach database", zap.Error(err))
		os.Exit(1)
	}

	convStore, err := store.NewPostgresStoreWithPool(ctx, pool)
	if err != nil {
		log.Error("failed to initialize conversation store", zap.Error(err))
		os.Exit(1)
	}

	taskStore, err := task.NewPostgresStoreWithPool(ctx, pool)
	if err != nil {
		log.Error("failed to initialize task store", zap.Error(err))
		os.Exit(1)
	}

	// Event publishing is optional; a nil publisher drops everything.
	var publisher *events.Publisher
	if cfg.EventsEnabled {
		publisher, err = events.Connect(ctx, events.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			log.Error("failed to connect to NATS", zap.Error(err))
			os.Exit(1)
		}
		defer publisher.Close()
	}

	llmClient, err := newLLMClient(cfg)
	if err != nil {
		log.Error("failed to create LLM client", zap.Error(err))
		os.Exit(1)
	}
	log.Info("LLM client ready", zap.String("provider", llmClient.Name()))

	registry := tool.NewRegistry(taskStore)
	orchestrator := agent.New(llmClient, registry, cfg.ModelName, log)
	chatSvc := service.NewChatService(convStore, orchestrator, publisher, log)

	healthHandler := handler.NewHealthHandler(pool, publisher)
	chatHandler := handler.NewChatHandler(chatSvc, log)
	conversationHandler := handler.NewConversationHandler(chatSvc, log)
	messageHandler := handler.NewMessageHandler(chatSvc, log)

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// API routes with authentication
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Post("/chat", chatHandler.Chat)

		r.Route("/conversations", func(r chi.Router) {
			r.Get("/", conversationHandler.List)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", conversationHandler.Get)
				r.Delete("/", conversationHandler.Delete)
				r.Get("/messages", messageHandler.List)
			})
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}

// newLLMClient selects a provider from configuration. DEFAULT_LLM picks the
// provider explicitly; otherwise whichever API key is present wins, OpenAI
// first.
func newLLMClient(cfg *config.Config) (llm.Client, error) {
	switch cfg.DefaultLLM {
	case "anthropic":
		return llm.NewAnthropicClient(cfg.AnthropicAPIKey)
	case "openai":
		if cfg.OpenAIAPIKey != "" {
			return llm.NewOpenAIClient(cfg.OpenAIAPIKey)
		}
	}
	if cfg.OpenAIAPIKey != "" {
		return llm.NewOpenAIClient(cfg.OpenAIAPIKey)
	}
	if cfg.AnthropicAPIKey != "" {
		return llm.NewAnthropicClient(cfg.AnthropicAPIKey)
	}
	return nil, fmt.Errorf("no LLM API key configured")
}
