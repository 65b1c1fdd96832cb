// Package main is the entry point for the chatbots API server.
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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ai-automation-studio/chatbots-api/internal/config"
	"github.com/ai-automation-studio/chatbots-api/internal/events"
	"github.com/ai-automation-studio/chatbots-api/internal/handler"
	"github.com/ai-automation-studio/chatbots-api/internal/llm"
	"github.com/ai-automation-studio/chatbots-api/internal/middleware"
	"github.com/ai-automation-studio/chatbots-api/internal/persona"
	"github.com/ai-automation-studio/chatbots-api/internal/service"
	"github.com/ai-automation-studio/chatbots-api/internal/store"
	"github.com/ai-automation-studio/chatbots-api/pkg/logger"
	"github.com/ai-automation-studio/chatbots-api/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting chatbots API server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "chatbots-api", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing")
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Open the conversation store
	st, err := store.New(cfg.DBPath)
	if err != nil {
		log.Error("failed to open store", zap.Error(err))
		os.Exit(1)
	}
	defer st.Close()

	// Connect the event publisher (nil when NATS_URL is unset)
	publisher, err := events.Connect(events.Config{
		URL:   cfg.NATSURL,
		Token: cfg.NATSToken,
	}, log)
	if err != nil {
		log.Error("failed to connect to NATS", zap.Error(err))
		os.Exit(1)
	}
	defer publisher.Close()

	// Initialize the LLM client; a missing credential is fatal
	if cfg.LLMAPIKey() == "" {
		log.Error("no API key configured for LLM provider " + cfg.LLMProvider)
		os.Exit(1)
	}
	llmClient, err := llm.NewClient(llm.Provider(cfg.LLMProvider), cfg.LLMAPIKey())
	if err != nil {
		log.Error("failed to create LLM client", zap.Error(err))
		os.Exit(1)
	}

	// Initialize services
	chatSvc := service.NewChatService(st, llmClient, publisher, log, cfg.ChatModel, cfg.TitleMaxTokens)
	personaSvc := service.NewPersonaService(st, llmClient, publisher, log, cfg.ChatModel)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(st, publisher)
	chatHandler := handler.NewChatHandler(chatSvc, log)
	personaHandler := handler.NewPersonaHandler(personaSvc, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimiddleware.Recoverer)
	// Allow all origins for local development; tighten for production
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		if cfg.AuthEnabled {
			r.Use(middleware.Auth(cfg.JWTSecret))
		}
		if cfg.RateLimitEnabled {
			r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))
		}

		// Chat sessions
		r.Route("/chat", func(r chi.Router) {
			r.Post("/new", chatHandler.Create)
			r.Post("/title", chatHandler.GenerateTitle)
			r.Get("/list", chatHandler.List)
			r.Get("/{id}/messages", chatHandler.Messages)
			r.Delete("/{id}/delete", chatHandler.Delete)
		})

		// One chat endpoint per persona
		for _, p := range persona.All() {
			r.Post("/"+p.Key+"/chat", personaHandler.Chat(p))
		}
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening on port " + cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
