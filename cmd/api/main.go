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
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/parley-ai/chat-broker/internal/auth"
	"github.com/parley-ai/chat-broker/internal/config"
	"github.com/parley-ai/chat-broker/internal/events"
	"github.com/parley-ai/chat-broker/internal/handler"
	"github.com/parley-ai/chat-broker/internal/llm"
	"github.com/parley-ai/chat-broker/internal/middleware"
	"github.com/parley-ai/chat-broker/internal/search"
	"github.com/parley-ai/chat-broker/internal/service"
	"github.com/parley-ai/chat-broker/internal/store"
	"github.com/parley-ai/chat-broker/internal/ws"
	"github.com/parley-ai/chat-broker/pkg/logger"
	"github.com/parley-ai/chat-broker/pkg/tracing"
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

	log.Info("starting API server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "chat-broker", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Open the store
	st, err := store.NewSQLite(cfg.DatabasePath)
	if err != nil {
		log.Error("failed to open store", zap.Error(err))
		os.Exit(1)
	}
	defer st.Close()

	// Connect the usage event publisher when a broker is configured
	var publisher events.Publisher = events.Noop{}
	if cfg.NATSURL != "" {
		natsPub, err := events.NewNATSPublisher(ctx, events.Config{
			URL:   cfg.NATSURL,
			Token: cfg.NATSToken,
		}, log)
		if err != nil {
			log.Warn("failed to connect to NATS, usage events disabled", zap.Error(err))
		} else {
			publisher = natsPub
			defer natsPub.Close()
		}
	}

	// Initialize the completion client
	var llmClient llm.Client
	if cfg.OpenAIAPIKey != "" {
		llmClient, err = llm.NewOpenAIClient(cfg.OpenAIAPIKey)
		if err != nil {
			log.Warn("failed to create OpenAI client, chat disabled", zap.Error(err))
		}
	} else if cfg.AnthropicAPIKey != "" {
		llmClient, err = llm.NewAnthropicClient(cfg.AnthropicAPIKey)
		if err != nil {
			log.Warn("failed to create Anthropic client, chat disabled", zap.Error(err))
		}
	} else {
		log.Warn("no completion provider API key configured, chat disabled")
	}

	// Initialize services
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.JWTExpiration)
	authSvc := service.NewAuthService(st, issuer, log)
	chatSvc := service.NewChatService(st, llmClient, publisher, cfg.FreeTierLimit, cfg.CompletionModel, log)
	searchClient := search.NewClient(cfg.GoogleAPIKey, cfg.GoogleSearchEngineID)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(st)
	authHandler := handler.NewAuthHandler(authSvc, log)
	chatHandler := handler.NewChatHandler(chatSvc, log)
	searchHandler := handler.NewSearchHandler(searchClient, log)
	wsHandler := ws.NewHandler(log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposedHeaders:   []string{"Link", "X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// Realtime channel
	r.Get("/ws", wsHandler.Serve)

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(issuer, st))
			r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

			r.Post("/chat", chatHandler.Chat)
			r.Get("/chats", chatHandler.List)
			r.Get("/search", searchHandler.Search)
		})
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
		log.Info("server listening", zap.String("port", cfg.ServerPort))
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
