package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/pulsehq/pulse/common/id"
	"github.com/pulsehq/pulse/common/llm"
	"github.com/pulsehq/pulse/common/logger"
	"github.com/pulsehq/pulse/common/otel"
	"github.com/pulsehq/pulse/core/config"
	"github.com/pulsehq/pulse/core/db"
	"github.com/pulsehq/pulse/internal/classifier"
	"github.com/pulsehq/pulse/internal/http/middleware"
	httprouter "github.com/pulsehq/pulse/internal/http/router"
	"github.com/pulsehq/pulse/internal/index"
	"github.com/pulsehq/pulse/internal/notify"
	"github.com/pulsehq/pulse/internal/service"
	"github.com/pulsehq/pulse/internal/store"
	"github.com/pulsehq/pulse/internal/stream"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses the OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		// Can't use slog yet — OTel failed before logger setup
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "pulse starting", "env", cfg.Env)

	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		slog.ErrorContext(ctx, "failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.InfoContext(ctx, "database connected")

	llmClient, err := llm.New(llm.Config{
		Provider:  cfg.ClassifierLLM.Provider,
		APIKey:    cfg.ClassifierLLM.APIKey,
		BaseURL:   cfg.ClassifierLLM.BaseURL,
		Model:     cfg.ClassifierLLM.Model,
		MaxTokens: cfg.ClassifierLLM.MaxTokens,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to initialize llm client", "error", err)
		os.Exit(1)
	}

	embedder, err := llm.NewOpenAIEmbedder(llm.EmbedderConfig{
		APIKey:  cfg.Embedding.APIKey,
		BaseURL: cfg.Embedding.BaseURL,
		Model:   cfg.Embedding.Model,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to initialize embedder", "error", err)
		os.Exit(1)
	}

	var activity stream.Publisher = stream.NopPublisher{}
	if cfg.Redis.Enabled() {
		redisOpts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
			os.Exit(1)
		}
		redisClient := redis.NewClient(redisOpts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		activity = stream.NewRedisPublisher(redisClient, cfg.Redis.Stream)
		slog.InfoContext(ctx, "redis connected", "stream", cfg.Redis.Stream)
	} else {
		slog.InfoContext(ctx, "activity stream disabled (no redis url configured)")
	}

	stores := store.New(database.Pool())
	adapter := index.NewAdapter(embedder, stores.Vectors)
	analyzer := classifier.NewAnalyzer(llmClient)
	notifier := notify.NewSlackNotifier(cfg.Slack.WebhookURL)
	if !cfg.Slack.Enabled() {
		slog.InfoContext(ctx, "escalation notifications disabled (no webhook configured)")
	}

	services := service.NewServices(stores, adapter, analyzer, notifier, activity)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services, stores)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func setupRouter(cfg config.Config, services *service.Services, stores *store.Stores) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services, stores)

	return router
}
