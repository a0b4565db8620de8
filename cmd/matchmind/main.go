// Command matchmind runs the post-match analysis service: it connects to
// Postgres, starts the worker pool that drains the analysis_request queue,
// and serves a small admin/health HTTP surface.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/matchmind/matchmind/internal/api"
	"github.com/matchmind/matchmind/internal/chatwebhook"
	"github.com/matchmind/matchmind/internal/cleanup"
	"github.com/matchmind/matchmind/internal/config"
	"github.com/matchmind/matchmind/internal/dispatcher"
	"github.com/matchmind/matchmind/internal/gameapi"
	"github.com/matchmind/matchmind/internal/llm"
	"github.com/matchmind/matchmind/internal/pipeline"
	"github.com/matchmind/matchmind/internal/ratelimit"
	"github.com/matchmind/matchmind/internal/store"
	"github.com/matchmind/matchmind/internal/strategy"
	"github.com/matchmind/matchmind/pkg/version"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir", getEnv("CONFIG_DIR", "./config"), "Path to configuration directory")
	flag.Parse()

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("warning: could not load %s: %v", envPath, err)
	} else {
		log.Printf("loaded environment from %s", envPath)
	}

	httpPort := getEnv("HTTP_PORT", "8080")
	gin.SetMode(getEnv("GIN_MODE", "release"))

	log.Printf("starting %s", version.Full())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Initialize(ctx, *configDir)
	if err != nil {
		log.Fatalf("failed to initialize configuration: %v", err)
	}

	db, err := store.Open(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("connected to postgres, migrations applied")

	records := store.NewRecordService(db)
	queue := store.NewQueueService(db)

	buckets := ratelimit.NewRegistry(func(region string) *ratelimit.Bucket {
		rl, ok := cfg.RateLimit[region]
		if !ok {
			rl = cfg.RateLimit["default"]
		}
		return ratelimit.NewBucket(rl.Short.Requests, rl.Short.Per, rl.Long.Requests, rl.Long.Per)
	})

	gameClient := gameapi.NewClient(gameapi.Config{
		BaseURL: getEnv("GAMEAPI_BASE_URL", ""),
		APIToken: getEnv("GAMEAPI_TOKEN", ""),
		MaxTries: cfg.Retry.Fetch.MaxAttempts,
	}, buckets)

	llmClient := llm.NewClient(llm.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.ModelID,
		MaxTokens:   cfg.LLM.MaxOutputTokens,
		Temperature: cfg.LLM.Temperature,
	})

	chatClient := chatwebhook.NewClient(cfg.ChatWebhook.Token, cfg.StageTimeouts.Deliver)
	ops := chatwebhook.NewService(cfg.ChatWebhook.Token, getEnv("CHAT_OPS_CHANNEL", ""))

	factory, err := strategy.NewFactory(cfg.Features)
	if err != nil {
		log.Fatalf("failed to initialize strategy factory: %v", err)
	}

	executor := pipeline.NewExecutor(pipeline.Deps{
		GameAPI:     gameClient,
		LLMClient:   llmClient,
		ChatClient:  chatClient,
		Records:     records,
		Factory:     factory,
		Timeouts:    cfg.StageTimeouts,
		Retry:       cfg.Retry,
		TokenTTL:    cfg.InteractionTokenTTL(),
		Degradation: cfg.Degradation,
		Ops:         ops,
	})

	podID := getEnv("POD_ID", "matchmind-local")
	pool := pipeline.NewWorkerPool(podID, queue, executor, cfg.Queue)
	pool.Start(ctx)
	defer pool.Stop()

	retention := cleanup.NewService(cfg.Retention, records)
	retention.Start(ctx)
	defer retention.Stop()

	disp := dispatcher.New(cfg.ChatWebhook.Token, queue)

	srv := api.NewServer(db, records, disp)
	httpServer := &http.Server{Addr: ":" + httpPort, Handler: srv.Handler()}

	go func() {
		log.Printf("http server listening on :%s", httpPort)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Queue.GracefulShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("http server shutdown error: %v", err)
	}
}
