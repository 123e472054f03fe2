package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resto-service/config"
	"resto-service/internal/ai"
	"resto-service/internal/api"
	"resto-service/internal/auth"
	"resto-service/internal/broker"
	"resto-service/internal/catalog"
	"resto-service/internal/lifecycle"
	"resto-service/internal/service"
	"resto-service/internal/store"
	"resto-service/internal/util"
	"resto-service/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()
	live := cfg.LiveMode()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting resto service")

	tp, err := util.InitTracer("resto-service", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	// The in-memory store is always constructed: it is the repository in
	// mock mode and the local fallback for failed status writes in live mode.
	mem := store.NewMemoryWithFixtures()

	var (
		repo     store.Repository = mem
		cache    catalog.Cache    = catalog.NewMemoryCache()
		feed     broker.Feed      = broker.NewLocalFeed()
		mediaDir string
		uploads  *catalog.Uploads
	)

	if live {
		pg, err := store.NewPostgres(cfg.Backend.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer pg.Close()
		repo = pg
		log.Println("Database connected")

		redisCache, err := catalog.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Printf("Redis unavailable, using in-process catalog cache: %v", err)
		} else {
			defer redisCache.Close()
			cache = redisCache
			log.Println("Redis connected")
		}

		feed = broker.NewKafkaFeed(cfg.Kafka.Brokers, cfg.Kafka.TopicOrders, cfg.Kafka.ConsumerGroup)
		log.Println("Kafka feed initialized")

		uploads, err = catalog.NewUploads(cfg.Media.Dir, cfg.Media.BaseURL)
		if err != nil {
			log.Printf("Media directory unavailable, image uploads disabled: %v", err)
		} else {
			mediaDir = uploads.Dir()
		}
	}
	defer feed.Close()

	cat := catalog.New(repo, cache, catalog.Options{
		Live:         live,
		CacheTTL:     cfg.Catalog.CacheTTL,
		FetchTimeout: cfg.Catalog.FetchTimeout,
		Uploads:      uploads,
	})

	orderService := service.NewOrderService(repo, mem, feed, live)
	staffService := service.NewStaffService(repo)

	sessions := auth.NewManager(repo, cat, cfg.Auth.JWTSecret, live, cfg.Auth.SessionTimeout)
	defer sessions.Close()

	board := lifecycle.NewBoard(orderService)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	boardWorker := worker.NewBoardWorker(feed, board)
	go func() {
		if err := boardWorker.Start(workerCtx); err != nil {
			log.Printf("Board worker error: %v", err)
		}
	}()

	describer := ai.NewDescriber(cfg.AI.APIKey, cfg.AI.BaseURL, cfg.AI.Model)

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	handler := api.NewHandler(orderService, staffService, cat, board, sessions, describer, feed, mediaDir, live)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s (live=%v)", cfg.Server.Port, live)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	boardWorker.Stop()

	log.Println("Server exited")
}
