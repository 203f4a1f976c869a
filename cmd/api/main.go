package main

// @title Parking Radar Engine API
// @version 1.0.0
// @description Движок поиска парковок для map-клиента. Принимает события остановки вьюпорта карты, решает, оправдан ли новый поиск (географический кеш, квоты external-провайдера, порог сдвига), объединяет собственные парковки с результатами стороннего places-провайдера и публикует единый отсортированный список.
// @description
// @description Основные возможности:
// @description - Приём settle/locate событий карты
// @description - Географический кеш с выборкой по ближайшей записи
// @description - Квотирование запросов к external-провайдеру (минута/сутки)
// @description - Живые обновления занятости через push-канал inventory-бэкенда

// @contact.name API Support
// @contact.email support@parkiu.app

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "github.com/parkiusource/parking-radar/docs"
	"github.com/parkiusource/parking-radar/internal/config"
	httpDelivery "github.com/parkiusource/parking-radar/internal/delivery/http"
	"github.com/parkiusource/parking-radar/internal/delivery/http/handler"
	"github.com/parkiusource/parking-radar/internal/domain/repository"
	"github.com/parkiusource/parking-radar/internal/infrastructure/inventory"
	"github.com/parkiusource/parking-radar/internal/infrastructure/places"
	"github.com/parkiusource/parking-radar/internal/infrastructure/push"
	"github.com/parkiusource/parking-radar/internal/pkg/logger"
	"github.com/parkiusource/parking-radar/internal/pkg/metrics"
	"github.com/parkiusource/parking-radar/internal/repository/cache"
	"github.com/parkiusource/parking-radar/internal/usecase"
	"github.com/parkiusource/parking-radar/internal/worker"
	"github.com/parkiusource/parking-radar/internal/worker/parking"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Parking Radar Engine")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
	)

	// 3. Connect to Redis. Redis опционален: без него состояние кеша и
	// лимитера не переживает рестарт, но сервис полностью работоспособен
	var redisClient *cache.Redis
	var stateStore repository.CacheRepository

	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(&cfg.Redis, log)
		if err != nil {
			log.Warn("Redis unavailable, running without persistence", zap.Error(err))
		} else {
			defer func() {
				if err := redisClient.Close(); err != nil {
					log.Error("Failed to close Redis connection", zap.Error(err))
				}
			}()
			stateStore = cache.NewCacheRepository(redisClient)
			log.Info("Redis connected")
		}
	} else {
		log.Info("Redis disabled, running without persistence")
	}

	// 4. Initialize repositories and clients
	spotCache := cache.NewSpotCache(&cfg.Cache, stateStore, log)
	placesClient := places.NewPlacesClient(&cfg.Places, log)
	inventoryClient := inventory.NewInventoryClient(&cfg.Inventory, log)
	pushClient := push.NewClient(&cfg.Push, log)

	log.Info("Repositories initialized")

	// 5. Initialize use cases
	limiter := usecase.NewRateLimiter(&cfg.Limiter, stateStore, log)

	orchestrator := usecase.NewSearchOrchestrator(
		placesClient,
		inventoryClient,
		spotCache,
		limiter,
		&cfg.Search,
		log,
	)

	log.Info("Use cases initialized")

	// 6. Initialize workers
	liveUpdateWorker := parking.NewLiveUpdateWorker(
		pushClient,
		orchestrator,
		cfg.Push.ReconnectDelay,
		log,
	)

	manager := worker.NewManager(log)
	manager.Register(orchestrator)
	manager.Register(liveUpdateWorker)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	if err := manager.Start(workerCtx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	log.Info("Workers started")

	// 7. Initialize HTTP handlers and server
	viewportHandler := handler.NewViewportHandler(orchestrator, cfg.Search.DefaultZoom, log)
	adminHandler := handler.NewAdminHandler(orchestrator, limiter, &cfg.Limiter, redisClient, log)

	server := httpDelivery.NewServer(cfg, log, viewportHandler, adminHandler)

	log.Info("HTTP server initialized")

	// 8. Start metrics listener
	if cfg.Metrics.Enabled {
		go func() {
			log.Info("Starting metrics listener", zap.String("address", cfg.Metrics.Addr))
			if err := metrics.Serve(cfg.Metrics.Addr); err != nil {
				log.Error("Metrics listener failed", zap.Error(err))
			}
		}()
	}

	// 9. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 10. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server first so no new events arrive
	if err := server.Shutdown(ctx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	// Stop workers: контекст отменяется до Stop, чтобы выбить
	// заблокированные чтения до ожидания завершения
	workerCancel()
	if err := manager.Stop(); err != nil {
		log.Error("Workers shutdown error", zap.Error(err))
	}

	log.Info("Server stopped successfully")
}
