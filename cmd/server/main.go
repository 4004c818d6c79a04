package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-occupancy-service/internal/config"
	"github.com/iliyamo/parking-occupancy-service/internal/database"
	"github.com/iliyamo/parking-occupancy-service/internal/handler"
	"github.com/iliyamo/parking-occupancy-service/internal/middleware"
	"github.com/iliyamo/parking-occupancy-service/internal/queue"
	"github.com/iliyamo/parking-occupancy-service/internal/repository"
	"github.com/iliyamo/parking-occupancy-service/internal/router"
	"github.com/iliyamo/parking-occupancy-service/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := database.EnsureSchema(ctx, db); err != nil {
		cancel()
		log.Fatalf("schema bootstrap failed: %v", err)
	}
	cancel()

	eventRepo := repository.NewParkingEventRepo(db)
	occupancyRepo := repository.NewOccupancyRepo(db)
	paymentRepo := repository.NewPaymentRepo(db)
	lifecycle := service.NewLifecycle(db, eventRepo, occupancyRepo, paymentRepo, cfg.Fee)

	// Release occupancy for payments settled by external payment services.
	go func() {
		if err := queue.StartPaymentConsumer(lifecycle); err != nil {
			log.Printf("payment consumer stopped: %v", err)
		}
	}()

	e := echo.New()

	// Redis is optional; when absent the cache and rate limiter pass through.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; response cache and rate limiting disabled")
	}
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	cacheMW := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	router.RegisterRoutes(e)
	router.RegisterParking(e, handler.NewParkingHandler(lifecycle), cacheMW)
	router.RegisterPayments(e, handler.NewPaymentHandler(lifecycle))

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
