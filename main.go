package main

import (
	"context"
	"coursehub/config"
	"coursehub/database"
	"coursehub/logger"
	"coursehub/metrics"
	"coursehub/middleware"
	"coursehub/routers"
	"coursehub/services"
	"coursehub/utils"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberLogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
)

func newLocker(cfg *config.Config) utils.Locker {
	if cfg.LockBackend == "database" {
		return utils.NewDBLocker(database.Database.Db)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Log.WithError(err).Warn("Redis unavailable, falling back to database lock")
		return utils.NewDBLocker(database.Database.Db)
	}
	return utils.NewRedisLocker(client)
}

func main() {
	config.LoadConfig()
	cfg := config.AppConfig
	logger.Init(cfg.LogLevel)
	database.ConnectDb()

	services.Init(database.Database.Db, logger.Log, services.OptionsFromConfig(cfg))

	scheduler, err := utils.InitializeLeaderboardScheduler(services.App.Leaderboard, newLocker(cfg), cfg.LeaderboardCron)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to start leaderboard scheduler")
	}

	app := fiber.New(fiber.Config{
		BodyLimit:         cfg.UploadMaxBytes,
		StreamRequestBody: true,
		ErrorHandler:      middleware.ErrorHandler,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",
		AllowHeaders: "Content-Type,Authorization",
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(fiberLogger.New(fiberLogger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))
	app.Use(metrics.Middleware())

	app.Get("/metrics", metrics.Handler())

	routers.Setup(app, int64(cfg.UploadMaxBytes))

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit

		logger.Log.Info("Shutting down")
		<-scheduler.Stop().Done()
		if err := app.ShutdownWithTimeout(30 * time.Second); err != nil {
			logger.Log.WithError(err).Error("Server shutdown failed")
		}
	}()

	logger.Log.Infof("Server is running on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		logger.Log.WithError(err).Fatal("Server stopped")
	}
}
