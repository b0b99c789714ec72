package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reposition/internal/api/handlers"
	"reposition/internal/config"
	"reposition/internal/jobs"
	"reposition/internal/oracle"
	"reposition/internal/pipeline"
	"reposition/internal/repository"
	"reposition/internal/service"
	"reposition/internal/websocket"
	"reposition/internal/worker"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	fiberws "github.com/gofiber/websocket/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	gdb, err := initPostgres(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to PostgreSQL")
	}
	log.Info("connected to PostgreSQL")

	redisClient, err := initRedis(cfg)
	if err != nil {
		log.WithError(err).Fatal("failed to connect to Redis")
	}
	log.Info("connected to Redis")

	db := repository.NewDB(gdb)
	if err := db.AutoMigrate(); err != nil {
		log.WithError(err).Fatal("failed to run migrations")
	}
	log.Info("database migrations completed")

	playerRepo := repository.NewPlayerRepository(db)
	compatRepo := repository.NewCompatibilityRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	favoriteRepo := repository.NewFavoriteRepository(db)
	cache := repository.NewCache(redisClient)

	// The worker pool caps concurrent oracle processes; uploads queue behind
	// it instead of forking an unbounded number of scoring runs.
	scorer := &oracle.CLIScorer{
		Command: cfg.Oracle.Command,
		Script:  cfg.Oracle.Script,
		Timeout: cfg.Oracle.Timeout,
		Logger:  log,
	}
	pool := worker.NewPool(cfg.Scoring.Workers, cfg.Scoring.QueueSize, scorer, log)
	pool.Start()

	scoringPipeline := pipeline.New(pool, compatRepo, cache, log)
	analyzer := jobs.NewAnalyzer(playerRepo, scoringPipeline, 200, log)

	playerService := service.NewPlayerService(playerRepo, compatRepo)
	analyticsService := service.NewAnalyticsService(
		playerRepo, compatRepo, catalogRepo, cache, cfg.Analytics.CacheTTL, log)
	favoriteService := service.NewFavoriteService(playerRepo, compatRepo, favoriteRepo)

	hub := websocket.NewHub(cache, log)
	hubCtx, hubCancel := context.WithCancel(context.Background())
	defer hubCancel()
	go hub.Run(hubCtx)

	playerHandler := handlers.NewPlayerHandler(playerService)
	uploadHandler := handlers.NewUploadHandler(scoringPipeline, analyzer)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	catalogHandler := handlers.NewCatalogHandler(catalogRepo)
	favoriteHandler := handlers.NewFavoriteHandler(favoriteService)
	healthHandler := handlers.NewHealthHandler(db, cache)

	app := fiber.New(fiber.Config{
		AppName:      "RePosition API",
		ErrorHandler: errorHandler,
		BodyLimit:    12 << 20,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, X-User-ID",
	}))

	api := app.Group("/api/v1")

	api.Get("/players", playerHandler.Search)
	api.Get("/players/:playerID", playerHandler.Get)
	api.Get("/players/:playerID/compatibility", playerHandler.Compatibility)

	api.Post("/compatibility/upload", uploadHandler.Upload)

	api.Get("/teams/:clubName/analysis", analyticsHandler.TeamAnalysis)
	api.Get("/stats", analyticsHandler.Stats)

	api.Get("/countries", catalogHandler.Countries)
	api.Get("/competitions", catalogHandler.Competitions)
	api.Get("/leagues", catalogHandler.Leagues)
	api.Get("/leagues/country/:country", catalogHandler.Leagues)
	api.Get("/clubs", catalogHandler.Clubs)

	api.Get("/favorites", favoriteHandler.List)
	api.Get("/favorites/:playerID/status", favoriteHandler.Status)
	api.Post("/favorites/:playerID", favoriteHandler.Add)
	api.Delete("/favorites/:playerID", favoriteHandler.Remove)

	api.Post("/admin/analyze", uploadHandler.Analyze)
	api.Get("/admin/analyze", uploadHandler.AnalyzeStatus)

	api.Get("/health", healthHandler.Check)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if fiberws.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", fiberws.New(func(conn *fiberws.Conn) {
		websocket.ServeWS(hub, conn)
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message":           "RePosition API",
			"version":           "1.0.0",
			"websocket_clients": hub.ClientCount(),
		})
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Info("shutting down server")
		hubCancel()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			log.WithError(err).Warn("server forced to shutdown")
		}

		// Drain in-flight scoring runs before closing the stores under them.
		if err := pool.Shutdown(2 * cfg.Oracle.Timeout); err != nil {
			log.WithError(err).Warn("worker pool shutdown")
		}
		if err := db.Close(); err != nil {
			log.WithError(err).Warn("error closing PostgreSQL")
		}
		if err := cache.Close(); err != nil {
			log.WithError(err).Warn("error closing Redis")
		}
		log.Info("server shutdown complete")
	}()

	log.WithField("port", cfg.Server.Port).Info("server starting")
	if err := app.Listen(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		log.WithError(err).Fatal("failed to start server")
	}
}

// initPostgres opens the database with a pool sized for the scoring workers
// plus interactive traffic.
func initPostgres(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.GetDSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.Scoring.Workers + 10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(2 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

func initRedis(cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Username:     cfg.Redis.Username,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return client, nil
}

// errorHandler is the Fiber-level catch-all for errors no handler mapped.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   "Request failed",
		"message": err.Error(),
	})
}
