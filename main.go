package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"miniapp-rewards-system/config"
	"miniapp-rewards-system/handlers"
	"miniapp-rewards-system/middleware"
	"miniapp-rewards-system/services"
	"miniapp-rewards-system/storage"
	"miniapp-rewards-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()

	app := fiber.New(fiber.Config{
		AppName: "miniapp-rewards-system",
	})

	// 🔐 Gateway auth first when configured — no exceptions behind a gateway.
	if cfg.GatewayToken != "" {
		app.Use(middleware.GatewayAuthMiddleware(cfg.GatewayToken))
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(cfg.AllowedOrigins, ","),
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Telegram-Init-Data",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	if cfg.TelegramBotToken != "" {
		app.Use(middleware.TelegramAuthMiddleware(cfg.TelegramBotToken))
	} else if cfg.Environment == "production" {
		log.Fatal("❌ TELEGRAM_BOT_TOKEN is not set — cannot verify mini-app requests in production")
	} else {
		log.Println("⚠️  TELEGRAM_BOT_TOKEN not set — init data verification disabled (development only)")
	}

	// Optional Redis: leaderboard cache, or the primary store when selected.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal("invalid REDIS_URL: ", err)
		}
		redisClient = redis.NewClient(opt)
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			cancel()
			log.Fatal("failed to connect to Redis: ", err)
		}
		cancel()
		log.Println("✅ Connected to Redis")
	}

	var store storage.Store
	switch cfg.StorageBackend {
	case "redis":
		if redisClient == nil {
			log.Fatal("STORAGE_BACKEND=redis requires REDIS_URL")
		}
		store = storage.NewRedisStore(redisClient)
	case "postgres":
		if cfg.DatabaseURL == "" {
			log.Fatal("DATABASE_URL environment variable not set")
		}
		db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
		if err != nil {
			log.Fatal("failed to connect to database: ", err)
		}
		store, err = storage.NewPostgresStore(db)
		if err != nil {
			log.Fatal("failed to set up kv store: ", err)
		}
	default:
		log.Fatalf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	userService := services.NewUserService(store)
	catalogService := services.NewCatalogService(store)
	completionService := services.NewCompletionService(store, catalogService)
	referralService := services.NewReferralService(store)
	leaderboardService := services.NewLeaderboardService(store, redisClient, cfg.LeaderboardLimit)

	seedCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := catalogService.SeedDefaults(seedCtx); err != nil {
		cancel()
		log.Fatal("failed to seed task catalog: ", err)
	}
	cancel()

	var exporter *services.SnapshotExporter
	if utils.R2Configured() {
		if err := utils.InitR2(); err != nil {
			log.Fatal("failed to initialize R2 client: ", err)
		}
		exporter = services.NewSnapshotExporter(store)
	}
	services.StartMaintenanceScheduler(leaderboardService, exporter)

	handlers.SetupRoutes(app, userService, catalogService, completionService, referralService, leaderboardService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s (storage: %s)", cfg.Port, cfg.StorageBackend)
	if exporter != nil {
		log.Println("✅ Daily ledger snapshot export enabled")
	}

	<-ctx.Done()
	log.Println("Shutting down server...")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
