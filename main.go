package main

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/raghav0014/AI-Feedback/auth"
	"github.com/raghav0014/AI-Feedback/config"
	"github.com/raghav0014/AI-Feedback/controllers"
	"github.com/raghav0014/AI-Feedback/cron"
	"github.com/raghav0014/AI-Feedback/db"
	"github.com/raghav0014/AI-Feedback/redis"
	"github.com/raghav0014/AI-Feedback/routes"
	"github.com/raghav0014/AI-Feedback/services"
	"github.com/raghav0014/AI-Feedback/utils"
	"github.com/raghav0014/AI-Feedback/ws"
)

func main() {
	cfg := config.Load()

	database, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.Migrate(database); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// The app keeps serving without Redis; reads fall through to the
	// database and tier-3 cache fallbacks simply miss.
	cache, err := redis.Connect(cfg.RedisAddr)
	if err != nil {
		log.Printf("Warning: Redis unavailable, running without cache: %v", err)
		cache = nil
	}

	hub := ws.NewHub()

	analyzer := buildAnalyzer(cfg)
	hasher := services.NewContentHasher()

	var contentStore services.ContentAddressStore
	if cfg.EnableBlockchain {
		contentStore = services.NewLocalContentStore(database)
	}

	store := services.NewReviewStore(database)
	enricher := services.NewEnricher(store, analyzer, hasher, contentStore, hub)
	reviewSvc := services.NewReviewService(store, cache, cfg.APIBaseURL, hub)
	analyticsSvc := services.NewAnalyticsService(database, cache)
	verifier := services.NewDemoPurchaseVerifier()
	mailer := utils.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailUser, cfg.EmailPass)

	uploadClient, err := utils.NewCloudinaryUploader(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	if err != nil {
		log.Fatalf("Failed to initialize media storage: %v", err)
	}

	provider := auth.Select(cfg.AuthProvider, cfg.JWTSecret, database)

	authCtl := controllers.NewAuthController(provider)
	reviewCtl := controllers.NewReviewController(reviewSvc, enricher, verifier, hub, mailer, cfg.EnableQRVerify, cfg.EnableNotifications)
	analyticsCtl := controllers.NewAnalyticsController(analyticsSvc)
	verifyCtl := controllers.NewVerifyController(verifier, cfg.EnableQRVerify)
	healthCtl := controllers.NewHealthController(database, cache, cfg.EnableAI)
	uploadCtl := controllers.NewUploadController(uploadClient)

	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))

	routes.SetupAuthRoutes(app, authCtl)
	routes.SetupReviewRoutes(app, reviewCtl, cfg.JWTSecret)
	routes.SetupVerifyRoutes(app, verifyCtl, cfg.JWTSecret)
	routes.SetupAnalyticsRoutes(app, analyticsCtl, cfg.JWTSecret)
	routes.SetupUploadRoutes(app, uploadCtl, cfg.JWTSecret)
	routes.SetupHealthRoutes(app, healthCtl)
	routes.SetupWebSocketRoutes(app, hub, cfg.WebSocketPath)

	scheduler := cron.NewScheduler(database, analyticsSvc, hub, mailer, cfg.EnableNotifications)
	if err := scheduler.Start(); err != nil {
		log.Fatalf("Failed to start cron scheduler: %v", err)
	}

	log.Printf("Server starting on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("Server stopped: %v", err)
	}
}

// buildAnalyzer wires the analysis tiers: remote model first when enabled,
// local heuristic always last.
func buildAnalyzer(cfg *config.Config) services.Analyzer {
	heuristic := services.NewHeuristicAnalyzer()
	if !cfg.EnableAI || cfg.AIAPIURL == "" {
		return heuristic
	}
	remote := services.NewRemoteAnalyzer(cfg.AIAPIURL, cfg.AIAPIKey)
	return services.NewChainAnalyzer(remote, heuristic)
}
