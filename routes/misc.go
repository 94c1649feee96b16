package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/raghav0014/AI-Feedback/controllers"
	"github.com/raghav0014/AI-Feedback/middleware"
)

// SetupVerifyRoutes configures purchase verification routes
func SetupVerifyRoutes(app *fiber.App, verify *controllers.VerifyController, jwtSecret string) {
	app.Post("/api/verify-purchase", middleware.Protected(jwtSecret), verify.VerifyPurchase)
}

// SetupAnalyticsRoutes configures admin analytics routes
func SetupAnalyticsRoutes(app *fiber.App, analytics *controllers.AnalyticsController, jwtSecret string) {
	app.Get("/api/analytics", middleware.Protected(jwtSecret), middleware.AdminOnly(), analytics.Report)
}

// SetupUploadRoutes configures media upload routes
func SetupUploadRoutes(app *fiber.App, upload *controllers.UploadController, jwtSecret string) {
	app.Post("/api/upload", middleware.Protected(jwtSecret), upload.Upload)
}

// SetupHealthRoutes configures the health probe
func SetupHealthRoutes(app *fiber.App, health *controllers.HealthController) {
	app.Get("/api/health", health.Check)
}
