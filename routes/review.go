package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/raghav0014/AI-Feedback/controllers"
	"github.com/raghav0014/AI-Feedback/middleware"
)

// SetupReviewRoutes configures all review related routes
func SetupReviewRoutes(app *fiber.App, reviews *controllers.ReviewController, jwtSecret string) {
	group := app.Group("/api/reviews")

	// Public routes (admins see all statuses when a token is present)
	group.Get("/", middleware.OptionalAuth(jwtSecret), reviews.List)
	group.Get("/:id", reviews.Get)

	// Protected routes
	group.Post("/", middleware.Protected(jwtSecret), reviews.Create)
	group.Put("/:id", middleware.Protected(jwtSecret), reviews.Update)
	group.Delete("/:id", middleware.Protected(jwtSecret), reviews.Delete)
	group.Post("/:id/helpful", middleware.Protected(jwtSecret), reviews.MarkHelpful)
	group.Post("/:id/report", middleware.Protected(jwtSecret), reviews.Report)

	// Moderation
	group.Patch("/:id/status", middleware.Protected(jwtSecret), middleware.AdminOnly(), reviews.SetStatus)
}
