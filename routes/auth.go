package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/raghav0014/AI-Feedback/controllers"
)

// SetupAuthRoutes configures all authentication related routes
func SetupAuthRoutes(app *fiber.App, auth *controllers.AuthController) {
	group := app.Group("/api/auth")

	group.Post("/register", auth.Register)
	group.Post("/login", auth.Login)
	group.Get("/verify", auth.Verify)
	group.Post("/refresh", auth.Refresh)
}
