package routes

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"github.com/raghav0014/AI-Feedback/ws"
)

// SetupWebSocketRoutes configures the live update endpoint
func SetupWebSocketRoutes(app *fiber.App, hub *ws.Hub, path string) {
	app.Use(path, func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get(path, websocket.New(hub.Handle))
}
