// Package api sets up the HTTP and websocket surface.
package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/websocket/v2"

	"github.com/librarian/librarian-backend/internal/api/handlers"
	"github.com/librarian/librarian-backend/internal/services"
)

// SetupRoutes configures all API routes.
func SetupRoutes(app *fiber.App, svc *services.Services) {
	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "librarian-backend",
		})
	})

	api := app.Group("/api/v1")

	// Session lifecycle
	api.Post("/sessions", handlers.CreateSession(svc))
	api.Get("/sessions/:id/history", handlers.GetSessionHistory(svc))
	api.Get("/sessions/:id/stats", handlers.GetSessionStats(svc))
	api.Delete("/sessions/:id", handlers.DeleteSession(svc))

	// Chat (rate limited per client IP)
	api.Post("/chat", chatRateLimit(), handlers.Chat(svc))

	// Reference documents
	api.Post("/documents", handlers.AddDocument(svc))
	api.Get("/documents", handlers.ListDocuments(svc))

	// Skill library
	api.Get("/skills", handlers.ListSkills(svc))

	// Analytics
	api.Get("/analytics/usage", handlers.GetUsage(svc))
	api.Get("/analytics/daily", handlers.GetDailyUsage(svc))
	api.Get("/analytics/skills", handlers.GetSkillUsage(svc))

	// Admin
	api.Post("/admin/reap", handlers.ReapSessions(svc))

	// WebSocket chat
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/chat", websocket.New(handlers.ChatSocket(svc)))
}

// chatRateLimit limits chat requests to 30 per minute per client IP.
func chatRateLimit() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        30,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Rate limit exceeded. Please try again later.",
			})
		},
	})
}
