package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/librarian/librarian-backend/internal/services"
)

// ReapSessions removes sessions idle longer than the configured threshold
// and reports how many were removed.
func ReapSessions(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		maxIdle := time.Duration(svc.Config.Cache.SessionMaxIdleSeconds) * time.Second

		reaped := svc.Orchestrator.Reap(maxIdle)
		return c.JSON(fiber.Map{
			"reaped": reaped,
		})
	}
}

// ListSkills returns the loaded skill library.
func ListSkills(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"skills": svc.Skills.Skills(),
			"count":  svc.Skills.Count(),
		})
	}
}
