package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/librarian/librarian-backend/internal/services"
)

// defaultAnalyticsDays is the window used when the client does not pass one.
const defaultAnalyticsDays = 7

// GetUsage returns rolled-up usage metrics for the last `days` days.
func GetUsage(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		days := c.QueryInt("days", defaultAnalyticsDays)
		if days < 1 {
			days = defaultAnalyticsDays
		}
		return c.JSON(svc.Analytics.Usage(days))
	}
}

// GetDailyUsage returns one aggregate row per day, oldest first.
func GetDailyUsage(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		days := c.QueryInt("days", defaultAnalyticsDays)
		if days < 1 {
			days = defaultAnalyticsDays
		}
		return c.JSON(fiber.Map{
			"daily": svc.Analytics.Daily(days),
		})
	}
}

// GetSkillUsage returns per-skill application counts, most used first.
func GetSkillUsage(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"skills": svc.Analytics.SkillUsage(),
		})
	}
}
