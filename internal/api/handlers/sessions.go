// Package handlers contains the HTTP handlers for the librarian API.
package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/librarian/librarian-backend/internal/conversation"
	"github.com/librarian/librarian-backend/internal/services"
)

// CreateSession creates a new conversation session.
func CreateSession(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := svc.Orchestrator.CreateSession()
		return c.Status(fiber.StatusCreated).JSON(session)
	}
}

// GetSessionHistory returns the full ordered turn history for a session.
// Unknown sessions yield an empty history.
func GetSessionHistory(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Params("id")

		history := svc.Orchestrator.History(sessionID)
		return c.JSON(fiber.Map{
			"session_id": sessionID,
			"turns":      history,
			"count":      len(history),
		})
	}
}

// GetSessionStats returns summary statistics for a session.
func GetSessionStats(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Params("id")

		stats, err := svc.Orchestrator.Stats(sessionID)
		if err != nil {
			if errors.Is(err, conversation.ErrSessionNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": "Session not found",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		return c.JSON(stats)
	}
}

// DeleteSession removes a session and all its state. Deleting an unknown
// session succeeds.
func DeleteSession(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sessionID := c.Params("id")

		svc.Orchestrator.DeleteSession(sessionID)
		return c.JSON(fiber.Map{
			"message": "Session deleted successfully",
		})
	}
}
