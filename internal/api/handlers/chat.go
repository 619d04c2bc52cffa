package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/librarian/librarian-backend/internal/conversation"
	"github.com/librarian/librarian-backend/internal/services"
)

// Chat processes one user message and returns the completed turn.
func Chat(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req services.ChatRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}

		if req.SessionID == "" || req.Message == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "session_id and message are required",
			})
		}

		resp, err := svc.Chat.Send(c.Context(), req)
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

		return c.JSON(resp)
	}
}
