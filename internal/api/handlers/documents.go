package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/librarian/librarian-backend/internal/retrieval"
	"github.com/librarian/librarian-backend/internal/services"
)

// AddDocument stores one reference document.
func AddDocument(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var doc retrieval.Document
		if err := c.BodyParser(&doc); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid request body",
			})
		}

		if doc.Title == "" || doc.Content == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "title and content are required",
			})
		}

		id, err := svc.Documents.Add(c.Context(), doc)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id": id,
		})
	}
}

// ListDocuments returns the most recently added documents.
func ListDocuments(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := c.QueryInt("limit", 50)
		if limit < 1 {
			limit = 50
		}

		docs, err := svc.Documents.List(c.Context(), limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		return c.JSON(fiber.Map{
			"documents": docs,
		})
	}
}
