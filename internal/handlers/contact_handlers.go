package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fathimasithara01/caseflow/internal/apperr"
	"github.com/fathimasithara01/caseflow/internal/models"
	"github.com/fathimasithara01/caseflow/internal/repository"
)

type ContactHandler struct {
	repo *repository.ContactRepo
}

func NewContactHandler(repo *repository.ContactRepo) *ContactHandler {
	return &ContactHandler{repo: repo}
}

// Create accepts a public help/contact request, no auth required.
func (h *ContactHandler) Create(c *fiber.Ctx) error {
	var cr models.ContactRequest
	if err := c.BodyParser(&cr); err != nil {
		return apperr.Validation("invalid request body")
	}
	if cr.Name == "" || cr.Email == "" || cr.Message == "" {
		return apperr.Validation("name, email and message are required")
	}
	if err := h.repo.Insert(c.Context(), &cr); err != nil {
		return err
	}
	return jsonMessage(c, fiber.StatusCreated, "contact request received")
}

func (h *ContactHandler) List(c *fiber.Ctx) error {
	contacts, err := h.repo.List(c.Context(), 100)
	if err != nil {
		return err
	}
	return jsonList(c, len(contacts), contacts)
}
