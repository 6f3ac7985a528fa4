package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/fathimasithara01/caseflow/internal/apperr"
	"github.com/fathimasithara01/caseflow/internal/models"
	"github.com/fathimasithara01/caseflow/internal/repository"
)

type ClientHandler struct {
	repo *repository.ClientRepo
}

func NewClientHandler(repo *repository.ClientRepo) *ClientHandler {
	return &ClientHandler{repo: repo}
}

func (h *ClientHandler) Create(c *fiber.Ctx) error {
	var cl models.Client
	if err := c.BodyParser(&cl); err != nil {
		return apperr.Validation("invalid request body")
	}
	if cl.FirstName == "" || cl.Email == "" {
		return apperr.Validation("firstName and email are required")
	}
	cl.FirmID, _ = c.Locals("firm_id").(string)
	if cl.FirmID == "" {
		return apperr.Validation("firm id is required")
	}
	if err := h.repo.Insert(c.Context(), &cl); err != nil {
		return err
	}
	return jsonData(c, fiber.StatusCreated, cl)
}

func (h *ClientHandler) List(c *fiber.Ctx) error {
	firmID, _ := c.Locals("firm_id").(string)
	clients, err := h.repo.ListByFirm(c.Context(), firmID)
	if err != nil {
		return err
	}
	return jsonList(c, len(clients), clients)
}

func (h *ClientHandler) Get(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return apperr.NotFound("client not found")
	}
	cl, err := h.repo.GetByID(c.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("client not found")
	}
	if err != nil {
		return err
	}
	return jsonData(c, fiber.StatusOK, cl)
}

func (h *ClientHandler) Update(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return apperr.NotFound("client not found")
	}
	var req map[string]any
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	set := bson.M{}
	for k, field := range map[string]string{
		"firstName": "first_name",
		"lastName":  "last_name",
		"email":     "email",
		"phone":     "phone",
		"address":   "address",
	} {
		if v, ok := req[k].(string); ok && v != "" {
			set[field] = v
		}
	}
	if len(set) == 0 {
		return apperr.Validation("nothing to update")
	}
	cl, err := h.repo.Update(c.Context(), id, set)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("client not found")
	}
	if err != nil {
		return err
	}
	return jsonData(c, fiber.StatusOK, cl)
}

func (h *ClientHandler) Delete(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return apperr.NotFound("client not found")
	}
	if err := h.repo.Deactivate(c.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("client not found")
		}
		return err
	}
	return jsonMessage(c, fiber.StatusOK, "client deactivated")
}
