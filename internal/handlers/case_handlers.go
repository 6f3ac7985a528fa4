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

type CaseHandler struct {
	repo *repository.CaseRepo
}

func NewCaseHandler(repo *repository.CaseRepo) *CaseHandler {
	return &CaseHandler{repo: repo}
}

func (h *CaseHandler) Create(c *fiber.Ctx) error {
	var cs models.Case
	if err := c.BodyParser(&cs); err != nil {
		return apperr.Validation("invalid request body")
	}
	if cs.Title == "" {
		return apperr.Validation("title is required")
	}
	cs.FirmID, _ = c.Locals("firm_id").(string)
	if cs.FirmID == "" {
		return apperr.Validation("firm id is required")
	}
	if err := h.repo.Insert(c.Context(), &cs); err != nil {
		return err
	}
	return jsonData(c, fiber.StatusCreated, cs)
}

func (h *CaseHandler) List(c *fiber.Ctx) error {
	firmID, _ := c.Locals("firm_id").(string)
	cases, err := h.repo.ListByFirm(c.Context(), firmID, c.Query("status"))
	if err != nil {
		return err
	}
	return jsonList(c, len(cases), cases)
}

func (h *CaseHandler) Get(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return apperr.NotFound("case not found")
	}
	cs, err := h.repo.GetByID(c.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("case not found")
	}
	if err != nil {
		return err
	}
	return jsonData(c, fiber.StatusOK, cs)
}

func (h *CaseHandler) Update(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return apperr.NotFound("case not found")
	}
	var req map[string]any
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	set := bson.M{}
	for k, field := range map[string]string{
		"title":       "title",
		"suitNo":      "suit_no",
		"status":      "status",
		"category":    "category",
		"courtName":   "court_name",
		"description": "description",
	} {
		if v, ok := req[k].(string); ok && v != "" {
			set[field] = v
		}
	}
	if len(set) == 0 {
		return apperr.Validation("nothing to update")
	}
	cs, err := h.repo.Update(c.Context(), id, set)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("case not found")
	}
	if err != nil {
		return err
	}
	return jsonData(c, fiber.StatusOK, cs)
}

func (h *CaseHandler) Delete(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return apperr.NotFound("case not found")
	}
	if err := h.repo.Delete(c.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("case not found")
		}
		return err
	}
	return jsonMessage(c, fiber.StatusOK, "case deleted")
}
