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

type EventHandler struct {
	repo *repository.EventRepo
}

func NewEventHandler(repo *repository.EventRepo) *EventHandler {
	return &EventHandler{repo: repo}
}

func (h *EventHandler) Create(c *fiber.Ctx) error {
	var e models.Event
	if err := c.BodyParser(&e); err != nil {
		return apperr.Validation("invalid request body")
	}
	if e.Title == "" || e.Start.IsZero() || e.End.IsZero() {
		return apperr.Validation("title, start and end are required")
	}
	if e.End.Before(e.Start) {
		return apperr.Validation("event cannot end before it starts")
	}
	e.FirmID, _ = c.Locals("firm_id").(string)
	if e.FirmID == "" {
		return apperr.Validation("firm id is required")
	}
	if err := h.repo.Insert(c.Context(), &e); err != nil {
		return err
	}
	return jsonData(c, fiber.StatusCreated, e)
}

func (h *EventHandler) List(c *fiber.Ctx) error {
	firmID, _ := c.Locals("firm_id").(string)
	events, err := h.repo.ListByFirm(c.Context(), firmID)
	if err != nil {
		return err
	}
	return jsonList(c, len(events), events)
}

func (h *EventHandler) Get(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return apperr.NotFound("event not found")
	}
	e, err := h.repo.GetByID(c.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("event not found")
	}
	if err != nil {
		return err
	}
	return jsonData(c, fiber.StatusOK, e)
}

func (h *EventHandler) Update(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return apperr.NotFound("event not found")
	}
	var req models.Event
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	set := bson.M{}
	if req.Title != "" {
		set["title"] = req.Title
	}
	if req.Description != "" {
		set["description"] = req.Description
	}
	if req.Location != "" {
		set["location"] = req.Location
	}
	if !req.Start.IsZero() {
		set["start"] = req.Start
	}
	if !req.End.IsZero() {
		set["end"] = req.End
	}
	if len(set) == 0 {
		return apperr.Validation("nothing to update")
	}
	e, err := h.repo.Update(c.Context(), id, set)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("event not found")
	}
	if err != nil {
		return err
	}
	return jsonData(c, fiber.StatusOK, e)
}

func (h *EventHandler) Delete(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return apperr.NotFound("event not found")
	}
	if err := h.repo.Delete(c.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("event not found")
		}
		return err
	}
	return jsonMessage(c, fiber.StatusOK, "event deleted")
}
