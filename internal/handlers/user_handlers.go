package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/fathimasithara01/caseflow/internal/apperr"
	"github.com/fathimasithara01/caseflow/internal/repository"
)

type UserHandler struct {
	repo *repository.UserRepo
	log  *zap.SugaredLogger
}

func NewUserHandler(repo *repository.UserRepo, log *zap.SugaredLogger) *UserHandler {
	return &UserHandler{repo: repo, log: log}
}

func (h *UserHandler) List(c *fiber.Ctx) error {
	firmID, _ := c.Locals("firm_id").(string)
	users, err := h.repo.ListByFirm(c.Context(), firmID)
	if err != nil {
		return err
	}
	return jsonList(c, len(users), users)
}

func (h *UserHandler) Get(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return apperr.NotFound("user not found")
	}
	u, err := h.repo.GetByID(c.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("user not found")
	}
	if err != nil {
		return err
	}
	return jsonData(c, fiber.StatusOK, u)
}

type updateUserReq struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
	Position  string `json:"position"`
}

func (h *UserHandler) Update(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return apperr.NotFound("user not found")
	}
	var req updateUserReq
	if err := c.BodyParser(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	set := bson.M{}
	if req.FirstName != "" {
		set["first_name"] = req.FirstName
	}
	if req.LastName != "" {
		set["last_name"] = req.LastName
	}
	if req.Phone != "" {
		set["phone"] = req.Phone
	}
	if req.Position != "" {
		set["position"] = req.Position
	}
	if len(set) == 0 {
		return apperr.Validation("nothing to update")
	}
	u, err := h.repo.Update(c.Context(), id, set)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("user not found")
	}
	if err != nil {
		return err
	}
	return jsonData(c, fiber.StatusOK, u)
}

func (h *UserHandler) Delete(c *fiber.Ctx) error {
	id, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return apperr.NotFound("user not found")
	}
	if err := h.repo.Deactivate(c.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("user not found")
		}
		return err
	}
	return jsonMessage(c, fiber.StatusOK, "user deactivated")
}
