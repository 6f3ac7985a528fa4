package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fathimasithara01/caseflow/internal/apperr"
	"github.com/fathimasithara01/caseflow/internal/services"
)

type AuthHandler struct {
	svc *services.AuthService
}

func NewAuthHandler(svc *services.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var in services.RegisterInput
	if err := c.BodyParser(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	u, err := h.svc.Register(c.Context(), in)
	if err != nil {
		return err
	}
	return jsonData(c, fiber.StatusCreated, u)
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	token, u, err := h.svc.Login(c.Context(), in.Email, in.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"status": "success",
		"token":  token,
		"data":   u,
	})
}
