package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/fathimasithara01/caseflow/internal/apperr"
)

// JWTAuth verifies the bearer token and stores user_id, firm_id and role in
// the request locals for downstream handlers.
func JWTAuth(secret string) fiber.Handler {
	key := []byte(secret)
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return apperr.Unauthorized("missing authorization header")
		}
		token := strings.TrimPrefix(header, "Bearer ")

		t, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return key, nil
		})
		if err != nil || !t.Valid {
			return apperr.Unauthorized("invalid token")
		}
		claims, ok := t.Claims.(jwt.MapClaims)
		if !ok {
			return apperr.Unauthorized("invalid claims")
		}
		sub, _ := claims["sub"].(string)
		if sub == "" {
			return apperr.Unauthorized("user id not found in token")
		}
		c.Locals("user_id", sub)
		if v, ok := claims["firm_id"].(string); ok {
			c.Locals("firm_id", v)
		}
		if v, ok := claims["role"].(string); ok {
			c.Locals("role", v)
		}
		return c.Next()
	}
}

// RequireRole gates a route group to the given roles. Runs after JWTAuth.
func RequireRole(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("role").(string)
		for _, r := range roles {
			if role == r {
				return c.Next()
			}
		}
		return apperr.Unauthorized("insufficient permissions")
	}
}
