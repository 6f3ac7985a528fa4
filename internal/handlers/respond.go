package handlers

import "github.com/gofiber/fiber/v2"

func jsonData(c *fiber.Ctx, status int, payload interface{}) error {
	return c.Status(status).JSON(fiber.Map{"status": "success", "data": payload})
}

func jsonList(c *fiber.Ctx, results int, payload interface{}) error {
	return c.JSON(fiber.Map{
		"status":    "success",
		"results":   results,
		"data":      payload,
		"fromCache": false,
	})
}

func jsonMessage(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"status": "success", "message": msg})
}
