package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fathimasithara01/caseflow/internal/services"
)

type DashboardHandler struct {
	svc *services.DashboardService
}

func NewDashboardHandler(svc *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Get runs behind the cache middleware: a hit never reaches this handler, a
// miss computes the report and repopulates the key.
func (h *DashboardHandler) Get(c *fiber.Ctx) error {
	firmID, _ := c.Locals("firm_id").(string)
	report, err := h.svc.Report(c.Context(), firmID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"status":    "success",
		"results":   1,
		"data":      report,
		"fromCache": false,
	})
}
