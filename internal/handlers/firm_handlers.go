package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/fathimasithara01/caseflow/internal/apperr"
)

type prefixDeleter interface {
	DeleteTenantPrefix(ctx context.Context, tenantID string) (int, []error)
}

// FirmHandler holds admin-only firm operations.
type FirmHandler struct {
	store prefixDeleter
	log   *zap.SugaredLogger
}

func NewFirmHandler(store prefixDeleter, log *zap.SugaredLogger) *FirmHandler {
	return &FirmHandler{store: store, log: log}
}

// PurgeStorage removes every stored object for a firm. Used at offboarding.
// Best effort: partial failures are reported, not raised.
func (h *FirmHandler) PurgeStorage(c *fiber.Ctx) error {
	firmID := c.Params("firmId")
	if firmID == "" {
		return apperr.Validation("firm id is required")
	}
	deleted, errs := h.store.DeleteTenantPrefix(c.Context(), firmID)
	reasons := make([]string, 0, len(errs))
	for _, e := range errs {
		reasons = append(reasons, e.Error())
	}
	return c.JSON(fiber.Map{
		"status":       "success",
		"deletedCount": deleted,
		"errors":       reasons,
	})
}
