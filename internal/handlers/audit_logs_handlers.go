package handlers

import (
	"net/http"

	"eventops/internal/common"
	"eventops/internal/models"
	"eventops/internal/repositories"

	"github.com/labstack/echo/v4"
)

// AuditLogsHandlers handles audit trail HTTP requests
type AuditLogsHandlers struct {
	auditRepo repositories.AuditLogsRepository
}

func NewAuditLogsHandlers(auditRepo repositories.AuditLogsRepository) *AuditLogsHandlers {
	return &AuditLogsHandlers{auditRepo: auditRepo}
}

func (h *AuditLogsHandlers) ListAuditLogs(c echo.Context) error {
	var filter models.AuditLogFilter
	if err := c.Bind(&filter); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	if filter.From != nil && filter.To != nil {
		if err := common.ValidateDateRange(*filter.From, *filter.To); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}

	entries, err := h.auditRepo.List(c.Request().Context(), &filter)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"audit_logs": entries})
}
