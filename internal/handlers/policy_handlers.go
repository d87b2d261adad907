package handlers

import (
	"net/http"

	"eventops/internal/common"
	"eventops/internal/models"
	"eventops/internal/repositories"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// PolicyHandlers handles policy HTTP requests
type PolicyHandlers struct {
	policyRepo repositories.PolicyRepository
}

func NewPolicyHandlers(policyRepo repositories.PolicyRepository) *PolicyHandlers {
	return &PolicyHandlers{policyRepo: policyRepo}
}

// UpsertPolicyRequest represents the policy upsert payload. A repeated
// (department_id, item_type, key) overwrites the stored value.
type UpsertPolicyRequest struct {
	DepartmentID uuid.UUID      `json:"department_id"`
	ItemType     string         `json:"item_type"`
	Key          string         `json:"key"`
	Value        map[string]any `json:"value"`
}

func validPolicyKey(key string) bool {
	switch key {
	case models.PolicyAllowedEvents, models.PolicyRequireReservation,
		models.PolicyMinOnHand, models.PolicyEnforceMinOnHand:
		return true
	}
	return false
}

func (h *PolicyHandlers) UpsertPolicy(c echo.Context) error {
	var req UpsertPolicyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if req.DepartmentID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "department_id is required")
	}
	if err := common.ValidateRequiredString(req.ItemType, "item_type"); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if !validPolicyKey(req.Key) {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown policy key")
	}

	policy := &models.Policy{
		ID:           uuid.New(),
		DepartmentID: req.DepartmentID,
		ItemType:     req.ItemType,
		Key:          req.Key,
		Value:        req.Value,
	}
	if err := h.policyRepo.Upsert(c.Request().Context(), policy); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, policy)
}

func (h *PolicyHandlers) ListPolicies(c echo.Context) error {
	if s := c.QueryParam("department_id"); s != "" {
		departmentID, err := common.ValidateUUID(s, "department_id")
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		itemType := c.QueryParam("item_type")
		if itemType == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "item_type is required with department_id")
		}
		policies, err := h.policyRepo.ListByScope(c.Request().Context(), departmentID, itemType)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, map[string]any{"policies": policies})
	}

	var page struct {
		Limit  int `query:"limit"`
		Offset int `query:"offset"`
	}
	if err := c.Bind(&page); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	policies, err := h.policyRepo.List(c.Request().Context(), page.Limit, page.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"policies": policies})
}
