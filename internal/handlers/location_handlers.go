package handlers

import (
	"net/http"

	"eventops/internal/common"
	"eventops/internal/models"
	"eventops/internal/repositories"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// LocationHandlers handles location HTTP requests
type LocationHandlers struct {
	locationRepo repositories.LocationRepository
}

func NewLocationHandlers(locationRepo repositories.LocationRepository) *LocationHandlers {
	return &LocationHandlers{locationRepo: locationRepo}
}

// CreateLocationRequest represents the location creation payload
type CreateLocationRequest struct {
	Name         string    `json:"name"`
	DepartmentID uuid.UUID `json:"department_id"`
}

func (h *LocationHandlers) CreateLocation(c echo.Context) error {
	var req CreateLocationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.Name, "name"); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.DepartmentID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "department_id is required")
	}

	location := &models.Location{
		ID:           uuid.New(),
		Name:         req.Name,
		DepartmentID: req.DepartmentID,
	}
	if err := h.locationRepo.Create(c.Request().Context(), location); err != nil {
		return httpError(err)
	}

	created, err := h.locationRepo.GetByID(c.Request().Context(), location.ID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *LocationHandlers) ListLocations(c echo.Context) error {
	var departmentID *uuid.UUID
	if s := c.QueryParam("department_id"); s != "" {
		id, err := common.ValidateUUID(s, "department_id")
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		departmentID = &id
	}

	var page struct {
		Limit  int `query:"limit"`
		Offset int `query:"offset"`
	}
	if err := c.Bind(&page); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	locations, err := h.locationRepo.List(c.Request().Context(), departmentID, page.Limit, page.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"locations": locations})
}
