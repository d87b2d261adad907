package handlers

import (
	"math"
	"net/http"

	"eventops/internal/common"
	"eventops/internal/models"
	"eventops/internal/repositories"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ConversionHandlers handles unit conversion HTTP requests
type ConversionHandlers struct {
	conversionRepo repositories.UnitConversionRepository
}

func NewConversionHandlers(conversionRepo repositories.UnitConversionRepository) *ConversionHandlers {
	return &ConversionHandlers{conversionRepo: conversionRepo}
}

// CreateConversionRequest represents the conversion edge payload
type CreateConversionRequest struct {
	FromUnit string  `json:"from_unit"`
	ToUnit   string  `json:"to_unit"`
	Factor   float64 `json:"factor"`
}

func (h *ConversionHandlers) CreateConversion(c echo.Context) error {
	var req CreateConversionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.FromUnit, "from_unit"); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := common.ValidateRequiredString(req.ToUnit, "to_unit"); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if req.FromUnit == req.ToUnit {
		return echo.NewHTTPError(http.StatusBadRequest, "from_unit and to_unit must differ")
	}
	if req.Factor <= 0 || math.IsNaN(req.Factor) || math.IsInf(req.Factor, 0) {
		return echo.NewHTTPError(http.StatusBadRequest, "factor must be a positive finite number")
	}

	conversion := &models.UnitConversion{
		ID:       uuid.New(),
		FromUnit: req.FromUnit,
		ToUnit:   req.ToUnit,
		Factor:   req.Factor,
	}
	if err := h.conversionRepo.Create(c.Request().Context(), conversion); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, conversion)
}

func (h *ConversionHandlers) ListConversions(c echo.Context) error {
	var page struct {
		Limit  int `query:"limit"`
		Offset int `query:"offset"`
	}
	if err := c.Bind(&page); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	conversions, err := h.conversionRepo.List(c.Request().Context(), page.Limit, page.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"conversions": conversions})
}
