package handlers

import (
	"net/http"
	"time"

	"eventops/internal/common"
	"eventops/internal/models"
	"eventops/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ItemHandlers handles item catalog HTTP requests
type ItemHandlers struct {
	catalog    services.ItemCatalog
	projection services.OnHandProjection
}

func NewItemHandlers(catalog services.ItemCatalog, projection services.OnHandProjection) *ItemHandlers {
	return &ItemHandlers{
		catalog:    catalog,
		projection: projection,
	}
}

// CreateItemRequest represents the item creation request payload
type CreateItemRequest struct {
	SKU        string         `json:"sku"`
	Name       string         `json:"name"`
	ItemType   string         `json:"item_type"`
	BaseUnit   string         `json:"base_unit"`
	SchemaID   uuid.UUID      `json:"schema_id"`
	Attributes map[string]any `json:"attributes"`
	CategoryID *uuid.UUID     `json:"category_id"`
}

func (h *ItemHandlers) CreateItem(c echo.Context) error {
	var req CreateItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	item, err := h.catalog.Create(c.Request().Context(), services.ItemCreateInput{
		SKU:        req.SKU,
		Name:       req.Name,
		ItemType:   req.ItemType,
		BaseUnit:   req.BaseUnit,
		SchemaID:   req.SchemaID,
		Attributes: req.Attributes,
		CategoryID: req.CategoryID,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, item)
}

func (h *ItemHandlers) ListItems(c echo.Context) error {
	var filter models.ItemSearchFilter
	if err := c.Bind(&filter); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	items, err := h.catalog.List(c.Request().Context(), &filter)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

func (h *ItemHandlers) GetItem(c echo.Context) error {
	itemID, err := common.ValidateUUID(c.Param("id"), "item id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	item, err := h.catalog.Get(c.Request().Context(), itemID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, item)
}

// PatchItemRequest represents the item update request payload
type PatchItemRequest struct {
	Name       *string         `json:"name"`
	BaseUnit   *string         `json:"base_unit"`
	Attributes *map[string]any `json:"attributes"`
	Active     *bool           `json:"active"`
}

func (h *ItemHandlers) PatchItem(c echo.Context) error {
	itemID, err := common.ValidateUUID(c.Param("id"), "item id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req PatchItemRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	item, err := h.catalog.Patch(c.Request().Context(), itemID, services.ItemPatchInput{
		Name:       req.Name,
		BaseUnit:   req.BaseUnit,
		Attributes: req.Attributes,
		Active:     req.Active,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, item)
}

// ItemSummary answers GET /inventory/items/:id/summary?from&to.
func (h *ItemHandlers) ItemSummary(c echo.Context) error {
	itemID, err := common.ValidateUUID(c.Param("id"), "item id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var from, to *time.Time
	if fromStr := c.QueryParam("from"); fromStr != "" {
		t, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "from must be RFC3339")
		}
		from = &t
	}
	if toStr := c.QueryParam("to"); toStr != "" {
		t, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "to must be RFC3339")
		}
		to = &t
	}
	if (from == nil) != (to == nil) {
		return echo.NewHTTPError(http.StatusBadRequest, "from and to must be provided together")
	}

	summary, err := h.projection.Query(c.Request().Context(), itemID, from, to)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, summary)
}
