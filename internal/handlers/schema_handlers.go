package handlers

import (
	"net/http"

	"eventops/internal/common"
	"eventops/internal/models"
	"eventops/internal/repositories"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// SchemaHandlers handles attribute schema HTTP requests
type SchemaHandlers struct {
	schemaRepo repositories.AttributeSchemaRepository
}

func NewSchemaHandlers(schemaRepo repositories.AttributeSchemaRepository) *SchemaHandlers {
	return &SchemaHandlers{schemaRepo: schemaRepo}
}

// CreateSchemaRequest represents the schema registration payload. The version
// is assigned server-side, monotonically per item type.
type CreateSchemaRequest struct {
	ItemType     string         `json:"item_type"`
	DepartmentID *uuid.UUID     `json:"department_id"`
	Definition   map[string]any `json:"definition"`
}

func (h *SchemaHandlers) CreateSchema(c echo.Context) error {
	var req CreateSchemaRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}
	if err := common.ValidateRequiredString(req.ItemType, "item_type"); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if len(req.Definition) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "definition is required")
	}

	schema := &models.AttributeSchema{
		ID:           uuid.New(),
		ItemType:     req.ItemType,
		DepartmentID: req.DepartmentID,
		Definition:   req.Definition,
	}
	if err := h.schemaRepo.Create(c.Request().Context(), schema); err != nil {
		return httpError(err)
	}

	created, err := h.schemaRepo.GetByID(c.Request().Context(), schema.ID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *SchemaHandlers) GetSchema(c echo.Context) error {
	schemaID, err := common.ValidateUUID(c.Param("id"), "schema id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	schema, err := h.schemaRepo.GetByID(c.Request().Context(), schemaID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, schema)
}

func (h *SchemaHandlers) ListSchemas(c echo.Context) error {
	var itemType *string
	if s := c.QueryParam("item_type"); s != "" {
		itemType = &s
	}

	var page struct {
		Limit  int `query:"limit"`
		Offset int `query:"offset"`
	}
	if err := c.Bind(&page); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	schemas, err := h.schemaRepo.List(c.Request().Context(), itemType, page.Limit, page.Offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"schemas": schemas})
}
