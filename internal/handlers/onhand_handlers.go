package handlers

import (
	"net/http"

	"eventops/internal/common"
	"eventops/internal/repositories"
	"eventops/internal/services"

	"github.com/labstack/echo/v4"
)

// OnHandHandlers handles on-hand projection HTTP requests
type OnHandHandlers struct {
	projection services.OnHandProjection
	onHandRepo repositories.OnHandRepository
}

func NewOnHandHandlers(projection services.OnHandProjection, onHandRepo repositories.OnHandRepository) *OnHandHandlers {
	return &OnHandHandlers{
		projection: projection,
		onHandRepo: onHandRepo,
	}
}

// GetOnHand answers GET /inventory/onhand?item_id&location_id. With both
// parameters it returns the single cached pair; with only item_id it returns
// the item's rows across locations; with neither it returns the whole
// projection.
func (h *OnHandHandlers) GetOnHand(c echo.Context) error {
	itemIDStr := c.QueryParam("item_id")
	locationIDStr := c.QueryParam("location_id")

	if locationIDStr != "" && itemIDStr == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "location_id requires item_id")
	}

	if itemIDStr == "" {
		rows, err := h.onHandRepo.ListAll(c.Request().Context())
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, map[string]any{"onhand": rows})
	}

	itemID, err := common.ValidateUUID(itemIDStr, "item_id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if locationIDStr == "" {
		rows, err := h.onHandRepo.ListByItem(c.Request().Context(), itemID)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, map[string]any{"onhand": rows})
	}

	locationID, err := common.ValidateUUID(locationIDStr, "location_id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	row, err := h.projection.Get(c.Request().Context(), itemID, locationID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, row)
}

// RefreshOnHand rebuilds the projection from ledger sums on demand, the same
// reconciliation the background job runs on its schedule.
func (h *OnHandHandlers) RefreshOnHand(c echo.Context) error {
	if err := h.projection.Refresh(c.Request().Context()); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "refreshed"})
}
