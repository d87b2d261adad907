package handlers

import (
	"net/http"
	"time"

	"eventops/internal/common"
	"eventops/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ReservationHandlers handles reservation HTTP requests
type ReservationHandlers struct {
	manager services.ReservationManager
}

func NewReservationHandlers(manager services.ReservationManager) *ReservationHandlers {
	return &ReservationHandlers{manager: manager}
}

// CreateReservationRequest represents the reservation creation payload. The
// window is half-open: [start_ts, end_ts).
type CreateReservationRequest struct {
	ItemID     uuid.UUID `json:"item_id"`
	LocationID uuid.UUID `json:"location_id"`
	EventID    uuid.UUID `json:"event_id"`
	QtyBase    float64   `json:"qty_base"`
	StartTs    time.Time `json:"start_ts"`
	EndTs      time.Time `json:"end_ts"`
}

func (h *ReservationHandlers) CreateReservation(c echo.Context) error {
	var req CreateReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	reservation, err := h.manager.Create(c.Request().Context(), services.ReservationCreateInput{
		ItemID:     req.ItemID,
		LocationID: req.LocationID,
		EventID:    req.EventID,
		QtyBase:    req.QtyBase,
		StartTs:    req.StartTs,
		EndTs:      req.EndTs,
	})
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, reservation)
}

func (h *ReservationHandlers) ListReservations(c echo.Context) error {
	var itemID, eventID *uuid.UUID
	if s := c.QueryParam("item_id"); s != "" {
		id, err := common.ValidateUUID(s, "item_id")
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		itemID = &id
	}
	if s := c.QueryParam("event_id"); s != "" {
		id, err := common.ValidateUUID(s, "event_id")
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		eventID = &id
	}

	var page struct {
		Limit  int `query:"limit"`
		Offset int `query:"offset"`
	}
	if err := c.Bind(&page); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	limit, offset := common.ValidatePaginationParams(page.Limit, page.Offset)

	reservations, err := h.manager.List(c.Request().Context(), itemID, eventID, limit, offset)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"reservations": reservations})
}

// UpdateReservationRequest carries the requested transition.
type UpdateReservationRequest struct {
	Action string `json:"action"`
}

func (h *ReservationHandlers) UpdateReservation(c echo.Context) error {
	reservationID, err := common.ValidateUUID(c.Param("id"), "reservation id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var req UpdateReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	reservation, err := h.manager.Update(c.Request().Context(), reservationID, req.Action)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, reservation)
}
