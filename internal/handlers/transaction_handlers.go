package handlers

import (
	"net/http"

	"eventops/internal/common"
	"eventops/internal/models"
	"eventops/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// TransactionHandlers handles ledger HTTP requests
type TransactionHandlers struct {
	ledger services.TransactionLedger
}

func NewTransactionHandlers(ledger services.TransactionLedger) *TransactionHandlers {
	return &TransactionHandlers{ledger: ledger}
}

// TransferRequest names the receiving location of a transfer.
type TransferRequest struct {
	DestinationLocationID uuid.UUID `json:"destination_location_id"`
}

// PostTransactionRequest represents the movement posting payload. posted_by is
// taken from the authenticated principal when present; the body field is a
// fallback for service-to-service callers.
type PostTransactionRequest struct {
	ItemID        uuid.UUID        `json:"item_id"`
	LocationID    uuid.UUID        `json:"location_id"`
	EventType     string           `json:"event_type"`
	Qty           float64          `json:"qty"`
	Unit          string           `json:"unit"`
	LotID         *string          `json:"lot_id"`
	SerialNo      *string          `json:"serial_no"`
	CostPerBase   *float64         `json:"cost_per_base"`
	SourceDoc     map[string]any   `json:"source_doc"`
	PostedBy      string           `json:"posted_by"`
	ReservationID *uuid.UUID       `json:"reservation_id"`
	Transfer      *TransferRequest `json:"transfer"`
}

func (h *TransactionHandlers) PostTransaction(c echo.Context) error {
	var req PostTransactionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	postedBy, ok := common.GetPostedByFromContext(c.Request().Context())
	if !ok || postedBy == "" {
		postedBy = req.PostedBy
	}

	input := services.PostInput{
		ItemID:        req.ItemID,
		LocationID:    req.LocationID,
		EventType:     req.EventType,
		Qty:           req.Qty,
		Unit:          req.Unit,
		LotID:         req.LotID,
		SerialNo:      req.SerialNo,
		CostPerBase:   req.CostPerBase,
		SourceDoc:     req.SourceDoc,
		PostedBy:      postedBy,
		ReservationID: req.ReservationID,
	}
	if req.Transfer != nil {
		input.Transfer = &services.TransferSpec{DestinationLocationID: req.Transfer.DestinationLocationID}
	}

	entries, err := h.ledger.Post(c.Request().Context(), input)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, map[string]any{"entries": entries})
}

func (h *TransactionHandlers) ListTransactions(c echo.Context) error {
	var filter models.LedgerFilter
	if err := c.Bind(&filter); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}

	filter.Limit, filter.Offset = common.ValidatePaginationParams(filter.Limit, filter.Offset)

	if filter.From != nil && filter.To != nil {
		if err := common.ValidateDateRange(*filter.From, *filter.To); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
	}

	entries, err := h.ledger.List(c.Request().Context(), &filter)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"entries": entries})
}

// GetSourceDoc returns a transaction's source document: the inline payload, or
// a short-lived download URL when the payload lives in object storage.
func (h *TransactionHandlers) GetSourceDoc(c echo.Context) error {
	txnID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid transaction ID")
	}

	doc, url, err := h.ledger.SourceDoc(c.Request().Context(), txnID)
	if err != nil {
		return httpError(err)
	}
	if url != "" {
		return c.JSON(http.StatusOK, map[string]any{"url": url})
	}
	return c.JSON(http.StatusOK, map[string]any{"source_doc": doc})
}
