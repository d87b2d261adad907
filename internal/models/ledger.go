package models

import (
	"time"

	"github.com/google/uuid"
)

// Stock movement event types recorded in the ledger.
const (
	EventReceipt            = "RECEIPT"
	EventTransferOut        = "TRANSFER_OUT"
	EventTransferIn         = "TRANSFER_IN"
	EventConsumption        = "CONSUMPTION"
	EventWaste              = "WASTE"
	EventCountAdjust        = "COUNT_ADJUST"
	EventReservationHold    = "RESERVATION_HOLD"
	EventReservationRelease = "RESERVATION_RELEASE"
	EventMoveOut            = "MOVE_OUT"
	EventMoveIn             = "MOVE_IN"
	EventMaintenanceStart   = "MAINTENANCE_START"
	EventMaintenanceEnd     = "MAINTENANCE_END"
)

// ValidEventType reports whether s is one of the recorded movement types.
func ValidEventType(s string) bool {
	switch s {
	case EventReceipt, EventTransferOut, EventTransferIn, EventConsumption,
		EventWaste, EventCountAdjust, EventReservationHold, EventReservationRelease,
		EventMoveOut, EventMoveIn, EventMaintenanceStart, EventMaintenanceEnd:
		return true
	}
	return false
}

// LedgerEntry is an immutable record of a single stock movement. Entries are
// never updated or deleted; on-hand for an (item, location) pair is the sum of
// QtyBase over its entries. The two halves of a transfer share TransferGroupID.
type LedgerEntry struct {
	TxnID           uuid.UUID      `json:"txn_id" db:"txn_id"`
	Timestamp       time.Time      `json:"timestamp" db:"ts"`
	ItemID          uuid.UUID      `json:"item_id" db:"item_id"`
	LocationID      uuid.UUID      `json:"location_id" db:"location_id"`
	EventType       string         `json:"event_type" db:"event_type"`
	QtyBase         float64        `json:"qty_base" db:"qty_base"`
	LotID           *string        `json:"lot_id" db:"lot_id"`
	SerialNo        *string        `json:"serial_no" db:"serial_no"`
	CostPerBase     *float64       `json:"cost_per_base" db:"cost_per_base"`
	SourceDoc       map[string]any `json:"source_doc" db:"source_doc"`
	PostedBy        string         `json:"posted_by" db:"posted_by"`
	TransferGroupID *uuid.UUID     `json:"transfer_group_id" db:"transfer_group_id"`
}

// LedgerFilter narrows ledger listings.
type LedgerFilter struct {
	ItemID     *uuid.UUID `query:"item_id"`
	LocationID *uuid.UUID `query:"location_id"`
	EventType  *string    `query:"event_type"`
	From       *time.Time `query:"from"`
	To         *time.Time `query:"to"`
	Limit      int        `query:"limit"`
	Offset     int        `query:"offset"`
}

// EventTotal is an aggregate of movement quantity per event type, used by
// windowed item summaries.
type EventTotal struct {
	EventType string  `json:"event_type" db:"event_type"`
	QtyBase   float64 `json:"qty_base" db:"qty_base"`
}
