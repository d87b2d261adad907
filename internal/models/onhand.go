package models

import (
	"time"

	"github.com/google/uuid"
)

// OnHand is one row of the derived projection: the net base-unit quantity of an
// item at a location, recomputed from the ledger.
type OnHand struct {
	ItemID      uuid.UUID `json:"item_id" db:"item_id"`
	LocationID  uuid.UUID `json:"location_id" db:"location_id"`
	QtyBase     float64   `json:"qty_base" db:"qty_base"`
	RefreshedAt time.Time `json:"refreshed_at" db:"refreshed_at"`
}

// ItemSummary answers "what is on hand now and what moved in this window" for
// a single item across its locations.
type ItemSummary struct {
	ItemID    uuid.UUID    `json:"item_id"`
	AsOf      time.Time    `json:"as_of"`
	Total     float64      `json:"total_qty_base"`
	Locations []OnHand     `json:"locations"`
	Window    *WindowTotal `json:"window,omitempty"`
}

// WindowTotal aggregates ledger movement between From and To by event type.
type WindowTotal struct {
	From   time.Time    `json:"from"`
	To     time.Time    `json:"to"`
	Moved  []EventTotal `json:"moved"`
	NetQty float64      `json:"net_qty_base"`
}
