package models

import (
	"time"

	"github.com/google/uuid"
)

// Reservation lifecycle states. HELD is the only active state; RELEASED and
// FULFILLED are terminal.
const (
	ReservationHeld      = "HELD"
	ReservationReleased  = "RELEASED"
	ReservationFulfilled = "FULFILLED"
)

// Reservation actions accepted on update.
const (
	ReservationActionRelease = "RELEASE"
	ReservationActionFulfill = "FULFILL"
)

// Reservation is a time-windowed claim on quantity at an item+location. Windows
// are half-open [StartTs, EndTs); HELD windows for the same pair never overlap.
type Reservation struct {
	ID         uuid.UUID `json:"id" db:"id"`
	ItemID     uuid.UUID `json:"item_id" db:"item_id"`
	LocationID uuid.UUID `json:"location_id" db:"location_id"`
	EventID    uuid.UUID `json:"event_id" db:"event_id"`
	QtyBase    float64   `json:"qty_base" db:"qty_base"`
	StartTs    time.Time `json:"start_ts" db:"start_ts"`
	EndTs      time.Time `json:"end_ts" db:"end_ts"`
	Status     string    `json:"status" db:"status"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}
