package models

import (
	"time"

	"github.com/google/uuid"
)

// UnitConversion is a directed edge from_unit -> to_unit with a multiplicative
// factor. The reciprocal direction is derived by division, not stored.
type UnitConversion struct {
	ID        uuid.UUID `json:"id" db:"id"`
	FromUnit  string    `json:"from_unit" db:"from_unit"`
	ToUnit    string    `json:"to_unit" db:"to_unit"`
	Factor    float64   `json:"factor" db:"factor"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
