package models

import (
	"time"

	"github.com/google/uuid"
)

// Location is a leaf entity; the ledger and reservations reference it by id.
// DepartmentID scopes policy lookups for movements at this location.
type Location struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	DepartmentID uuid.UUID `json:"department_id" db:"department_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
