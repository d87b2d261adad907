package models

import (
	"time"

	"github.com/google/uuid"
)

// Policy keys understood by the policy engine. Values are structured JSON;
// absence of a key is always permissive.
const (
	PolicyAllowedEvents      = "allowed_events"      // {"events": ["RECEIPT", ...]}
	PolicyRequireReservation = "require_reservation" // {"enabled": true}
	PolicyMinOnHand          = "min_on_hand"         // {"floor": 10}
	PolicyEnforceMinOnHand   = "enforce_min_on_hand" // {"enabled": true}
)

// Policy is a department+item-type scoped rule, read-only to the core at
// transaction time.
type Policy struct {
	ID           uuid.UUID      `json:"id" db:"id"`
	DepartmentID uuid.UUID      `json:"department_id" db:"department_id"`
	ItemType     string         `json:"item_type" db:"item_type"`
	Key          string         `json:"key" db:"key"`
	Value        map[string]any `json:"value" db:"value"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at" db:"updated_at"`
}
