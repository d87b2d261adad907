package models

import (
	"time"

	"github.com/google/uuid"
)

// AttributeSchema is one immutable version of the validation rules for an item
// type's free-form attributes. Versions are monotonic per item type; items keep
// a durable reference to the version they were validated against.
type AttributeSchema struct {
	ID           uuid.UUID      `json:"id" db:"id"`
	ItemType     string         `json:"item_type" db:"item_type"`
	DepartmentID *uuid.UUID     `json:"department_id" db:"department_id"`
	Version      int            `json:"version" db:"version"`
	Definition   map[string]any `json:"definition" db:"definition"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
}
