package models

import (
	"time"

	"github.com/google/uuid"
)

// ItemSearchFilter holds search and filter criteria for item catalog queries
type ItemSearchFilter struct {
	Query    string  `json:"query,omitempty" query:"q"`          // Substring match on sku and name
	ItemType *string `json:"item_type,omitempty" query:"item_type"`
	Active   *bool   `json:"active,omitempty" query:"active"`
	Limit    int     `json:"limit,omitempty" query:"limit"`
	Offset   int     `json:"offset,omitempty" query:"offset"`
}

// Item is a master record in the catalog. Attributes always conform to the
// schema version referenced by SchemaID; the reference is fixed at creation.
type Item struct {
	ID         uuid.UUID      `json:"id" db:"id"`
	SKU        string         `json:"sku" db:"sku"`
	Name       string         `json:"name" db:"name"`
	ItemType   string         `json:"item_type" db:"item_type"`
	BaseUnit   string         `json:"base_unit" db:"base_unit"`
	SchemaID   uuid.UUID      `json:"schema_id" db:"schema_id"`
	Attributes map[string]any `json:"attributes" db:"attributes"`
	CategoryID *uuid.UUID     `json:"category_id" db:"category_id"`
	Active     bool           `json:"active" db:"active"`
	CreatedAt  time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at" db:"updated_at"`
}
