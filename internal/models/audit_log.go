package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditLog records one mutating inventory request: who called what, and how it
// ended. Payload carries the request body as submitted.
type AuditLog struct {
	ID        uuid.UUID      `json:"id" db:"id"`
	Method    string         `json:"method" db:"method"`
	Path      string         `json:"path" db:"path"`
	Status    int            `json:"status" db:"status"`
	PostedBy  string         `json:"posted_by" db:"posted_by"`
	Payload   map[string]any `json:"payload" db:"payload"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
}

// AuditLogFilter narrows audit log listings.
type AuditLogFilter struct {
	Path     *string    `query:"path"`
	PostedBy *string    `query:"posted_by"`
	From     *time.Time `query:"from"`
	To       *time.Time `query:"to"`
	Limit    int        `query:"limit"`
	Offset   int        `query:"offset"`
}
