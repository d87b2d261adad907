package common

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type contextKey string

const (
	// PostedByKey carries the authenticated subject posting a movement.
	PostedByKey contextKey = "posted_by"
)

// GetPostedByFromContext extracts the authenticated subject from the request
// context.
func GetPostedByFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(PostedByKey).(string)
	return v, ok
}

// WithPostedBy attaches the authenticated subject to the context.
func WithPostedBy(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, PostedByKey, subject)
}

// ValidateUUID parses a path or query id, reporting the field name on failure.
func ValidateUUID(idStr string, fieldName string) (uuid.UUID, error) {
	idStr = strings.TrimSpace(idStr)
	if idStr == "" {
		return uuid.Nil, fmt.Errorf("%s is required", fieldName)
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s is not a valid UUID", fieldName)
	}
	return id, nil
}

// ValidateRequiredString validates required string fields.
func ValidateRequiredString(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	return nil
}

// ValidatePaginationParams clamps pagination parameters to sane bounds.
func ValidatePaginationParams(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 1000 {
		limit = 1000
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// ValidateDateRange rejects inverted or unreasonably large windows.
func ValidateDateRange(from, to time.Time) error {
	if to.Before(from) {
		return fmt.Errorf("to cannot be before from")
	}
	if to.Sub(from) > time.Hour*24*365*10 {
		return fmt.Errorf("date range cannot exceed 10 years")
	}
	return nil
}
