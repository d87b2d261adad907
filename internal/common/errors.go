package common

import (
	"errors"
	"fmt"
)

// Error taxonomy for core operations. Every service returns one of these (or a
// wrapper around one) so HTTP code can map outcomes to status codes without
// inspecting storage error text.
var (
	ErrValidation       = errors.New("validation failed")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrNoConversionPath = errors.New("no conversion path")
)

// AttributesInvalidError reports the first schema violation found in an item's
// attribute payload.
type AttributesInvalidError struct {
	Message string
	Path    string
}

func (e *AttributesInvalidError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("attributes invalid at %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("attributes invalid: %s", e.Message)
}

func (e *AttributesInvalidError) Is(target error) bool {
	return target == ErrValidation
}

// PolicyDeniedError reports a stock movement rejected by a configured policy.
type PolicyDeniedError struct {
	Reason string
}

func (e *PolicyDeniedError) Error() string {
	return fmt.Sprintf("denied by policy: %s", e.Reason)
}

func (e *PolicyDeniedError) Is(target error) bool {
	return target == ErrValidation
}

// NotFoundf wraps ErrNotFound with the missing entity's name.
func NotFoundf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
}

// Validationf wraps ErrValidation with a caller-facing message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrValidation)...)
}

// Conflictf wraps ErrConflict with a caller-facing message.
func Conflictf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrConflict)...)
}
