package services

import (
	"context"
	"fmt"
	"strings"

	"eventops/internal/common"
	"eventops/internal/models"
	"eventops/internal/repositories"

	"github.com/google/uuid"
)

// MovementCheck is everything the policy engine needs to know about a proposed
// stock movement.
type MovementCheck struct {
	DepartmentID        uuid.UUID
	ItemType            string
	EventType           string
	OnHandAfter         *float64 // resulting on-hand if the movement posts
	ReservationPresent  bool
}

// PolicyEngine decides whether a proposed movement is permitted under the
// department+item-type policy set. Each configured rule is enforced strictly;
// an absent rule is permissive.
type PolicyEngine interface {
	Evaluate(ctx context.Context, check MovementCheck) error
}

type policyEngine struct {
	policyRepo repositories.PolicyRepository
}

func NewPolicyEngine(policyRepo repositories.PolicyRepository) PolicyEngine {
	return &policyEngine{policyRepo: policyRepo}
}

func (s *policyEngine) Evaluate(ctx context.Context, check MovementCheck) error {
	policies, err := s.policyRepo.ListByScope(ctx, check.DepartmentID, check.ItemType)
	if err != nil {
		return err
	}
	if len(policies) == 0 {
		return nil
	}

	byKey := make(map[string]map[string]any, len(policies))
	for _, p := range policies {
		byKey[p.Key] = p.Value
	}

	if err := checkAllowedEvents(byKey, check.EventType); err != nil {
		return err
	}
	if err := checkRequireReservation(byKey, check); err != nil {
		return err
	}
	return checkMinOnHand(byKey, check)
}

func checkAllowedEvents(byKey map[string]map[string]any, eventType string) error {
	value, ok := byKey[models.PolicyAllowedEvents]
	if !ok {
		return nil
	}
	events, ok := value["events"].([]any)
	if !ok {
		return nil
	}
	allowed := make([]string, 0, len(events))
	for _, e := range events {
		if s, ok := e.(string); ok {
			if s == eventType {
				return nil
			}
			allowed = append(allowed, s)
		}
	}
	return &common.PolicyDeniedError{
		Reason: fmt.Sprintf("event type %s not in allowed_events [%s]", eventType, strings.Join(allowed, ", ")),
	}
}

func checkRequireReservation(byKey map[string]map[string]any, check MovementCheck) error {
	if check.EventType != models.EventMoveOut && check.EventType != models.EventTransferOut {
		return nil
	}
	value, ok := byKey[models.PolicyRequireReservation]
	if !ok || !boolValue(value, "enabled") {
		return nil
	}
	if check.ReservationPresent {
		return nil
	}
	return &common.PolicyDeniedError{
		Reason: fmt.Sprintf("%s requires an associated reservation", check.EventType),
	}
}

// checkMinOnHand enforces the floor only when enforce_min_on_hand is explicitly
// enabled for the scope.
func checkMinOnHand(byKey map[string]map[string]any, check MovementCheck) error {
	if check.OnHandAfter == nil {
		return nil
	}
	enforce, ok := byKey[models.PolicyEnforceMinOnHand]
	if !ok || !boolValue(enforce, "enabled") {
		return nil
	}
	floorValue, ok := byKey[models.PolicyMinOnHand]
	if !ok {
		return nil
	}
	floor, ok := numberValue(floorValue, "floor")
	if !ok {
		return nil
	}
	if *check.OnHandAfter < floor {
		return &common.PolicyDeniedError{
			Reason: fmt.Sprintf("resulting on-hand %.3f would fall below floor %.3f", *check.OnHandAfter, floor),
		}
	}
	return nil
}

func boolValue(value map[string]any, key string) bool {
	b, _ := value[key].(bool)
	return b
}

func numberValue(value map[string]any, key string) (float64, bool) {
	switch n := value[key].(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}
