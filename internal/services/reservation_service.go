package services

import (
	"context"
	"math"
	"time"

	"eventops/internal/common"
	"eventops/internal/models"
	"eventops/internal/repositories"

	"github.com/google/uuid"
)

// ReservationCreateInput describes a requested hold of quantity at an
// item+location for a half-open window [StartTs, EndTs).
type ReservationCreateInput struct {
	ItemID     uuid.UUID
	LocationID uuid.UUID
	EventID    uuid.UUID
	QtyBase    float64
	StartTs    time.Time
	EndTs      time.Time
}

// ReservationManager holds, releases, and fulfills time-windowed reservations,
// enforcing non-overlap of HELD windows per (item, location).
type ReservationManager interface {
	Create(ctx context.Context, input ReservationCreateInput) (*models.Reservation, error)
	List(ctx context.Context, itemID, eventID *uuid.UUID, limit, offset int) ([]*models.Reservation, error)
	Update(ctx context.Context, reservationID uuid.UUID, action string) (*models.Reservation, error)
}

type reservationManager struct {
	db              repositories.DB
	reservationRepo repositories.ReservationRepository
	itemRepo        repositories.ItemRepository
	locationRepo    repositories.LocationRepository
}

func NewReservationManager(db repositories.DB, reservationRepo repositories.ReservationRepository, itemRepo repositories.ItemRepository, locationRepo repositories.LocationRepository) ReservationManager {
	return &reservationManager{
		db:              db,
		reservationRepo: reservationRepo,
		itemRepo:        itemRepo,
		locationRepo:    locationRepo,
	}
}

func (s *reservationManager) Create(ctx context.Context, input ReservationCreateInput) (*models.Reservation, error) {
	if _, err := s.itemRepo.GetByID(ctx, input.ItemID); err != nil {
		return nil, err
	}
	if _, err := s.locationRepo.GetByID(ctx, input.LocationID); err != nil {
		return nil, err
	}
	if !input.StartTs.Before(input.EndTs) {
		return nil, common.Validationf("start_ts must be before end_ts")
	}
	if math.IsNaN(input.QtyBase) || math.IsInf(input.QtyBase, 0) || input.QtyBase <= 0 {
		return nil, common.Validationf("qty_base must be a positive finite quantity")
	}

	reservation := &models.Reservation{
		ID:         uuid.New(),
		ItemID:     input.ItemID,
		LocationID: input.LocationID,
		EventID:    input.EventID,
		QtyBase:    input.QtyBase,
		StartTs:    input.StartTs.UTC(),
		EndTs:      input.EndTs.UTC(),
		Status:     models.ReservationHeld,
	}

	// The advisory lock serializes check-then-insert per pair so two concurrent
	// requests cannot both pass the overlap check. The exclusion constraint in
	// the schema backstops any path that skips this lock.
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := s.reservationRepo.LockPairTx(ctx, tx, input.ItemID, input.LocationID); err != nil {
		return nil, err
	}

	overlaps, err := s.reservationRepo.HasOverlapTx(ctx, tx, input.ItemID, input.LocationID, reservation.StartTs, reservation.EndTs)
	if err != nil {
		return nil, err
	}
	if overlaps {
		return nil, common.Conflictf("window [%s, %s) overlaps an existing hold for item %s at location %s",
			reservation.StartTs.Format(time.RFC3339), reservation.EndTs.Format(time.RFC3339),
			input.ItemID, input.LocationID)
	}

	if err := s.reservationRepo.InsertTx(ctx, tx, reservation); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return s.reservationRepo.GetByID(ctx, reservation.ID)
}

func (s *reservationManager) List(ctx context.Context, itemID, eventID *uuid.UUID, limit, offset int) ([]*models.Reservation, error) {
	return s.reservationRepo.List(ctx, itemID, eventID, limit, offset)
}

// Update applies RELEASE or FULFILL. Transitions are one-way: a reservation
// already in a terminal state is not transitioned again.
func (s *reservationManager) Update(ctx context.Context, reservationID uuid.UUID, action string) (*models.Reservation, error) {
	var status string
	switch action {
	case models.ReservationActionRelease:
		status = models.ReservationReleased
	case models.ReservationActionFulfill:
		status = models.ReservationFulfilled
	default:
		return nil, common.Validationf("action must be %s or %s", models.ReservationActionRelease, models.ReservationActionFulfill)
	}

	changed, err := s.reservationRepo.TransitionFromHeld(ctx, reservationID, status)
	if err != nil {
		return nil, err
	}
	if !changed {
		// Distinguish "never existed" from "already terminal".
		existing, err := s.reservationRepo.GetByID(ctx, reservationID)
		if err != nil {
			return nil, err
		}
		return nil, common.Conflictf("reservation %s is already %s", reservationID, existing.Status)
	}

	return s.reservationRepo.GetByID(ctx, reservationID)
}
