package repositories

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"eventops/internal/common"
	"eventops/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type ReservationRepository interface {
	// LockPairTx takes a transaction-scoped advisory lock serializing all
	// reservation writes for one (item, location) pair.
	LockPairTx(ctx context.Context, tx pgx.Tx, itemID, locationID uuid.UUID) error
	// HasOverlapTx reports whether any HELD reservation for the pair overlaps
	// the half-open window [start, end).
	HasOverlapTx(ctx context.Context, tx pgx.Tx, itemID, locationID uuid.UUID, start, end time.Time) (bool, error)
	InsertTx(ctx context.Context, tx pgx.Tx, reservation *models.Reservation) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error)
	List(ctx context.Context, itemID, eventID *uuid.UUID, limit, offset int) ([]*models.Reservation, error)
	// TransitionFromHeld moves a HELD reservation to a terminal status and
	// reports whether a row changed; terminal rows are left untouched.
	TransitionFromHeld(ctx context.Context, id uuid.UUID, status string) (bool, error)
}

type reservationRepo struct {
	db DB
}

func NewReservationRepo(db DB) ReservationRepository {
	return &reservationRepo{db: db}
}

// pairLockKey hashes the pair into the bigint keyspace pg_advisory_xact_lock
// expects. Collisions only cost extra serialization, never correctness.
func pairLockKey(itemID, locationID uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write(itemID[:])
	h.Write(locationID[:])
	return int64(h.Sum64())
}

func (r *reservationRepo) LockPairTx(ctx context.Context, tx pgx.Tx, itemID, locationID uuid.UUID) error {
	_, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, pairLockKey(itemID, locationID))
	if err != nil {
		return fmt.Errorf("acquire reservation lock: %w", err)
	}
	return nil
}

func (r *reservationRepo) HasOverlapTx(ctx context.Context, tx pgx.Tx, itemID, locationID uuid.UUID, start, end time.Time) (bool, error) {
	var exists bool
	query := `
		SELECT EXISTS (
			SELECT 1 FROM reservations
			WHERE item_id = $1 AND location_id = $2 AND status = 'HELD'
			AND NOT (end_ts <= $3 OR start_ts >= $4)
		)
	`
	err := tx.QueryRow(ctx, query, itemID, locationID, start, end).Scan(&exists)
	return exists, err
}

func (r *reservationRepo) InsertTx(ctx context.Context, tx pgx.Tx, reservation *models.Reservation) error {
	query := `
		INSERT INTO reservations (id, item_id, location_id, event_id, qty_base, start_ts, end_ts, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := tx.Exec(ctx, query,
		reservation.ID, reservation.ItemID, reservation.LocationID, reservation.EventID,
		reservation.QtyBase, reservation.StartTs, reservation.EndTs, reservation.Status,
	)
	if err != nil {
		// The reservations_no_overlap exclusion constraint backstops any write
		// path that skipped the advisory lock.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23P01" {
			return common.Conflictf("reservation overlaps an existing hold for item %s at location %s", reservation.ItemID, reservation.LocationID)
		}
		return err
	}
	return nil
}

func (r *reservationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Reservation, error) {
	reservation := &models.Reservation{}
	query := `
		SELECT id, item_id, location_id, event_id, qty_base, start_ts, end_ts, status, created_at, updated_at
		FROM reservations
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(
		&reservation.ID, &reservation.ItemID, &reservation.LocationID, &reservation.EventID,
		&reservation.QtyBase, &reservation.StartTs, &reservation.EndTs, &reservation.Status,
		&reservation.CreatedAt, &reservation.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFoundf("reservation %s", id)
		}
		return nil, err
	}
	return reservation, nil
}

func (r *reservationRepo) List(ctx context.Context, itemID, eventID *uuid.UUID, limit, offset int) ([]*models.Reservation, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)

	query := `
		SELECT id, item_id, location_id, event_id, qty_base, start_ts, end_ts, status, created_at, updated_at
		FROM reservations
		WHERE ($1::uuid IS NULL OR item_id = $1)
		AND ($2::uuid IS NULL OR event_id = $2)
		ORDER BY start_ts
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, itemID, eventID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reservations []*models.Reservation
	for rows.Next() {
		reservation := &models.Reservation{}
		if err := rows.Scan(
			&reservation.ID, &reservation.ItemID, &reservation.LocationID, &reservation.EventID,
			&reservation.QtyBase, &reservation.StartTs, &reservation.EndTs, &reservation.Status,
			&reservation.CreatedAt, &reservation.UpdatedAt,
		); err != nil {
			return nil, err
		}
		reservations = append(reservations, reservation)
	}
	return reservations, rows.Err()
}

func (r *reservationRepo) TransitionFromHeld(ctx context.Context, id uuid.UUID, status string) (bool, error) {
	query := `
		UPDATE reservations
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = 'HELD'
	`
	tag, err := r.db.Exec(ctx, query, status, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
