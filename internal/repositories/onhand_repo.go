package repositories

import (
	"context"
	"errors"

	"eventops/internal/common"
	"eventops/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type OnHandRepository interface {
	// ApplyDeltaTx folds a posted movement into the projection inside the same
	// transaction as the ledger insert.
	ApplyDeltaTx(ctx context.Context, tx pgx.Tx, itemID, locationID uuid.UUID, delta float64) error
	// ReplaceAllTx rebuilds the projection from ledger sums.
	ReplaceAllTx(ctx context.Context, tx pgx.Tx, rows []*models.OnHand) error
	Get(ctx context.Context, itemID, locationID uuid.UUID) (*models.OnHand, error)
	ListByItem(ctx context.Context, itemID uuid.UUID) ([]*models.OnHand, error)
	ListAll(ctx context.Context) ([]*models.OnHand, error)
}

type onHandRepo struct {
	db DB
}

func NewOnHandRepo(db DB) OnHandRepository {
	return &onHandRepo{db: db}
}

func (r *onHandRepo) ApplyDeltaTx(ctx context.Context, tx pgx.Tx, itemID, locationID uuid.UUID, delta float64) error {
	query := `
		INSERT INTO onhand (item_id, location_id, qty_base, refreshed_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (item_id, location_id) DO UPDATE SET qty_base = onhand.qty_base + EXCLUDED.qty_base, refreshed_at = NOW()
	`
	_, err := tx.Exec(ctx, query, itemID, locationID, delta)
	return err
}

func (r *onHandRepo) ReplaceAllTx(ctx context.Context, tx pgx.Tx, rows []*models.OnHand) error {
	if _, err := tx.Exec(ctx, `DELETE FROM onhand`); err != nil {
		return err
	}
	query := `
		INSERT INTO onhand (item_id, location_id, qty_base, refreshed_at)
		VALUES ($1, $2, $3, NOW())
	`
	for _, row := range rows {
		if _, err := tx.Exec(ctx, query, row.ItemID, row.LocationID, row.QtyBase); err != nil {
			return err
		}
	}
	return nil
}

func (r *onHandRepo) Get(ctx context.Context, itemID, locationID uuid.UUID) (*models.OnHand, error) {
	row := &models.OnHand{}
	query := `
		SELECT item_id, location_id, qty_base, refreshed_at
		FROM onhand
		WHERE item_id = $1 AND location_id = $2
	`
	err := r.db.QueryRow(ctx, query, itemID, locationID).Scan(&row.ItemID, &row.LocationID, &row.QtyBase, &row.RefreshedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFoundf("on-hand for item %s at location %s", itemID, locationID)
		}
		return nil, err
	}
	return row, nil
}

func (r *onHandRepo) ListByItem(ctx context.Context, itemID uuid.UUID) ([]*models.OnHand, error) {
	query := `
		SELECT item_id, location_id, qty_base, refreshed_at
		FROM onhand
		WHERE item_id = $1
		ORDER BY location_id
	`
	rows, err := r.db.Query(ctx, query, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOnHandRows(rows)
}

func (r *onHandRepo) ListAll(ctx context.Context) ([]*models.OnHand, error) {
	query := `
		SELECT item_id, location_id, qty_base, refreshed_at
		FROM onhand
		ORDER BY item_id, location_id
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanOnHandRows(rows)
}

func scanOnHandRows(rows pgx.Rows) ([]*models.OnHand, error) {
	var result []*models.OnHand
	for rows.Next() {
		row := &models.OnHand{}
		if err := rows.Scan(&row.ItemID, &row.LocationID, &row.QtyBase, &row.RefreshedAt); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
