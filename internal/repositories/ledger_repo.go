package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"eventops/internal/common"
	"eventops/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// LedgerRepository is append-only: there are no update or delete methods, and
// none may be added. InsertTx is transaction-scoped so a transfer's two entries
// commit or roll back together with the projection upsert.
type LedgerRepository interface {
	InsertTx(ctx context.Context, tx pgx.Tx, entry *models.LedgerEntry) error
	GetByID(ctx context.Context, txnID uuid.UUID) (*models.LedgerEntry, error)
	List(ctx context.Context, filter *models.LedgerFilter) ([]*models.LedgerEntry, error)
	SumByPair(ctx context.Context, itemID, locationID uuid.UUID) (float64, error)
	SumAllPairs(ctx context.Context) ([]*models.OnHand, error)
	WindowTotals(ctx context.Context, itemID uuid.UUID, from, to time.Time) ([]models.EventTotal, error)
}

type ledgerRepo struct {
	db DB
}

func NewLedgerRepo(db DB) LedgerRepository {
	return &ledgerRepo{db: db}
}

const ledgerColumns = `txn_id, ts, item_id, location_id, event_type, qty_base, lot_id, serial_no, cost_per_base, source_doc, posted_by, transfer_group_id`

func (r *ledgerRepo) InsertTx(ctx context.Context, tx pgx.Tx, entry *models.LedgerEntry) error {
	query := `
		INSERT INTO ledger_entries (txn_id, ts, item_id, location_id, event_type, qty_base, lot_id, serial_no, cost_per_base, source_doc, posted_by, transfer_group_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := tx.Exec(ctx, query,
		entry.TxnID, entry.Timestamp, entry.ItemID, entry.LocationID, entry.EventType,
		entry.QtyBase, entry.LotID, entry.SerialNo, entry.CostPerBase, entry.SourceDoc,
		entry.PostedBy, entry.TransferGroupID,
	)
	return err
}

func (r *ledgerRepo) GetByID(ctx context.Context, txnID uuid.UUID) (*models.LedgerEntry, error) {
	entry := &models.LedgerEntry{}
	query := fmt.Sprintf(`SELECT %s FROM ledger_entries WHERE txn_id = $1`, ledgerColumns)
	err := r.db.QueryRow(ctx, query, txnID).Scan(
		&entry.TxnID, &entry.Timestamp, &entry.ItemID, &entry.LocationID,
		&entry.EventType, &entry.QtyBase, &entry.LotID, &entry.SerialNo,
		&entry.CostPerBase, &entry.SourceDoc, &entry.PostedBy, &entry.TransferGroupID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFoundf("transaction %s", txnID)
		}
		return nil, err
	}
	return entry, nil
}

func (r *ledgerRepo) List(ctx context.Context, filter *models.LedgerFilter) ([]*models.LedgerEntry, error) {
	limit, offset := common.ValidatePaginationParams(filter.Limit, filter.Offset)

	queryBase := fmt.Sprintf(`SELECT %s FROM ledger_entries WHERE 1=1`, ledgerColumns)
	args := []any{}
	n := 0

	if filter.ItemID != nil {
		n++
		queryBase += fmt.Sprintf(` AND item_id = $%d`, n)
		args = append(args, *filter.ItemID)
	}
	if filter.LocationID != nil {
		n++
		queryBase += fmt.Sprintf(` AND location_id = $%d`, n)
		args = append(args, *filter.LocationID)
	}
	if filter.EventType != nil {
		n++
		queryBase += fmt.Sprintf(` AND event_type = $%d`, n)
		args = append(args, *filter.EventType)
	}
	if filter.From != nil {
		n++
		queryBase += fmt.Sprintf(` AND ts >= $%d`, n)
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		n++
		queryBase += fmt.Sprintf(` AND ts < $%d`, n)
		args = append(args, *filter.To)
	}

	queryBase += fmt.Sprintf(` ORDER BY ts DESC LIMIT $%d OFFSET $%d`, n+1, n+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, queryBase, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.LedgerEntry
	for rows.Next() {
		entry := &models.LedgerEntry{}
		if err := rows.Scan(
			&entry.TxnID, &entry.Timestamp, &entry.ItemID, &entry.LocationID,
			&entry.EventType, &entry.QtyBase, &entry.LotID, &entry.SerialNo,
			&entry.CostPerBase, &entry.SourceDoc, &entry.PostedBy, &entry.TransferGroupID,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *ledgerRepo) SumByPair(ctx context.Context, itemID, locationID uuid.UUID) (float64, error) {
	var sum float64
	query := `
		SELECT COALESCE(SUM(qty_base), 0)
		FROM ledger_entries
		WHERE item_id = $1 AND location_id = $2
	`
	err := r.db.QueryRow(ctx, query, itemID, locationID).Scan(&sum)
	return sum, err
}

func (r *ledgerRepo) SumAllPairs(ctx context.Context) ([]*models.OnHand, error) {
	query := `
		SELECT item_id, location_id, COALESCE(SUM(qty_base), 0)
		FROM ledger_entries
		GROUP BY item_id, location_id
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sums []*models.OnHand
	for rows.Next() {
		row := &models.OnHand{}
		if err := rows.Scan(&row.ItemID, &row.LocationID, &row.QtyBase); err != nil {
			return nil, err
		}
		sums = append(sums, row)
	}
	return sums, rows.Err()
}

func (r *ledgerRepo) WindowTotals(ctx context.Context, itemID uuid.UUID, from, to time.Time) ([]models.EventTotal, error) {
	query := `
		SELECT event_type, COALESCE(SUM(qty_base), 0)
		FROM ledger_entries
		WHERE item_id = $1 AND ts >= $2 AND ts < $3
		GROUP BY event_type
		ORDER BY event_type
	`
	rows, err := r.db.Query(ctx, query, itemID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []models.EventTotal
	for rows.Next() {
		var t models.EventTotal
		if err := rows.Scan(&t.EventType, &t.QtyBase); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}
