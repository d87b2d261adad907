package repositories

import (
	"context"
	"errors"

	"eventops/internal/common"
	"eventops/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNoEdge reports a missing conversion edge; the converter falls back to the
// inverse direction before giving up.
var ErrNoEdge = errors.New("no conversion edge")

type UnitConversionRepository interface {
	Create(ctx context.Context, conversion *models.UnitConversion) error
	GetFactor(ctx context.Context, fromUnit, toUnit string) (float64, error)
	List(ctx context.Context, limit, offset int) ([]*models.UnitConversion, error)
}

type unitConversionRepo struct {
	db DB
}

func NewUnitConversionRepo(db DB) UnitConversionRepository {
	return &unitConversionRepo{db: db}
}

func (r *unitConversionRepo) Create(ctx context.Context, conversion *models.UnitConversion) error {
	query := `
		INSERT INTO unit_conversions (id, from_unit, to_unit, factor, created_at)
		VALUES ($1, $2, $3, $4, NOW())
	`
	_, err := r.db.Exec(ctx, query, conversion.ID, conversion.FromUnit, conversion.ToUnit, conversion.Factor)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return common.Conflictf("conversion %s -> %s already exists", conversion.FromUnit, conversion.ToUnit)
		}
		return err
	}
	return nil
}

func (r *unitConversionRepo) GetFactor(ctx context.Context, fromUnit, toUnit string) (float64, error) {
	var factor float64
	query := `SELECT factor FROM unit_conversions WHERE from_unit = $1 AND to_unit = $2`
	err := r.db.QueryRow(ctx, query, fromUnit, toUnit).Scan(&factor)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNoEdge
		}
		return 0, err
	}
	return factor, nil
}

func (r *unitConversionRepo) List(ctx context.Context, limit, offset int) ([]*models.UnitConversion, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)

	query := `
		SELECT id, from_unit, to_unit, factor, created_at
		FROM unit_conversions
		ORDER BY from_unit, to_unit
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conversions []*models.UnitConversion
	for rows.Next() {
		conversion := &models.UnitConversion{}
		if err := rows.Scan(&conversion.ID, &conversion.FromUnit, &conversion.ToUnit, &conversion.Factor, &conversion.CreatedAt); err != nil {
			return nil, err
		}
		conversions = append(conversions, conversion)
	}
	return conversions, rows.Err()
}
