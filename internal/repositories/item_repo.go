package repositories

import (
	"context"
	"errors"
	"fmt"

	"eventops/internal/common"
	"eventops/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type ItemRepository interface {
	Create(ctx context.Context, item *models.Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	GetBySKU(ctx context.Context, sku string) (*models.Item, error)
	Update(ctx context.Context, item *models.Item) error
	List(ctx context.Context, filter *models.ItemSearchFilter) ([]*models.Item, error)
}

type itemRepo struct {
	db DB
}

func NewItemRepo(db DB) ItemRepository {
	return &itemRepo{db: db}
}

const itemColumns = `id, sku, name, item_type, base_unit, schema_id, attributes, category_id, active, created_at, updated_at`

func (r *itemRepo) Create(ctx context.Context, item *models.Item) error {
	query := `
		INSERT INTO items (id, sku, name, item_type, base_unit, schema_id, attributes, category_id, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, item.ID, item.SKU, item.Name, item.ItemType, item.BaseUnit, item.SchemaID, item.Attributes, item.CategoryID, item.Active)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return common.Conflictf("sku %q already exists", item.SKU)
		}
		return err
	}
	return nil
}

func (r *itemRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	item := &models.Item{}
	query := fmt.Sprintf(`SELECT %s FROM items WHERE id = $1`, itemColumns)
	err := r.db.QueryRow(ctx, query, id).Scan(
		&item.ID, &item.SKU, &item.Name, &item.ItemType, &item.BaseUnit,
		&item.SchemaID, &item.Attributes, &item.CategoryID, &item.Active,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFoundf("item %s", id)
		}
		return nil, err
	}
	return item, nil
}

func (r *itemRepo) GetBySKU(ctx context.Context, sku string) (*models.Item, error) {
	item := &models.Item{}
	query := fmt.Sprintf(`SELECT %s FROM items WHERE sku = $1`, itemColumns)
	err := r.db.QueryRow(ctx, query, sku).Scan(
		&item.ID, &item.SKU, &item.Name, &item.ItemType, &item.BaseUnit,
		&item.SchemaID, &item.Attributes, &item.CategoryID, &item.Active,
		&item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFoundf("item with sku %q", sku)
		}
		return nil, err
	}
	return item, nil
}

func (r *itemRepo) Update(ctx context.Context, item *models.Item) error {
	query := `
		UPDATE items
		SET name = $1, base_unit = $2, attributes = $3, active = $4, updated_at = NOW()
		WHERE id = $5
	`
	tag, err := r.db.Exec(ctx, query, item.Name, item.BaseUnit, item.Attributes, item.Active, item.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NotFoundf("item %s", item.ID)
	}
	return nil
}

func (r *itemRepo) List(ctx context.Context, filter *models.ItemSearchFilter) ([]*models.Item, error) {
	limit, offset := common.ValidatePaginationParams(filter.Limit, filter.Offset)

	queryBase := fmt.Sprintf(`SELECT %s FROM items WHERE 1=1`, itemColumns)
	args := []any{}
	n := 0

	if filter.Query != "" {
		n++
		queryBase += fmt.Sprintf(` AND (sku ILIKE $%d OR name ILIKE $%d)`, n, n)
		args = append(args, "%"+filter.Query+"%")
	}
	if filter.ItemType != nil {
		n++
		queryBase += fmt.Sprintf(` AND item_type = $%d`, n)
		args = append(args, *filter.ItemType)
	}
	if filter.Active != nil {
		n++
		queryBase += fmt.Sprintf(` AND active = $%d`, n)
		args = append(args, *filter.Active)
	}

	queryBase += fmt.Sprintf(` ORDER BY sku LIMIT $%d OFFSET $%d`, n+1, n+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, queryBase, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		item := &models.Item{}
		if err := rows.Scan(
			&item.ID, &item.SKU, &item.Name, &item.ItemType, &item.BaseUnit,
			&item.SchemaID, &item.Attributes, &item.CategoryID, &item.Active,
			&item.CreatedAt, &item.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
