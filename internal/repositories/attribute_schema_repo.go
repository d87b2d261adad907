package repositories

import (
	"context"
	"errors"

	"eventops/internal/common"
	"eventops/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type AttributeSchemaRepository interface {
	Create(ctx context.Context, schema *models.AttributeSchema) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.AttributeSchema, error)
	List(ctx context.Context, itemType *string, limit, offset int) ([]*models.AttributeSchema, error)
}

type attributeSchemaRepo struct {
	db DB
}

func NewAttributeSchemaRepo(db DB) AttributeSchemaRepository {
	return &attributeSchemaRepo{db: db}
}

// Create assigns the next version for the schema's item type via a subquery.
// Two concurrent inserts for one type can compute the same version; the
// UNIQUE (item_type, version) constraint rejects the loser, which surfaces as
// a conflict the caller can retry.
func (r *attributeSchemaRepo) Create(ctx context.Context, schema *models.AttributeSchema) error {
	query := `
		INSERT INTO attribute_schemas (id, item_type, department_id, version, definition, created_at)
		VALUES ($1, $2, $3, (SELECT COALESCE(MAX(version), 0) + 1 FROM attribute_schemas WHERE item_type = $2), $4, NOW())
		RETURNING version
	`
	err := r.db.QueryRow(ctx, query, schema.ID, schema.ItemType, schema.DepartmentID, schema.Definition).Scan(&schema.Version)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return common.Conflictf("concurrent schema registration for item type %q, retry", schema.ItemType)
		}
		return err
	}
	return nil
}

func (r *attributeSchemaRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.AttributeSchema, error) {
	schema := &models.AttributeSchema{}
	query := `
		SELECT id, item_type, department_id, version, definition, created_at
		FROM attribute_schemas
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(
		&schema.ID, &schema.ItemType, &schema.DepartmentID, &schema.Version,
		&schema.Definition, &schema.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFoundf("attribute schema %s", id)
		}
		return nil, err
	}
	return schema, nil
}

func (r *attributeSchemaRepo) List(ctx context.Context, itemType *string, limit, offset int) ([]*models.AttributeSchema, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)

	query := `
		SELECT id, item_type, department_id, version, definition, created_at
		FROM attribute_schemas
		WHERE ($1::text IS NULL OR item_type = $1)
		ORDER BY item_type, version DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, itemType, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schemas []*models.AttributeSchema
	for rows.Next() {
		schema := &models.AttributeSchema{}
		if err := rows.Scan(
			&schema.ID, &schema.ItemType, &schema.DepartmentID, &schema.Version,
			&schema.Definition, &schema.CreatedAt,
		); err != nil {
			return nil, err
		}
		schemas = append(schemas, schema)
	}
	return schemas, rows.Err()
}
