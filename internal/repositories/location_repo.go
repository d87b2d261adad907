package repositories

import (
	"context"
	"errors"

	"eventops/internal/common"
	"eventops/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type LocationRepository interface {
	Create(ctx context.Context, location *models.Location) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Location, error)
	List(ctx context.Context, departmentID *uuid.UUID, limit, offset int) ([]*models.Location, error)
}

type locationRepo struct {
	db DB
}

func NewLocationRepo(db DB) LocationRepository {
	return &locationRepo{db: db}
}

func (r *locationRepo) Create(ctx context.Context, location *models.Location) error {
	query := `
		INSERT INTO locations (id, name, department_id, created_at)
		VALUES ($1, $2, $3, NOW())
	`
	_, err := r.db.Exec(ctx, query, location.ID, location.Name, location.DepartmentID)
	return err
}

func (r *locationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	location := &models.Location{}
	query := `
		SELECT id, name, department_id, created_at
		FROM locations
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&location.ID, &location.Name, &location.DepartmentID, &location.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.NotFoundf("location %s", id)
		}
		return nil, err
	}
	return location, nil
}

func (r *locationRepo) List(ctx context.Context, departmentID *uuid.UUID, limit, offset int) ([]*models.Location, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)

	query := `
		SELECT id, name, department_id, created_at
		FROM locations
		WHERE ($1::uuid IS NULL OR department_id = $1)
		ORDER BY name
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, departmentID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []*models.Location
	for rows.Next() {
		location := &models.Location{}
		if err := rows.Scan(&location.ID, &location.Name, &location.DepartmentID, &location.CreatedAt); err != nil {
			return nil, err
		}
		locations = append(locations, location)
	}
	return locations, rows.Err()
}
