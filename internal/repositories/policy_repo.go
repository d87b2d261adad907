package repositories

import (
	"context"

	"eventops/internal/common"
	"eventops/internal/models"

	"github.com/google/uuid"
)

type PolicyRepository interface {
	Upsert(ctx context.Context, policy *models.Policy) error
	ListByScope(ctx context.Context, departmentID uuid.UUID, itemType string) ([]*models.Policy, error)
	List(ctx context.Context, limit, offset int) ([]*models.Policy, error)
}

type policyRepo struct {
	db DB
}

func NewPolicyRepo(db DB) PolicyRepository {
	return &policyRepo{db: db}
}

func (r *policyRepo) Upsert(ctx context.Context, policy *models.Policy) error {
	query := `
		INSERT INTO policies (id, department_id, item_type, key, value, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (department_id, item_type, key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, policy.ID, policy.DepartmentID, policy.ItemType, policy.Key, policy.Value)
	return err
}

func (r *policyRepo) ListByScope(ctx context.Context, departmentID uuid.UUID, itemType string) ([]*models.Policy, error) {
	query := `
		SELECT id, department_id, item_type, key, value, created_at, updated_at
		FROM policies
		WHERE department_id = $1 AND item_type = $2
	`
	rows, err := r.db.Query(ctx, query, departmentID, itemType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var policies []*models.Policy
	for rows.Next() {
		policy := &models.Policy{}
		if err := rows.Scan(
			&policy.ID, &policy.DepartmentID, &policy.ItemType, &policy.Key,
			&policy.Value, &policy.CreatedAt, &policy.UpdatedAt,
		); err != nil {
			return nil, err
		}
		policies = append(policies, policy)
	}
	return policies, rows.Err()
}

func (r *policyRepo) List(ctx context.Context, limit, offset int) ([]*models.Policy, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)

	query := `
		SELECT id, department_id, item_type, key, value, created_at, updated_at
		FROM policies
		ORDER BY department_id, item_type, key
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var policies []*models.Policy
	for rows.Next() {
		policy := &models.Policy{}
		if err := rows.Scan(
			&policy.ID, &policy.DepartmentID, &policy.ItemType, &policy.Key,
			&policy.Value, &policy.CreatedAt, &policy.UpdatedAt,
		); err != nil {
			return nil, err
		}
		policies = append(policies, policy)
	}
	return policies, rows.Err()
}
