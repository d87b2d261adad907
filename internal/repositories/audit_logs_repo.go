package repositories

import (
	"context"
	"fmt"

	"eventops/internal/common"
	"eventops/internal/models"
)

type AuditLogsRepository interface {
	Insert(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, filter *models.AuditLogFilter) ([]*models.AuditLog, error)
}

type auditLogsRepo struct {
	db DB
}

func NewAuditLogsRepo(db DB) AuditLogsRepository {
	return &auditLogsRepo{db: db}
}

func (r *auditLogsRepo) Insert(ctx context.Context, entry *models.AuditLog) error {
	query := `
		INSERT INTO audit_logs (id, method, path, status, posted_by, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	_, err := r.db.Exec(ctx, query, entry.ID, entry.Method, entry.Path, entry.Status, entry.PostedBy, entry.Payload)
	return err
}

func (r *auditLogsRepo) List(ctx context.Context, filter *models.AuditLogFilter) ([]*models.AuditLog, error) {
	limit, offset := common.ValidatePaginationParams(filter.Limit, filter.Offset)

	queryBase := `SELECT id, method, path, status, posted_by, payload, created_at FROM audit_logs WHERE 1=1`
	args := []any{}
	n := 0

	if filter.Path != nil {
		n++
		queryBase += fmt.Sprintf(` AND path = $%d`, n)
		args = append(args, *filter.Path)
	}
	if filter.PostedBy != nil {
		n++
		queryBase += fmt.Sprintf(` AND posted_by = $%d`, n)
		args = append(args, *filter.PostedBy)
	}
	if filter.From != nil {
		n++
		queryBase += fmt.Sprintf(` AND created_at >= $%d`, n)
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		n++
		queryBase += fmt.Sprintf(` AND created_at < $%d`, n)
		args = append(args, *filter.To)
	}

	queryBase += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, n+1, n+2)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx, queryBase, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.AuditLog
	for rows.Next() {
		entry := &models.AuditLog{}
		if err := rows.Scan(&entry.ID, &entry.Method, &entry.Path, &entry.Status, &entry.PostedBy, &entry.Payload, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
