package postgres

import (
	"context"
	"fmt"

	"github.com/konveksipro/produksi-api/internal/domain/entity"
	"github.com/konveksipro/produksi-api/internal/domain/repository"
)

var _ repository.AuditLogRepository = (*AuditLogRepo)(nil)

// AuditLogRepo jejak audit, append-only.
type AuditLogRepo struct {
	q Querier
}

// NewAuditLogRepository membangun adaptor audit log.
func NewAuditLogRepository(q Querier) *AuditLogRepo {
	return &AuditLogRepo{q: q}
}

// Create menyimpan satu baris audit.
func (r *AuditLogRepo) Create(l *entity.AuditLog) error {
	query := `
		INSERT INTO audit_logs (id, entity, entity_id, action, old_values, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		l.ID, l.Entity, l.EntityID, l.Action, l.OldValues, l.UserID, l.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// ListByEntity memuat jejak audit satu entitas, tertua dulu.
func (r *AuditLogRepo) ListByEntity(entityName, entityID string) ([]*entity.AuditLog, error) {
	query := `
		SELECT id, entity, entity_id, action, old_values, user_id, created_at
		FROM audit_logs
		WHERE entity = $1 AND entity_id = $2
		ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, entityName, entityID)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()
	var result []*entity.AuditLog
	for rows.Next() {
		var l entity.AuditLog
		if err := rows.Scan(&l.ID, &l.Entity, &l.EntityID, &l.Action, &l.OldValues, &l.UserID, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		result = append(result, &l)
	}
	return result, rows.Err()
}
