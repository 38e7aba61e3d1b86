package repository

import "github.com/konveksipro/produksi-api/internal/domain/entity"

// AuditLogRepository port persistensi jejak audit (append-only).
type AuditLogRepository interface {
	Create(l *entity.AuditLog) error
	ListByEntity(entityName, entityID string) ([]*entity.AuditLog, error)
}
