package repository

import "github.com/konveksipro/produksi-api/internal/domain/entity"

// NotificationRepository port persistensi notifikasi pengguna.
type NotificationRepository interface {
	Create(n *entity.Notification) error
	ListByUser(userID string, limit, offset int) ([]*entity.Notification, error)
	MarkRead(id, userID string) error
}
