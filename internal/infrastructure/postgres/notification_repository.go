package postgres

import (
	"context"
	"fmt"

	"github.com/konveksipro/produksi-api/internal/domain/entity"
	"github.com/konveksipro/produksi-api/internal/domain/repository"
)

var _ repository.NotificationRepository = (*NotificationRepo)(nil)

// NotificationRepo notifikasi pengguna.
type NotificationRepo struct {
	q Querier
}

// NewNotificationRepository membangun adaptor notifikasi.
func NewNotificationRepository(q Querier) *NotificationRepo {
	return &NotificationRepo{q: q}
}

// Create menyimpan notifikasi baru.
func (r *NotificationRepo) Create(n *entity.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, type, title, message, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(context.Background(), query,
		n.ID, n.UserID, n.Type, n.Title, n.Message, n.Read, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// ListByUser notifikasi milik satu pengguna, terbaru dulu.
func (r *NotificationRepo) ListByUser(userID string, limit, offset int) ([]*entity.Notification, error) {
	query := `
		SELECT id, user_id, type, title, message, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()
	var result []*entity.Notification
	for rows.Next() {
		var n entity.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		result = append(result, &n)
	}
	return result, rows.Err()
}

// MarkRead menandai notifikasi terbaca; user_id ikut difilter supaya pengguna
// tidak bisa menandai milik orang lain.
func (r *NotificationRepo) MarkRead(id, userID string) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE notifications SET read = true WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}
