// Package notify implementasi Notifier berbasis tabel notifications.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/konveksipro/produksi-api/internal/domain/entity"
	"github.com/konveksipro/produksi-api/internal/domain/repository"
	"github.com/konveksipro/produksi-api/pkg/logger"
)

// DBNotifier menulis notifikasi ke DB. Best-effort: error ditelan dan hanya
// dicatat ke log, tidak pernah merambat ke transaksi pemanggil.
type DBNotifier struct {
	repo repository.NotificationRepository
	log  *logger.Logger
}

// NewDBNotifier membangun notifier di atas repo notifikasi.
func NewDBNotifier(repo repository.NotificationRepository, log *logger.Logger) *DBNotifier {
	return &DBNotifier{repo: repo, log: log}
}

// Notify menyimpan satu notifikasi untuk userID.
func (n *DBNotifier) Notify(ctx context.Context, userID, ntype, title, message string) {
	err := n.repo.Create(&entity.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      ntype,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now(),
	})
	if err != nil {
		n.log.Warn().Err(err).
			Str("user_id", userID).
			Str("type", ntype).
			Msg("gagal menyimpan notifikasi")
	}
}
