package repository

import (
	"github.com/konveksipro/produksi-api/internal/domain/entity"
	"github.com/konveksipro/produksi-api/internal/domain/production"
)

// TaskRepository port persistensi tugas per tahap dan hasil potong.
type TaskRepository interface {
	Create(t *entity.StageTask) error
	GetByBatchAndStage(batchID string, stage production.Stage) (*entity.StageTask, error)
	GetByBatchAndStageForUpdate(batchID string, stage production.Stage) (*entity.StageTask, error)
	Update(t *entity.StageTask) error
	// ListByStatus seluruh tugas pada satu status lintas batch (antrean
	// verifikasi kepala produksi).
	ListByStatus(status production.TaskStatus) ([]*entity.StageTask, error)

	// UpsertCuttingResult membuat/memperbarui hasil potong per (batch, size,
	// color) dan selalu mereset flag Confirmed.
	UpsertCuttingResult(r *entity.CuttingResult) error
	GetCuttingResults(batchID string) ([]*entity.CuttingResult, error)
	// ConfirmCuttingResults menandai seluruh hasil potong batch terkonfirmasi
	// (dipanggil saat verifikasi cutting disetujui).
	ConfirmCuttingResults(batchID string) error
}
