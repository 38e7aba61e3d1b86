package repository

import (
	"github.com/konveksipro/produksi-api/internal/domain/entity"
	"github.com/konveksipro/produksi-api/internal/domain/production"
)

// SubBatchRepository port persistensi sub-batch beserta item rinciannya.
type SubBatchRepository interface {
	// Create menyimpan sub-batch beserta seluruh item dalam satu panggilan.
	Create(sb *entity.SubBatch) error
	GetByID(id string) (*entity.SubBatch, error)
	GetByIDForUpdate(id string) (*entity.SubBatch, error)
	ListByBatch(batchID string) ([]*entity.SubBatch, error)
	// ListByStatus seluruh sub-batch pada satu status lintas batch (antrean
	// verifikasi per role).
	ListByStatus(status production.SubBatchStatus) ([]*entity.SubBatch, error)
	// Update menyimpan status, verifikator, dan lokasi.
	Update(sb *entity.SubBatch) error
	// Delete menghapus sub-batch dan itemnya (jalur reject destruktif;
	// snapshot audit wajib ditulis caller sebelum memanggil ini).
	Delete(id string) error
	// NextSequence urutan berikutnya untuk SKU sub-batch di satu batch.
	NextSequence(batchID string) (int, error)
}
