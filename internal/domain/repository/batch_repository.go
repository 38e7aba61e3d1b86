package repository

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/konveksipro/produksi-api/internal/domain/entity"
	"github.com/konveksipro/produksi-api/internal/domain/production"
)

// BatchRepository port persistensi batch produksi beserta anak-anaknya
// (alokasi, size/color request, timeline).
type BatchRepository interface {
	// Create menyimpan batch beserta size/color requests dan baris alokasi.
	Create(b *entity.ProductionBatch) error
	GetByID(id string) (*entity.ProductionBatch, error)
	// GetByIDForUpdate mengunci baris batch agar precondition divalidasi ulang
	// di dalam transaksi.
	GetByIDForUpdate(id string) (*entity.ProductionBatch, error)
	List(status production.BatchStatus, limit, offset int) ([]*entity.ProductionBatch, error)
	UpdateStatus(id string, status production.BatchStatus) error
	SetStartDate(id string, t time.Time) error
	// UpdateTotals menyimpan agregat kuantitas (cache yang dihitung ulang dari
	// baris rincian, bukan sumber kebenaran).
	UpdateTotals(id string, actualQty, rejectQty int) error
	// SetCompleted menutup batch: status COMPLETED, agregat akhir, tanggal selesai.
	SetCompleted(id string, actualQty, rejectQty int, completedAt time.Time) error

	GetAllocations(batchID string) ([]*entity.BatchMaterialColorAllocation, error)
	// SnapshotAllocation menyimpan stok & jumlah roll saat konfirmasi alokasi.
	SnapshotAllocation(allocationID string, stockAt decimal.Decimal, rollsAt int) error
	GetSizeColorRequests(batchID string) ([]*entity.SizeColorRequest, error)

	AddTimeline(ev *entity.TimelineEvent) error
	GetTimeline(batchID string) ([]*entity.TimelineEvent, error)

	// CountForDate jumlah batch yang dibuat pada tanggal tsb (untuk urutan SKU).
	CountForDate(day time.Time) (int, error)
}
