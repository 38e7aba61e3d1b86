package repository

import "github.com/konveksipro/produksi-api/internal/domain/entity"

// FinishedGoodRepository port persistensi barang jadi (insert-only).
type FinishedGoodRepository interface {
	Create(fg *entity.FinishedGood) error
	ListByBatch(batchID string) ([]*entity.FinishedGood, error)
}
