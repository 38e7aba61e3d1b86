package repository

import (
	"github.com/shopspring/decimal"

	"github.com/konveksipro/produksi-api/internal/domain/entity"
)

// MaterialRepository port persistensi varian warna bahan dan stoknya (DIP).
// Mutasi stok memakai update kondisional atomik di lapisan storage supaya dua
// alokasi bersamaan tidak lolos cek kecukupan terhadap nilai basi.
type MaterialRepository interface {
	GetVariantByID(id string) (*entity.MaterialColorVariant, error)
	// GetVariantForUpdate mengunci baris varian (SELECT FOR UPDATE).
	GetVariantForUpdate(id string) (*entity.MaterialColorVariant, error)
	// AddStock menambah stok dan mengembalikan stok baru.
	AddStock(variantID string, qty decimal.Decimal) (decimal.Decimal, error)
	// DeductStock mengurangi stok secara atomik dengan syarat stok-qty >= floor
	// (UPDATE ... WHERE stock - $qty >= $floor). Mengembalikan
	// domain.ErrInsufficientStock bila syarat tidak terpenuhi.
	DeductStock(variantID string, qty, floor decimal.Decimal) (decimal.Decimal, error)
	// SetStock menyetel stok ke nilai absolut (tipe ADJUSTMENT).
	SetStock(variantID string, qty decimal.Decimal) (decimal.Decimal, error)
}

// MaterialTransactionRepository port persistensi log transaksi stok
// (append-only; tidak ada update/delete).
type MaterialTransactionRepository interface {
	Create(tx *entity.MaterialTransaction) error
	ListByVariant(variantID string, limit, offset int) ([]*entity.MaterialTransaction, error)
	ListByBatch(batchID string) ([]*entity.MaterialTransaction, error)
}
