package stock

import (
	"context"

	"github.com/konveksipro/produksi-api/internal/domain/repository"
)

// TxRunner menjalankan fn dalam satu transaksi DB dengan repo yang terikat ke
// transaksi tsb. Menjamin atomisitas mutasi stok + baris log transaksinya.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		materials repository.MaterialRepository,
		transactions repository.MaterialTransactionRepository,
	) error) error
}
