package allocation

import (
	"context"

	"github.com/konveksipro/produksi-api/internal/domain/repository"
)

// TxRunner menjalankan fn dalam satu transaksi DB dengan repo yang terikat
// ke transaksi tsb (all-or-nothing untuk seluruh baris alokasi).
type TxRunner interface {
	RunAllocation(ctx context.Context, fn func(
		batches repository.BatchRepository,
		materials repository.MaterialRepository,
		transactions repository.MaterialTransactionRepository,
		users repository.UserRepository,
	) error) error
}

// Notifier kanal samping fire-and-forget; tidak boleh menggagalkan transaksi.
type Notifier interface {
	Notify(ctx context.Context, userID, ntype, title, message string)
}
