package production

import (
	"context"

	"github.com/konveksipro/produksi-api/internal/domain/repository"
)

// Repos kumpulan repo yang terikat ke satu transaksi DB.
type Repos struct {
	Batches              repository.BatchRepository
	Tasks                repository.TaskRepository
	SubBatches           repository.SubBatchRepository
	Materials            repository.MaterialRepository
	MaterialTransactions repository.MaterialTransactionRepository
	FinishedGoods        repository.FinishedGoodRepository
	AuditLogs            repository.AuditLogRepository
	Users                repository.UserRepository
	Products             repository.ProductRepository
}

// TxRunner menjalankan fn dalam satu transaksi DB. Setiap operasi mutasi
// membaca ulang status entitas target di dalam transaksi dan memvalidasi ulang
// precondition sebelum menulis.
type TxRunner interface {
	RunProduction(ctx context.Context, fn func(r Repos) error) error
}

// Notifier kanal samping fire-and-forget. Implementasi wajib menelan error
// sendiri; pemanggilan tidak boleh memblokir atau menggagalkan transaksi utama.
type Notifier interface {
	Notify(ctx context.Context, userID, ntype, title, message string)
}
