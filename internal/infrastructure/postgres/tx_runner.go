package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/konveksipro/produksi-api/internal/application/allocation"
	"github.com/konveksipro/produksi-api/internal/application/production"
	"github.com/konveksipro/produksi-api/internal/application/stock"
	"github.com/konveksipro/produksi-api/internal/domain/repository"
)

var _ stock.TxRunner = (*TxRunner)(nil)
var _ allocation.TxRunner = (*TxRunner)(nil)
var _ production.TxRunner = (*TxRunner)(nil)

// TxRunner menjalankan callback di dalam satu transaksi PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner membangun runner di atas pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run memulai transaksi untuk mutasi stok, menjalankan fn dengan repo yang
// terikat ke tx, lalu Commit atau Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(
	materials repository.MaterialRepository,
	transactions repository.MaterialTransactionRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewMaterialRepository(tx), NewMaterialTransactionRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunAllocation memulai transaksi untuk konfirmasi alokasi bahan.
func (r *TxRunner) RunAllocation(ctx context.Context, fn func(
	batches repository.BatchRepository,
	materials repository.MaterialRepository,
	transactions repository.MaterialTransactionRepository,
	users repository.UserRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(
		NewBatchRepository(tx),
		NewMaterialRepository(tx),
		NewMaterialTransactionRepository(tx),
		NewUserRepository(tx),
	); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunProduction memulai transaksi dengan seluruh repo alur produksi.
func (r *TxRunner) RunProduction(ctx context.Context, fn func(pr production.Repos) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	repos := production.Repos{
		Batches:              NewBatchRepository(tx),
		Tasks:                NewTaskRepository(tx),
		SubBatches:           NewSubBatchRepository(tx),
		Materials:            NewMaterialRepository(tx),
		MaterialTransactions: NewMaterialTransactionRepository(tx),
		FinishedGoods:        NewFinishedGoodRepository(tx),
		AuditLogs:            NewAuditLogRepository(tx),
		Users:                NewUserRepository(tx),
		Products:             NewProductRepository(tx),
	}
	if err := fn(repos); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
