package allocation_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/konveksipro/produksi-api/internal/application/allocation"
	"github.com/konveksipro/produksi-api/internal/domain"
	"github.com/konveksipro/produksi-api/internal/domain/entity"
	"github.com/konveksipro/produksi-api/internal/domain/production"
	"github.com/konveksipro/produksi-api/internal/domain/repository"
)

// allocStore fake in-memory untuk jalur konfirmasi alokasi.
type allocStore struct {
	batch       *entity.ProductionBatch
	allocations []*entity.BatchMaterialColorAllocation
	timeline    []*entity.TimelineEvent
	variants    map[string]*entity.MaterialColorVariant
	txs         []*entity.MaterialTransaction
}

func (s *allocStore) RunAllocation(_ context.Context, fn func(
	batches repository.BatchRepository,
	materials repository.MaterialRepository,
	transactions repository.MaterialTransactionRepository,
	users repository.UserRepository,
) error) error {
	return fn((*allocBatchRepo)(s), (*allocMaterialRepo)(s), (*allocTxRepo)(s), (*allocUserRepo)(s))
}

type allocBatchRepo allocStore

func (r *allocBatchRepo) Create(b *entity.ProductionBatch) error { return nil }

func (r *allocBatchRepo) GetByID(id string) (*entity.ProductionBatch, error) {
	if r.batch != nil && r.batch.ID == id {
		return r.batch, nil
	}
	return nil, nil
}

func (r *allocBatchRepo) GetByIDForUpdate(id string) (*entity.ProductionBatch, error) {
	return r.GetByID(id)
}

func (r *allocBatchRepo) List(production.BatchStatus, int, int) ([]*entity.ProductionBatch, error) {
	return nil, nil
}

func (r *allocBatchRepo) UpdateStatus(id string, status production.BatchStatus) error {
	r.batch.Status = status
	return nil
}

func (r *allocBatchRepo) SetStartDate(id string, t time.Time) error {
	r.batch.StartDate = &t
	return nil
}

func (r *allocBatchRepo) UpdateTotals(string, int, int) error { return nil }

func (r *allocBatchRepo) SetCompleted(string, int, int, time.Time) error { return nil }

func (r *allocBatchRepo) GetAllocations(batchID string) ([]*entity.BatchMaterialColorAllocation, error) {
	return r.allocations, nil
}

func (r *allocBatchRepo) SnapshotAllocation(allocationID string, stockAt decimal.Decimal, rollsAt int) error {
	for _, a := range r.allocations {
		if a.ID == allocationID {
			a.StockAtAllocation = &stockAt
			a.RollQuantityAtAllocation = &rollsAt
			return nil
		}
	}
	return domain.ErrNotFound
}

func (r *allocBatchRepo) GetSizeColorRequests(string) ([]*entity.SizeColorRequest, error) {
	return nil, nil
}

func (r *allocBatchRepo) AddTimeline(ev *entity.TimelineEvent) error {
	r.timeline = append(r.timeline, ev)
	return nil
}

func (r *allocBatchRepo) GetTimeline(string) ([]*entity.TimelineEvent, error) {
	return r.timeline, nil
}

func (r *allocBatchRepo) CountForDate(time.Time) (int, error) { return 0, nil }

type allocMaterialRepo allocStore

func (r *allocMaterialRepo) GetVariantByID(id string) (*entity.MaterialColorVariant, error) {
	return r.variants[id], nil
}

func (r *allocMaterialRepo) GetVariantForUpdate(id string) (*entity.MaterialColorVariant, error) {
	return r.variants[id], nil
}

func (r *allocMaterialRepo) AddStock(variantID string, qty decimal.Decimal) (decimal.Decimal, error) {
	v := r.variants[variantID]
	v.Stock = v.Stock.Add(qty)
	return v.Stock, nil
}

func (r *allocMaterialRepo) DeductStock(variantID string, qty, floor decimal.Decimal) (decimal.Decimal, error) {
	v := r.variants[variantID]
	if v.Stock.Sub(qty).LessThan(floor) {
		return decimal.Zero, domain.ErrInsufficientStock
	}
	v.Stock = v.Stock.Sub(qty)
	return v.Stock, nil
}

func (r *allocMaterialRepo) SetStock(variantID string, qty decimal.Decimal) (decimal.Decimal, error) {
	v := r.variants[variantID]
	v.Stock = qty
	return v.Stock, nil
}

type allocTxRepo allocStore

func (r *allocTxRepo) Create(tx *entity.MaterialTransaction) error {
	r.txs = append(r.txs, tx)
	return nil
}

func (r *allocTxRepo) ListByVariant(string, int, int) ([]*entity.MaterialTransaction, error) {
	return r.txs, nil
}

func (r *allocTxRepo) ListByBatch(string) ([]*entity.MaterialTransaction, error) {
	return r.txs, nil
}

type allocUserRepo allocStore

func (r *allocUserRepo) Create(*entity.User) error                 { return nil }
func (r *allocUserRepo) GetByID(string) (*entity.User, error)      { return nil, nil }
func (r *allocUserRepo) GetByEmail(string) (*entity.User, error)   { return nil, nil }
func (r *allocUserRepo) ListByRole(string) ([]*entity.User, error) { return nil, nil }

func newAllocStore(status production.BatchStatus, allocatedQty, stock, minStock int64) *allocStore {
	s := &allocStore{
		batch: &entity.ProductionBatch{
			ID: "batch-1", BatchSKU: "PROD-20260830-001",
			Status: status, CreatedBy: "user-kepala-produksi",
		},
		variants: map[string]*entity.MaterialColorVariant{
			"variant-1": {
				ID: "variant-1", MaterialID: "material-1", Color: "Hitam", Unit: "meter",
				Stock:        decimal.NewFromInt(stock),
				MinimumStock: decimal.NewFromInt(minStock),
				RollQuantity: 8,
			},
		},
	}
	if allocatedQty > 0 {
		s.allocations = append(s.allocations, &entity.BatchMaterialColorAllocation{
			ID: "alloc-1", BatchID: "batch-1",
			MaterialColorVariantID: "variant-1",
			AllocatedQty:           decimal.NewFromInt(allocatedQty),
		})
	}
	return s
}

func TestConfirm_SnapshotPotongStokDanMajukanBatch(t *testing.T) {
	s := newAllocStore(production.BatchMaterialRequested, 60, 100, 10)
	uc := allocation.NewConfirmUseCase(s, nil)

	batch, err := uc.Confirm(context.Background(), "batch-1", "user-gudang")
	require.NoError(t, err)

	assert.Equal(t, production.BatchMaterialAllocated, batch.Status)
	require.NotNil(t, batch.StartDate, "tanggal mulai terisi saat alokasi")

	// Snapshot merekam keadaan SEBELUM pemotongan stok.
	require.Len(t, batch.Allocations, 1)
	alloc := batch.Allocations[0]
	require.NotNil(t, alloc.StockAtAllocation)
	assert.True(t, alloc.StockAtAllocation.Equal(decimal.NewFromInt(100)))
	require.NotNil(t, alloc.RollQuantityAtAllocation)
	assert.Equal(t, 8, *alloc.RollQuantityAtAllocation)

	assert.True(t, s.variants["variant-1"].Stock.Equal(decimal.NewFromInt(40)))

	// Tepat satu transaksi OUT per baris alokasi, terikat ke batch.
	require.Len(t, s.txs, 1)
	assert.Equal(t, entity.TransactionTypeOUT, s.txs[0].Type)
	assert.Equal(t, "batch-1", s.txs[0].BatchID)
	assert.True(t, s.txs[0].Quantity.Equal(decimal.NewFromInt(60)))
}

func TestConfirm_DariPendingLangsung(t *testing.T) {
	s := newAllocStore(production.BatchPending, 60, 100, 10)
	uc := allocation.NewConfirmUseCase(s, nil)

	batch, err := uc.Confirm(context.Background(), "batch-1", "user-gudang")
	require.NoError(t, err)
	assert.Equal(t, production.BatchMaterialAllocated, batch.Status)
}

func TestConfirm_StokTidakCukup(t *testing.T) {
	s := newAllocStore(production.BatchMaterialRequested, 150, 100, 10)
	uc := allocation.NewConfirmUseCase(s, nil)

	_, err := uc.Confirm(context.Background(), "batch-1", "user-gudang")
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.Empty(t, s.txs)
	assert.Equal(t, production.BatchMaterialRequested, s.batch.Status)
}

// Alokasi yang menurunkan stok di bawah lantai minimum ditolak walau stoknya
// secara absolut masih cukup.
func TestConfirm_DiBawahStokMinimum(t *testing.T) {
	s := newAllocStore(production.BatchMaterialRequested, 60, 100, 50)
	uc := allocation.NewConfirmUseCase(s, nil)

	_, err := uc.Confirm(context.Background(), "batch-1", "user-gudang")
	assert.ErrorIs(t, err, domain.ErrBelowMinimumStock)
	assert.True(t, s.variants["variant-1"].Stock.Equal(decimal.NewFromInt(100)))
}

func TestConfirm_StatusSudahTerlewat(t *testing.T) {
	s := newAllocStore(production.BatchMaterialAllocated, 60, 100, 10)
	uc := allocation.NewConfirmUseCase(s, nil)

	_, err := uc.Confirm(context.Background(), "batch-1", "user-gudang")
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestConfirm_TanpaBarisAlokasi(t *testing.T) {
	s := newAllocStore(production.BatchMaterialRequested, 0, 100, 10)
	uc := allocation.NewConfirmUseCase(s, nil)

	_, err := uc.Confirm(context.Background(), "batch-1", "user-gudang")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConfirm_BatchTidakAda(t *testing.T) {
	s := newAllocStore(production.BatchMaterialRequested, 60, 100, 10)
	uc := allocation.NewConfirmUseCase(s, nil)

	_, err := uc.Confirm(context.Background(), "batch-lain", "user-gudang")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
