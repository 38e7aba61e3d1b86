package allocation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/konveksipro/produksi-api/internal/domain"
	"github.com/konveksipro/produksi-api/internal/domain/entity"
	"github.com/konveksipro/produksi-api/internal/domain/production"
	"github.com/konveksipro/produksi-api/internal/domain/repository"
)

// ConfirmUseCase konfirmasi alokasi bahan sebuah batch: validasi kecukupan
// stok dan lantai stok minimum, snapshot nilai saat alokasi, potong stok lewat
// ledger (satu transaksi OUT per baris alokasi), lalu majukan status batch.
// Seluruhnya all-or-nothing dalam satu transaksi DB.
type ConfirmUseCase struct {
	txr      TxRunner
	notifier Notifier
}

// NewConfirmUseCase membangun use case konfirmasi alokasi.
func NewConfirmUseCase(txr TxRunner, notifier Notifier) *ConfirmUseCase {
	return &ConfirmUseCase{txr: txr, notifier: notifier}
}

// Confirm mengeksekusi konfirmasi alokasi untuk batchID atas nama userID.
func (uc *ConfirmUseCase) Confirm(ctx context.Context, batchID, userID string) (*entity.ProductionBatch, error) {
	var result *entity.ProductionBatch
	var notifyUserID string

	err := uc.txr.RunAllocation(ctx, func(
		batches repository.BatchRepository,
		materials repository.MaterialRepository,
		transactions repository.MaterialTransactionRepository,
		users repository.UserRepository,
	) error {
		batch, err := batches.GetByIDForUpdate(batchID)
		if err != nil {
			return err
		}
		if batch == nil {
			return fmt.Errorf("%w: batch %s", domain.ErrNotFound, batchID)
		}
		if err := production.EnsureStatusIn(batch.Status,
			production.BatchPending, production.BatchMaterialRequested); err != nil {
			return err
		}

		allocations, err := batches.GetAllocations(batchID)
		if err != nil {
			return err
		}
		if len(allocations) == 0 {
			return fmt.Errorf("%w: batch %s tidak punya baris alokasi bahan", domain.ErrInvalidInput, batch.BatchSKU)
		}

		now := time.Now()
		for _, alloc := range allocations {
			// Kunci baris varian supaya cek kecukupan & lantai minimum tidak
			// balapan dengan alokasi batch lain.
			variant, err := materials.GetVariantForUpdate(alloc.MaterialColorVariantID)
			if err != nil {
				return err
			}
			if variant == nil {
				return fmt.Errorf("%w: varian bahan %s", domain.ErrNotFound, alloc.MaterialColorVariantID)
			}
			if variant.Stock.LessThan(alloc.AllocatedQty) {
				return fmt.Errorf("%w: varian %s/%s stok %s, dibutuhkan %s",
					domain.ErrInsufficientStock, variant.MaterialID, variant.Color,
					variant.Stock.String(), alloc.AllocatedQty.String())
			}
			if variant.Stock.Sub(alloc.AllocatedQty).LessThan(variant.MinimumStock) {
				return fmt.Errorf("%w: varian %s/%s sisa %s < minimum %s",
					domain.ErrBelowMinimumStock, variant.MaterialID, variant.Color,
					variant.Stock.Sub(alloc.AllocatedQty).String(), variant.MinimumStock.String())
			}

			// Snapshot keadaan saat konfirmasi, lalu potong stok.
			if err := batches.SnapshotAllocation(alloc.ID, variant.Stock, variant.RollQuantity); err != nil {
				return err
			}
			if _, err := materials.DeductStock(variant.ID, alloc.AllocatedQty, variant.MinimumStock); err != nil {
				return err
			}
			if err := transactions.Create(&entity.MaterialTransaction{
				ID:                     uuid.New().String(),
				MaterialColorVariantID: variant.ID,
				Type:                   entity.TransactionTypeOUT,
				Quantity:               alloc.AllocatedQty,
				Unit:                   variant.Unit,
				BatchID:                batchID,
				Note:                   "alokasi bahan batch " + batch.BatchSKU,
				UserID:                 userID,
				CreatedAt:              now,
			}); err != nil {
				return err
			}
		}

		if err := batches.UpdateStatus(batchID, production.BatchMaterialAllocated); err != nil {
			return err
		}
		if err := batches.SetStartDate(batchID, now); err != nil {
			return err
		}
		if err := batches.AddTimeline(&entity.TimelineEvent{
			ID:          uuid.New().String(),
			BatchID:     batchID,
			Event:       "MATERIAL_ALLOCATED",
			Description: fmt.Sprintf("%d baris alokasi bahan dikonfirmasi", len(allocations)),
			UserID:      userID,
			CreatedAt:   now,
		}); err != nil {
			return err
		}

		result, err = batches.GetByID(batchID)
		if err != nil {
			return err
		}
		result.Allocations = make([]entity.BatchMaterialColorAllocation, 0, len(allocations))
		refreshed, err := batches.GetAllocations(batchID)
		if err != nil {
			return err
		}
		for _, a := range refreshed {
			result.Allocations = append(result.Allocations, *a)
		}
		notifyUserID = result.CreatedBy
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Notifikasi di luar transaksi utama: best-effort, tidak memblokir.
	if uc.notifier != nil && notifyUserID != "" {
		go uc.notifier.Notify(context.WithoutCancel(ctx), notifyUserID, "MATERIAL_ALLOCATED",
			"Bahan dialokasikan",
			fmt.Sprintf("Bahan untuk batch %s telah dialokasikan", result.BatchSKU))
	}
	return result, nil
}
