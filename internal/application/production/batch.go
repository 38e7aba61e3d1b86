package production

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/konveksipro/produksi-api/internal/domain"
	"github.com/konveksipro/produksi-api/internal/domain/entity"
	"github.com/konveksipro/produksi-api/internal/domain/production"
)

// BatchUseCase siklus hidup batch: pembuatan, permintaan bahan, penutupan.
type BatchUseCase struct {
	txr      TxRunner
	notifier Notifier
}

// NewBatchUseCase membangun use case batch.
func NewBatchUseCase(txr TxRunner, notifier Notifier) *BatchUseCase {
	return &BatchUseCase{txr: txr, notifier: notifier}
}

func (uc *BatchUseCase) send(ctx context.Context, list []pendingNotification) {
	if uc.notifier == nil {
		return
	}
	for _, n := range list {
		go uc.notifier.Notify(context.WithoutCancel(ctx), n.userID, n.ntype, n.title, n.message)
	}
}

// AllocationInput rencana alokasi bahan per varian warna.
type AllocationInput struct {
	MaterialColorVariantID string
	AllocatedQty           decimal.Decimal
	RollQuantity           int
	MeterPerRoll           decimal.Decimal
}

// SizeColorInput permintaan kuantitas per ukuran+warna.
type SizeColorInput struct {
	ProductSize string
	Color       string
	Quantity    int
}

// CreateBatchInput pembuatan batch produksi baru.
type CreateBatchInput struct {
	ProductID   string
	Notes       string
	Requests    []SizeColorInput
	Allocations []AllocationInput
	ActorID     string
}

// Create membuat batch PENDING dengan SKU PROD-<YYYYMMDD>-<seq>. Alokasi di
// sini baru rencana; stok belum berkurang sampai gudang mengonfirmasi.
func (uc *BatchUseCase) Create(ctx context.Context, in CreateBatchInput) (*entity.ProductionBatch, error) {
	if len(in.Requests) == 0 {
		return nil, fmt.Errorf("%w: minimal satu permintaan ukuran/warna", domain.ErrInvalidInput)
	}
	for _, req := range in.Requests {
		if req.ProductSize == "" || req.Color == "" {
			return nil, fmt.Errorf("%w: size dan color wajib diisi", domain.ErrInvalidInput)
		}
		if req.Quantity <= 0 {
			return nil, fmt.Errorf("%w: kuantitas %s/%s harus lebih dari nol", domain.ErrInvalidInput, req.ProductSize, req.Color)
		}
	}
	if len(in.Allocations) == 0 {
		return nil, fmt.Errorf("%w: minimal satu alokasi bahan", domain.ErrInvalidInput)
	}
	for _, alloc := range in.Allocations {
		if alloc.AllocatedQty.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: alokasi bahan harus lebih dari nol", domain.ErrInvalidInput)
		}
		if alloc.RollQuantity < 0 {
			return nil, fmt.Errorf("%w: jumlah roll tidak boleh negatif", domain.ErrInvalidInput)
		}
	}

	var created *entity.ProductionBatch
	err := uc.txr.RunProduction(ctx, func(r Repos) error {
		product, err := r.Products.GetByID(in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("%w: produk %s", domain.ErrNotFound, in.ProductID)
		}
		for _, alloc := range in.Allocations {
			variant, err := r.Materials.GetVariantByID(alloc.MaterialColorVariantID)
			if err != nil {
				return err
			}
			if variant == nil {
				return fmt.Errorf("%w: varian bahan %s", domain.ErrNotFound, alloc.MaterialColorVariantID)
			}
		}

		now := time.Now()
		seq, err := r.Batches.CountForDate(now)
		if err != nil {
			return err
		}
		batch := &entity.ProductionBatch{
			ID:        uuid.New().String(),
			BatchSKU:  fmt.Sprintf("PROD-%s-%03d", now.Format("20060102"), seq+1),
			ProductID: in.ProductID,
			Status:    production.BatchPending,
			Notes:     in.Notes,
			CreatedBy: in.ActorID,
			CreatedAt: now,
			UpdatedAt: now,
		}
		totalRolls := 0
		for _, alloc := range in.Allocations {
			batch.Allocations = append(batch.Allocations, entity.BatchMaterialColorAllocation{
				ID:                     uuid.New().String(),
				BatchID:                batch.ID,
				MaterialColorVariantID: alloc.MaterialColorVariantID,
				AllocatedQty:           alloc.AllocatedQty,
				RollQuantity:           alloc.RollQuantity,
				MeterPerRoll:           alloc.MeterPerRoll,
			})
			totalRolls += alloc.RollQuantity
		}
		for _, req := range in.Requests {
			batch.SizeColorRequests = append(batch.SizeColorRequests, entity.SizeColorRequest{
				ID:          uuid.New().String(),
				BatchID:     batch.ID,
				ProductSize: req.ProductSize,
				Color:       req.Color,
				Quantity:    req.Quantity,
			})
		}
		batch.TotalRolls = totalRolls
		batch.TargetQuantity = batch.TargetFromRequests()

		if err := r.Batches.Create(batch); err != nil {
			return err
		}
		if err := r.Batches.AddTimeline(&entity.TimelineEvent{
			ID:          uuid.New().String(),
			BatchID:     batch.ID,
			Event:       "BATCH_CREATED",
			Description: fmt.Sprintf("batch %s dibuat, target %d pcs", batch.BatchSKU, batch.TargetQuantity),
			UserID:      in.ActorID,
			CreatedAt:   now,
		}); err != nil {
			return err
		}
		created = batch
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// RequestMaterials mengajukan permintaan bahan ke gudang: PENDING →
// MATERIAL_REQUESTED, seluruh kepala gudang diberi tahu.
func (uc *BatchUseCase) RequestMaterials(ctx context.Context, batchID, actorID string) error {
	var pending []pendingNotification
	err := uc.txr.RunProduction(ctx, func(r Repos) error {
		batch, err := r.Batches.GetByIDForUpdate(batchID)
		if err != nil {
			return err
		}
		if batch == nil {
			return fmt.Errorf("%w: batch %s", domain.ErrNotFound, batchID)
		}
		if err := production.EnsureTransition(batch.Status, production.BatchMaterialRequested); err != nil {
			return err
		}
		if err := r.Batches.UpdateStatus(batchID, production.BatchMaterialRequested); err != nil {
			return err
		}
		if err := r.Batches.AddTimeline(&entity.TimelineEvent{
			ID:          uuid.New().String(),
			BatchID:     batchID,
			Event:       "MATERIAL_REQUESTED",
			Description: fmt.Sprintf("permintaan bahan batch %s diajukan ke gudang", batch.BatchSKU),
			UserID:      actorID,
			CreatedAt:   time.Now(),
		}); err != nil {
			return err
		}
		keepers, err := r.Users.ListByRole(entity.RoleKepalaGudang)
		if err != nil {
			return err
		}
		for _, keeper := range keepers {
			pending = append(pending, pendingNotification{
				userID:  keeper.ID,
				ntype:   "MATERIAL_REQUESTED",
				title:   "Permintaan bahan",
				message: fmt.Sprintf("Batch %s menunggu konfirmasi alokasi bahan", batch.BatchSKU),
			})
		}
		return nil
	})
	if err != nil {
		return err
	}
	uc.send(ctx, pending)
	return nil
}

// Complete menutup batch. Gerbang: status WAREHOUSE_VERIFIED, seluruh sub-batch
// finishing settled, dan konservasi akhir terpenuhi — Σ (good+reject) finishing
// harus sama persis dengan total hasil jahit; selisih berarti ada potongan
// hilang atau dihitung ganda dan penutupan ditolak.
func (uc *BatchUseCase) Complete(ctx context.Context, batchID, actorID string) error {
	var pending []pendingNotification
	err := uc.txr.RunProduction(ctx, func(r Repos) error {
		batch, err := r.Batches.GetByIDForUpdate(batchID)
		if err != nil {
			return err
		}
		if batch == nil {
			return fmt.Errorf("%w: batch %s", domain.ErrNotFound, batchID)
		}
		if err := production.EnsureTransition(batch.Status, production.BatchCompleted); err != nil {
			return err
		}

		subBatches, err := r.SubBatches.ListByBatch(batchID)
		if err != nil {
			return err
		}
		good, reject := 0, 0
		for _, sb := range subBatches {
			switch sb.Source {
			case production.SourceSewing:
				if sb.Status != production.SubBatchForwardedToFinishing {
					return fmt.Errorf("%w: sub-batch jahit %s belum diteruskan ke finishing",
						domain.ErrInvalidState, sb.SubBatchSKU)
				}
			case production.SourceFinishing:
				if !sb.Status.Settled() {
					return fmt.Errorf("%w: sub-batch %s belum lolos verifikasi gudang",
						domain.ErrInvalidState, sb.SubBatchSKU)
				}
				good += sb.GoodOutput()
				reject += sb.RejectOutput()
			}
		}

		sewing, err := r.Tasks.GetByBatchAndStage(batchID, production.StageSewing)
		if err != nil {
			return err
		}
		if sewing == nil {
			return fmt.Errorf("%w: tugas jahit batch %s", domain.ErrNotFound, batch.BatchSKU)
		}
		if total := good + reject; total != sewing.PiecesCompleted {
			return fmt.Errorf("%w: total finishing %d pcs tidak sama dengan hasil jahit %d pcs",
				domain.ErrConflict, total, sewing.PiecesCompleted)
		}

		now := time.Now()
		for _, sb := range subBatches {
			if sb.Source != production.SourceFinishing || sb.Status == production.SubBatchCompleted {
				continue
			}
			sb.Status = production.SubBatchCompleted
			if err := r.SubBatches.Update(sb); err != nil {
				return err
			}
		}
		if err := r.Batches.SetCompleted(batchID, good, reject, now); err != nil {
			return err
		}
		if err := r.Batches.AddTimeline(&entity.TimelineEvent{
			ID:          uuid.New().String(),
			BatchID:     batchID,
			Event:       "BATCH_COMPLETED",
			Description: fmt.Sprintf("batch %s selesai: %d good, %d reject dari target %d", batch.BatchSKU, good, reject, batch.TargetQuantity),
			UserID:      actorID,
			CreatedAt:   now,
		}); err != nil {
			return err
		}
		pending = append(pending, pendingNotification{
			userID:  batch.CreatedBy,
			ntype:   "BATCH_COMPLETED",
			title:   "Batch selesai",
			message: fmt.Sprintf("Batch %s selesai: %d good, %d reject", batch.BatchSKU, good, reject),
		})
		return nil
	})
	if err != nil {
		return err
	}
	uc.send(ctx, pending)
	return nil
}

// TotalsReport hasil audit agregat satu batch; Consistent false berarti cache
// agregat menyimpang dari penjumlahan baris rincian.
type TotalsReport struct {
	BatchID        string
	StoredActual   int
	StoredReject   int
	DerivedActual  int
	DerivedReject  int
	Consistent     bool
	TargetQuantity int
}

// ReconcileTotals membandingkan agregat tersimpan dengan penjumlahan ulang dari
// sub-batch finishing. Read-only; dipakai audit berkala.
func (uc *BatchUseCase) ReconcileTotals(ctx context.Context, batchID string) (*TotalsReport, error) {
	var report *TotalsReport
	err := uc.txr.RunProduction(ctx, func(r Repos) error {
		batch, err := r.Batches.GetByID(batchID)
		if err != nil {
			return err
		}
		if batch == nil {
			return fmt.Errorf("%w: batch %s", domain.ErrNotFound, batchID)
		}
		subBatches, err := r.SubBatches.ListByBatch(batchID)
		if err != nil {
			return err
		}
		good, reject := 0, 0
		for _, sb := range subBatches {
			if sb.Source != production.SourceFinishing || !sb.Status.Settled() {
				continue
			}
			good += sb.GoodOutput()
			reject += sb.RejectOutput()
		}
		report = &TotalsReport{
			BatchID:        batchID,
			StoredActual:   batch.ActualQuantity,
			StoredReject:   batch.RejectQuantity,
			DerivedActual:  good,
			DerivedReject:  reject,
			Consistent:     batch.ActualQuantity == good && batch.RejectQuantity == reject,
			TargetQuantity: batch.TargetQuantity,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}
