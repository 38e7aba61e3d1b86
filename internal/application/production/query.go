package production

import (
	"context"
	"fmt"

	"github.com/konveksipro/produksi-api/internal/domain"
	"github.com/konveksipro/produksi-api/internal/domain/entity"
	"github.com/konveksipro/produksi-api/internal/domain/production"
	"github.com/konveksipro/produksi-api/internal/domain/repository"
)

// QueryUseCase sisi baca alur produksi; repo terikat ke pool, tanpa transaksi.
type QueryUseCase struct {
	batches       repository.BatchRepository
	tasks         repository.TaskRepository
	subBatches    repository.SubBatchRepository
	finishedGoods repository.FinishedGoodRepository
	auditLogs     repository.AuditLogRepository
}

// NewQueryUseCase membangun sisi baca.
func NewQueryUseCase(
	batches repository.BatchRepository,
	tasks repository.TaskRepository,
	subBatches repository.SubBatchRepository,
	finishedGoods repository.FinishedGoodRepository,
	auditLogs repository.AuditLogRepository,
) *QueryUseCase {
	return &QueryUseCase{
		batches:       batches,
		tasks:         tasks,
		subBatches:    subBatches,
		finishedGoods: finishedGoods,
		auditLogs:     auditLogs,
	}
}

// BatchDetail tampilan lengkap satu batch untuk API.
type BatchDetail struct {
	Batch          *entity.ProductionBatch
	Tasks          []*entity.StageTask
	CuttingResults []*entity.CuttingResult
	SubBatches     []*entity.SubBatch
	FinishedGoods  []*entity.FinishedGood
}

// GetBatchDetail memuat batch beserta seluruh anaknya.
func (uc *QueryUseCase) GetBatchDetail(_ context.Context, batchID string) (*BatchDetail, error) {
	batch, err := uc.batches.GetByID(batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, fmt.Errorf("%w: batch %s", domain.ErrNotFound, batchID)
	}

	requests, err := uc.batches.GetSizeColorRequests(batchID)
	if err != nil {
		return nil, err
	}
	for _, req := range requests {
		batch.SizeColorRequests = append(batch.SizeColorRequests, *req)
	}
	allocations, err := uc.batches.GetAllocations(batchID)
	if err != nil {
		return nil, err
	}
	for _, alloc := range allocations {
		batch.Allocations = append(batch.Allocations, *alloc)
	}
	timeline, err := uc.batches.GetTimeline(batchID)
	if err != nil {
		return nil, err
	}
	for _, ev := range timeline {
		batch.Timeline = append(batch.Timeline, *ev)
	}

	detail := &BatchDetail{Batch: batch}
	for _, stage := range []production.Stage{production.StageCutting, production.StageSewing, production.StageFinishing} {
		task, err := uc.tasks.GetByBatchAndStage(batchID, stage)
		if err != nil {
			return nil, err
		}
		if task != nil {
			detail.Tasks = append(detail.Tasks, task)
		}
	}
	if detail.CuttingResults, err = uc.tasks.GetCuttingResults(batchID); err != nil {
		return nil, err
	}
	if detail.SubBatches, err = uc.subBatches.ListByBatch(batchID); err != nil {
		return nil, err
	}
	if detail.FinishedGoods, err = uc.finishedGoods.ListByBatch(batchID); err != nil {
		return nil, err
	}
	return detail, nil
}

// ListBatches memuat batch, opsional difilter status.
func (uc *QueryUseCase) ListBatches(_ context.Context, status production.BatchStatus, limit, offset int) ([]*entity.ProductionBatch, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: status %q tidak dikenal", domain.ErrInvalidInput, status)
	}
	return uc.batches.List(status, limit, offset)
}

// GetSubBatch memuat satu sub-batch beserta itemnya.
func (uc *QueryUseCase) GetSubBatch(_ context.Context, id string) (*entity.SubBatch, error) {
	sb, err := uc.subBatches.GetByID(id)
	if err != nil {
		return nil, err
	}
	if sb == nil {
		return nil, fmt.Errorf("%w: sub-batch %s", domain.ErrNotFound, id)
	}
	return sb, nil
}

// SubBatchAudit jejak audit sub-batch (termasuk snapshot yang di-reject).
func (uc *QueryUseCase) SubBatchAudit(_ context.Context, subBatchID string) ([]*entity.AuditLog, error) {
	return uc.auditLogs.ListByEntity("sub_batch", subBatchID)
}

// VerificationQueue antrean item yang menunggu verifikasi, disaring per role:
// kepala produksi melihat tugas COMPLETED dan sub-batch CREATED, kepala gudang
// melihat sub-batch SUBMITTED_TO_WAREHOUSE. Owner melihat keduanya.
type VerificationQueue struct {
	Tasks      []*entity.StageTask
	SubBatches []*entity.SubBatch
}

// PendingVerifications memuat antrean verifikasi untuk role pemanggil.
func (uc *QueryUseCase) PendingVerifications(_ context.Context, role string) (*VerificationQueue, error) {
	queue := &VerificationQueue{}
	if role == entity.RoleOwner || role == entity.RoleKepalaProduksi {
		tasks, err := uc.tasks.ListByStatus(production.TaskCompleted)
		if err != nil {
			return nil, err
		}
		queue.Tasks = tasks
		created, err := uc.subBatches.ListByStatus(production.SubBatchCreated)
		if err != nil {
			return nil, err
		}
		queue.SubBatches = created
	}
	if role == entity.RoleOwner || role == entity.RoleKepalaGudang {
		submitted, err := uc.subBatches.ListByStatus(production.SubBatchSubmittedToWarehouse)
		if err != nil {
			return nil, err
		}
		queue.SubBatches = append(queue.SubBatches, submitted...)
	}
	if role != entity.RoleOwner && role != entity.RoleKepalaProduksi && role != entity.RoleKepalaGudang {
		return nil, fmt.Errorf("%w: role %s tidak punya antrean verifikasi", domain.ErrForbidden, role)
	}
	return queue, nil
}
