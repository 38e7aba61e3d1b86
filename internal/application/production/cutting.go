package production

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/konveksipro/produksi-api/internal/domain"
	"github.com/konveksipro/produksi-api/internal/domain/entity"
	"github.com/konveksipro/produksi-api/internal/domain/production"
)

// CuttingRow satu baris laporan hasil potong per ukuran+warna.
type CuttingRow struct {
	ProductSize  string
	Color        string
	ActualPieces int
}

// CuttingProgressInput laporan progres potong (boleh berkali-kali).
type CuttingProgressInput struct {
	BatchID      string
	ActorID      string
	Rows         []CuttingRow
	RejectPieces int
}

// CuttingProgress mencatat hasil potong. Semantik replace: tiap baris
// di-upsert per (batch, size, color) dan flag konfirmasi direset supaya
// approval lama tidak terbawa; total tugas dihitung ulang dari seluruh baris,
// bukan dari counter tersimpan.
func (uc *TaskUseCase) CuttingProgress(ctx context.Context, in CuttingProgressInput) error {
	if len(in.Rows) == 0 {
		return fmt.Errorf("%w: minimal satu baris hasil potong", domain.ErrInvalidInput)
	}
	if in.RejectPieces < 0 {
		return fmt.Errorf("%w: reject tidak boleh negatif", domain.ErrInvalidInput)
	}
	for _, row := range in.Rows {
		if row.ProductSize == "" || row.Color == "" {
			return fmt.Errorf("%w: size dan color wajib diisi", domain.ErrInvalidInput)
		}
		if row.ActualPieces <= 0 {
			return fmt.Errorf("%w: hasil potong %s/%s harus lebih dari nol", domain.ErrInvalidInput, row.ProductSize, row.Color)
		}
	}

	return uc.txr.RunProduction(ctx, func(r Repos) error {
		task, err := r.Tasks.GetByBatchAndStageForUpdate(in.BatchID, production.StageCutting)
		if err != nil {
			return err
		}
		if task == nil {
			return fmt.Errorf("%w: tugas potong batch %s", domain.ErrNotFound, in.BatchID)
		}
		if task.AssignedToID != in.ActorID {
			return fmt.Errorf("%w: bukan pemegang tugas", domain.ErrForbidden)
		}
		if task.Status != production.TaskInProgress && task.Status != production.TaskRejected {
			return fmt.Errorf("%w: tugas potong berstatus %s, progres hanya saat %s",
				domain.ErrInvalidState, task.Status, production.TaskInProgress)
		}

		now := time.Now()
		for _, row := range in.Rows {
			if err := r.Tasks.UpsertCuttingResult(&entity.CuttingResult{
				ID:           uuid.New().String(),
				BatchID:      in.BatchID,
				ProductSize:  row.ProductSize,
				Color:        row.Color,
				ActualPieces: row.ActualPieces,
				UpdatedAt:    now,
			}); err != nil {
				return err
			}
		}

		// Total selalu diturunkan dari baris rinci.
		results, err := r.Tasks.GetCuttingResults(in.BatchID)
		if err != nil {
			return err
		}
		total := 0
		for _, res := range results {
			total += res.ActualPieces
		}
		task.PiecesCompleted = total
		task.RejectPieces = in.RejectPieces
		// Lapor ulang setelah reject mengembalikan tugas ke IN_PROGRESS.
		if task.Status == production.TaskRejected {
			task.Status = production.TaskInProgress
		}
		if err := r.Tasks.Update(task); err != nil {
			return err
		}
		return r.Batches.AddTimeline(&entity.TimelineEvent{
			ID:          uuid.New().String(),
			BatchID:     in.BatchID,
			Event:       "CUTTING_PROGRESS",
			Description: fmt.Sprintf("hasil potong dilaporkan, total %d pcs", total),
			UserID:      in.ActorID,
			CreatedAt:   now,
		})
	})
}
