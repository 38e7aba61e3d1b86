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

// TaskUseCase siklus hidup tugas per tahap (assign/start/complete/verify).
// Semua transisi divalidasi lewat tabel transisi di domain/production, bukan
// perbandingan string tersebar.
type TaskUseCase struct {
	txr      TxRunner
	notifier Notifier
}

// NewTaskUseCase membangun use case tugas tahap.
func NewTaskUseCase(txr TxRunner, notifier Notifier) *TaskUseCase {
	return &TaskUseCase{txr: txr, notifier: notifier}
}

// pendingNotification notifikasi yang dikumpulkan selama transaksi dan dikirim
// best-effort setelah commit.
type pendingNotification struct {
	userID  string
	ntype   string
	title   string
	message string
}

func (uc *TaskUseCase) send(ctx context.Context, list []pendingNotification) {
	if uc.notifier == nil {
		return
	}
	for _, n := range list {
		go uc.notifier.Notify(context.WithoutCancel(ctx), n.userID, n.ntype, n.title, n.message)
	}
}

// AssignInput penugasan satu tahap ke seorang pekerja.
type AssignInput struct {
	BatchID    string
	Stage      production.Stage
	AssigneeID string
	ActorID    string
}

// Assign membuat tugas tahap (cutting/sewing) dan memajukan status batch.
// Finishing tidak di-assign langsung: tugasnya lahir dari forward sub-batch.
func (uc *TaskUseCase) Assign(ctx context.Context, in AssignInput) (*entity.StageTask, error) {
	if !in.Stage.Valid() {
		return nil, fmt.Errorf("%w: tahap %q tidak dikenal", domain.ErrInvalidInput, in.Stage)
	}
	predecessor, ok := in.Stage.PredecessorBatchStatus()
	if !ok {
		return nil, fmt.Errorf("%w: tahap %s ditugaskan lewat forward sub-batch", domain.ErrInvalidInput, in.Stage)
	}
	if in.AssigneeID == "" {
		return nil, fmt.Errorf("%w: assignee wajib diisi", domain.ErrInvalidInput)
	}

	var task *entity.StageTask
	var pending []pendingNotification
	err := uc.txr.RunProduction(ctx, func(r Repos) error {
		batch, err := r.Batches.GetByIDForUpdate(in.BatchID)
		if err != nil {
			return err
		}
		if batch == nil {
			return fmt.Errorf("%w: batch %s", domain.ErrNotFound, in.BatchID)
		}
		if err := production.EnsureStatusIn(batch.Status, predecessor); err != nil {
			return err
		}
		existing, err := r.Tasks.GetByBatchAndStage(in.BatchID, in.Stage)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: tugas %s untuk batch %s sudah ada", domain.ErrConflict, in.Stage, batch.BatchSKU)
		}

		assignee, err := r.Users.GetByID(in.AssigneeID)
		if err != nil {
			return err
		}
		if assignee == nil {
			return fmt.Errorf("%w: pengguna %s", domain.ErrNotFound, in.AssigneeID)
		}
		if assignee.Role != production.RoleForStage[in.Stage] {
			return fmt.Errorf("%w: tahap %s butuh role %s, pengguna ber-role %s",
				domain.ErrRoleMismatch, in.Stage, production.RoleForStage[in.Stage], assignee.Role)
		}

		received, err := piecesReceivedForStage(r, batch, in.Stage)
		if err != nil {
			return err
		}

		now := time.Now()
		task = &entity.StageTask{
			ID:             uuid.New().String(),
			BatchID:        in.BatchID,
			Stage:          in.Stage,
			AssignedToID:   in.AssigneeID,
			Status:         production.TaskPending,
			PiecesReceived: received,
			AssignedAt:     now,
		}
		if err := r.Tasks.Create(task); err != nil {
			return err
		}
		if err := r.Batches.UpdateStatus(in.BatchID, in.Stage.AssignedBatchStatus()); err != nil {
			return err
		}
		if err := r.Batches.AddTimeline(&entity.TimelineEvent{
			ID:          uuid.New().String(),
			BatchID:     in.BatchID,
			Event:       string(in.Stage.AssignedBatchStatus()),
			Description: fmt.Sprintf("tahap %s ditugaskan ke %s", in.Stage, assignee.Name),
			UserID:      in.ActorID,
			CreatedAt:   now,
		}); err != nil {
			return err
		}
		pending = append(pending, pendingNotification{
			userID:  in.AssigneeID,
			ntype:   "TASK_ASSIGNED",
			title:   "Tugas baru",
			message: fmt.Sprintf("Anda ditugaskan tahap %s untuk batch %s", in.Stage, batch.BatchSKU),
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.send(ctx, pending)
	return task, nil
}

// piecesReceivedForStage kuantitas yang diterima pekerja saat assign:
// cutting menerima target batch, sewing menerima total hasil potong.
func piecesReceivedForStage(r Repos, batch *entity.ProductionBatch, stage production.Stage) (int, error) {
	switch stage {
	case production.StageCutting:
		requests, err := r.Batches.GetSizeColorRequests(batch.ID)
		if err != nil {
			return 0, err
		}
		total := 0
		for _, req := range requests {
			total += req.Quantity
		}
		return total, nil
	case production.StageSewing:
		results, err := r.Tasks.GetCuttingResults(batch.ID)
		if err != nil {
			return 0, err
		}
		total := 0
		for _, res := range results {
			total += res.ActualPieces
		}
		return total, nil
	}
	return 0, nil
}

// Start menandai tugas mulai dikerjakan (PENDING -> IN_PROGRESS).
// Idempoten terhadap balapan antar aktor: status batch hanya maju bila belum
// melewati status IN_x tahap tsb.
func (uc *TaskUseCase) Start(ctx context.Context, batchID string, stage production.Stage, actorID string) error {
	return uc.txr.RunProduction(ctx, func(r Repos) error {
		task, err := r.Tasks.GetByBatchAndStageForUpdate(batchID, stage)
		if err != nil {
			return err
		}
		if task == nil {
			return fmt.Errorf("%w: tugas %s batch %s", domain.ErrNotFound, stage, batchID)
		}
		if task.AssignedToID != actorID {
			return fmt.Errorf("%w: bukan pemegang tugas", domain.ErrForbidden)
		}
		if err := production.EnsureTaskTransition(task.Status, production.TaskInProgress); err != nil {
			return err
		}
		now := time.Now()
		task.Status = production.TaskInProgress
		task.StartedAt = &now
		if err := r.Tasks.Update(task); err != nil {
			return err
		}

		batch, err := r.Batches.GetByIDForUpdate(batchID)
		if err != nil {
			return err
		}
		if batch.Status.Before(stage.InProgressBatchStatus()) {
			if err := r.Batches.UpdateStatus(batchID, stage.InProgressBatchStatus()); err != nil {
				return err
			}
		}
		return r.Batches.AddTimeline(&entity.TimelineEvent{
			ID:        uuid.New().String(),
			BatchID:   batchID,
			Event:     string(stage.InProgressBatchStatus()),
			UserID:    actorID,
			CreatedAt: now,
		})
	})
}

// Complete melaporkan tugas selesai. Wajib sudah ada hasil (piecesCompleted >
// 0); boleh dari IN_PROGRESS maupun REJECTED (lapor ulang setelah ditolak).
func (uc *TaskUseCase) Complete(ctx context.Context, batchID string, stage production.Stage, actorID string) error {
	var pending []pendingNotification
	err := uc.txr.RunProduction(ctx, func(r Repos) error {
		task, err := r.Tasks.GetByBatchAndStageForUpdate(batchID, stage)
		if err != nil {
			return err
		}
		if task == nil {
			return fmt.Errorf("%w: tugas %s batch %s", domain.ErrNotFound, stage, batchID)
		}
		if task.AssignedToID != actorID {
			return fmt.Errorf("%w: bukan pemegang tugas", domain.ErrForbidden)
		}
		if err := production.EnsureTaskTransition(task.Status, production.TaskCompleted); err != nil {
			return err
		}
		if task.PiecesCompleted <= 0 {
			return fmt.Errorf("%w: belum ada hasil yang dilaporkan", domain.ErrInvalidInput)
		}
		now := time.Now()
		task.Status = production.TaskCompleted
		task.CompletedAt = &now
		if err := r.Tasks.Update(task); err != nil {
			return err
		}

		batch, err := r.Batches.GetByIDForUpdate(batchID)
		if err != nil {
			return err
		}
		if batch.Status.Before(stage.CompletedBatchStatus()) {
			if err := r.Batches.UpdateStatus(batchID, stage.CompletedBatchStatus()); err != nil {
				return err
			}
		}
		if err := r.Batches.AddTimeline(&entity.TimelineEvent{
			ID:          uuid.New().String(),
			BatchID:     batchID,
			Event:       string(stage.CompletedBatchStatus()),
			Description: fmt.Sprintf("%d pcs dilaporkan selesai", task.PiecesCompleted),
			UserID:      actorID,
			CreatedAt:   now,
		}); err != nil {
			return err
		}

		heads, err := r.Users.ListByRole(entity.RoleKepalaProduksi)
		if err != nil {
			return err
		}
		for _, head := range heads {
			pending = append(pending, pendingNotification{
				userID:  head.ID,
				ntype:   "TASK_COMPLETED",
				title:   "Menunggu verifikasi",
				message: fmt.Sprintf("Tahap %s batch %s menunggu verifikasi", stage, batch.BatchSKU),
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

// VerifyInput keputusan verifikasi tugas tahap oleh kepala produksi.
type VerifyInput struct {
	BatchID string
	Stage   production.Stage
	Approve bool
	Note    string
	ActorID string
}

// Verify menyetujui (COMPLETED -> VERIFIED, batch maju) atau menolak
// (COMPLETED -> REJECTED, batch mundur ke IN_x agar pekerja lapor ulang).
// Memverifikasi tugas yang sudah VERIFIED gagal dengan ErrInvalidState; tidak
// ada efek samping ganda.
func (uc *TaskUseCase) Verify(ctx context.Context, in VerifyInput) error {
	var pending []pendingNotification
	err := uc.txr.RunProduction(ctx, func(r Repos) error {
		task, err := r.Tasks.GetByBatchAndStageForUpdate(in.BatchID, in.Stage)
		if err != nil {
			return err
		}
		if task == nil {
			return fmt.Errorf("%w: tugas %s batch %s", domain.ErrNotFound, in.Stage, in.BatchID)
		}
		target := production.TaskVerified
		if !in.Approve {
			target = production.TaskRejected
		}
		if err := production.EnsureTaskTransition(task.Status, target); err != nil {
			return err
		}

		now := time.Now()
		task.Status = target
		task.Notes = in.Note
		batchStatus := in.Stage.VerifiedBatchStatus()
		if in.Approve {
			task.VerifiedAt = &now
			task.VerifiedByID = in.ActorID
			if in.Stage == production.StageCutting {
				if err := r.Tasks.ConfirmCuttingResults(in.BatchID); err != nil {
					return err
				}
			}
		} else {
			batchStatus = in.Stage.InProgressBatchStatus()
		}
		if err := r.Tasks.Update(task); err != nil {
			return err
		}
		if err := r.Batches.UpdateStatus(in.BatchID, batchStatus); err != nil {
			return err
		}

		batch, err := r.Batches.GetByID(in.BatchID)
		if err != nil {
			return err
		}
		desc := "disetujui"
		ntype := "TASK_VERIFIED"
		if !in.Approve {
			desc = "ditolak: " + in.Note
			ntype = "TASK_REJECTED"
		}
		if err := r.Batches.AddTimeline(&entity.TimelineEvent{
			ID:          uuid.New().String(),
			BatchID:     in.BatchID,
			Event:       string(batchStatus),
			Description: fmt.Sprintf("verifikasi tahap %s %s", in.Stage, desc),
			UserID:      in.ActorID,
			CreatedAt:   now,
		}); err != nil {
			return err
		}
		pending = append(pending, pendingNotification{
			userID:  task.AssignedToID,
			ntype:   ntype,
			title:   "Hasil verifikasi",
			message: fmt.Sprintf("Tahap %s batch %s %s", in.Stage, batch.BatchSKU, desc),
		})
		return nil
	})
	if err != nil {
		return err
	}
	uc.send(ctx, pending)
	return nil
}
