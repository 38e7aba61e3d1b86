package production

import (
	"fmt"

	"github.com/konveksipro/produksi-api/internal/domain"
)

// Stage tahap produksi yang punya tugas per batch.
type Stage string

const (
	StageCutting   Stage = "CUTTING"
	StageSewing    Stage = "SEWING"
	StageFinishing Stage = "FINISHING"
)

// TaskStatus status tugas per tahap.
// PENDING -> IN_PROGRESS -> COMPLETED -> VERIFIED | REJECTED.
// REJECTED tidak terminal: pekerja boleh lapor ulang lalu complete lagi.
type TaskStatus string

const (
	TaskPending    TaskStatus = "PENDING"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskCompleted  TaskStatus = "COMPLETED"
	TaskVerified   TaskStatus = "VERIFIED"
	TaskRejected   TaskStatus = "REJECTED"
)

var taskTransitions = map[TaskStatus][]TaskStatus{
	TaskPending:    {TaskInProgress},
	TaskInProgress: {TaskCompleted},
	TaskCompleted:  {TaskVerified, TaskRejected},
	TaskRejected:   {TaskInProgress, TaskCompleted},
}

// CanTaskTransition melaporkan apakah transisi tugas diizinkan.
func CanTaskTransition(from, to TaskStatus) bool {
	for _, allowed := range taskTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// EnsureTaskTransition memvalidasi transisi tugas dengan pesan expected vs actual.
func EnsureTaskTransition(from, to TaskStatus) error {
	if !CanTaskTransition(from, to) {
		return fmt.Errorf("%w: tugas berstatus %s, tidak bisa pindah ke %s", domain.ErrInvalidState, from, to)
	}
	return nil
}

// RoleForStage role pekerja yang boleh ditugaskan per tahap.
var RoleForStage = map[Stage]string{
	StageCutting:   "PEMOTONG",
	StageSewing:    "PENJAHIT",
	StageFinishing: "FINISHING",
}

// Pemetaan tahap -> status batch pada tiap langkah siklus tugas.
var (
	assignedStatus = map[Stage]BatchStatus{
		StageCutting:   BatchAssignedToCutter,
		StageSewing:    BatchAssignedToSewer,
		StageFinishing: BatchAssignedToFinishing,
	}
	inProgressStatus = map[Stage]BatchStatus{
		StageCutting:   BatchInCutting,
		StageSewing:    BatchInSewing,
		StageFinishing: BatchInFinishing,
	}
	completedStatus = map[Stage]BatchStatus{
		StageCutting:   BatchCuttingCompleted,
		StageSewing:    BatchSewingCompleted,
		StageFinishing: BatchFinishingCompleted,
	}
	verifiedStatus = map[Stage]BatchStatus{
		StageCutting:   BatchCuttingVerified,
		StageSewing:    BatchSewingVerified,
		StageFinishing: BatchSubmittedToWarehouse,
	}
	// predecessorStatus status batch yang disyaratkan sebelum assign tahap.
	predecessorStatus = map[Stage]BatchStatus{
		StageCutting: BatchMaterialAllocated,
		StageSewing:  BatchCuttingVerified,
	}
)

// AssignedBatchStatus status batch setelah assign tahap.
func (s Stage) AssignedBatchStatus() BatchStatus { return assignedStatus[s] }

// InProgressBatchStatus status batch saat tahap berjalan.
func (s Stage) InProgressBatchStatus() BatchStatus { return inProgressStatus[s] }

// CompletedBatchStatus status batch setelah tahap selesai dilaporkan.
func (s Stage) CompletedBatchStatus() BatchStatus { return completedStatus[s] }

// VerifiedBatchStatus status batch setelah tahap diverifikasi.
func (s Stage) VerifiedBatchStatus() BatchStatus { return verifiedStatus[s] }

// PredecessorBatchStatus status batch yang wajib sebelum assign. Finishing
// tidak di-assign langsung; tugasnya dibuat lewat forward sub-batch.
func (s Stage) PredecessorBatchStatus() (BatchStatus, bool) {
	st, ok := predecessorStatus[s]
	return st, ok
}

// Valid melaporkan apakah s adalah tahap yang dikenal.
func (s Stage) Valid() bool {
	switch s {
	case StageCutting, StageSewing, StageFinishing:
		return true
	}
	return false
}
