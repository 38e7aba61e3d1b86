package production

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/konveksipro/produksi-api/internal/domain/entity"
	"github.com/konveksipro/produksi-api/internal/domain/production"
)

// BatchReconciler menghitung ulang status agregat batch dari keadaan
// sub-komponennya. Berlangganan ke bus event sehingga handler sub-batch tidak
// perlu tahu aturan kenaikan status batch.
type BatchReconciler struct{}

// NewBatchReconciler membangun rekonsiler dan mendaftarkannya ke bus.
func NewBatchReconciler(bus *Bus) *BatchReconciler {
	rec := &BatchReconciler{}
	bus.Subscribe(rec.Handle)
	return rec
}

// Handle merespons transisi sub-batch dengan rekonsiliasi status batch.
func (rec *BatchReconciler) Handle(r Repos, ev Event) error {
	switch ev.Name {
	case EventSubBatchForwarded:
		return rec.advanceToFinishing(r, ev)
	case EventSubBatchWarehouseVerified:
		return rec.promoteWarehouseVerified(r, ev)
	}
	return nil
}

// advanceToFinishing memajukan batch ke ASSIGNED_TO_FINISHING hanya bila tugas
// jahit sudah COMPLETED/VERIFIED — status batch tidak boleh melompat selagi
// sewing masih berjalan.
func (rec *BatchReconciler) advanceToFinishing(r Repos, ev Event) error {
	batch, err := r.Batches.GetByIDForUpdate(ev.BatchID)
	if err != nil {
		return err
	}
	if batch == nil {
		return nil
	}
	if !batch.Status.Before(production.BatchAssignedToFinishing) {
		return nil
	}
	sewing, err := r.Tasks.GetByBatchAndStage(ev.BatchID, production.StageSewing)
	if err != nil {
		return err
	}
	if sewing == nil {
		return nil
	}
	if sewing.Status != production.TaskCompleted && sewing.Status != production.TaskVerified {
		return nil
	}
	return r.Batches.UpdateStatus(ev.BatchID, production.BatchAssignedToFinishing)
}

// promoteWarehouseVerified menaikkan batch ke WAREHOUSE_VERIFIED dengan agregat
// terhitung ulang bila seluruh sub-batch finishing sudah lolos gudang.
func (rec *BatchReconciler) promoteWarehouseVerified(r Repos, ev Event) error {
	batch, err := r.Batches.GetByIDForUpdate(ev.BatchID)
	if err != nil {
		return err
	}
	if batch == nil || !batch.Status.Before(production.BatchWarehouseVerified) {
		return nil
	}
	subBatches, err := r.SubBatches.ListByBatch(ev.BatchID)
	if err != nil {
		return err
	}
	good, reject := 0, 0
	for _, sb := range subBatches {
		if sb.Source != production.SourceFinishing {
			continue
		}
		if !sb.Status.Settled() {
			return nil
		}
		good += sb.GoodOutput()
		reject += sb.RejectOutput()
	}
	if err := r.Batches.UpdateStatus(ev.BatchID, production.BatchWarehouseVerified); err != nil {
		return err
	}
	if err := r.Batches.UpdateTotals(ev.BatchID, good, reject); err != nil {
		return err
	}
	return r.Batches.AddTimeline(&entity.TimelineEvent{
		ID:          uuid.New().String(),
		BatchID:     ev.BatchID,
		Event:       "WAREHOUSE_VERIFIED",
		Description: fmt.Sprintf("seluruh sub-batch lolos gudang: %d good, %d reject", good, reject),
		UserID:      ev.ActorID,
		CreatedAt:   time.Now(),
	})
}
