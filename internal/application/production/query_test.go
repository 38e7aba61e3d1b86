package production_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "github.com/konveksipro/produksi-api/internal/application/production"
	"github.com/konveksipro/produksi-api/internal/domain"
	"github.com/konveksipro/produksi-api/internal/domain/entity"
	"github.com/konveksipro/produksi-api/internal/domain/production"
)

func (f *fixture) queryUC() *app.QueryUseCase {
	return app.NewQueryUseCase(
		&fakeBatchRepo{f.s}, &fakeTaskRepo{f.s}, &fakeSubBatchRepo{f.s},
		&fakeFinishedGoodRepo{f.s}, &fakeAuditLogRepo{f.s},
	)
}

// seedSubBatch menanam sub-batch langsung di store dengan status tertentu.
func (f *fixture) seedSubBatch(id string, status production.SubBatchStatus) *entity.SubBatch {
	sb := &entity.SubBatch{
		ID: id, BatchID: "batch-1", SubBatchSKU: "PROD-20260830-001-SUB-" + id,
		Source: production.SourceSewing, Status: status,
		CreatedBy: idPenjahit, CreatedAt: time.Now(),
	}
	f.s.subBatches[id] = sb
	f.s.subBatchOrder = append(f.s.subBatchOrder, id)
	return sb
}

func TestPendingVerifications_KepalaProduksi(t *testing.T) {
	f := newFixture()
	f.seedBatch(production.BatchInCutting, sizeColorReq("M", "Hitam", 50))
	f.seedTask("batch-1", production.StageCutting, idPemotong, production.TaskCompleted)
	f.seedSubBatch("sb-1", production.SubBatchCreated)
	f.seedSubBatch("sb-2", production.SubBatchSubmittedToWarehouse)

	queue, err := f.queryUC().PendingVerifications(context.Background(), entity.RoleKepalaProduksi)
	require.NoError(t, err)

	require.Len(t, queue.Tasks, 1, "tugas COMPLETED masuk antrean kepala produksi")
	assert.Equal(t, production.StageCutting, queue.Tasks[0].Stage)
	require.Len(t, queue.SubBatches, 1, "hanya sub-batch CREATED, bukan kiriman gudang")
	assert.Equal(t, "sb-1", queue.SubBatches[0].ID)
}

func TestPendingVerifications_KepalaGudang(t *testing.T) {
	f := newFixture()
	f.seedBatch(production.BatchInFinishing, sizeColorReq("M", "Hitam", 50))
	f.seedSubBatch("sb-1", production.SubBatchCreated)
	f.seedSubBatch("sb-2", production.SubBatchSubmittedToWarehouse)

	queue, err := f.queryUC().PendingVerifications(context.Background(), entity.RoleKepalaGudang)
	require.NoError(t, err)

	assert.Empty(t, queue.Tasks, "gudang tidak memverifikasi tugas tahap")
	require.Len(t, queue.SubBatches, 1)
	assert.Equal(t, "sb-2", queue.SubBatches[0].ID)
}

func TestPendingVerifications_OwnerMelihatSemua(t *testing.T) {
	f := newFixture()
	f.seedBatch(production.BatchInSewing, sizeColorReq("M", "Hitam", 50))
	f.seedTask("batch-1", production.StageSewing, idPenjahit, production.TaskCompleted)
	f.seedSubBatch("sb-1", production.SubBatchCreated)
	f.seedSubBatch("sb-2", production.SubBatchSubmittedToWarehouse)

	queue, err := f.queryUC().PendingVerifications(context.Background(), entity.RoleOwner)
	require.NoError(t, err)
	assert.Len(t, queue.Tasks, 1)
	assert.Len(t, queue.SubBatches, 2)
}

func TestPendingVerifications_RoleTanpaAntrean(t *testing.T) {
	f := newFixture()

	_, err := f.queryUC().PendingVerifications(context.Background(), entity.RolePenjahit)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
