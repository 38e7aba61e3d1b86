package production_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "github.com/konveksipro/produksi-api/internal/application/production"
	"github.com/konveksipro/produksi-api/internal/domain"
	"github.com/konveksipro/produksi-api/internal/domain/entity"
	"github.com/konveksipro/produksi-api/internal/domain/production"
)

// sewingScenario batch sedang dijahit: hasil potong M/Hitam 50 + L/Hitam 30,
// tugas jahit IN_PROGRESS milik penjahit.
func sewingScenario(f *fixture) {
	f.seedBatch(production.BatchInSewing)
	f.seedTask("batch-1", production.StageSewing, idPenjahit, production.TaskInProgress)
	f.seedCuttingResult("batch-1", "M", "Hitam", 50)
	f.seedCuttingResult("batch-1", "L", "Hitam", 30)
}

func sewingItem(size, color string, good int) app.SubBatchItemInput {
	return app.SubBatchItemInput{ProductSize: size, Color: color, GoodQuantity: good}
}

func TestCreateSewing_DalamKuotaHasilPotong(t *testing.T) {
	f := newFixture()
	sewingScenario(f)

	sb, err := f.subBatchUC.CreateSewing(context.Background(), app.CreateInput{
		BatchID: "batch-1",
		ActorID: idPenjahit,
		Items:   []app.SubBatchItemInput{sewingItem("M", "Hitam", 20)},
	})
	require.NoError(t, err)
	assert.Equal(t, "PROD-20260830-001-SUB-1", sb.SubBatchSKU)
	assert.Equal(t, production.SubBatchCreated, sb.Status)
	assert.Equal(t, production.SourceSewing, sb.Source)

	task := f.s.tasks[taskKey("batch-1", production.StageSewing)]
	assert.Equal(t, 20, task.PiecesCompleted, "total tugas diturunkan dari setoran")
}

func TestCreateSewing_MelebihiKuotaDitolak(t *testing.T) {
	f := newFixture()
	sewingScenario(f)
	ctx := context.Background()

	_, err := f.subBatchUC.CreateSewing(ctx, app.CreateInput{
		BatchID: "batch-1", ActorID: idPenjahit,
		Items: []app.SubBatchItemInput{sewingItem("M", "Hitam", 20)},
	})
	require.NoError(t, err)

	// Sisa M/Hitam tinggal 30; klaim 31 harus ditolak.
	_, err = f.subBatchUC.CreateSewing(ctx, app.CreateInput{
		BatchID: "batch-1", ActorID: idPenjahit,
		Items: []app.SubBatchItemInput{sewingItem("M", "Hitam", 31)},
	})
	assert.ErrorIs(t, err, domain.ErrExceedsAvailable)

	// Klaim pas sisa lolos, dan total tugas jadi jumlah seluruh setoran.
	_, err = f.subBatchUC.CreateSewing(ctx, app.CreateInput{
		BatchID: "batch-1", ActorID: idPenjahit,
		Items: []app.SubBatchItemInput{sewingItem("M", "Hitam", 30), sewingItem("L", "Hitam", 30)},
	})
	require.NoError(t, err)
	assert.Equal(t, 80, f.s.tasks[taskKey("batch-1", production.StageSewing)].PiecesCompleted)
}

func TestCreateSewing_UkuranTakDipotongDitolak(t *testing.T) {
	f := newFixture()
	sewingScenario(f)

	_, err := f.subBatchUC.CreateSewing(context.Background(), app.CreateInput{
		BatchID: "batch-1", ActorID: idPenjahit,
		Items: []app.SubBatchItemInput{sewingItem("XL", "Putih", 1)},
	})
	assert.ErrorIs(t, err, domain.ErrExceedsAvailable)
}

func TestCreateSewing_RejectHanyaDiFinishing(t *testing.T) {
	f := newFixture()
	sewingScenario(f)

	_, err := f.subBatchUC.CreateSewing(context.Background(), app.CreateInput{
		BatchID: "batch-1", ActorID: idPenjahit,
		Items: []app.SubBatchItemInput{{ProductSize: "M", Color: "Hitam", GoodQuantity: 5, RejectKotor: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateSewing_BukanPemegangTugas(t *testing.T) {
	f := newFixture()
	sewingScenario(f)

	_, err := f.subBatchUC.CreateSewing(context.Background(), app.CreateInput{
		BatchID: "batch-1", ActorID: idPemotong,
		Items: []app.SubBatchItemInput{sewingItem("M", "Hitam", 5)},
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestVerifySubBatch_Approve(t *testing.T) {
	f := newFixture()
	sewingScenario(f)
	ctx := context.Background()

	sb, err := f.subBatchUC.CreateSewing(ctx, app.CreateInput{
		BatchID: "batch-1", ActorID: idPenjahit,
		Items: []app.SubBatchItemInput{sewingItem("M", "Hitam", 20)},
	})
	require.NoError(t, err)

	require.NoError(t, f.subBatchUC.Verify(ctx, app.SubBatchVerifyInput{
		SubBatchID: sb.ID, Approve: true, ActorID: idKepalaProduksi,
	}))
	assert.Equal(t, production.SubBatchSewingVerified, f.s.subBatches[sb.ID].Status)
	assert.Equal(t, idKepalaProduksi, f.s.subBatches[sb.ID].VerifiedBy)

	// Verifikasi ulang gagal tanpa efek samping ganda.
	err = f.subBatchUC.Verify(ctx, app.SubBatchVerifyInput{
		SubBatchID: sb.ID, Approve: true, ActorID: idKepalaProduksi,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

// Reject destruktif: snapshot audit ditulis, sub-batch hilang, total tugas
// turun persis sebesar setoran yang dihapus, dan penjahit bisa setor ulang
// kuantitas yang sama (kuota kembali tersedia).
func TestVerifySubBatch_RejectDestruktif(t *testing.T) {
	f := newFixture()
	sewingScenario(f)
	ctx := context.Background()

	sb1, err := f.subBatchUC.CreateSewing(ctx, app.CreateInput{
		BatchID: "batch-1", ActorID: idPenjahit,
		Items: []app.SubBatchItemInput{sewingItem("M", "Hitam", 50)},
	})
	require.NoError(t, err)
	sb2, err := f.subBatchUC.CreateSewing(ctx, app.CreateInput{
		BatchID: "batch-1", ActorID: idPenjahit,
		Items: []app.SubBatchItemInput{sewingItem("L", "Hitam", 30)},
	})
	require.NoError(t, err)
	require.Equal(t, 80, f.s.tasks[taskKey("batch-1", production.StageSewing)].PiecesCompleted)

	require.NoError(t, f.subBatchUC.Verify(ctx, app.SubBatchVerifyInput{
		SubBatchID: sb1.ID, Approve: false, Note: "jahitan miring", ActorID: idKepalaProduksi,
	}))

	assert.Nil(t, f.s.subBatches[sb1.ID], "sub-batch ditolak harus terhapus")
	assert.NotNil(t, f.s.subBatches[sb2.ID], "sub-batch lain tidak terpengaruh")
	assert.Equal(t, 30, f.s.tasks[taskKey("batch-1", production.StageSewing)].PiecesCompleted)

	logs, err := f.s.repos().AuditLogs.ListByEntity("sub_batch", sb1.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "REJECT_DELETE", logs[0].Action)
	assert.Contains(t, logs[0].OldValues, sb1.SubBatchSKU, "snapshot harus memuat isi sub-batch")

	// Setor ulang M/Hitam 50 lolos lagi, dengan SKU baru (urutan tidak dipakai ulang).
	sb3, err := f.subBatchUC.CreateSewing(ctx, app.CreateInput{
		BatchID: "batch-1", ActorID: idPenjahit,
		Items: []app.SubBatchItemInput{sewingItem("M", "Hitam", 50)},
	})
	require.NoError(t, err)
	assert.Equal(t, "PROD-20260830-001-SUB-3", sb3.SubBatchSKU)
	assert.Equal(t, 80, f.s.tasks[taskKey("batch-1", production.StageSewing)].PiecesCompleted)
}

func TestForward_PertamaButuhAssigneeRoleFinishing(t *testing.T) {
	f := newFixture()
	sewingScenario(f)
	ctx := context.Background()

	sb, err := f.subBatchUC.CreateSewing(ctx, app.CreateInput{
		BatchID: "batch-1", ActorID: idPenjahit,
		Items: []app.SubBatchItemInput{sewingItem("M", "Hitam", 20)},
	})
	require.NoError(t, err)
	require.NoError(t, f.subBatchUC.Verify(ctx, app.SubBatchVerifyInput{
		SubBatchID: sb.ID, Approve: true, ActorID: idKepalaProduksi,
	}))

	err = f.subBatchUC.ForwardToFinishing(ctx, app.ForwardInput{
		SubBatchID: sb.ID, ActorID: idKepalaProduksi,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "forward pertama tanpa assignee harus gagal")

	err = f.subBatchUC.ForwardToFinishing(ctx, app.ForwardInput{
		SubBatchID: sb.ID, ActorID: idKepalaProduksi, AssigneeID: idPenjahit,
	})
	assert.ErrorIs(t, err, domain.ErrRoleMismatch)

	require.NoError(t, f.subBatchUC.ForwardToFinishing(ctx, app.ForwardInput{
		SubBatchID: sb.ID, ActorID: idKepalaProduksi, AssigneeID: idFinisher,
	}))
	assert.Equal(t, production.SubBatchForwardedToFinishing, f.s.subBatches[sb.ID].Status)

	task := f.s.tasks[taskKey("batch-1", production.StageFinishing)]
	require.NotNil(t, task, "forward pertama harus membuat tugas finishing")
	assert.Equal(t, idFinisher, task.AssignedToID)
	assert.Equal(t, 20, task.PiecesReceived)
}

func TestForward_BerikutnyaMenambahPiecesReceived(t *testing.T) {
	f := newFixture()
	sewingScenario(f)
	ctx := context.Background()

	var ids []string
	for _, good := range []int{20, 30} {
		sb, err := f.subBatchUC.CreateSewing(ctx, app.CreateInput{
			BatchID: "batch-1", ActorID: idPenjahit,
			Items: []app.SubBatchItemInput{sewingItem("M", "Hitam", good)},
		})
		require.NoError(t, err)
		require.NoError(t, f.subBatchUC.Verify(ctx, app.SubBatchVerifyInput{
			SubBatchID: sb.ID, Approve: true, ActorID: idKepalaProduksi,
		}))
		ids = append(ids, sb.ID)
	}

	require.NoError(t, f.subBatchUC.ForwardToFinishing(ctx, app.ForwardInput{
		SubBatchID: ids[0], ActorID: idKepalaProduksi, AssigneeID: idFinisher,
	}))
	require.NoError(t, f.subBatchUC.ForwardToFinishing(ctx, app.ForwardInput{
		SubBatchID: ids[1], ActorID: idKepalaProduksi,
	}))
	assert.Equal(t, 50, f.s.tasks[taskKey("batch-1", production.StageFinishing)].PiecesReceived)
}

func TestForward_SubBatchBelumDiverifikasi(t *testing.T) {
	f := newFixture()
	sewingScenario(f)
	ctx := context.Background()

	sb, err := f.subBatchUC.CreateSewing(ctx, app.CreateInput{
		BatchID: "batch-1", ActorID: idPenjahit,
		Items: []app.SubBatchItemInput{sewingItem("M", "Hitam", 20)},
	})
	require.NoError(t, err)

	err = f.subBatchUC.ForwardToFinishing(ctx, app.ForwardInput{
		SubBatchID: sb.ID, ActorID: idKepalaProduksi, AssigneeID: idFinisher,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

// Rekonsiler hanya memajukan batch ke ASSIGNED_TO_FINISHING bila tugas jahit
// sudah selesai; forward selagi jahit masih berjalan tidak menggeser batch.
func TestForward_StatusBatchTidakLompatSelagiJahitBerjalan(t *testing.T) {
	f := newFixture()
	sewingScenario(f)
	ctx := context.Background()

	sb, err := f.subBatchUC.CreateSewing(ctx, app.CreateInput{
		BatchID: "batch-1", ActorID: idPenjahit,
		Items: []app.SubBatchItemInput{sewingItem("M", "Hitam", 20)},
	})
	require.NoError(t, err)
	require.NoError(t, f.subBatchUC.Verify(ctx, app.SubBatchVerifyInput{
		SubBatchID: sb.ID, Approve: true, ActorID: idKepalaProduksi,
	}))
	require.NoError(t, f.subBatchUC.ForwardToFinishing(ctx, app.ForwardInput{
		SubBatchID: sb.ID, ActorID: idKepalaProduksi, AssigneeID: idFinisher,
	}))
	assert.Equal(t, production.BatchInSewing, f.s.batches["batch-1"].Status,
		"tugas jahit masih IN_PROGRESS, batch tidak boleh maju")

	// Setelah jahit selesai, forward berikutnya memajukan batch.
	sb2, err := f.subBatchUC.CreateSewing(ctx, app.CreateInput{
		BatchID: "batch-1", ActorID: idPenjahit,
		Items: []app.SubBatchItemInput{sewingItem("L", "Hitam", 30)},
	})
	require.NoError(t, err)
	require.NoError(t, f.subBatchUC.Verify(ctx, app.SubBatchVerifyInput{
		SubBatchID: sb2.ID, Approve: true, ActorID: idKepalaProduksi,
	}))
	f.s.tasks[taskKey("batch-1", production.StageSewing)].Status = production.TaskCompleted

	require.NoError(t, f.subBatchUC.ForwardToFinishing(ctx, app.ForwardInput{
		SubBatchID: sb2.ID, ActorID: idKepalaProduksi,
	}))
	assert.Equal(t, production.BatchAssignedToFinishing, f.s.batches["batch-1"].Status)
}

func TestCreateFinishing_KonservasiTerhadapKiriman(t *testing.T) {
	f := newFixture()
	sewingScenario(f)
	ctx := context.Background()

	// 20 pcs M/Hitam sudah diteruskan ke finishing.
	sb, err := f.subBatchUC.CreateSewing(ctx, app.CreateInput{
		BatchID: "batch-1", ActorID: idPenjahit,
		Items: []app.SubBatchItemInput{sewingItem("M", "Hitam", 20)},
	})
	require.NoError(t, err)
	require.NoError(t, f.subBatchUC.Verify(ctx, app.SubBatchVerifyInput{
		SubBatchID: sb.ID, Approve: true, ActorID: idKepalaProduksi,
	}))
	require.NoError(t, f.subBatchUC.ForwardToFinishing(ctx, app.ForwardInput{
		SubBatchID: sb.ID, ActorID: idKepalaProduksi, AssigneeID: idFinisher,
	}))
	f.seedTask("batch-1", production.StageFinishing, idFinisher, production.TaskInProgress)

	// Total good+reject dihitung terhadap kiriman: 15+6 = 21 > 20 ditolak.
	_, err = f.subBatchUC.CreateFinishing(ctx, app.CreateInput{
		BatchID: "batch-1", ActorID: idFinisher,
		Items: []app.SubBatchItemInput{{ProductSize: "M", Color: "Hitam", GoodQuantity: 15, RejectKotor: 6}},
	})
	assert.ErrorIs(t, err, domain.ErrExceedsAvailable)

	fsb, err := f.subBatchUC.CreateFinishing(ctx, app.CreateInput{
		BatchID: "batch-1", ActorID: idFinisher,
		Items: []app.SubBatchItemInput{{ProductSize: "M", Color: "Hitam", GoodQuantity: 15, RejectSobek: 5}},
	})
	require.NoError(t, err)
	assert.Equal(t, production.SourceFinishing, fsb.Source)

	task := f.s.tasks[taskKey("batch-1", production.StageFinishing)]
	assert.Equal(t, 20, task.PiecesCompleted)
	assert.Equal(t, 5, task.RejectPieces)

	// Kiriman 20 sudah habis diklaim; setoran berikutnya ditolak.
	_, err = f.subBatchUC.CreateFinishing(ctx, app.CreateInput{
		BatchID: "batch-1", ActorID: idFinisher,
		Items: []app.SubBatchItemInput{{ProductSize: "M", Color: "Hitam", GoodQuantity: 1}},
	})
	assert.ErrorIs(t, err, domain.ErrExceedsAvailable)
}

func TestWarehouseVerify_LokasiWajib(t *testing.T) {
	f := newFixture()
	err := f.subBatchUC.WarehouseVerify(context.Background(), app.WarehouseVerifyInput{
		SubBatchID: "apa-saja", ActorID: idKepalaGudang, Location: "   ",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Alur lengkap dari jahit sampai penutupan batch, dengan pengiriman parsial
// tidak berurutan. Memastikan rekonsiler, gerbang konservasi penutupan, dan
// pencatatan barang jadi bekerja bersama.
func TestAlurLengkap_JahitSampaiBatchSelesai(t *testing.T) {
	f := newFixture()
	sewingScenario(f)
	ctx := context.Background()

	// Penjahit setor dua kali (M lalu L), keduanya disetujui.
	var sewingIDs []string
	for _, item := range []app.SubBatchItemInput{sewingItem("M", "Hitam", 50), sewingItem("L", "Hitam", 30)} {
		sb, err := f.subBatchUC.CreateSewing(ctx, app.CreateInput{
			BatchID: "batch-1", ActorID: idPenjahit, Items: []app.SubBatchItemInput{item},
		})
		require.NoError(t, err)
		require.NoError(t, f.subBatchUC.Verify(ctx, app.SubBatchVerifyInput{
			SubBatchID: sb.ID, Approve: true, ActorID: idKepalaProduksi,
		}))
		sewingIDs = append(sewingIDs, sb.ID)
	}

	// Tugas jahit selesai dan diverifikasi.
	require.NoError(t, f.taskUC.Complete(ctx, "batch-1", production.StageSewing, idPenjahit))
	require.NoError(t, f.taskUC.Verify(ctx, app.VerifyInput{
		BatchID: "batch-1", Stage: production.StageSewing, Approve: true, ActorID: idKepalaProduksi,
	}))
	assert.Equal(t, production.BatchSewingVerified, f.s.batches["batch-1"].Status)

	// Kedua kiriman diteruskan ke finishing; batch maju lewat rekonsiler.
	require.NoError(t, f.subBatchUC.ForwardToFinishing(ctx, app.ForwardInput{
		SubBatchID: sewingIDs[0], ActorID: idKepalaProduksi, AssigneeID: idFinisher,
	}))
	require.NoError(t, f.subBatchUC.ForwardToFinishing(ctx, app.ForwardInput{
		SubBatchID: sewingIDs[1], ActorID: idKepalaProduksi,
	}))
	assert.Equal(t, production.BatchAssignedToFinishing, f.s.batches["batch-1"].Status)
	assert.Equal(t, 80, f.s.tasks[taskKey("batch-1", production.StageFinishing)].PiecesReceived)

	require.NoError(t, f.taskUC.Start(ctx, "batch-1", production.StageFinishing, idFinisher))

	// Finishing setor parsial, tidak urut: L dulu baru M.
	finishingItems := [][]app.SubBatchItemInput{
		{{ProductSize: "L", Color: "Hitam", GoodQuantity: 28, RejectRusakJahit: 2}},
		{{ProductSize: "M", Color: "Hitam", GoodQuantity: 45, RejectKotor: 5}},
	}
	for _, items := range finishingItems {
		fsb, err := f.subBatchUC.CreateFinishing(ctx, app.CreateInput{
			BatchID: "batch-1", ActorID: idFinisher, Items: items,
		})
		require.NoError(t, err)
		require.NoError(t, f.subBatchUC.Verify(ctx, app.SubBatchVerifyInput{
			SubBatchID: fsb.ID, Approve: true, ActorID: idKepalaProduksi,
		}))
		require.NoError(t, f.subBatchUC.WarehouseVerify(ctx, app.WarehouseVerifyInput{
			SubBatchID: fsb.ID, ActorID: idKepalaGudang, Location: "RAK-A1",
		}))
	}

	// Barang jadi: dua baris FINISHED + dua baris REJECT.
	goods, err := f.s.repos().FinishedGoods.ListByBatch("batch-1")
	require.NoError(t, err)
	finished, rejected := 0, 0
	for _, fg := range goods {
		switch fg.Type {
		case entity.FinishedGoodFinished:
			finished += fg.Quantity
		case entity.FinishedGoodReject:
			rejected += fg.Quantity
		}
	}
	assert.Equal(t, 73, finished)
	assert.Equal(t, 7, rejected)

	// Penutupan: total finishing 80 == hasil jahit 80.
	require.NoError(t, f.batchUC.Complete(ctx, "batch-1", idKepalaProduksi))
	batch := f.s.batches["batch-1"]
	assert.Equal(t, production.BatchCompleted, batch.Status)
	assert.Equal(t, 73, batch.ActualQuantity)
	assert.Equal(t, 7, batch.RejectQuantity)
	require.NotNil(t, batch.CompletedDate)

	// Audit agregat konsisten setelah penutupan.
	report, err := f.batchUC.ReconcileTotals(ctx, "batch-1")
	require.NoError(t, err)
	assert.True(t, report.Consistent)
	assert.Equal(t, 73, report.DerivedActual)
	assert.Equal(t, 7, report.DerivedReject)
}
