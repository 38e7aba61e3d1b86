package production

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/konveksipro/produksi-api/internal/domain"
	"github.com/konveksipro/produksi-api/internal/domain/entity"
	"github.com/konveksipro/produksi-api/internal/domain/production"
)

// SubBatchUseCase buku besar pengiriman parsial: output sewing/finishing
// dipecah menjadi sub-batch yang dikirim dan diverifikasi terpisah, dengan
// hukum konservasi antar tahap dijaga saat pembuatan.
type SubBatchUseCase struct {
	txr      TxRunner
	notifier Notifier
	bus      *Bus
}

// NewSubBatchUseCase membangun use case sub-batch.
func NewSubBatchUseCase(txr TxRunner, notifier Notifier, bus *Bus) *SubBatchUseCase {
	return &SubBatchUseCase{txr: txr, notifier: notifier, bus: bus}
}

func (uc *SubBatchUseCase) send(ctx context.Context, list []pendingNotification) {
	if uc.notifier == nil {
		return
	}
	for _, n := range list {
		go uc.notifier.Notify(context.WithoutCancel(ctx), n.userID, n.ntype, n.title, n.message)
	}
}

// SubBatchItemInput rincian satu ukuran+warna dalam pengiriman baru.
type SubBatchItemInput struct {
	ProductSize      string
	Color            string
	GoodQuantity     int
	RejectKotor      int
	RejectSobek      int
	RejectRusakJahit int
}

func (i SubBatchItemInput) quantity() production.ItemQuantity {
	return production.ItemQuantity{
		Good:             i.GoodQuantity,
		RejectKotor:      i.RejectKotor,
		RejectSobek:      i.RejectSobek,
		RejectRusakJahit: i.RejectRusakJahit,
	}
}

// CreateInput pembuatan sub-batch baru dari tahap sewing atau finishing.
type CreateInput struct {
	BatchID string
	ActorID string
	Items   []SubBatchItemInput
}

// CreateSewing membuat sub-batch hasil jahit. Hukum konservasi: good quantity
// per (size,color) tidak boleh melebihi hasil potong dikurangi yang sudah
// tercatat di sub-batch jahit sebelumnya.
func (uc *SubBatchUseCase) CreateSewing(ctx context.Context, in CreateInput) (*entity.SubBatch, error) {
	if err := validateItems(in.Items); err != nil {
		return nil, err
	}
	for _, item := range in.Items {
		// Reject dicatat di tahap finishing; laporan jahit hanya good pieces.
		if item.RejectKotor != 0 || item.RejectSobek != 0 || item.RejectRusakJahit != 0 {
			return nil, fmt.Errorf("%w: reject dicatat saat finishing, bukan pada sub-batch jahit", domain.ErrInvalidInput)
		}
	}

	var created *entity.SubBatch
	var pending []pendingNotification
	err := uc.txr.RunProduction(ctx, func(r Repos) error {
		batch, err := r.Batches.GetByIDForUpdate(in.BatchID)
		if err != nil {
			return err
		}
		if batch == nil {
			return fmt.Errorf("%w: batch %s", domain.ErrNotFound, in.BatchID)
		}
		task, err := r.Tasks.GetByBatchAndStageForUpdate(in.BatchID, production.StageSewing)
		if err != nil {
			return err
		}
		if task == nil {
			return fmt.Errorf("%w: tugas jahit batch %s", domain.ErrNotFound, batch.BatchSKU)
		}
		if task.AssignedToID != in.ActorID {
			return fmt.Errorf("%w: bukan pemegang tugas", domain.ErrForbidden)
		}
		if task.Status != production.TaskInProgress && task.Status != production.TaskRejected {
			return fmt.Errorf("%w: tugas jahit berstatus %s, setoran hanya saat %s",
				domain.ErrInvalidState, task.Status, production.TaskInProgress)
		}

		// Kuota: hasil potong dikurangi setoran jahit yang masih ada
		// (sub-batch yang di-reject sudah terhapus, jadi semua baris dihitung).
		results, err := r.Tasks.GetCuttingResults(in.BatchID)
		if err != nil {
			return err
		}
		produced := make(map[production.SizeColor]int, len(results))
		for _, res := range results {
			produced[production.SizeColor{Size: res.ProductSize, Color: res.Color}] = res.ActualPieces
		}
		siblings, err := r.SubBatches.ListByBatch(in.BatchID)
		if err != nil {
			return err
		}
		used := map[production.SizeColor]int{}
		for _, sb := range siblings {
			if sb.Source != production.SourceSewing {
				continue
			}
			for _, item := range sb.Items {
				used[production.SizeColor{Size: item.ProductSize, Color: item.Color}] += item.GoodQuantity
			}
		}
		claim := map[production.SizeColor]int{}
		for _, item := range in.Items {
			claim[production.SizeColor{Size: item.ProductSize, Color: item.Color}] += item.GoodQuantity
		}
		if err := production.CheckAgainstAvailable(claim, production.Remaining(produced, used)); err != nil {
			return err
		}

		created, err = uc.insertSubBatch(r, batch, production.SourceSewing, in)
		if err != nil {
			return err
		}

		// Total tugas = penjumlahan seluruh setoran yang masih ada.
		total := created.GoodOutput()
		for _, sb := range siblings {
			if sb.Source == production.SourceSewing {
				total += sb.GoodOutput()
			}
		}
		task.PiecesCompleted = total
		if task.Status == production.TaskRejected {
			task.Status = production.TaskInProgress
		}
		if err := r.Tasks.Update(task); err != nil {
			return err
		}

		heads, err := r.Users.ListByRole(entity.RoleKepalaProduksi)
		if err != nil {
			return err
		}
		for _, head := range heads {
			pending = append(pending, pendingNotification{
				userID:  head.ID,
				ntype:   "SUB_BATCH_CREATED",
				title:   "Sub-batch baru",
				message: fmt.Sprintf("Sub-batch %s menunggu verifikasi", created.SubBatchSKU),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.send(ctx, pending)
	return created, nil
}

// CreateFinishing membuat sub-batch hasil finishing. Hukum konservasi: total
// good + reject per (size,color) tidak boleh melebihi hasil jahit yang sudah
// diteruskan dan belum diklaim sub-batch finishing sebelumnya.
func (uc *SubBatchUseCase) CreateFinishing(ctx context.Context, in CreateInput) (*entity.SubBatch, error) {
	if err := validateItems(in.Items); err != nil {
		return nil, err
	}

	var created *entity.SubBatch
	var pending []pendingNotification
	err := uc.txr.RunProduction(ctx, func(r Repos) error {
		batch, err := r.Batches.GetByIDForUpdate(in.BatchID)
		if err != nil {
			return err
		}
		if batch == nil {
			return fmt.Errorf("%w: batch %s", domain.ErrNotFound, in.BatchID)
		}
		task, err := r.Tasks.GetByBatchAndStageForUpdate(in.BatchID, production.StageFinishing)
		if err != nil {
			return err
		}
		if task == nil {
			return fmt.Errorf("%w: tugas finishing batch %s", domain.ErrNotFound, batch.BatchSKU)
		}
		if task.AssignedToID != in.ActorID {
			return fmt.Errorf("%w: bukan pemegang tugas", domain.ErrForbidden)
		}
		if task.Status != production.TaskInProgress && task.Status != production.TaskRejected {
			return fmt.Errorf("%w: tugas finishing berstatus %s, setoran hanya saat %s",
				domain.ErrInvalidState, task.Status, production.TaskInProgress)
		}

		siblings, err := r.SubBatches.ListByBatch(in.BatchID)
		if err != nil {
			return err
		}
		// Tersedia = hasil jahit yang sudah diteruskan ke finishing,
		// dikurangi klaim (good+reject) sub-batch finishing yang masih ada.
		produced := map[production.SizeColor]int{}
		used := map[production.SizeColor]int{}
		for _, sb := range siblings {
			for _, item := range sb.Items {
				key := production.SizeColor{Size: item.ProductSize, Color: item.Color}
				switch {
				case sb.Source == production.SourceSewing && sb.Status == production.SubBatchForwardedToFinishing:
					produced[key] += item.GoodQuantity
				case sb.Source == production.SourceFinishing:
					used[key] += item.Total()
				}
			}
		}
		claim := map[production.SizeColor]int{}
		for _, item := range in.Items {
			claim[production.SizeColor{Size: item.ProductSize, Color: item.Color}] += item.quantity().Total()
		}
		if err := production.CheckAgainstAvailable(claim, production.Remaining(produced, used)); err != nil {
			return err
		}

		created, err = uc.insertSubBatch(r, batch, production.SourceFinishing, in)
		if err != nil {
			return err
		}

		total := created.TotalOutput()
		for _, sb := range siblings {
			if sb.Source == production.SourceFinishing {
				total += sb.TotalOutput()
			}
		}
		task.PiecesCompleted = total
		task.RejectPieces = rejectTotal(siblings) + created.RejectOutput()
		if task.Status == production.TaskRejected {
			task.Status = production.TaskInProgress
		}
		if err := r.Tasks.Update(task); err != nil {
			return err
		}

		heads, err := r.Users.ListByRole(entity.RoleKepalaProduksi)
		if err != nil {
			return err
		}
		for _, head := range heads {
			pending = append(pending, pendingNotification{
				userID:  head.ID,
				ntype:   "SUB_BATCH_CREATED",
				title:   "Sub-batch baru",
				message: fmt.Sprintf("Sub-batch %s menunggu verifikasi", created.SubBatchSKU),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	uc.send(ctx, pending)
	return created, nil
}

func rejectTotal(siblings []*entity.SubBatch) int {
	total := 0
	for _, sb := range siblings {
		if sb.Source == production.SourceFinishing {
			total += sb.RejectOutput()
		}
	}
	return total
}

// insertSubBatch membuat sub-batch CREATED dengan SKU <parent>-SUB-<seq> dan
// mencatat timeline.
func (uc *SubBatchUseCase) insertSubBatch(r Repos, batch *entity.ProductionBatch, source production.SubBatchSource, in CreateInput) (*entity.SubBatch, error) {
	seq, err := r.SubBatches.NextSequence(batch.ID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	sb := &entity.SubBatch{
		ID:          uuid.New().String(),
		BatchID:     batch.ID,
		SubBatchSKU: fmt.Sprintf("%s-SUB-%d", batch.BatchSKU, seq),
		Source:      source,
		Status:      production.SubBatchCreated,
		CreatedBy:   in.ActorID,
		CreatedAt:   now,
	}
	for _, item := range in.Items {
		sb.Items = append(sb.Items, entity.SubBatchItem{
			ID:               uuid.New().String(),
			SubBatchID:       sb.ID,
			ProductSize:      item.ProductSize,
			Color:            item.Color,
			GoodQuantity:     item.GoodQuantity,
			RejectKotor:      item.RejectKotor,
			RejectSobek:      item.RejectSobek,
			RejectRusakJahit: item.RejectRusakJahit,
		})
	}
	if err := r.SubBatches.Create(sb); err != nil {
		return nil, err
	}
	if err := r.Batches.AddTimeline(&entity.TimelineEvent{
		ID:          uuid.New().String(),
		BatchID:     batch.ID,
		Event:       "SUB_BATCH_CREATED",
		Description: fmt.Sprintf("sub-batch %s dibuat (%d pcs)", sb.SubBatchSKU, sb.TotalOutput()),
		UserID:      in.ActorID,
		CreatedAt:   now,
	}); err != nil {
		return nil, err
	}
	return sb, nil
}

func validateItems(items []SubBatchItemInput) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: minimal satu item", domain.ErrInvalidInput)
	}
	for _, item := range items {
		if item.ProductSize == "" || item.Color == "" {
			return fmt.Errorf("%w: size dan color wajib diisi", domain.ErrInvalidInput)
		}
		if err := item.quantity().ValidateItem(); err != nil {
			return err
		}
	}
	return nil
}

// SubBatchVerifyInput keputusan verifikasi sub-batch CREATED.
type SubBatchVerifyInput struct {
	SubBatchID string
	Approve    bool
	Note       string
	ActorID    string
}

// Verify memutuskan sub-batch CREATED. Approve memajukan status sesuai
// asalnya; reject bersifat destruktif: snapshot lengkap ditulis ke audit log,
// sub-batch + item dihapus, dan total tugas pemiliknya turun persis sebesar
// total sub-batch agar pekerja bisa setor ulang angka yang benar.
func (uc *SubBatchUseCase) Verify(ctx context.Context, in SubBatchVerifyInput) error {
	var pending []pendingNotification
	err := uc.txr.RunProduction(ctx, func(r Repos) error {
		sb, err := r.SubBatches.GetByIDForUpdate(in.SubBatchID)
		if err != nil {
			return err
		}
		if sb == nil {
			return fmt.Errorf("%w: sub-batch %s", domain.ErrNotFound, in.SubBatchID)
		}
		if err := production.EnsureSubBatchStatus(sb.Status, production.SubBatchCreated); err != nil {
			return err
		}
		now := time.Now()

		if in.Approve {
			sb.Status = sb.Source.ApprovedStatus()
			sb.VerifiedBy = in.ActorID
			sb.VerifiedAt = &now
			if err := r.SubBatches.Update(sb); err != nil {
				return err
			}
			if err := r.Batches.AddTimeline(&entity.TimelineEvent{
				ID:          uuid.New().String(),
				BatchID:     sb.BatchID,
				Event:       string(sb.Status),
				Description: fmt.Sprintf("sub-batch %s disetujui", sb.SubBatchSKU),
				UserID:      in.ActorID,
				CreatedAt:   now,
			}); err != nil {
				return err
			}
			pending = append(pending, pendingNotification{
				userID:  sb.CreatedBy,
				ntype:   "SUB_BATCH_VERIFIED",
				title:   "Sub-batch disetujui",
				message: fmt.Sprintf("Sub-batch %s disetujui", sb.SubBatchSKU),
			})
			return uc.bus.Publish(r, Event{
				Name: EventSubBatchVerified, BatchID: sb.BatchID, SubBatchID: sb.ID, ActorID: in.ActorID,
			})
		}

		// Reject destruktif: snapshot dulu, baru hapus.
		snapshot, err := json.Marshal(sb)
		if err != nil {
			return fmt.Errorf("snapshot sub-batch: %w", err)
		}
		if err := r.AuditLogs.Create(&entity.AuditLog{
			ID:        uuid.New().String(),
			Entity:    "sub_batch",
			EntityID:  sb.ID,
			Action:    "REJECT_DELETE",
			OldValues: string(snapshot),
			UserID:    in.ActorID,
			CreatedAt: now,
		}); err != nil {
			return err
		}
		if err := r.SubBatches.Delete(sb.ID); err != nil {
			return err
		}

		stage := production.StageSewing
		if sb.Source == production.SourceFinishing {
			stage = production.StageFinishing
		}
		task, err := r.Tasks.GetByBatchAndStageForUpdate(sb.BatchID, stage)
		if err != nil {
			return err
		}
		if task != nil {
			// Hitung ulang dari sub-batch yang tersisa; efeknya turun persis
			// sebesar total sub-batch yang dihapus.
			remaining, err := r.SubBatches.ListByBatch(sb.BatchID)
			if err != nil {
				return err
			}
			total, reject := 0, 0
			for _, sibling := range remaining {
				if sibling.Source != sb.Source {
					continue
				}
				if sb.Source == production.SourceSewing {
					total += sibling.GoodOutput()
				} else {
					total += sibling.TotalOutput()
					reject += sibling.RejectOutput()
				}
			}
			task.PiecesCompleted = total
			if sb.Source == production.SourceFinishing {
				task.RejectPieces = reject
			}
			if err := r.Tasks.Update(task); err != nil {
				return err
			}
		}

		if err := r.Batches.AddTimeline(&entity.TimelineEvent{
			ID:          uuid.New().String(),
			BatchID:     sb.BatchID,
			Event:       "SUB_BATCH_REJECTED",
			Description: fmt.Sprintf("sub-batch %s ditolak dan dihapus: %s", sb.SubBatchSKU, in.Note),
			UserID:      in.ActorID,
			CreatedAt:   now,
		}); err != nil {
			return err
		}
		pending = append(pending, pendingNotification{
			userID:  sb.CreatedBy,
			ntype:   "SUB_BATCH_REJECTED",
			title:   "Sub-batch ditolak",
			message: fmt.Sprintf("Sub-batch %s ditolak: %s. Silakan setor ulang.", sb.SubBatchSKU, in.Note),
		})
		return uc.bus.Publish(r, Event{
			Name: EventSubBatchRejected, BatchID: sb.BatchID, SubBatchID: sb.ID, ActorID: in.ActorID,
		})
	})
	if err != nil {
		return err
	}
	uc.send(ctx, pending)
	return nil
}

// ForwardInput meneruskan sub-batch jahit terverifikasi ke finishing.
type ForwardInput struct {
	SubBatchID string
	ActorID    string
	AssigneeID string // wajib pada forward pertama (belum ada tugas finishing)
}

// ForwardToFinishing meneruskan sub-batch SEWING_VERIFIED ke tahap finishing.
// Forward pertama membuat tugas finishing (assignee wajib, role FINISHING);
// berikutnya menambah piecesReceived tugas yang ada. Status batch maju ke
// ASSIGNED_TO_FINISHING lewat rekonsiler, hanya bila tugas jahit sudah selesai.
func (uc *SubBatchUseCase) ForwardToFinishing(ctx context.Context, in ForwardInput) error {
	var pending []pendingNotification
	err := uc.txr.RunProduction(ctx, func(r Repos) error {
		sb, err := r.SubBatches.GetByIDForUpdate(in.SubBatchID)
		if err != nil {
			return err
		}
		if sb == nil {
			return fmt.Errorf("%w: sub-batch %s", domain.ErrNotFound, in.SubBatchID)
		}
		if err := production.EnsureSubBatchStatus(sb.Status, production.SubBatchSewingVerified); err != nil {
			return err
		}

		task, err := r.Tasks.GetByBatchAndStageForUpdate(sb.BatchID, production.StageFinishing)
		if err != nil {
			return err
		}
		now := time.Now()
		var finisherID string
		if task == nil {
			if in.AssigneeID == "" {
				return fmt.Errorf("%w: assignee finishing wajib pada forward pertama", domain.ErrInvalidInput)
			}
			assignee, err := r.Users.GetByID(in.AssigneeID)
			if err != nil {
				return err
			}
			if assignee == nil {
				return fmt.Errorf("%w: pengguna %s", domain.ErrNotFound, in.AssigneeID)
			}
			if assignee.Role != entity.RoleFinishing {
				return fmt.Errorf("%w: finishing butuh role %s, pengguna ber-role %s",
					domain.ErrRoleMismatch, entity.RoleFinishing, assignee.Role)
			}
			task = &entity.StageTask{
				ID:             uuid.New().String(),
				BatchID:        sb.BatchID,
				Stage:          production.StageFinishing,
				AssignedToID:   in.AssigneeID,
				Status:         production.TaskPending,
				PiecesReceived: sb.GoodOutput(),
				AssignedAt:     now,
			}
			if err := r.Tasks.Create(task); err != nil {
				return err
			}
			finisherID = in.AssigneeID
		} else {
			task.PiecesReceived += sb.GoodOutput()
			if err := r.Tasks.Update(task); err != nil {
				return err
			}
			finisherID = task.AssignedToID
		}

		sb.Status = production.SubBatchForwardedToFinishing
		if err := r.SubBatches.Update(sb); err != nil {
			return err
		}
		if err := r.Batches.AddTimeline(&entity.TimelineEvent{
			ID:          uuid.New().String(),
			BatchID:     sb.BatchID,
			Event:       "SUB_BATCH_FORWARDED",
			Description: fmt.Sprintf("sub-batch %s diteruskan ke finishing (%d pcs)", sb.SubBatchSKU, sb.GoodOutput()),
			UserID:      in.ActorID,
			CreatedAt:   now,
		}); err != nil {
			return err
		}
		pending = append(pending, pendingNotification{
			userID:  finisherID,
			ntype:   "SUB_BATCH_FORWARDED",
			title:   "Kiriman finishing",
			message: fmt.Sprintf("Sub-batch %s diteruskan ke Anda (%d pcs)", sb.SubBatchSKU, sb.GoodOutput()),
		})
		return uc.bus.Publish(r, Event{
			Name: EventSubBatchForwarded, BatchID: sb.BatchID, SubBatchID: sb.ID, ActorID: in.ActorID,
		})
	})
	if err != nil {
		return err
	}
	uc.send(ctx, pending)
	return nil
}

// WarehouseVerifyInput verifikasi akhir gudang atas satu sub-batch.
type WarehouseVerifyInput struct {
	SubBatchID string
	ActorID    string
	Location   string
}

// WarehouseVerify memverifikasi sub-batch SUBMITTED_TO_WAREHOUSE: mencatat
// FinishedGood FINISHED untuk good quantity (plus baris REJECT bila ada
// reject), menyimpan lokasi, lalu lewat rekonsiler menaikkan batch ke
// WAREHOUSE_VERIFIED bila seluruh sub-batch sudah lolos.
func (uc *SubBatchUseCase) WarehouseVerify(ctx context.Context, in WarehouseVerifyInput) error {
	if strings.TrimSpace(in.Location) == "" {
		return fmt.Errorf("%w: lokasi simpan wajib diisi", domain.ErrInvalidInput)
	}
	var pending []pendingNotification
	err := uc.txr.RunProduction(ctx, func(r Repos) error {
		sb, err := r.SubBatches.GetByIDForUpdate(in.SubBatchID)
		if err != nil {
			return err
		}
		if sb == nil {
			return fmt.Errorf("%w: sub-batch %s", domain.ErrNotFound, in.SubBatchID)
		}
		if err := production.EnsureSubBatchStatus(sb.Status, production.SubBatchSubmittedToWarehouse); err != nil {
			return err
		}

		now := time.Now()
		if good := sb.GoodOutput(); good > 0 {
			if err := r.FinishedGoods.Create(&entity.FinishedGood{
				ID:           uuid.New().String(),
				BatchID:      sb.BatchID,
				SubBatchID:   sb.ID,
				Type:         entity.FinishedGoodFinished,
				Quantity:     good,
				Location:     in.Location,
				VerifiedByID: in.ActorID,
				CreatedAt:    now,
			}); err != nil {
				return err
			}
		}
		if reject := sb.RejectOutput(); reject > 0 {
			if err := r.FinishedGoods.Create(&entity.FinishedGood{
				ID:           uuid.New().String(),
				BatchID:      sb.BatchID,
				SubBatchID:   sb.ID,
				Type:         entity.FinishedGoodReject,
				Quantity:     reject,
				Location:     in.Location,
				VerifiedByID: in.ActorID,
				CreatedAt:    now,
			}); err != nil {
				return err
			}
		}

		sb.Status = production.SubBatchWarehouseVerified
		sb.Location = in.Location
		sb.VerifiedBy = in.ActorID
		sb.VerifiedAt = &now
		if err := r.SubBatches.Update(sb); err != nil {
			return err
		}
		if err := r.Batches.AddTimeline(&entity.TimelineEvent{
			ID:          uuid.New().String(),
			BatchID:     sb.BatchID,
			Event:       "SUB_BATCH_WAREHOUSE_VERIFIED",
			Description: fmt.Sprintf("sub-batch %s diverifikasi gudang, lokasi %s", sb.SubBatchSKU, in.Location),
			UserID:      in.ActorID,
			CreatedAt:   now,
		}); err != nil {
			return err
		}
		pending = append(pending, pendingNotification{
			userID:  sb.CreatedBy,
			ntype:   "SUB_BATCH_WAREHOUSE_VERIFIED",
			title:   "Lolos gudang",
			message: fmt.Sprintf("Sub-batch %s diverifikasi gudang (lokasi %s)", sb.SubBatchSKU, in.Location),
		})
		return uc.bus.Publish(r, Event{
			Name: EventSubBatchWarehouseVerified, BatchID: sb.BatchID, SubBatchID: sb.ID, ActorID: in.ActorID,
		})
	})
	if err != nil {
		return err
	}
	uc.send(ctx, pending)
	return nil
}
