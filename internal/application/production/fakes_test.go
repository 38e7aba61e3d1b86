package production_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	app "github.com/konveksipro/produksi-api/internal/application/production"
	"github.com/konveksipro/produksi-api/internal/domain"
	"github.com/konveksipro/produksi-api/internal/domain/entity"
	"github.com/konveksipro/produksi-api/internal/domain/production"
)

// memStore penyimpanan in-memory untuk seluruh repo; satu instance per test.
// Fake TxRunner membungkusnya jadi production.Repos tanpa transaksi sungguhan.
type memStore struct {
	mu sync.Mutex

	batches     map[string]*entity.ProductionBatch
	batchOrder  []string
	requests    []*entity.SizeColorRequest
	allocations []*entity.BatchMaterialColorAllocation
	timeline    []*entity.TimelineEvent

	tasks          map[string]*entity.StageTask // key: batchID + "/" + stage
	cuttingResults map[string]*entity.CuttingResult

	subBatches    map[string]*entity.SubBatch
	subBatchOrder []string
	subBatchSeq   map[string]int

	variants    map[string]*entity.MaterialColorVariant
	materialTxs []*entity.MaterialTransaction

	finishedGoods []*entity.FinishedGood
	auditLogs     []*entity.AuditLog

	users    map[string]*entity.User
	products map[string]*entity.Product
}

func newStore() *memStore {
	return &memStore{
		batches:        map[string]*entity.ProductionBatch{},
		tasks:          map[string]*entity.StageTask{},
		cuttingResults: map[string]*entity.CuttingResult{},
		subBatches:     map[string]*entity.SubBatch{},
		subBatchSeq:    map[string]int{},
		variants:       map[string]*entity.MaterialColorVariant{},
		users:          map[string]*entity.User{},
		products:       map[string]*entity.Product{},
	}
}

func (s *memStore) repos() app.Repos {
	return app.Repos{
		Batches:              &fakeBatchRepo{s},
		Tasks:                &fakeTaskRepo{s},
		SubBatches:           &fakeSubBatchRepo{s},
		Materials:            &fakeMaterialRepo{s},
		MaterialTransactions: &fakeMaterialTxRepo{s},
		FinishedGoods:        &fakeFinishedGoodRepo{s},
		AuditLogs:            &fakeAuditLogRepo{s},
		Users:                &fakeUserRepo{s},
		Products:             &fakeProductRepo{s},
	}
}

// fakeTxRunner menjalankan fn langsung terhadap memStore. Tidak ada rollback:
// test yang mengharapkan error memverifikasi keadaan lewat asersi eksplisit.
type fakeTxRunner struct{ s *memStore }

func (f *fakeTxRunner) RunProduction(_ context.Context, fn func(r app.Repos) error) error {
	return fn(f.s.repos())
}

// ── Batch ────────────────────────────────────────────────────────────────────

type fakeBatchRepo struct{ s *memStore }

func (f *fakeBatchRepo) Create(b *entity.ProductionBatch) error {
	f.s.batches[b.ID] = b
	f.s.batchOrder = append(f.s.batchOrder, b.ID)
	for i := range b.SizeColorRequests {
		req := b.SizeColorRequests[i]
		f.s.requests = append(f.s.requests, &req)
	}
	for i := range b.Allocations {
		alloc := b.Allocations[i]
		f.s.allocations = append(f.s.allocations, &alloc)
	}
	return nil
}

func (f *fakeBatchRepo) GetByID(id string) (*entity.ProductionBatch, error) {
	return f.s.batches[id], nil
}

func (f *fakeBatchRepo) GetByIDForUpdate(id string) (*entity.ProductionBatch, error) {
	return f.s.batches[id], nil
}

func (f *fakeBatchRepo) List(status production.BatchStatus, limit, offset int) ([]*entity.ProductionBatch, error) {
	var out []*entity.ProductionBatch
	for _, id := range f.s.batchOrder {
		b := f.s.batches[id]
		if status != "" && b.Status != status {
			continue
		}
		out = append(out, b)
	}
	if offset > len(out) {
		offset = len(out)
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeBatchRepo) UpdateStatus(id string, status production.BatchStatus) error {
	b, ok := f.s.batches[id]
	if !ok {
		return domain.ErrNotFound
	}
	b.Status = status
	return nil
}

func (f *fakeBatchRepo) SetStartDate(id string, t time.Time) error {
	f.s.batches[id].StartDate = &t
	return nil
}

func (f *fakeBatchRepo) UpdateTotals(id string, actualQty, rejectQty int) error {
	b := f.s.batches[id]
	b.ActualQuantity = actualQty
	b.RejectQuantity = rejectQty
	return nil
}

func (f *fakeBatchRepo) SetCompleted(id string, actualQty, rejectQty int, completedAt time.Time) error {
	b := f.s.batches[id]
	b.Status = production.BatchCompleted
	b.ActualQuantity = actualQty
	b.RejectQuantity = rejectQty
	b.CompletedDate = &completedAt
	return nil
}

func (f *fakeBatchRepo) GetAllocations(batchID string) ([]*entity.BatchMaterialColorAllocation, error) {
	var out []*entity.BatchMaterialColorAllocation
	for _, a := range f.s.allocations {
		if a.BatchID == batchID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeBatchRepo) SnapshotAllocation(allocationID string, stockAt decimal.Decimal, rollsAt int) error {
	for _, a := range f.s.allocations {
		if a.ID == allocationID {
			a.StockAtAllocation = &stockAt
			a.RollQuantityAtAllocation = &rollsAt
			return nil
		}
	}
	return domain.ErrNotFound
}

func (f *fakeBatchRepo) GetSizeColorRequests(batchID string) ([]*entity.SizeColorRequest, error) {
	var out []*entity.SizeColorRequest
	for _, r := range f.s.requests {
		if r.BatchID == batchID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeBatchRepo) AddTimeline(ev *entity.TimelineEvent) error {
	f.s.timeline = append(f.s.timeline, ev)
	return nil
}

func (f *fakeBatchRepo) GetTimeline(batchID string) ([]*entity.TimelineEvent, error) {
	var out []*entity.TimelineEvent
	for _, ev := range f.s.timeline {
		if ev.BatchID == batchID {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (f *fakeBatchRepo) CountForDate(day time.Time) (int, error) {
	y, m, d := day.Date()
	count := 0
	for _, b := range f.s.batches {
		by, bm, bd := b.CreatedAt.Date()
		if by == y && bm == m && bd == d {
			count++
		}
	}
	return count, nil
}

// ── Task ─────────────────────────────────────────────────────────────────────

type fakeTaskRepo struct{ s *memStore }

func taskKey(batchID string, stage production.Stage) string {
	return batchID + "/" + string(stage)
}

func (f *fakeTaskRepo) Create(t *entity.StageTask) error {
	key := taskKey(t.BatchID, t.Stage)
	if _, ok := f.s.tasks[key]; ok {
		return domain.ErrDuplicate
	}
	f.s.tasks[key] = t
	return nil
}

func (f *fakeTaskRepo) GetByBatchAndStage(batchID string, stage production.Stage) (*entity.StageTask, error) {
	return f.s.tasks[taskKey(batchID, stage)], nil
}

func (f *fakeTaskRepo) GetByBatchAndStageForUpdate(batchID string, stage production.Stage) (*entity.StageTask, error) {
	return f.s.tasks[taskKey(batchID, stage)], nil
}

func (f *fakeTaskRepo) Update(t *entity.StageTask) error {
	f.s.tasks[taskKey(t.BatchID, t.Stage)] = t
	return nil
}

func (f *fakeTaskRepo) ListByStatus(status production.TaskStatus) ([]*entity.StageTask, error) {
	var out []*entity.StageTask
	for _, t := range f.s.tasks {
		if t.Status == status {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func cuttingKey(batchID, size, color string) string {
	return batchID + "/" + size + "/" + color
}

func (f *fakeTaskRepo) UpsertCuttingResult(r *entity.CuttingResult) error {
	key := cuttingKey(r.BatchID, r.ProductSize, r.Color)
	if existing, ok := f.s.cuttingResults[key]; ok {
		existing.ActualPieces = r.ActualPieces
		existing.Confirmed = false
		existing.UpdatedAt = r.UpdatedAt
		return nil
	}
	r.Confirmed = false
	f.s.cuttingResults[key] = r
	return nil
}

func (f *fakeTaskRepo) GetCuttingResults(batchID string) ([]*entity.CuttingResult, error) {
	var out []*entity.CuttingResult
	for _, r := range f.s.cuttingResults {
		if r.BatchID == batchID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ProductSize+out[i].Color < out[j].ProductSize+out[j].Color
	})
	return out, nil
}

func (f *fakeTaskRepo) ConfirmCuttingResults(batchID string) error {
	for _, r := range f.s.cuttingResults {
		if r.BatchID == batchID {
			r.Confirmed = true
		}
	}
	return nil
}

// ── SubBatch ─────────────────────────────────────────────────────────────────

type fakeSubBatchRepo struct{ s *memStore }

func (f *fakeSubBatchRepo) Create(sb *entity.SubBatch) error {
	f.s.subBatches[sb.ID] = sb
	f.s.subBatchOrder = append(f.s.subBatchOrder, sb.ID)
	return nil
}

func (f *fakeSubBatchRepo) GetByID(id string) (*entity.SubBatch, error) {
	return f.s.subBatches[id], nil
}

func (f *fakeSubBatchRepo) GetByIDForUpdate(id string) (*entity.SubBatch, error) {
	return f.s.subBatches[id], nil
}

func (f *fakeSubBatchRepo) ListByBatch(batchID string) ([]*entity.SubBatch, error) {
	var out []*entity.SubBatch
	for _, id := range f.s.subBatchOrder {
		sb, ok := f.s.subBatches[id]
		if ok && sb.BatchID == batchID {
			out = append(out, sb)
		}
	}
	return out, nil
}

func (f *fakeSubBatchRepo) ListByStatus(status production.SubBatchStatus) ([]*entity.SubBatch, error) {
	var out []*entity.SubBatch
	for _, id := range f.s.subBatchOrder {
		sb, ok := f.s.subBatches[id]
		if ok && sb.Status == status {
			out = append(out, sb)
		}
	}
	return out, nil
}

func (f *fakeSubBatchRepo) Update(sb *entity.SubBatch) error {
	f.s.subBatches[sb.ID] = sb
	return nil
}

func (f *fakeSubBatchRepo) Delete(id string) error {
	delete(f.s.subBatches, id)
	return nil
}

func (f *fakeSubBatchRepo) NextSequence(batchID string) (int, error) {
	f.s.subBatchSeq[batchID]++
	return f.s.subBatchSeq[batchID], nil
}

// ── Material ─────────────────────────────────────────────────────────────────

type fakeMaterialRepo struct{ s *memStore }

func (f *fakeMaterialRepo) GetVariantByID(id string) (*entity.MaterialColorVariant, error) {
	return f.s.variants[id], nil
}

func (f *fakeMaterialRepo) GetVariantForUpdate(id string) (*entity.MaterialColorVariant, error) {
	return f.s.variants[id], nil
}

func (f *fakeMaterialRepo) AddStock(variantID string, qty decimal.Decimal) (decimal.Decimal, error) {
	v, ok := f.s.variants[variantID]
	if !ok {
		return decimal.Zero, domain.ErrNotFound
	}
	v.Stock = v.Stock.Add(qty)
	return v.Stock, nil
}

func (f *fakeMaterialRepo) DeductStock(variantID string, qty, floor decimal.Decimal) (decimal.Decimal, error) {
	v, ok := f.s.variants[variantID]
	if !ok {
		return decimal.Zero, domain.ErrNotFound
	}
	if v.Stock.Sub(qty).LessThan(floor) {
		return decimal.Zero, domain.ErrInsufficientStock
	}
	v.Stock = v.Stock.Sub(qty)
	return v.Stock, nil
}

func (f *fakeMaterialRepo) SetStock(variantID string, qty decimal.Decimal) (decimal.Decimal, error) {
	v, ok := f.s.variants[variantID]
	if !ok {
		return decimal.Zero, domain.ErrNotFound
	}
	v.Stock = qty
	return v.Stock, nil
}

type fakeMaterialTxRepo struct{ s *memStore }

func (f *fakeMaterialTxRepo) Create(tx *entity.MaterialTransaction) error {
	f.s.materialTxs = append(f.s.materialTxs, tx)
	return nil
}

func (f *fakeMaterialTxRepo) ListByVariant(variantID string, limit, offset int) ([]*entity.MaterialTransaction, error) {
	var out []*entity.MaterialTransaction
	for i := len(f.s.materialTxs) - 1; i >= 0; i-- {
		if f.s.materialTxs[i].MaterialColorVariantID == variantID {
			out = append(out, f.s.materialTxs[i])
		}
	}
	return out, nil
}

func (f *fakeMaterialTxRepo) ListByBatch(batchID string) ([]*entity.MaterialTransaction, error) {
	var out []*entity.MaterialTransaction
	for _, tx := range f.s.materialTxs {
		if tx.BatchID == batchID {
			out = append(out, tx)
		}
	}
	return out, nil
}

// ── Pendukung lain ───────────────────────────────────────────────────────────

type fakeFinishedGoodRepo struct{ s *memStore }

func (f *fakeFinishedGoodRepo) Create(fg *entity.FinishedGood) error {
	f.s.finishedGoods = append(f.s.finishedGoods, fg)
	return nil
}

func (f *fakeFinishedGoodRepo) ListByBatch(batchID string) ([]*entity.FinishedGood, error) {
	var out []*entity.FinishedGood
	for _, fg := range f.s.finishedGoods {
		if fg.BatchID == batchID {
			out = append(out, fg)
		}
	}
	return out, nil
}

type fakeAuditLogRepo struct{ s *memStore }

func (f *fakeAuditLogRepo) Create(l *entity.AuditLog) error {
	f.s.auditLogs = append(f.s.auditLogs, l)
	return nil
}

func (f *fakeAuditLogRepo) ListByEntity(entityName, entityID string) ([]*entity.AuditLog, error) {
	var out []*entity.AuditLog
	for _, l := range f.s.auditLogs {
		if l.Entity == entityName && l.EntityID == entityID {
			out = append(out, l)
		}
	}
	return out, nil
}

type fakeUserRepo struct{ s *memStore }

func (f *fakeUserRepo) Create(u *entity.User) error {
	f.s.users[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByID(id string) (*entity.User, error) {
	return f.s.users[id], nil
}

func (f *fakeUserRepo) GetByEmail(email string) (*entity.User, error) {
	for _, u := range f.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) ListByRole(role string) ([]*entity.User, error) {
	var out []*entity.User
	for _, u := range f.s.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeProductRepo struct{ s *memStore }

func (f *fakeProductRepo) Create(p *entity.Product) error {
	f.s.products[p.ID] = p
	return nil
}

func (f *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	return f.s.products[id], nil
}

func (f *fakeProductRepo) List(limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range f.s.products {
		out = append(out, p)
	}
	return out, nil
}

// ── Fixture ──────────────────────────────────────────────────────────────────

const (
	idOwner          = "user-owner"
	idKepalaProduksi = "user-kepala-produksi"
	idKepalaGudang   = "user-kepala-gudang"
	idPemotong       = "user-pemotong"
	idPenjahit       = "user-penjahit"
	idFinisher       = "user-finisher"
	idProduct        = "product-kaos-polos"
)

// fixture menyatukan store, use case, dan bus+rekonsiler persis seperti wiring
// di composition root, minus DB dan notifier.
type fixture struct {
	s          *memStore
	batchUC    *app.BatchUseCase
	taskUC     *app.TaskUseCase
	subBatchUC *app.SubBatchUseCase
}

func newFixture() *fixture {
	s := newStore()
	txr := &fakeTxRunner{s: s}
	bus := app.NewBus()
	app.NewBatchReconciler(bus)

	for id, role := range map[string]string{
		idOwner:          entity.RoleOwner,
		idKepalaProduksi: entity.RoleKepalaProduksi,
		idKepalaGudang:   entity.RoleKepalaGudang,
		idPemotong:       entity.RolePemotong,
		idPenjahit:       entity.RolePenjahit,
		idFinisher:       entity.RoleFinishing,
	} {
		s.users[id] = &entity.User{ID: id, Name: id, Email: id + "@konveksi.id", Role: role}
	}
	s.products[idProduct] = &entity.Product{ID: idProduct, SKU: "KAOS-001", Name: "Kaos Polos"}

	return &fixture{
		s:          s,
		batchUC:    app.NewBatchUseCase(txr, nil),
		taskUC:     app.NewTaskUseCase(txr, nil),
		subBatchUC: app.NewSubBatchUseCase(txr, nil, bus),
	}
}

func sizeColorReq(size, color string, qty int) entity.SizeColorRequest {
	return entity.SizeColorRequest{ProductSize: size, Color: color, Quantity: qty}
}

// seedBatch menanam batch langsung di store dengan status tertentu.
func (f *fixture) seedBatch(status production.BatchStatus, requests ...entity.SizeColorRequest) *entity.ProductionBatch {
	b := &entity.ProductionBatch{
		ID:        "batch-1",
		BatchSKU:  "PROD-20260830-001",
		ProductID: idProduct,
		Status:    status,
		CreatedBy: idKepalaProduksi,
		CreatedAt: time.Now(),
	}
	for i := range requests {
		requests[i].BatchID = b.ID
		b.SizeColorRequests = append(b.SizeColorRequests, requests[i])
		b.TargetQuantity += requests[i].Quantity
		f.s.requests = append(f.s.requests, &b.SizeColorRequests[i])
	}
	f.s.batches[b.ID] = b
	f.s.batchOrder = append(f.s.batchOrder, b.ID)
	return b
}

// seedTask menanam tugas tahap langsung di store.
func (f *fixture) seedTask(batchID string, stage production.Stage, assignee string, status production.TaskStatus) *entity.StageTask {
	t := &entity.StageTask{
		ID:           "task-" + string(stage),
		BatchID:      batchID,
		Stage:        stage,
		AssignedToID: assignee,
		Status:       status,
		AssignedAt:   time.Now(),
	}
	f.s.tasks[taskKey(batchID, stage)] = t
	return t
}

// seedCuttingResult menanam hasil potong terkonfirmasi.
func (f *fixture) seedCuttingResult(batchID, size, color string, pieces int) {
	f.s.cuttingResults[cuttingKey(batchID, size, color)] = &entity.CuttingResult{
		ID: "cut-" + size + "-" + color, BatchID: batchID,
		ProductSize: size, Color: color, ActualPieces: pieces, Confirmed: true,
	}
}
