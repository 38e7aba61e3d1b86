package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/konveksipro/produksi-api/internal/domain/entity"
	"github.com/konveksipro/produksi-api/internal/domain/production"
	"github.com/konveksipro/produksi-api/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

// BatchRepo implementasi BatchRepository di PostgreSQL (bisa pool atau tx).
type BatchRepo struct {
	q Querier
}

// NewBatchRepository membangun adaptor batch. Terima pool atau tx (Querier).
func NewBatchRepository(q Querier) *BatchRepo {
	return &BatchRepo{q: q}
}

// Create menyimpan batch beserta size/color requests dan baris alokasinya.
func (r *BatchRepo) Create(b *entity.ProductionBatch) error {
	ctx := context.Background()
	query := `
		INSERT INTO production_batches
			(id, batch_sku, product_id, status, total_rolls, target_quantity, actual_quantity, reject_quantity, notes, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, 0, 0, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		b.ID, b.BatchSKU, b.ProductID, string(b.Status), b.TotalRolls, b.TargetQuantity,
		b.Notes, b.CreatedBy, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("batch sku %s sudah dipakai: %w", b.BatchSKU, err)
		}
		return fmt.Errorf("insert batch: %w", err)
	}
	for _, req := range b.SizeColorRequests {
		_, err := r.q.Exec(ctx, `
			INSERT INTO batch_size_color_requests (id, batch_id, product_size, color, quantity)
			VALUES ($1, $2, $3, $4, $5)`,
			req.ID, b.ID, req.ProductSize, req.Color, req.Quantity,
		)
		if err != nil {
			return fmt.Errorf("insert size color request: %w", err)
		}
	}
	for _, alloc := range b.Allocations {
		_, err := r.q.Exec(ctx, `
			INSERT INTO batch_material_allocations
				(id, batch_id, material_color_variant_id, allocated_qty, roll_quantity, meter_per_roll)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			alloc.ID, b.ID, alloc.MaterialColorVariantID, alloc.AllocatedQty, alloc.RollQuantity, alloc.MeterPerRoll,
		)
		if err != nil {
			return fmt.Errorf("insert allocation: %w", err)
		}
	}
	return nil
}

const batchColumns = `
	id, batch_sku, product_id, status, total_rolls, target_quantity,
	actual_quantity, reject_quantity, notes, start_date, completed_date,
	created_by, created_at, updated_at`

func scanBatch(row pgx.Row) (*entity.ProductionBatch, error) {
	var b entity.ProductionBatch
	var status string
	err := row.Scan(
		&b.ID, &b.BatchSKU, &b.ProductID, &status, &b.TotalRolls, &b.TargetQuantity,
		&b.ActualQuantity, &b.RejectQuantity, &b.Notes, &b.StartDate, &b.CompletedDate,
		&b.CreatedBy, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	b.Status = production.BatchStatus(status)
	return &b, nil
}

// GetByID memuat batch tanpa anak-anaknya.
func (r *BatchRepo) GetByID(id string) (*entity.ProductionBatch, error) {
	b, err := scanBatch(r.q.QueryRow(context.Background(),
		`SELECT `+batchColumns+` FROM production_batches WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get batch: %w", err)
	}
	return b, nil
}

// GetByIDForUpdate memuat batch dan mengunci barisnya.
func (r *BatchRepo) GetByIDForUpdate(id string) (*entity.ProductionBatch, error) {
	b, err := scanBatch(r.q.QueryRow(context.Background(),
		`SELECT `+batchColumns+` FROM production_batches WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, fmt.Errorf("get batch for update: %w", err)
	}
	return b, nil
}

// List memuat batch, opsional difilter status, terbaru dulu.
func (r *BatchRepo) List(status production.BatchStatus, limit, offset int) ([]*entity.ProductionBatch, error) {
	query := `SELECT ` + batchColumns + ` FROM production_batches`
	args := []any{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, string(status))
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()
	var result []*entity.ProductionBatch
	for rows.Next() {
		var b entity.ProductionBatch
		var st string
		if err := rows.Scan(
			&b.ID, &b.BatchSKU, &b.ProductID, &st, &b.TotalRolls, &b.TargetQuantity,
			&b.ActualQuantity, &b.RejectQuantity, &b.Notes, &b.StartDate, &b.CompletedDate,
			&b.CreatedBy, &b.CreatedAt, &b.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		b.Status = production.BatchStatus(st)
		result = append(result, &b)
	}
	return result, rows.Err()
}

// UpdateStatus menyimpan status baru.
func (r *BatchRepo) UpdateStatus(id string, status production.BatchStatus) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE production_batches SET status = $2, updated_at = now() WHERE id = $1`,
		id, string(status))
	if err != nil {
		return fmt.Errorf("update batch status: %w", err)
	}
	return nil
}

// SetStartDate mengisi tanggal mulai produksi.
func (r *BatchRepo) SetStartDate(id string, t time.Time) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE production_batches SET start_date = $2, updated_at = now() WHERE id = $1`, id, t)
	if err != nil {
		return fmt.Errorf("set start date: %w", err)
	}
	return nil
}

// UpdateTotals menyimpan cache agregat kuantitas.
func (r *BatchRepo) UpdateTotals(id string, actualQty, rejectQty int) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE production_batches SET actual_quantity = $2, reject_quantity = $3, updated_at = now() WHERE id = $1`,
		id, actualQty, rejectQty)
	if err != nil {
		return fmt.Errorf("update batch totals: %w", err)
	}
	return nil
}

// SetCompleted menutup batch: status COMPLETED, agregat akhir, tanggal selesai.
func (r *BatchRepo) SetCompleted(id string, actualQty, rejectQty int, completedAt time.Time) error {
	_, err := r.q.Exec(context.Background(), `
		UPDATE production_batches
		SET status = $2, actual_quantity = $3, reject_quantity = $4, completed_date = $5, updated_at = now()
		WHERE id = $1`,
		id, string(production.BatchCompleted), actualQty, rejectQty, completedAt)
	if err != nil {
		return fmt.Errorf("set batch completed: %w", err)
	}
	return nil
}

// GetAllocations memuat baris alokasi bahan satu batch.
func (r *BatchRepo) GetAllocations(batchID string) ([]*entity.BatchMaterialColorAllocation, error) {
	query := `
		SELECT id, batch_id, material_color_variant_id, allocated_qty, roll_quantity,
		       meter_per_roll, stock_at_allocation, roll_quantity_at_allocation
		FROM batch_material_allocations
		WHERE batch_id = $1
		ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, batchID)
	if err != nil {
		return nil, fmt.Errorf("list allocations: %w", err)
	}
	defer rows.Close()
	var result []*entity.BatchMaterialColorAllocation
	for rows.Next() {
		var a entity.BatchMaterialColorAllocation
		if err := rows.Scan(
			&a.ID, &a.BatchID, &a.MaterialColorVariantID, &a.AllocatedQty, &a.RollQuantity,
			&a.MeterPerRoll, &a.StockAtAllocation, &a.RollQuantityAtAllocation,
		); err != nil {
			return nil, fmt.Errorf("scan allocation: %w", err)
		}
		result = append(result, &a)
	}
	return result, rows.Err()
}

// SnapshotAllocation menyimpan stok & jumlah roll live saat konfirmasi alokasi.
func (r *BatchRepo) SnapshotAllocation(allocationID string, stockAt decimal.Decimal, rollsAt int) error {
	_, err := r.q.Exec(context.Background(), `
		UPDATE batch_material_allocations
		SET stock_at_allocation = $2, roll_quantity_at_allocation = $3
		WHERE id = $1`,
		allocationID, stockAt, rollsAt)
	if err != nil {
		return fmt.Errorf("snapshot allocation: %w", err)
	}
	return nil
}

// GetSizeColorRequests memuat permintaan kuantitas per ukuran+warna.
func (r *BatchRepo) GetSizeColorRequests(batchID string) ([]*entity.SizeColorRequest, error) {
	query := `
		SELECT id, batch_id, product_size, color, quantity
		FROM batch_size_color_requests
		WHERE batch_id = $1
		ORDER BY product_size, color`
	rows, err := r.q.Query(context.Background(), query, batchID)
	if err != nil {
		return nil, fmt.Errorf("list size color requests: %w", err)
	}
	defer rows.Close()
	var result []*entity.SizeColorRequest
	for rows.Next() {
		var req entity.SizeColorRequest
		if err := rows.Scan(&req.ID, &req.BatchID, &req.ProductSize, &req.Color, &req.Quantity); err != nil {
			return nil, fmt.Errorf("scan size color request: %w", err)
		}
		result = append(result, &req)
	}
	return result, rows.Err()
}

// AddTimeline menambah satu kejadian kronologi (append-only).
func (r *BatchRepo) AddTimeline(ev *entity.TimelineEvent) error {
	_, err := r.q.Exec(context.Background(), `
		INSERT INTO batch_timeline (id, batch_id, event, description, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		ev.ID, ev.BatchID, ev.Event, ev.Description, ev.UserID, ev.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert timeline event: %w", err)
	}
	return nil
}

// GetTimeline memuat kronologi batch, tertua dulu.
func (r *BatchRepo) GetTimeline(batchID string) ([]*entity.TimelineEvent, error) {
	query := `
		SELECT id, batch_id, event, description, user_id, created_at
		FROM batch_timeline
		WHERE batch_id = $1
		ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, batchID)
	if err != nil {
		return nil, fmt.Errorf("list timeline: %w", err)
	}
	defer rows.Close()
	var result []*entity.TimelineEvent
	for rows.Next() {
		var ev entity.TimelineEvent
		if err := rows.Scan(&ev.ID, &ev.BatchID, &ev.Event, &ev.Description, &ev.UserID, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan timeline event: %w", err)
		}
		result = append(result, &ev)
	}
	return result, rows.Err()
}

// CountForDate jumlah batch yang dibuat pada tanggal tsb (urutan SKU harian).
func (r *BatchRepo) CountForDate(day time.Time) (int, error) {
	var count int
	err := r.q.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM production_batches WHERE created_at::date = $1::date`, day).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count batches for date: %w", err)
	}
	return count, nil
}
