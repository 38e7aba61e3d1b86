package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/konveksipro/produksi-api/internal/domain/entity"
	"github.com/konveksipro/produksi-api/internal/domain/production"
	"github.com/konveksipro/produksi-api/internal/domain/repository"
)

var _ repository.SubBatchRepository = (*SubBatchRepo)(nil)

// SubBatchRepo implementasi SubBatchRepository di PostgreSQL (bisa pool atau tx).
type SubBatchRepo struct {
	q Querier
}

// NewSubBatchRepository membangun adaptor sub-batch. Terima pool atau tx (Querier).
func NewSubBatchRepository(q Querier) *SubBatchRepo {
	return &SubBatchRepo{q: q}
}

// Create menyimpan sub-batch beserta seluruh item rinciannya.
func (r *SubBatchRepo) Create(sb *entity.SubBatch) error {
	ctx := context.Background()
	query := `
		INSERT INTO sub_batches (id, batch_id, sub_batch_sku, source, status, location, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, '', $6, $7)`
	_, err := r.q.Exec(ctx, query,
		sb.ID, sb.BatchID, sb.SubBatchSKU, string(sb.Source), string(sb.Status), sb.CreatedBy, sb.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("sub-batch sku %s sudah dipakai: %w", sb.SubBatchSKU, err)
		}
		return fmt.Errorf("insert sub batch: %w", err)
	}
	for _, item := range sb.Items {
		_, err := r.q.Exec(ctx, `
			INSERT INTO sub_batch_items
				(id, sub_batch_id, product_size, color, good_quantity, reject_kotor, reject_sobek, reject_rusak_jahit)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			item.ID, sb.ID, item.ProductSize, item.Color, item.GoodQuantity,
			item.RejectKotor, item.RejectSobek, item.RejectRusakJahit,
		)
		if err != nil {
			return fmt.Errorf("insert sub batch item: %w", err)
		}
	}
	return nil
}

const subBatchColumns = `
	id, batch_id, sub_batch_sku, source, status, location,
	created_by, created_at, COALESCE(verified_by, ''), verified_at`

func (r *SubBatchRepo) scanOne(row pgx.Row) (*entity.SubBatch, error) {
	var sb entity.SubBatch
	var source, status string
	err := row.Scan(
		&sb.ID, &sb.BatchID, &sb.SubBatchSKU, &source, &status, &sb.Location,
		&sb.CreatedBy, &sb.CreatedAt, &sb.VerifiedBy, &sb.VerifiedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	sb.Source = production.SubBatchSource(source)
	sb.Status = production.SubBatchStatus(status)
	return &sb, nil
}

func (r *SubBatchRepo) loadItems(sb *entity.SubBatch) error {
	rows, err := r.q.Query(context.Background(), `
		SELECT id, sub_batch_id, product_size, color, good_quantity, reject_kotor, reject_sobek, reject_rusak_jahit
		FROM sub_batch_items
		WHERE sub_batch_id = $1
		ORDER BY product_size, color`, sb.ID)
	if err != nil {
		return fmt.Errorf("list sub batch items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var item entity.SubBatchItem
		if err := rows.Scan(&item.ID, &item.SubBatchID, &item.ProductSize, &item.Color,
			&item.GoodQuantity, &item.RejectKotor, &item.RejectSobek, &item.RejectRusakJahit); err != nil {
			return fmt.Errorf("scan sub batch item: %w", err)
		}
		sb.Items = append(sb.Items, item)
	}
	return rows.Err()
}

// GetByID memuat sub-batch beserta itemnya.
func (r *SubBatchRepo) GetByID(id string) (*entity.SubBatch, error) {
	sb, err := r.scanOne(r.q.QueryRow(context.Background(),
		`SELECT `+subBatchColumns+` FROM sub_batches WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("get sub batch: %w", err)
	}
	if sb == nil {
		return nil, nil
	}
	if err := r.loadItems(sb); err != nil {
		return nil, err
	}
	return sb, nil
}

// GetByIDForUpdate seperti GetByID plus kunci baris sub-batch.
func (r *SubBatchRepo) GetByIDForUpdate(id string) (*entity.SubBatch, error) {
	sb, err := r.scanOne(r.q.QueryRow(context.Background(),
		`SELECT `+subBatchColumns+` FROM sub_batches WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, fmt.Errorf("get sub batch for update: %w", err)
	}
	if sb == nil {
		return nil, nil
	}
	if err := r.loadItems(sb); err != nil {
		return nil, err
	}
	return sb, nil
}

// ListByBatch memuat seluruh sub-batch satu batch beserta itemnya, urut buat.
func (r *SubBatchRepo) ListByBatch(batchID string) ([]*entity.SubBatch, error) {
	rows, err := r.q.Query(context.Background(),
		`SELECT `+subBatchColumns+` FROM sub_batches WHERE batch_id = $1 ORDER BY created_at`, batchID)
	if err != nil {
		return nil, fmt.Errorf("list sub batches: %w", err)
	}
	var result []*entity.SubBatch
	for rows.Next() {
		var sb entity.SubBatch
		var source, status string
		if err := rows.Scan(
			&sb.ID, &sb.BatchID, &sb.SubBatchSKU, &source, &status, &sb.Location,
			&sb.CreatedBy, &sb.CreatedAt, &sb.VerifiedBy, &sb.VerifiedAt,
		); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan sub batch: %w", err)
		}
		sb.Source = production.SubBatchSource(source)
		sb.Status = production.SubBatchStatus(status)
		result = append(result, &sb)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, sb := range result {
		if err := r.loadItems(sb); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// ListByStatus memuat sub-batch lintas batch pada satu status, urut buat.
func (r *SubBatchRepo) ListByStatus(status production.SubBatchStatus) ([]*entity.SubBatch, error) {
	rows, err := r.q.Query(context.Background(),
		`SELECT `+subBatchColumns+` FROM sub_batches WHERE status = $1 ORDER BY created_at`, string(status))
	if err != nil {
		return nil, fmt.Errorf("list sub batches by status: %w", err)
	}
	var result []*entity.SubBatch
	for rows.Next() {
		var sb entity.SubBatch
		var source, st string
		if err := rows.Scan(
			&sb.ID, &sb.BatchID, &sb.SubBatchSKU, &source, &st, &sb.Location,
			&sb.CreatedBy, &sb.CreatedAt, &sb.VerifiedBy, &sb.VerifiedAt,
		); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan sub batch: %w", err)
		}
		sb.Source = production.SubBatchSource(source)
		sb.Status = production.SubBatchStatus(st)
		result = append(result, &sb)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, sb := range result {
		if err := r.loadItems(sb); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// Update menyimpan status, lokasi, dan verifikator.
func (r *SubBatchRepo) Update(sb *entity.SubBatch) error {
	verifiedBy := (*string)(nil)
	if sb.VerifiedBy != "" {
		verifiedBy = &sb.VerifiedBy
	}
	_, err := r.q.Exec(context.Background(), `
		UPDATE sub_batches
		SET status = $2, location = $3, verified_by = $4, verified_at = $5
		WHERE id = $1`,
		sb.ID, string(sb.Status), sb.Location, verifiedBy, sb.VerifiedAt)
	if err != nil {
		return fmt.Errorf("update sub batch: %w", err)
	}
	return nil
}

// Delete menghapus sub-batch; item ikut lewat ON DELETE CASCADE.
func (r *SubBatchRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM sub_batches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete sub batch: %w", err)
	}
	return nil
}

// NextSequence urutan berikutnya untuk SKU sub-batch. Counter monoton per
// batch; SKU tidak pernah dipakai ulang walau sub-batch lama dihapus.
func (r *SubBatchRepo) NextSequence(batchID string) (int, error) {
	var seq int
	err := r.q.QueryRow(context.Background(), `
		UPDATE production_batches
		SET sub_batch_seq = sub_batch_seq + 1
		WHERE id = $1
		RETURNING sub_batch_seq`, batchID).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sub batch sequence: %w", err)
	}
	return seq, nil
}
