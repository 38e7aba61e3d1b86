package postgres

import (
	"context"
	"fmt"

	"github.com/konveksipro/produksi-api/internal/domain/entity"
	"github.com/konveksipro/produksi-api/internal/domain/repository"
)

var _ repository.FinishedGoodRepository = (*FinishedGoodRepo)(nil)

// FinishedGoodRepo inventori barang jadi, insert-only.
type FinishedGoodRepo struct {
	q Querier
}

// NewFinishedGoodRepository membangun adaptor barang jadi.
func NewFinishedGoodRepository(q Querier) *FinishedGoodRepo {
	return &FinishedGoodRepo{q: q}
}

// Create menyimpan satu baris barang jadi.
func (r *FinishedGoodRepo) Create(fg *entity.FinishedGood) error {
	query := `
		INSERT INTO finished_goods (id, batch_id, sub_batch_id, type, quantity, location, verified_by_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.q.Exec(context.Background(), query,
		fg.ID, fg.BatchID, fg.SubBatchID, fg.Type, fg.Quantity, fg.Location, fg.VerifiedByID, fg.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert finished good: %w", err)
	}
	return nil
}

// ListByBatch memuat barang jadi satu batch.
func (r *FinishedGoodRepo) ListByBatch(batchID string) ([]*entity.FinishedGood, error) {
	query := `
		SELECT id, batch_id, sub_batch_id, type, quantity, location, verified_by_id, created_at
		FROM finished_goods
		WHERE batch_id = $1
		ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, batchID)
	if err != nil {
		return nil, fmt.Errorf("list finished goods: %w", err)
	}
	defer rows.Close()
	var result []*entity.FinishedGood
	for rows.Next() {
		var fg entity.FinishedGood
		if err := rows.Scan(&fg.ID, &fg.BatchID, &fg.SubBatchID, &fg.Type, &fg.Quantity,
			&fg.Location, &fg.VerifiedByID, &fg.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan finished good: %w", err)
		}
		result = append(result, &fg)
	}
	return result, rows.Err()
}
