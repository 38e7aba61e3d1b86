package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/konveksipro/produksi-api/internal/domain"
	"github.com/konveksipro/produksi-api/internal/domain/entity"
	"github.com/konveksipro/produksi-api/internal/domain/repository"
)

var _ repository.MaterialRepository = (*MaterialRepo)(nil)

// MaterialRepo implementasi MaterialRepository di PostgreSQL (bisa pool atau tx).
type MaterialRepo struct {
	q Querier
}

// NewMaterialRepository membangun adaptor varian bahan. Terima pool atau tx (Querier).
func NewMaterialRepository(q Querier) *MaterialRepo {
	return &MaterialRepo{q: q}
}

const variantColumns = `
	v.id, v.material_id, v.color, m.unit, v.stock, v.minimum_stock,
	v.roll_quantity, v.meter_per_roll, v.updated_at`

func scanVariant(row pgx.Row) (*entity.MaterialColorVariant, error) {
	var v entity.MaterialColorVariant
	err := row.Scan(
		&v.ID, &v.MaterialID, &v.Color, &v.Unit, &v.Stock, &v.MinimumStock,
		&v.RollQuantity, &v.MeterPerRoll, &v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

// GetVariantByID memuat satu varian warna bahan.
func (r *MaterialRepo) GetVariantByID(id string) (*entity.MaterialColorVariant, error) {
	query := `
		SELECT ` + variantColumns + `
		FROM material_color_variants v
		JOIN materials m ON m.id = v.material_id
		WHERE v.id = $1`
	v, err := scanVariant(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		return nil, fmt.Errorf("get variant: %w", err)
	}
	return v, nil
}

// GetVariantForUpdate memuat varian dan mengunci barisnya (SELECT FOR UPDATE).
func (r *MaterialRepo) GetVariantForUpdate(id string) (*entity.MaterialColorVariant, error) {
	query := `
		SELECT ` + variantColumns + `
		FROM material_color_variants v
		JOIN materials m ON m.id = v.material_id
		WHERE v.id = $1
		FOR UPDATE OF v`
	v, err := scanVariant(r.q.QueryRow(context.Background(), query, id))
	if err != nil {
		return nil, fmt.Errorf("get variant for update: %w", err)
	}
	return v, nil
}

// AddStock menambah stok dan mengembalikan nilai barunya.
func (r *MaterialRepo) AddStock(variantID string, qty decimal.Decimal) (decimal.Decimal, error) {
	query := `
		UPDATE material_color_variants
		SET stock = stock + $2, updated_at = now()
		WHERE id = $1
		RETURNING stock`
	var newStock decimal.Decimal
	err := r.q.QueryRow(context.Background(), query, variantID, qty).Scan(&newStock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, fmt.Errorf("%w: varian %s", domain.ErrNotFound, variantID)
		}
		return decimal.Zero, fmt.Errorf("add stock: %w", err)
	}
	return newStock, nil
}

// DeductStock mengurangi stok secara atomik. Predikat stock - qty >= floor ada
// di dalam UPDATE supaya dua pengurangan bersamaan tidak lolos cek terhadap
// nilai basi; nol baris berarti stok tidak cukup.
func (r *MaterialRepo) DeductStock(variantID string, qty, floor decimal.Decimal) (decimal.Decimal, error) {
	query := `
		UPDATE material_color_variants
		SET stock = stock - $2, updated_at = now()
		WHERE id = $1 AND stock - $2 >= $3
		RETURNING stock`
	var newStock decimal.Decimal
	err := r.q.QueryRow(context.Background(), query, variantID, qty, floor).Scan(&newStock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, fmt.Errorf("%w: varian %s", domain.ErrInsufficientStock, variantID)
		}
		return decimal.Zero, fmt.Errorf("deduct stock: %w", err)
	}
	return newStock, nil
}

// SetStock menyetel stok ke nilai absolut (jalur ADJUSTMENT).
func (r *MaterialRepo) SetStock(variantID string, qty decimal.Decimal) (decimal.Decimal, error) {
	query := `
		UPDATE material_color_variants
		SET stock = $2, updated_at = now()
		WHERE id = $1
		RETURNING stock`
	var newStock decimal.Decimal
	err := r.q.QueryRow(context.Background(), query, variantID, qty).Scan(&newStock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, fmt.Errorf("%w: varian %s", domain.ErrNotFound, variantID)
		}
		return decimal.Zero, fmt.Errorf("set stock: %w", err)
	}
	return newStock, nil
}

var _ repository.MaterialTransactionRepository = (*MaterialTransactionRepo)(nil)

// MaterialTransactionRepo log mutasi stok, append-only.
type MaterialTransactionRepo struct {
	q Querier
}

// NewMaterialTransactionRepository membangun adaptor log transaksi stok.
func NewMaterialTransactionRepository(q Querier) *MaterialTransactionRepo {
	return &MaterialTransactionRepo{q: q}
}

// Create menyimpan satu baris log transaksi stok.
func (r *MaterialTransactionRepo) Create(t *entity.MaterialTransaction) error {
	query := `
		INSERT INTO material_transactions (id, material_color_variant_id, type, quantity, unit, batch_id, note, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	batchID := (*string)(nil)
	if t.BatchID != "" {
		batchID = &t.BatchID
	}
	_, err := r.q.Exec(context.Background(), query,
		t.ID, t.MaterialColorVariantID, t.Type, t.Quantity, t.Unit, batchID, t.Note, t.UserID, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert material transaction: %w", err)
	}
	return nil
}

const transactionColumns = `
	id, material_color_variant_id, type, quantity, unit,
	COALESCE(batch_id, ''), note, user_id, created_at`

func scanTransactions(rows pgx.Rows) ([]*entity.MaterialTransaction, error) {
	defer rows.Close()
	var result []*entity.MaterialTransaction
	for rows.Next() {
		var t entity.MaterialTransaction
		if err := rows.Scan(
			&t.ID, &t.MaterialColorVariantID, &t.Type, &t.Quantity, &t.Unit,
			&t.BatchID, &t.Note, &t.UserID, &t.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &t)
	}
	return result, rows.Err()
}

// ListByVariant riwayat transaksi satu varian, terbaru dulu.
func (r *MaterialTransactionRepo) ListByVariant(variantID string, limit, offset int) ([]*entity.MaterialTransaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM material_transactions
		WHERE material_color_variant_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`
	rows, err := r.q.Query(context.Background(), query, variantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list transactions by variant: %w", err)
	}
	result, err := scanTransactions(rows)
	if err != nil {
		return nil, fmt.Errorf("scan transactions: %w", err)
	}
	return result, nil
}

// ListByBatch seluruh transaksi yang tercatat atas satu batch.
func (r *MaterialTransactionRepo) ListByBatch(batchID string) ([]*entity.MaterialTransaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM material_transactions
		WHERE batch_id = $1
		ORDER BY created_at`
	rows, err := r.q.Query(context.Background(), query, batchID)
	if err != nil {
		return nil, fmt.Errorf("list transactions by batch: %w", err)
	}
	result, err := scanTransactions(rows)
	if err != nil {
		return nil, fmt.Errorf("scan transactions: %w", err)
	}
	return result, nil
}
