package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/konveksipro/produksi-api/internal/domain"
	"github.com/konveksipro/produksi-api/internal/domain/entity"
	"github.com/konveksipro/produksi-api/internal/domain/repository"
)

// LedgerUseCase buku besar stok bahan: satu pintu untuk semua mutasi stok.
// Setiap Apply menulis tepat satu MaterialTransaction dalam transaksi DB yang
// sama dengan mutasi stoknya (tidak ada transaksi yatim, tidak ada perubahan
// stok diam-diam).
type LedgerUseCase struct {
	txr TxRunner
}

// NewLedgerUseCase membangun use case ledger.
func NewLedgerUseCase(txr TxRunner) *LedgerUseCase {
	return &LedgerUseCase{txr: txr}
}

// ApplyInput masukan satu mutasi stok.
// Perhatian: ADJUSTMENT menyetel stok ke nilai absolut Quantity, BUKAN delta.
type ApplyInput struct {
	VariantID string
	Type      string // IN, OUT, ADJUSTMENT, RETURN
	Quantity  decimal.Decimal
	BatchID   string // opsional, untuk jejak per batch
	Note      string
	UserID    string
}

// ApplyResult hasil mutasi: stok baru dan baris log yang tercatat.
type ApplyResult struct {
	NewStock    decimal.Decimal
	Transaction *entity.MaterialTransaction
}

// Apply menjalankan mutasi stok secara transaksional.
// IN/RETURN menambah, OUT mengurangi lewat decrement kondisional atomik
// (gagal ErrInsufficientStock bila stok kurang), ADJUSTMENT menyetel absolut.
func (uc *LedgerUseCase) Apply(ctx context.Context, in ApplyInput) (*ApplyResult, error) {
	switch in.Type {
	case entity.TransactionTypeIN, entity.TransactionTypeOUT, entity.TransactionTypeRETURN:
		if !in.Quantity.GreaterThan(decimal.Zero) {
			return nil, fmt.Errorf("%w: kuantitas harus lebih dari nol", domain.ErrInvalidInput)
		}
	case entity.TransactionTypeADJUSTMENT:
		if in.Quantity.LessThan(decimal.Zero) {
			return nil, fmt.Errorf("%w: stok tidak boleh disetel negatif", domain.ErrInvalidInput)
		}
	default:
		return nil, fmt.Errorf("%w: tipe transaksi %q tidak dikenal", domain.ErrInvalidInput, in.Type)
	}
	if in.VariantID == "" || in.UserID == "" {
		return nil, fmt.Errorf("%w: variant_id dan user_id wajib diisi", domain.ErrInvalidInput)
	}

	var result ApplyResult
	err := uc.txr.Run(ctx, func(
		materials repository.MaterialRepository,
		transactions repository.MaterialTransactionRepository,
	) error {
		variant, err := materials.GetVariantByID(in.VariantID)
		if err != nil {
			return err
		}
		if variant == nil {
			return fmt.Errorf("%w: varian bahan %s", domain.ErrNotFound, in.VariantID)
		}

		var newStock decimal.Decimal
		switch in.Type {
		case entity.TransactionTypeIN, entity.TransactionTypeRETURN:
			newStock, err = materials.AddStock(in.VariantID, in.Quantity)
		case entity.TransactionTypeOUT:
			newStock, err = materials.DeductStock(in.VariantID, in.Quantity, decimal.Zero)
		case entity.TransactionTypeADJUSTMENT:
			newStock, err = materials.SetStock(in.VariantID, in.Quantity)
		}
		if err != nil {
			return err
		}

		tx := &entity.MaterialTransaction{
			ID:                     uuid.New().String(),
			MaterialColorVariantID: in.VariantID,
			Type:                   in.Type,
			Quantity:               in.Quantity,
			Unit:                   variant.Unit,
			BatchID:                in.BatchID,
			Note:                   in.Note,
			UserID:                 in.UserID,
			CreatedAt:              time.Now(),
		}
		if err := transactions.Create(tx); err != nil {
			return err
		}
		result = ApplyResult{NewStock: newStock, Transaction: tx}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// History mengembalikan log transaksi satu varian (terbaru dulu).
func (uc *LedgerUseCase) History(ctx context.Context, variantID string, limit, offset int) ([]*entity.MaterialTransaction, error) {
	var list []*entity.MaterialTransaction
	err := uc.txr.Run(ctx, func(
		materials repository.MaterialRepository,
		transactions repository.MaterialTransactionRepository,
	) error {
		variant, err := materials.GetVariantByID(variantID)
		if err != nil {
			return err
		}
		if variant == nil {
			return fmt.Errorf("%w: varian bahan %s", domain.ErrNotFound, variantID)
		}
		list, err = transactions.ListByVariant(variantID, limit, offset)
		return err
	})
	return list, err
}

// BatchHistory mengembalikan seluruh transaksi bahan yang terikat ke satu
// batch produksi (layar audit alokasi).
func (uc *LedgerUseCase) BatchHistory(ctx context.Context, batchID string) ([]*entity.MaterialTransaction, error) {
	if batchID == "" {
		return nil, fmt.Errorf("%w: batch_id wajib diisi", domain.ErrInvalidInput)
	}
	var list []*entity.MaterialTransaction
	err := uc.txr.Run(ctx, func(
		_ repository.MaterialRepository,
		transactions repository.MaterialTransactionRepository,
	) error {
		var err error
		list, err = transactions.ListByBatch(batchID)
		return err
	})
	return list, err
}
