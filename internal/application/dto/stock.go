package dto

import "github.com/shopspring/decimal"

// StockTransactionRequest satu mutasi stok bahan.
// Untuk type ADJUSTMENT, quantity adalah nilai stok absolut yang dituju.
type StockTransactionRequest struct {
	MaterialColorVariantID string          `json:"material_color_variant_id"`
	Type                   string          `json:"type"` // IN | OUT | ADJUSTMENT | RETURN
	Quantity               decimal.Decimal `json:"quantity"`
	BatchID                string          `json:"batch_id"`
	Note                   string          `json:"note"`
}
