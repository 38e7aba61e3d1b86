package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipe transaksi stok bahan.
// ADJUSTMENT menyetel stok ke nilai absolut, BUKAN delta; IN/OUT/RETURN delta.
const (
	TransactionTypeIN         = "IN"
	TransactionTypeOUT        = "OUT"
	TransactionTypeADJUSTMENT = "ADJUSTMENT"
	TransactionTypeRETURN     = "RETURN"
)

// Material bahan baku (kain, benang, aksesoris).
type Material struct {
	ID        string
	Name      string
	Unit      string // meter, roll, pcs
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MaterialColorVariant varian warna sebuah bahan; stok dimiliki per varian.
// Invarian: Stock >= 0 setiap saat; mutasi stok hanya lewat ledger.
type MaterialColorVariant struct {
	ID           string
	MaterialID   string
	Color        string
	Unit         string
	Stock        decimal.Decimal
	MinimumStock decimal.Decimal
	RollQuantity int
	MeterPerRoll decimal.Decimal
	UpdatedAt    time.Time
}

// MaterialTransaction catatan audit mutasi stok; immutable, tepat satu baris
// per mutasi stok dalam transaksi DB yang sama.
type MaterialTransaction struct {
	ID                     string
	MaterialColorVariantID string
	Type                   string
	Quantity               decimal.Decimal
	Unit                   string
	BatchID                string // opsional; terisi pada alokasi/pengembalian batch
	Note                   string
	UserID                 string
	CreatedAt              time.Time
}
