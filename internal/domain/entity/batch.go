package entity

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/konveksipro/produksi-api/internal/domain/production"
)

// ProductionBatch agregat akar satu run produksi; tidak pernah dihapus fisik.
type ProductionBatch struct {
	ID             string
	BatchSKU       string // PROD-<YYYYMMDD>-<seq>, unik per hari
	ProductID      string
	Status         production.BatchStatus
	TotalRolls     int
	TargetQuantity int // diturunkan dari size/color requests
	ActualQuantity int // terisi saat COMPLETED: Σ output good finishing
	RejectQuantity int // terisi saat COMPLETED: Σ reject
	Notes          string
	StartDate      *time.Time
	CompletedDate  *time.Time
	CreatedBy      string
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Allocations       []BatchMaterialColorAllocation
	SizeColorRequests []SizeColorRequest
	Timeline          []TimelineEvent
}

// BatchMaterialColorAllocation alokasi bahan per varian warna untuk satu batch.
// StockAtAllocation/RollQuantityAtAllocation adalah snapshot saat konfirmasi,
// supaya jejak alokasi tetap bisa diaudit walau stok live berubah.
type BatchMaterialColorAllocation struct {
	ID                       string
	BatchID                  string
	MaterialColorVariantID   string
	AllocatedQty             decimal.Decimal
	RollQuantity             int
	MeterPerRoll             decimal.Decimal
	StockAtAllocation        *decimal.Decimal
	RollQuantityAtAllocation *int
}

// SizeColorRequest permintaan kuantitas per ukuran+warna pada sebuah batch.
type SizeColorRequest struct {
	ID          string
	BatchID     string
	ProductSize string
	Color       string
	Quantity    int
}

// TimelineEvent catatan kronologis append-only pada batch.
type TimelineEvent struct {
	ID          string
	BatchID     string
	Event       string
	Description string
	UserID      string
	CreatedAt   time.Time
}

// TargetFromRequests total target dihitung ulang dari rincian request.
func (b *ProductionBatch) TargetFromRequests() int {
	total := 0
	for _, r := range b.SizeColorRequests {
		total += r.Quantity
	}
	return total
}
