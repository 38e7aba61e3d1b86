package dto

import "github.com/shopspring/decimal"

// SizeColorRequestDTO permintaan kuantitas per ukuran+warna.
type SizeColorRequestDTO struct {
	ProductSize string `json:"product_size"`
	Color       string `json:"color"`
	Quantity    int    `json:"quantity"`
}

// AllocationRequestDTO rencana alokasi bahan per varian warna.
type AllocationRequestDTO struct {
	MaterialColorVariantID string          `json:"material_color_variant_id"`
	AllocatedQty           decimal.Decimal `json:"allocated_qty"`
	RollQuantity           int             `json:"roll_quantity"`
	MeterPerRoll           decimal.Decimal `json:"meter_per_roll"`
}

// CreateBatchRequest pembuatan batch produksi.
type CreateBatchRequest struct {
	ProductID   string                 `json:"product_id"`
	Notes       string                 `json:"notes"`
	Requests    []SizeColorRequestDTO  `json:"size_color_requests"`
	Allocations []AllocationRequestDTO `json:"allocations"`
}
