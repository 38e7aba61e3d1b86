package entity

import "time"

// Product produk garmen yang diproduksi per batch.
type Product struct {
	ID          string
	SKU         string
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
