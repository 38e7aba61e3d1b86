package entity

import "time"

// Tipe barang jadi hasil verifikasi gudang.
const (
	FinishedGoodFinished = "FINISHED"
	FinishedGoodReject   = "REJECT"
)

// FinishedGood inventori barang jadi; dibuat sekali saat sub-batch lolos
// verifikasi gudang dan immutable setelahnya.
type FinishedGood struct {
	ID           string
	BatchID      string
	SubBatchID   string
	Type         string
	Quantity     int
	Location     string
	VerifiedByID string
	CreatedAt    time.Time
}
