package entity

import (
	"time"

	"github.com/konveksipro/produksi-api/internal/domain/production"
)

// StageTask tugas satu tahap (cutting/sewing/finishing) untuk satu batch.
// Satu baris per batch per tahap; output sewing/finishing dirinci lewat
// sub-batch, output cutting lewat CuttingResult.
type StageTask struct {
	ID              string
	BatchID         string
	Stage           production.Stage
	AssignedToID    string
	Status          production.TaskStatus
	PiecesReceived  int
	PiecesCompleted int
	RejectPieces    int // dipakai cutting/finishing
	Notes           string
	AssignedAt      time.Time
	StartedAt       *time.Time
	CompletedAt     *time.Time
	VerifiedAt      *time.Time
	VerifiedByID    string
}

// CuttingResult hasil potong per (batch, ukuran, warna); di-upsert pada tiap
// laporan progres cutting. Confirmed direset setiap kali angka berubah agar
// approval lama tidak ikut terbawa.
type CuttingResult struct {
	ID           string
	BatchID      string
	ProductSize  string
	Color        string
	ActualPieces int
	Confirmed    bool
	UpdatedAt    time.Time
}
