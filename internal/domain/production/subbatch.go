package production

import (
	"fmt"

	"github.com/konveksipro/produksi-api/internal/domain"
)

// SubBatchSource asal output sub-batch.
type SubBatchSource string

const (
	SourceSewing    SubBatchSource = "SEWING"
	SourceFinishing SubBatchSource = "FINISHING"
)

// SubBatchStatus status pengiriman parsial. Reject pada status CREATED
// bersifat destruktif (hard delete + snapshot audit), bukan status terminal.
type SubBatchStatus string

const (
	SubBatchCreated              SubBatchStatus = "CREATED"
	SubBatchSewingVerified       SubBatchStatus = "SEWING_VERIFIED"
	SubBatchForwardedToFinishing SubBatchStatus = "FORWARDED_TO_FINISHING"
	SubBatchSubmittedToWarehouse SubBatchStatus = "SUBMITTED_TO_WAREHOUSE"
	SubBatchWarehouseVerified    SubBatchStatus = "WAREHOUSE_VERIFIED"
	SubBatchCompleted            SubBatchStatus = "COMPLETED"
)

// ApprovedStatus status tujuan ketika sub-batch CREATED disetujui,
// tergantung asalnya.
func (s SubBatchSource) ApprovedStatus() SubBatchStatus {
	if s == SourceSewing {
		return SubBatchSewingVerified
	}
	return SubBatchSubmittedToWarehouse
}

var subBatchTransitions = map[SubBatchStatus][]SubBatchStatus{
	SubBatchCreated:              {SubBatchSewingVerified, SubBatchSubmittedToWarehouse},
	SubBatchSewingVerified:       {SubBatchForwardedToFinishing},
	SubBatchSubmittedToWarehouse: {SubBatchWarehouseVerified},
	SubBatchWarehouseVerified:    {SubBatchCompleted},
}

// CanSubBatchTransition melaporkan apakah transisi sub-batch diizinkan.
func CanSubBatchTransition(from, to SubBatchStatus) bool {
	for _, allowed := range subBatchTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// EnsureSubBatchStatus memvalidasi status saat ini dengan pesan expected vs actual.
func EnsureSubBatchStatus(current, expected SubBatchStatus) error {
	if current != expected {
		return fmt.Errorf("%w: sub-batch diharapkan %s, aktual %s", domain.ErrInvalidState, expected, current)
	}
	return nil
}

// Settled melaporkan apakah sub-batch sudah lolos gudang (syarat penutupan batch).
func (s SubBatchStatus) Settled() bool {
	return s == SubBatchWarehouseVerified || s == SubBatchCompleted
}
