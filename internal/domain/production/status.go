package production

import (
	"fmt"

	"github.com/konveksipro/produksi-api/internal/domain"
)

// BatchStatus status agregat sebuah batch produksi. Alurnya linier dengan
// titik cabang pada verifikasi cutting/sewing (reject kembali ke IN_x).
type BatchStatus string

const (
	BatchPending              BatchStatus = "PENDING"
	BatchMaterialRequested    BatchStatus = "MATERIAL_REQUESTED"
	BatchMaterialAllocated    BatchStatus = "MATERIAL_ALLOCATED"
	BatchAssignedToCutter     BatchStatus = "ASSIGNED_TO_CUTTER"
	BatchInCutting            BatchStatus = "IN_CUTTING"
	BatchCuttingCompleted     BatchStatus = "CUTTING_COMPLETED"
	BatchCuttingVerified      BatchStatus = "CUTTING_VERIFIED"
	BatchAssignedToSewer      BatchStatus = "ASSIGNED_TO_SEWER"
	BatchInSewing             BatchStatus = "IN_SEWING"
	BatchSewingCompleted      BatchStatus = "SEWING_COMPLETED"
	BatchSewingVerified       BatchStatus = "SEWING_VERIFIED"
	BatchAssignedToFinishing  BatchStatus = "ASSIGNED_TO_FINISHING"
	BatchInFinishing          BatchStatus = "IN_FINISHING"
	BatchFinishingCompleted   BatchStatus = "FINISHING_COMPLETED"
	BatchSubmittedToWarehouse BatchStatus = "SUBMITTED_TO_WAREHOUSE"
	BatchWarehouseVerified    BatchStatus = "WAREHOUSE_VERIFIED"
	BatchCompleted            BatchStatus = "COMPLETED"
)

// batchOrder indeks urutan linier; dipakai untuk cek "jangan mundur" yang
// idempoten saat beberapa aktor memicu transisi yang sama.
var batchOrder = map[BatchStatus]int{
	BatchPending:              0,
	BatchMaterialRequested:    1,
	BatchMaterialAllocated:    2,
	BatchAssignedToCutter:     3,
	BatchInCutting:            4,
	BatchCuttingCompleted:     5,
	BatchCuttingVerified:      6,
	BatchAssignedToSewer:      7,
	BatchInSewing:             8,
	BatchSewingCompleted:      9,
	BatchSewingVerified:       10,
	BatchAssignedToFinishing:  11,
	BatchInFinishing:          12,
	BatchFinishingCompleted:   13,
	BatchSubmittedToWarehouse: 14,
	BatchWarehouseVerified:    15,
	BatchCompleted:            16,
}

// batchTransitions tabel transisi eksplisit (from -> to yang diizinkan).
// Reject verifikasi cutting/sewing melompat balik ke IN_x.
var batchTransitions = map[BatchStatus][]BatchStatus{
	BatchPending:              {BatchMaterialRequested, BatchMaterialAllocated},
	BatchMaterialRequested:    {BatchMaterialAllocated},
	BatchMaterialAllocated:    {BatchAssignedToCutter},
	BatchAssignedToCutter:     {BatchInCutting},
	BatchInCutting:            {BatchCuttingCompleted},
	BatchCuttingCompleted:     {BatchCuttingVerified, BatchInCutting},
	BatchCuttingVerified:      {BatchAssignedToSewer},
	BatchAssignedToSewer:      {BatchInSewing},
	BatchInSewing:             {BatchSewingCompleted},
	BatchSewingCompleted:      {BatchSewingVerified, BatchInSewing},
	BatchSewingVerified:       {BatchAssignedToFinishing},
	BatchAssignedToFinishing:  {BatchInFinishing},
	BatchInFinishing:          {BatchFinishingCompleted},
	BatchFinishingCompleted:   {BatchSubmittedToWarehouse},
	BatchSubmittedToWarehouse: {BatchWarehouseVerified},
	BatchWarehouseVerified:    {BatchCompleted},
}

// Valid melaporkan apakah s adalah status batch yang dikenal.
func (s BatchStatus) Valid() bool {
	_, ok := batchOrder[s]
	return ok
}

// Before melaporkan apakah s berada sebelum other pada urutan linier.
func (s BatchStatus) Before(other BatchStatus) bool {
	return batchOrder[s] < batchOrder[other]
}

// CanTransition melaporkan apakah transisi from -> to ada di tabel.
func CanTransition(from, to BatchStatus) bool {
	for _, allowed := range batchTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// EnsureTransition memvalidasi transisi dan mengembalikan error yang
// menyebutkan status yang diharapkan vs aktual.
func EnsureTransition(from, to BatchStatus) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: batch berstatus %s, tidak bisa pindah ke %s", domain.ErrInvalidState, from, to)
	}
	return nil
}

// EnsureStatusIn memvalidasi bahwa current termasuk salah satu dari allowed.
func EnsureStatusIn(current BatchStatus, allowed ...BatchStatus) error {
	for _, s := range allowed {
		if current == s {
			return nil
		}
	}
	return fmt.Errorf("%w: diharapkan status %v, aktual %s", domain.ErrInvalidState, allowed, current)
}
