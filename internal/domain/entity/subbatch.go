package entity

import (
	"time"

	"github.com/konveksipro/produksi-api/internal/domain/production"
)

// SubBatch potongan output tahap yang dikirim dan diverifikasi terpisah.
// Agregat (GoodOutput dsb.) selalu dihitung ulang dari Items, tidak pernah
// diedit berdiri sendiri.
type SubBatch struct {
	ID          string
	BatchID     string
	SubBatchSKU string // <parentSku>-SUB-<seq>
	Source      production.SubBatchSource
	Status      production.SubBatchStatus
	Location    string // lokasi simpan, terisi saat verifikasi gudang
	Items       []SubBatchItem
	CreatedBy   string
	CreatedAt   time.Time
	VerifiedBy  string
	VerifiedAt  *time.Time
}

// SubBatchItem rincian per ukuran+warna dalam satu sub-batch.
type SubBatchItem struct {
	ID               string
	SubBatchID       string
	ProductSize      string
	Color            string
	GoodQuantity     int
	RejectKotor      int
	RejectSobek      int
	RejectRusakJahit int
}

// Total good + seluruh reject satu item.
func (i SubBatchItem) Total() int {
	return i.GoodQuantity + i.RejectKotor + i.RejectSobek + i.RejectRusakJahit
}

// GoodOutput total good quantity, dihitung dari Items.
func (sb *SubBatch) GoodOutput() int {
	total := 0
	for _, i := range sb.Items {
		total += i.GoodQuantity
	}
	return total
}

// RejectOutput total seluruh reject, dihitung dari Items.
func (sb *SubBatch) RejectOutput() int {
	total := 0
	for _, i := range sb.Items {
		total += i.RejectKotor + i.RejectSobek + i.RejectRusakJahit
	}
	return total
}

// TotalOutput good + reject.
func (sb *SubBatch) TotalOutput() int {
	return sb.GoodOutput() + sb.RejectOutput()
}
