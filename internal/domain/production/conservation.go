package production

import (
	"fmt"

	"github.com/konveksipro/produksi-api/internal/domain"
)

// SizeColor kunci ukuran+warna untuk rincian kuantitas antar tahap.
type SizeColor struct {
	Size  string
	Color string
}

func (k SizeColor) String() string { return k.Size + "/" + k.Color }

// ItemQuantity rincian kuantitas satu baris sub-batch.
type ItemQuantity struct {
	Good             int
	RejectKotor      int
	RejectSobek      int
	RejectRusakJahit int
}

// Total jumlah good + seluruh reject.
func (q ItemQuantity) Total() int {
	return q.Good + q.RejectKotor + q.RejectSobek + q.RejectRusakJahit
}

// ValidateItem memeriksa bahwa kuantitas non-negatif dan ada isi.
func (q ItemQuantity) ValidateItem() error {
	if q.Good < 0 || q.RejectKotor < 0 || q.RejectSobek < 0 || q.RejectRusakJahit < 0 {
		return fmt.Errorf("%w: kuantitas tidak boleh negatif", domain.ErrInvalidInput)
	}
	if q.Total() == 0 {
		return fmt.Errorf("%w: kuantitas harus lebih dari nol", domain.ErrInvalidInput)
	}
	return nil
}

// Remaining sisa kuota per ukuran/warna: produced dikurangi used.
// Kunci yang tidak ada di produced dianggap nol.
func Remaining(produced, used map[SizeColor]int) map[SizeColor]int {
	out := make(map[SizeColor]int, len(produced))
	for k, p := range produced {
		out[k] = p - used[k]
	}
	return out
}

// CheckAgainstAvailable hukum konservasi antar tahap: klaim per ukuran/warna
// tidak boleh melebihi sisa hasil tahap sebelumnya. claim memakai nilai yang
// dihitung caller (good saja untuk sewing, total untuk finishing).
func CheckAgainstAvailable(claim map[SizeColor]int, available map[SizeColor]int) error {
	for k, c := range claim {
		avail, ok := available[k]
		if !ok {
			return fmt.Errorf("%w: tidak ada hasil tahap sebelumnya untuk %s", domain.ErrExceedsAvailable, k)
		}
		if c > avail {
			return fmt.Errorf("%w: %s diminta %d, tersisa %d", domain.ErrExceedsAvailable, k, c, avail)
		}
	}
	return nil
}

// SumGood total good quantity dari rincian per ukuran/warna.
func SumGood(items map[SizeColor]ItemQuantity) int {
	total := 0
	for _, q := range items {
		total += q.Good
	}
	return total
}

// SumTotal total good + reject dari rincian per ukuran/warna.
func SumTotal(items map[SizeColor]ItemQuantity) int {
	total := 0
	for _, q := range items {
		total += q.Total()
	}
	return total
}
