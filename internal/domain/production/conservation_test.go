package production_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/konveksipro/produksi-api/internal/domain"
	"github.com/konveksipro/produksi-api/internal/domain/production"
)

var (
	mHitam = production.SizeColor{Size: "M", Color: "Hitam"}
	lHitam = production.SizeColor{Size: "L", Color: "Hitam"}
	sPutih = production.SizeColor{Size: "S", Color: "Putih"}
)

func TestItemQuantity_Total(t *testing.T) {
	q := production.ItemQuantity{Good: 10, RejectKotor: 1, RejectSobek: 2, RejectRusakJahit: 3}
	assert.Equal(t, 16, q.Total())
}

func TestItemQuantity_ValidateItem(t *testing.T) {
	assert.NoError(t, production.ItemQuantity{Good: 1}.ValidateItem())
	assert.NoError(t, production.ItemQuantity{RejectKotor: 1}.ValidateItem())

	err := production.ItemQuantity{Good: -1}.ValidateItem()
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = production.ItemQuantity{}.ValidateItem()
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "kuantitas nol semua harus ditolak")
}

func TestRemaining(t *testing.T) {
	produced := map[production.SizeColor]int{mHitam: 50, lHitam: 30}
	used := map[production.SizeColor]int{mHitam: 20}

	sisa := production.Remaining(produced, used)
	assert.Equal(t, 30, sisa[mHitam])
	assert.Equal(t, 30, sisa[lHitam])
	assert.NotContains(t, sisa, sPutih, "kunci di luar produced tidak ikut")
}

func TestCheckAgainstAvailable_KlaimPasSisa(t *testing.T) {
	avail := map[production.SizeColor]int{mHitam: 30}
	claim := map[production.SizeColor]int{mHitam: 30}
	assert.NoError(t, production.CheckAgainstAvailable(claim, avail))
}

func TestCheckAgainstAvailable_KlaimMelebihiSisa(t *testing.T) {
	avail := map[production.SizeColor]int{mHitam: 30}
	claim := map[production.SizeColor]int{mHitam: 31}

	err := production.CheckAgainstAvailable(claim, avail)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExceedsAvailable)
	assert.Contains(t, err.Error(), "M/Hitam")
}

func TestCheckAgainstAvailable_UkuranTidakDiproduksi(t *testing.T) {
	avail := map[production.SizeColor]int{mHitam: 30}
	claim := map[production.SizeColor]int{sPutih: 1}

	err := production.CheckAgainstAvailable(claim, avail)
	assert.ErrorIs(t, err, domain.ErrExceedsAvailable,
		"klaim ukuran/warna yang tidak pernah dipotong harus ditolak")
}

// Simulasi pengiriman parsial acak: berapa pun urutan dan porsinya, total
// klaim yang lolos tidak pernah melebihi hasil potong.
func TestCheckAgainstAvailable_PengirimanParsialAcak(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for iter := 0; iter < 100; iter++ {
		cut := map[production.SizeColor]int{
			mHitam: 20 + rng.Intn(80),
			lHitam: 20 + rng.Intn(80),
			sPutih: 20 + rng.Intn(80),
		}
		used := map[production.SizeColor]int{}
		claimed := map[production.SizeColor]int{}

		// Ajukan 10 klaim acak, sebagian sengaja kebesaran.
		for i := 0; i < 10; i++ {
			key := []production.SizeColor{mHitam, lHitam, sPutih}[rng.Intn(3)]
			claim := map[production.SizeColor]int{key: 1 + rng.Intn(40)}

			sisa := production.Remaining(cut, used)
			if err := production.CheckAgainstAvailable(claim, sisa); err != nil {
				assert.ErrorIs(t, err, domain.ErrExceedsAvailable)
				continue
			}
			used[key] += claim[key]
			claimed[key] += claim[key]
		}

		for key, total := range claimed {
			assert.LessOrEqual(t, total, cut[key],
				"iterasi %d: total klaim %s melebihi hasil potong", iter, key)
		}
	}
}

func TestSumGoodDanSumTotal(t *testing.T) {
	items := map[production.SizeColor]production.ItemQuantity{
		mHitam: {Good: 10, RejectKotor: 2},
		lHitam: {Good: 5, RejectSobek: 1, RejectRusakJahit: 1},
	}
	assert.Equal(t, 15, production.SumGood(items))
	assert.Equal(t, 19, production.SumTotal(items))
}
