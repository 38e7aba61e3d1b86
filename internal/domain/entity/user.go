package entity

import "time"

// Role pengguna (gerbang kapabilitas per operasi).
const (
	RoleOwner           = "OWNER"
	RoleKepalaProduksi  = "KEPALA_PRODUKSI"
	RoleKepalaGudang    = "KEPALA_GUDANG"
	RolePemotong        = "PEMOTONG"
	RolePenjahit        = "PENJAHIT"
	RoleFinishing       = "FINISHING"
)

// User pengguna internal aplikasi.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}
