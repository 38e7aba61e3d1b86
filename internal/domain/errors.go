package domain

import "errors"

// Error domain (tanpa dependensi eksternal).
var (
	ErrNotFound          = errors.New("data tidak ditemukan")
	ErrInvalidInput      = errors.New("input tidak valid")
	ErrInvalidState      = errors.New("operasi tidak diizinkan pada status saat ini")
	ErrDuplicate         = errors.New("data sudah ada")
	ErrUnauthorized      = errors.New("tidak terautentikasi")
	ErrForbidden         = errors.New("akses ditolak")
	ErrRoleMismatch      = errors.New("role pengguna tidak sesuai untuk tugas ini")
	ErrConflict          = errors.New("konflik dengan keadaan saat ini")
	ErrInsufficientStock = errors.New("stok bahan tidak mencukupi")
	ErrBelowMinimumStock = errors.New("alokasi akan menurunkan stok di bawah stok minimum")
	ErrExceedsAvailable  = errors.New("jumlah melebihi hasil tahap sebelumnya yang tersedia")
)
