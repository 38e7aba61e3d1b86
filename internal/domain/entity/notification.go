package entity

import "time"

// Notification pesan satu arah ke pengguna; dikirim best-effort di luar
// transaksi utama dan tidak pernah menggagalkan operasi domain.
type Notification struct {
	ID        string
	UserID    string
	Type      string
	Title     string
	Message   string
	Read      bool
	CreatedAt time.Time
}
