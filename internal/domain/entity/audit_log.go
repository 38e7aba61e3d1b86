package entity

import "time"

// AuditLog jejak perubahan destruktif. OldValues berisi snapshot JSON keadaan
// sebelum dihapus (mis. sub-batch yang di-reject) agar tetap tertelusur.
type AuditLog struct {
	ID        string
	Entity    string
	EntityID  string
	Action    string
	OldValues string
	UserID    string
	CreatedAt time.Time
}
