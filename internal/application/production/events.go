package production

// Mekanisme event domain in-process: transisi sub-batch menerbitkan event,
// rekonsiler status batch berlangganan dan menghitung ulang status agregat.
// Publish berjalan sinkron di dalam transaksi yang sama dengan mutasi pemicunya
// sehingga status batch tidak pernah menyimpang dari sub-komponennya.

// EventName nama event domain.
type EventName string

const (
	EventSubBatchVerified          EventName = "SUB_BATCH_VERIFIED"
	EventSubBatchRejected          EventName = "SUB_BATCH_REJECTED"
	EventSubBatchForwarded         EventName = "SUB_BATCH_FORWARDED"
	EventSubBatchWarehouseVerified EventName = "SUB_BATCH_WAREHOUSE_VERIFIED"
)

// Event payload minimum yang dibutuhkan subscriber.
type Event struct {
	Name       EventName
	BatchID    string
	SubBatchID string
	ActorID    string
}

// Handler subscriber event; menerima repo transaksi yang sedang berjalan.
type Handler func(r Repos, ev Event) error

// Bus bus event sinkron sederhana.
type Bus struct {
	handlers []Handler
}

// NewBus membangun bus kosong.
func NewBus() *Bus { return &Bus{} }

// Subscribe mendaftarkan handler.
func (b *Bus) Subscribe(h Handler) {
	b.handlers = append(b.handlers, h)
}

// Publish memanggil seluruh handler berurutan; error pertama menggagalkan
// (dan me-rollback) transaksi pemicunya.
func (b *Bus) Publish(r Repos, ev Event) error {
	for _, h := range b.handlers {
		if err := h(r, ev); err != nil {
			return err
		}
	}
	return nil
}
