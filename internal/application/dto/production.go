package dto

// AssignTaskRequest penugasan satu tahap.
type AssignTaskRequest struct {
	Stage      string `json:"stage"` // CUTTING | SEWING
	AssigneeID string `json:"assignee_id"`
}

// VerifyRequest keputusan verifikasi (tugas tahap maupun sub-batch).
type VerifyRequest struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note"`
}

// CuttingRowDTO satu baris hasil potong.
type CuttingRowDTO struct {
	ProductSize  string `json:"product_size"`
	Color        string `json:"color"`
	ActualPieces int    `json:"actual_pieces"`
}

// CuttingProgressRequest laporan progres potong.
type CuttingProgressRequest struct {
	Rows         []CuttingRowDTO `json:"rows"`
	RejectPieces int             `json:"reject_pieces"`
}

// SubBatchItemDTO rincian per ukuran+warna dalam sub-batch baru.
type SubBatchItemDTO struct {
	ProductSize      string `json:"product_size"`
	Color            string `json:"color"`
	GoodQuantity     int    `json:"good_quantity"`
	RejectKotor      int    `json:"reject_kotor"`
	RejectSobek      int    `json:"reject_sobek"`
	RejectRusakJahit int    `json:"reject_rusak_jahit"`
}

// CreateSubBatchRequest pembuatan sub-batch (jahit atau finishing).
type CreateSubBatchRequest struct {
	Items []SubBatchItemDTO `json:"items"`
}

// ForwardRequest meneruskan sub-batch jahit ke finishing.
type ForwardRequest struct {
	AssigneeID string `json:"assignee_id"` // wajib pada forward pertama
}

// WarehouseVerifyRequest verifikasi gudang.
type WarehouseVerifyRequest struct {
	Location string `json:"location"`
}
