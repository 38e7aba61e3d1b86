package report

import (
	"context"
	"fmt"
	"time"

	"github.com/konveksipro/produksi-api/internal/domain"
	"github.com/konveksipro/produksi-api/internal/domain/entity"
	"github.com/konveksipro/produksi-api/internal/domain/production"
	"github.com/konveksipro/produksi-api/internal/domain/repository"
)

// BatchReportData seluruh data yang dibutuhkan generator untuk satu laporan.
type BatchReportData struct {
	Batch          *entity.ProductionBatch
	Product        *entity.Product
	Requests       []*entity.SizeColorRequest
	CuttingResults []*entity.CuttingResult
	SubBatches     []*entity.SubBatch
	Timeline       []*entity.TimelineEvent
	GeneratedAt    time.Time
}

// BatchPDFGenerator port pembuat PDF laporan batch.
type BatchPDFGenerator interface {
	GenerateBatchReport(ctx context.Context, data *BatchReportData) ([]byte, error)
}

// ReportUseCase laporan produksi per batch (unduhan PDF).
type ReportUseCase struct {
	batchRepo    repository.BatchRepository
	taskRepo     repository.TaskRepository
	subBatchRepo repository.SubBatchRepository
	productRepo  repository.ProductRepository
	generator    BatchPDFGenerator
}

// NewReportUseCase membangun use case laporan.
func NewReportUseCase(
	batchRepo repository.BatchRepository,
	taskRepo repository.TaskRepository,
	subBatchRepo repository.SubBatchRepository,
	productRepo repository.ProductRepository,
	generator BatchPDFGenerator,
) *ReportUseCase {
	return &ReportUseCase{
		batchRepo:    batchRepo,
		taskRepo:     taskRepo,
		subBatchRepo: subBatchRepo,
		productRepo:  productRepo,
		generator:    generator,
	}
}

// DownloadBatchReport memuat seluruh data batch lalu membuat PDF laporan.
//
// Mengembalikan:
//   - (pdfBytes, filename, nil) bila sukses.
//   - domain.ErrNotFound bila batch tidak ada.
func (uc *ReportUseCase) DownloadBatchReport(ctx context.Context, batchID string) (pdfBytes []byte, filename string, err error) {
	batch, err := uc.batchRepo.GetByID(batchID)
	if err != nil {
		return nil, "", fmt.Errorf("laporan: muat batch: %w", err)
	}
	if batch == nil {
		return nil, "", fmt.Errorf("%w: batch %s", domain.ErrNotFound, batchID)
	}

	product, err := uc.productRepo.GetByID(batch.ProductID)
	if err != nil {
		return nil, "", fmt.Errorf("laporan: muat produk: %w", err)
	}

	requests, err := uc.batchRepo.GetSizeColorRequests(batchID)
	if err != nil {
		return nil, "", fmt.Errorf("laporan: muat request: %w", err)
	}
	results, err := uc.taskRepo.GetCuttingResults(batchID)
	if err != nil {
		return nil, "", fmt.Errorf("laporan: muat hasil potong: %w", err)
	}
	subBatches, err := uc.subBatchRepo.ListByBatch(batchID)
	if err != nil {
		return nil, "", fmt.Errorf("laporan: muat sub-batch: %w", err)
	}
	timeline, err := uc.batchRepo.GetTimeline(batchID)
	if err != nil {
		return nil, "", fmt.Errorf("laporan: muat timeline: %w", err)
	}

	pdfBytes, err = uc.generator.GenerateBatchReport(ctx, &BatchReportData{
		Batch:          batch,
		Product:        product,
		Requests:       requests,
		CuttingResults: results,
		SubBatches:     subBatches,
		Timeline:       timeline,
		GeneratedAt:    time.Now(),
	})
	if err != nil {
		return nil, "", fmt.Errorf("laporan: pembuatan PDF gagal: %w", err)
	}

	filename = fmt.Sprintf("laporan_%s.pdf", batch.BatchSKU)
	return pdfBytes, filename, nil
}

// GoodBySource total good quantity per asal sub-batch; dipakai generator untuk
// blok ringkasan.
func (d *BatchReportData) GoodBySource(source production.SubBatchSource) int {
	total := 0
	for _, sb := range d.SubBatches {
		if sb.Source == source {
			total += sb.GoodOutput()
		}
	}
	return total
}

// RejectTotal total reject seluruh sub-batch finishing.
func (d *BatchReportData) RejectTotal() int {
	total := 0
	for _, sb := range d.SubBatches {
		if sb.Source == production.SourceFinishing {
			total += sb.RejectOutput()
		}
	}
	return total
}
