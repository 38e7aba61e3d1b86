package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/konveksipro/produksi-api/internal/application/allocation"
	"github.com/konveksipro/produksi-api/internal/application/dto"
	appproduction "github.com/konveksipro/produksi-api/internal/application/production"
	"github.com/konveksipro/produksi-api/internal/application/report"
	"github.com/konveksipro/produksi-api/internal/domain/production"
)

// BatchHandler endpoint siklus hidup batch produksi.
type BatchHandler struct {
	batchUC  *appproduction.BatchUseCase
	confirm  *allocation.ConfirmUseCase
	queryUC  *appproduction.QueryUseCase
	reportUC *report.ReportUseCase
}

// NewBatchHandler membangun handler batch.
func NewBatchHandler(
	batchUC *appproduction.BatchUseCase,
	confirm *allocation.ConfirmUseCase,
	queryUC *appproduction.QueryUseCase,
	reportUC *report.ReportUseCase,
) *BatchHandler {
	return &BatchHandler{batchUC: batchUC, confirm: confirm, queryUC: queryUC, reportUC: reportUC}
}

// Create godoc
// @Summary      Buat batch produksi baru (status PENDING)
// @Tags         batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateBatchRequest  true  "product_id, size_color_requests, allocations"
// @Success      201   {object}  map[string]string
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/batches [post]
func (h *BatchHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "body tidak valid"})
	}
	input := appproduction.CreateBatchInput{
		ProductID: in.ProductID,
		Notes:     in.Notes,
		ActorID:   GetUserID(c),
	}
	for _, req := range in.Requests {
		input.Requests = append(input.Requests, appproduction.SizeColorInput{
			ProductSize: req.ProductSize,
			Color:       req.Color,
			Quantity:    req.Quantity,
		})
	}
	for _, alloc := range in.Allocations {
		input.Allocations = append(input.Allocations, appproduction.AllocationInput{
			MaterialColorVariantID: alloc.MaterialColorVariantID,
			AllocatedQty:           alloc.AllocatedQty,
			RollQuantity:           alloc.RollQuantity,
			MeterPerRoll:           alloc.MeterPerRoll,
		})
	}
	batch, err := h.batchUC.Create(c.Context(), input)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":        batch.ID,
		"batch_sku": batch.BatchSKU,
		"status":    batch.Status,
	})
}

// List godoc
// @Summary      Daftar batch (opsional filter status)
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "filter status batch"
// @Success      200  {array}  map[string]any
// @Router       /api/batches [get]
func (h *BatchHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "query tidak valid"})
	}
	page.DefaultPage()
	status := production.BatchStatus(c.Query("status"))
	batches, err := h.queryUC.ListBatches(c.Context(), status, page.Limit, page.Offset)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"batches": batches,
		"page":    dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(batches)},
	})
}

// GetByID godoc
// @Summary      Detail batch beserta tugas, sub-batch, dan kronologi
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "batch ID"
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/batches/{id} [get]
func (h *BatchHandler) GetByID(c *fiber.Ctx) error {
	detail, err := h.queryUC.GetBatchDetail(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(detail)
}

// PendingVerifications godoc
// @Summary      Antrean item yang menunggu verifikasi role pemanggil
// @Description  Kepala produksi: tugas COMPLETED + sub-batch CREATED. Kepala gudang: sub-batch SUBMITTED_TO_WAREHOUSE.
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /api/verifications/pending [get]
func (h *BatchHandler) PendingVerifications(c *fiber.Ctx) error {
	queue, err := h.queryUC.PendingVerifications(c.Context(), GetRole(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"tasks":       queue.Tasks,
		"sub_batches": queue.SubBatches,
	})
}

// RequestMaterials godoc
// @Summary      Ajukan permintaan bahan ke gudang (PENDING → MATERIAL_REQUESTED)
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "batch ID"
// @Success      200  {object}  map[string]string
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/request-materials [post]
func (h *BatchHandler) RequestMaterials(c *fiber.Ctx) error {
	if err := h.batchUC.RequestMaterials(c.Context(), c.Params("id"), GetUserID(c)); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "permintaan bahan diajukan"})
}

// ConfirmAllocation godoc
// @Summary      Konfirmasi alokasi bahan oleh gudang (stok dipotong atomik)
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "batch ID"
// @Success      200  {object}  map[string]string
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/confirm-allocation [post]
func (h *BatchHandler) ConfirmAllocation(c *fiber.Ctx) error {
	batch, err := h.confirm.Confirm(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "alokasi bahan dikonfirmasi", "status": batch.Status})
}

// Complete godoc
// @Summary      Tutup batch (cek konservasi akhir sebelum COMPLETED)
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "batch ID"
// @Success      200  {object}  map[string]string
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/complete [post]
func (h *BatchHandler) Complete(c *fiber.Ctx) error {
	if err := h.batchUC.Complete(c.Context(), c.Params("id"), GetUserID(c)); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "batch selesai"})
}

// Reconcile godoc
// @Summary      Audit agregat batch vs penjumlahan baris rincian
// @Tags         batches
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "batch ID"
// @Success      200  {object}  map[string]any
// @Router       /api/batches/{id}/reconcile [get]
func (h *BatchHandler) Reconcile(c *fiber.Ctx) error {
	rep, err := h.batchUC.ReconcileTotals(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(rep)
}

// DownloadReport godoc
// @Summary      Unduh laporan produksi batch (PDF)
// @Tags         batches
// @Security     Bearer
// @Produce      application/pdf
// @Param        id  path  string  true  "batch ID"
// @Success      200  {file}  byte
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/report [get]
func (h *BatchHandler) DownloadReport(c *fiber.Ctx) error {
	pdfBytes, filename, err := h.reportUC.DownloadBatchReport(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return c.Send(pdfBytes)
}
