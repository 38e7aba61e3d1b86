package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/konveksipro/produksi-api/internal/application/dto"
	appproduction "github.com/konveksipro/produksi-api/internal/application/production"
)

// SubBatchHandler endpoint buku besar sub-batch: pembuatan setoran parsial,
// verifikasi, forward ke finishing, dan verifikasi gudang.
type SubBatchHandler struct {
	subBatchUC *appproduction.SubBatchUseCase
	queryUC    *appproduction.QueryUseCase
}

// NewSubBatchHandler membangun handler sub-batch.
func NewSubBatchHandler(subBatchUC *appproduction.SubBatchUseCase, queryUC *appproduction.QueryUseCase) *SubBatchHandler {
	return &SubBatchHandler{subBatchUC: subBatchUC, queryUC: queryUC}
}

func toCreateInput(c *fiber.Ctx, in dto.CreateSubBatchRequest) appproduction.CreateInput {
	input := appproduction.CreateInput{
		BatchID: c.Params("id"),
		ActorID: GetUserID(c),
	}
	for _, item := range in.Items {
		input.Items = append(input.Items, appproduction.SubBatchItemInput{
			ProductSize:      item.ProductSize,
			Color:            item.Color,
			GoodQuantity:     item.GoodQuantity,
			RejectKotor:      item.RejectKotor,
			RejectSobek:      item.RejectSobek,
			RejectRusakJahit: item.RejectRusakJahit,
		})
	}
	return input
}

// CreateSewing godoc
// @Summary      Setor hasil jahit sebagai sub-batch baru
// @Tags         sub-batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "batch ID"
// @Param        body  body  dto.CreateSubBatchRequest  true  "items per ukuran+warna (tanpa reject)"
// @Success      201   {object}  map[string]string
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/sub-batches/sewing [post]
func (h *SubBatchHandler) CreateSewing(c *fiber.Ctx) error {
	var in dto.CreateSubBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "body tidak valid"})
	}
	sb, err := h.subBatchUC.CreateSewing(c.Context(), toCreateInput(c, in))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":            sb.ID,
		"sub_batch_sku": sb.SubBatchSKU,
		"status":        sb.Status,
	})
}

// CreateFinishing godoc
// @Summary      Setor hasil finishing (good + rincian reject) sebagai sub-batch baru
// @Tags         sub-batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "batch ID"
// @Param        body  body  dto.CreateSubBatchRequest  true  "items per ukuran+warna"
// @Success      201   {object}  map[string]string
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/sub-batches/finishing [post]
func (h *SubBatchHandler) CreateFinishing(c *fiber.Ctx) error {
	var in dto.CreateSubBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "body tidak valid"})
	}
	sb, err := h.subBatchUC.CreateFinishing(c.Context(), toCreateInput(c, in))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":            sb.ID,
		"sub_batch_sku": sb.SubBatchSKU,
		"status":        sb.Status,
	})
}

// GetByID godoc
// @Summary      Detail sub-batch beserta itemnya
// @Tags         sub-batches
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "sub-batch ID"
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/sub-batches/{id} [get]
func (h *SubBatchHandler) GetByID(c *fiber.Ctx) error {
	sb, err := h.queryUC.GetSubBatch(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(sb)
}

// Audit godoc
// @Summary      Jejak audit sub-batch (termasuk snapshot yang di-reject)
// @Tags         sub-batches
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "sub-batch ID"
// @Success      200  {array}  map[string]any
// @Router       /api/sub-batches/{id}/audit [get]
func (h *SubBatchHandler) Audit(c *fiber.Ctx) error {
	logs, err := h.queryUC.SubBatchAudit(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(logs)
}

// Verify godoc
// @Summary      Verifikasi sub-batch CREATED (reject = hapus + snapshot audit)
// @Tags         sub-batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string             true  "sub-batch ID"
// @Param        body  body  dto.VerifyRequest  true  "approve, note"
// @Success      200  {object}  map[string]string
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sub-batches/{id}/verify [post]
func (h *SubBatchHandler) Verify(c *fiber.Ctx) error {
	var in dto.VerifyRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "body tidak valid"})
	}
	err := h.subBatchUC.Verify(c.Context(), appproduction.SubBatchVerifyInput{
		SubBatchID: c.Params("id"),
		Approve:    in.Approve,
		Note:       in.Note,
		ActorID:    GetUserID(c),
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "verifikasi tersimpan"})
}

// Forward godoc
// @Summary      Teruskan sub-batch jahit terverifikasi ke tahap finishing
// @Tags         sub-batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string              true  "sub-batch ID"
// @Param        body  body  dto.ForwardRequest  true  "assignee_id (wajib pada forward pertama)"
// @Success      200  {object}  map[string]string
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sub-batches/{id}/forward [post]
func (h *SubBatchHandler) Forward(c *fiber.Ctx) error {
	var in dto.ForwardRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "body tidak valid"})
	}
	err := h.subBatchUC.ForwardToFinishing(c.Context(), appproduction.ForwardInput{
		SubBatchID: c.Params("id"),
		ActorID:    GetUserID(c),
		AssigneeID: in.AssigneeID,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "sub-batch diteruskan ke finishing"})
}

// WarehouseVerify godoc
// @Summary      Verifikasi gudang: catat barang jadi dan lokasi simpan
// @Tags         sub-batches
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "sub-batch ID"
// @Param        body  body  dto.WarehouseVerifyRequest  true  "location"
// @Success      200  {object}  map[string]string
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/sub-batches/{id}/warehouse-verify [post]
func (h *SubBatchHandler) WarehouseVerify(c *fiber.Ctx) error {
	var in dto.WarehouseVerifyRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "body tidak valid"})
	}
	err := h.subBatchUC.WarehouseVerify(c.Context(), appproduction.WarehouseVerifyInput{
		SubBatchID: c.Params("id"),
		ActorID:    GetUserID(c),
		Location:   in.Location,
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "sub-batch diverifikasi gudang"})
}
