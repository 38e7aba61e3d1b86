package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/konveksipro/produksi-api/internal/application/dto"
	"github.com/konveksipro/produksi-api/internal/application/stock"
)

// StockHandler endpoint ledger stok bahan.
type StockHandler struct {
	ledger *stock.LedgerUseCase
}

// NewStockHandler membangun handler stok.
func NewStockHandler(ledger *stock.LedgerUseCase) *StockHandler {
	return &StockHandler{ledger: ledger}
}

// Apply godoc
// @Summary      Catat mutasi stok bahan (IN/OUT/ADJUSTMENT/RETURN)
// @Description  ADJUSTMENT menyetel stok ke nilai absolut quantity, bukan delta.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockTransactionRequest  true  "material_color_variant_id, type, quantity"
// @Success      201  {object}  map[string]any
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/transactions [post]
func (h *StockHandler) Apply(c *fiber.Ctx) error {
	var in dto.StockTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "body tidak valid"})
	}
	result, err := h.ledger.Apply(c.Context(), stock.ApplyInput{
		VariantID: in.MaterialColorVariantID,
		Type:      in.Type,
		Quantity:  in.Quantity,
		BatchID:   in.BatchID,
		Note:      in.Note,
		UserID:    GetUserID(c),
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"new_stock":      result.NewStock,
		"transaction_id": result.Transaction.ID,
	})
}

// History godoc
// @Summary      Riwayat transaksi stok satu varian warna bahan
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "material color variant ID"
// @Success      200  {object}  map[string]any
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/variants/{id}/transactions [get]
func (h *StockHandler) History(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "query tidak valid"})
	}
	page.DefaultPage()
	list, err := h.ledger.History(c.Context(), c.Params("id"), page.Limit, page.Offset)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"transactions": list,
		"page":         dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(list)},
	})
}

// BatchHistory godoc
// @Summary      Seluruh transaksi bahan yang terikat ke satu batch produksi
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "batch ID"
// @Success      200  {object}  map[string]any
// @Router       /api/stock/batches/{id}/transactions [get]
func (h *StockHandler) BatchHistory(c *fiber.Ctx) error {
	list, err := h.ledger.BatchHistory(c.Context(), c.Params("id"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"transactions": list})
}
