package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/konveksipro/produksi-api/internal/application/dto"
	"github.com/konveksipro/produksi-api/internal/domain/repository"
)

// NotificationHandler endpoint notifikasi milik pengguna yang login.
type NotificationHandler struct {
	repo repository.NotificationRepository
}

// NewNotificationHandler membangun handler notifikasi.
func NewNotificationHandler(repo repository.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{repo: repo}
}

// List godoc
// @Summary      Daftar notifikasi pengguna, terbaru dulu
// @Tags         notifications
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]any
// @Router       /api/notifications [get]
func (h *NotificationHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_QUERY", Message: "query tidak valid"})
	}
	page.DefaultPage()
	list, err := h.repo.ListByUser(GetUserID(c), page.Limit, page.Offset)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{
		"notifications": list,
		"page":          dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(list)},
	})
}

// MarkRead godoc
// @Summary      Tandai satu notifikasi terbaca
// @Tags         notifications
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "notification ID"
// @Success      200  {object}  map[string]string
// @Router       /api/notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c *fiber.Ctx) error {
	if err := h.repo.MarkRead(c.Params("id"), GetUserID(c)); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "notifikasi ditandai terbaca"})
}
