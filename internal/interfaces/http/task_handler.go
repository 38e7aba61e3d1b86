package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/konveksipro/produksi-api/internal/application/dto"
	appproduction "github.com/konveksipro/produksi-api/internal/application/production"
	"github.com/konveksipro/produksi-api/internal/domain/production"
)

// TaskHandler endpoint tugas per tahap (assign, start, complete, verify) dan
// laporan progres potong.
type TaskHandler struct {
	taskUC *appproduction.TaskUseCase
}

// NewTaskHandler membangun handler tugas.
func NewTaskHandler(taskUC *appproduction.TaskUseCase) *TaskHandler {
	return &TaskHandler{taskUC: taskUC}
}

// Assign godoc
// @Summary      Tugaskan tahap (CUTTING/SEWING) ke pekerja
// @Tags         tasks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "batch ID"
// @Param        body  body  dto.AssignTaskRequest  true  "stage, assignee_id"
// @Success      201   {object}  map[string]string
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/tasks [post]
func (h *TaskHandler) Assign(c *fiber.Ctx) error {
	var in dto.AssignTaskRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "body tidak valid"})
	}
	task, err := h.taskUC.Assign(c.Context(), appproduction.AssignInput{
		BatchID:    c.Params("id"),
		Stage:      production.Stage(in.Stage),
		AssigneeID: in.AssigneeID,
		ActorID:    GetUserID(c),
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":              task.ID,
		"stage":           task.Stage,
		"status":          task.Status,
		"pieces_received": task.PiecesReceived,
	})
}

// Start godoc
// @Summary      Mulai kerjakan tugas (PENDING → IN_PROGRESS)
// @Tags         tasks
// @Security     Bearer
// @Produce      json
// @Param        id     path  string  true  "batch ID"
// @Param        stage  path  string  true  "CUTTING | SEWING | FINISHING"
// @Success      200  {object}  map[string]string
// @Router       /api/batches/{id}/tasks/{stage}/start [post]
func (h *TaskHandler) Start(c *fiber.Ctx) error {
	stage := production.Stage(c.Params("stage"))
	if err := h.taskUC.Start(c.Context(), c.Params("id"), stage, GetUserID(c)); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "tugas dimulai"})
}

// Complete godoc
// @Summary      Laporkan tugas selesai (menunggu verifikasi kepala produksi)
// @Tags         tasks
// @Security     Bearer
// @Produce      json
// @Param        id     path  string  true  "batch ID"
// @Param        stage  path  string  true  "CUTTING | SEWING | FINISHING"
// @Success      200  {object}  map[string]string
// @Router       /api/batches/{id}/tasks/{stage}/complete [post]
func (h *TaskHandler) Complete(c *fiber.Ctx) error {
	stage := production.Stage(c.Params("stage"))
	if err := h.taskUC.Complete(c.Context(), c.Params("id"), stage, GetUserID(c)); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "tugas dilaporkan selesai"})
}

// Verify godoc
// @Summary      Verifikasi tugas tahap (approve memajukan batch, reject memundurkan)
// @Tags         tasks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id     path  string             true  "batch ID"
// @Param        stage  path  string             true  "CUTTING | SEWING | FINISHING"
// @Param        body   body  dto.VerifyRequest  true  "approve, note"
// @Success      200  {object}  map[string]string
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/batches/{id}/tasks/{stage}/verify [post]
func (h *TaskHandler) Verify(c *fiber.Ctx) error {
	var in dto.VerifyRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "body tidak valid"})
	}
	err := h.taskUC.Verify(c.Context(), appproduction.VerifyInput{
		BatchID: c.Params("id"),
		Stage:   production.Stage(c.Params("stage")),
		Approve: in.Approve,
		Note:    in.Note,
		ActorID: GetUserID(c),
	})
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "verifikasi tersimpan"})
}

// CuttingProgress godoc
// @Summary      Laporkan hasil potong per ukuran+warna (boleh berkali-kali, replace)
// @Tags         tasks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                      true  "batch ID"
// @Param        body  body  dto.CuttingProgressRequest  true  "rows, reject_pieces"
// @Success      200  {object}  map[string]string
// @Router       /api/batches/{id}/cutting-progress [post]
func (h *TaskHandler) CuttingProgress(c *fiber.Ctx) error {
	var in dto.CuttingProgressRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "body tidak valid"})
	}
	input := appproduction.CuttingProgressInput{
		BatchID:      c.Params("id"),
		ActorID:      GetUserID(c),
		RejectPieces: in.RejectPieces,
	}
	for _, row := range in.Rows {
		input.Rows = append(input.Rows, appproduction.CuttingRow{
			ProductSize:  row.ProductSize,
			Color:        row.Color,
			ActualPieces: row.ActualPieces,
		})
	}
	if err := h.taskUC.CuttingProgress(c.Context(), input); err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(fiber.Map{"message": "hasil potong tersimpan"})
}
