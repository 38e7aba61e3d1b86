package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/konveksipro/produksi-api/internal/application/allocation"
	"github.com/konveksipro/produksi-api/internal/application/auth"
	appproduction "github.com/konveksipro/produksi-api/internal/application/production"
	"github.com/konveksipro/produksi-api/internal/application/report"
	"github.com/konveksipro/produksi-api/internal/application/stock"
	"github.com/konveksipro/produksi-api/internal/domain/entity"
	"github.com/konveksipro/produksi-api/internal/domain/repository"
)

// RouterDeps dependensi router.
type RouterDeps struct {
	AuthUC           *auth.AuthUseCase
	BatchUC          *appproduction.BatchUseCase
	TaskUC           *appproduction.TaskUseCase
	SubBatchUC       *appproduction.SubBatchUseCase
	QueryUC          *appproduction.QueryUseCase
	ConfirmUC        *allocation.ConfirmUseCase
	LedgerUC         *stock.LedgerUseCase
	ReportUC         *report.ReportUseCase
	NotificationRepo repository.NotificationRepository
	JWTSecret        string
}

// Router mendaftarkan seluruh rute API beserta gerbang role per operasi.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (publik)
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC)
	authGroup.Post("/register", authHandler.Register)
	authGroup.Post("/login", authHandler.Login)

	// Rute terproteksi (wajib Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	manajer := RequireRole(entity.RoleOwner, entity.RoleKepalaProduksi)
	gudang := RequireRole(entity.RoleOwner, entity.RoleKepalaGudang)

	// Batches
	batches := protected.Group("/batches")
	batchHandler := NewBatchHandler(deps.BatchUC, deps.ConfirmUC, deps.QueryUC, deps.ReportUC)
	batches.Post("/", manajer, batchHandler.Create)
	batches.Get("/", batchHandler.List)
	batches.Get("/:id", batchHandler.GetByID)
	batches.Post("/:id/request-materials", manajer, batchHandler.RequestMaterials)
	batches.Post("/:id/confirm-allocation", gudang, batchHandler.ConfirmAllocation)
	batches.Post("/:id/complete", manajer, batchHandler.Complete)
	batches.Get("/:id/reconcile", manajer, batchHandler.Reconcile)
	batches.Get("/:id/report", manajer, batchHandler.DownloadReport)

	// Tugas per tahap
	taskHandler := NewTaskHandler(deps.TaskUC)
	batches.Post("/:id/tasks", manajer, taskHandler.Assign)
	batches.Post("/:id/tasks/:stage/start",
		RequireRole(entity.RolePemotong, entity.RolePenjahit, entity.RoleFinishing), taskHandler.Start)
	batches.Post("/:id/tasks/:stage/complete",
		RequireRole(entity.RolePemotong, entity.RolePenjahit, entity.RoleFinishing), taskHandler.Complete)
	batches.Post("/:id/tasks/:stage/verify", manajer, taskHandler.Verify)
	batches.Post("/:id/cutting-progress", RequireRole(entity.RolePemotong), taskHandler.CuttingProgress)

	// Sub-batches
	subBatchHandler := NewSubBatchHandler(deps.SubBatchUC, deps.QueryUC)
	batches.Post("/:id/sub-batches/sewing", RequireRole(entity.RolePenjahit), subBatchHandler.CreateSewing)
	batches.Post("/:id/sub-batches/finishing", RequireRole(entity.RoleFinishing), subBatchHandler.CreateFinishing)

	subBatches := protected.Group("/sub-batches")
	subBatches.Get("/:id", subBatchHandler.GetByID)
	subBatches.Get("/:id/audit", manajer, subBatchHandler.Audit)
	subBatches.Post("/:id/verify", manajer, subBatchHandler.Verify)
	subBatches.Post("/:id/forward", manajer, subBatchHandler.Forward)
	subBatches.Post("/:id/warehouse-verify", gudang, subBatchHandler.WarehouseVerify)

	// Stock bahan
	stockGroup := protected.Group("/stock")
	stockHandler := NewStockHandler(deps.LedgerUC)
	stockGroup.Post("/transactions", gudang, stockHandler.Apply)
	stockGroup.Get("/variants/:id/transactions",
		RequireRole(entity.RoleOwner, entity.RoleKepalaGudang, entity.RoleKepalaProduksi), stockHandler.History)
	stockGroup.Get("/batches/:id/transactions",
		RequireRole(entity.RoleOwner, entity.RoleKepalaGudang, entity.RoleKepalaProduksi), stockHandler.BatchHistory)

	// Antrean verifikasi per role
	protected.Get("/verifications/pending",
		RequireRole(entity.RoleOwner, entity.RoleKepalaProduksi, entity.RoleKepalaGudang),
		batchHandler.PendingVerifications)

	// Notifikasi
	notifications := protected.Group("/notifications")
	notificationHandler := NewNotificationHandler(deps.NotificationRepo)
	notifications.Get("/", notificationHandler.List)
	notifications.Post("/:id/read", notificationHandler.MarkRead)
}
