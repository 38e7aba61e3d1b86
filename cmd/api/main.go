package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/konveksipro/produksi-api/internal/application/allocation"
	"github.com/konveksipro/produksi-api/internal/application/auth"
	appproduction "github.com/konveksipro/produksi-api/internal/application/production"
	"github.com/konveksipro/produksi-api/internal/application/report"
	"github.com/konveksipro/produksi-api/internal/application/stock"
	"github.com/konveksipro/produksi-api/internal/infrastructure/notify"
	infrapdf "github.com/konveksipro/produksi-api/internal/infrastructure/pdf"
	"github.com/konveksipro/produksi-api/internal/infrastructure/postgres"
	httpRouter "github.com/konveksipro/produksi-api/internal/interfaces/http"
	"github.com/konveksipro/produksi-api/pkg/config"
	"github.com/konveksipro/produksi-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("muat konfigurasi: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("memulai aplikasi")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("koneksi PostgreSQL")
	}
	defer pool.Close()

	// Repo pool-bound untuk sisi baca dan komponen di luar transaksi.
	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	batchRepo := postgres.NewBatchRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)
	subBatchRepo := postgres.NewSubBatchRepository(pool)
	finishedGoodRepo := postgres.NewFinishedGoodRepository(pool)
	auditLogRepo := postgres.NewAuditLogRepository(pool)
	notificationRepo := postgres.NewNotificationRepository(pool)

	txRunner := postgres.NewTxRunner(pool)
	notifier := notify.NewDBNotifier(notificationRepo, log)

	// Bus event in-process: rekonsiler status batch berlangganan transisi
	// sub-batch dan berjalan di transaksi yang sama.
	bus := appproduction.NewBus()
	appproduction.NewBatchReconciler(bus)

	ledgerUC := stock.NewLedgerUseCase(txRunner)
	confirmUC := allocation.NewConfirmUseCase(txRunner, notifier)
	batchUC := appproduction.NewBatchUseCase(txRunner, notifier)
	taskUC := appproduction.NewTaskUseCase(txRunner, notifier)
	subBatchUC := appproduction.NewSubBatchUseCase(txRunner, notifier, bus)
	queryUC := appproduction.NewQueryUseCase(batchRepo, taskRepo, subBatchRepo, finishedGoodRepo, auditLogRepo)
	reportUC := report.NewReportUseCase(batchRepo, taskRepo, subBatchRepo, productRepo,
		infrapdf.NewMarotoBatchReport())
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI lokal: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Produksi API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:           authUC,
		BatchUC:          batchUC,
		TaskUC:           taskUC,
		SubBatchUC:       subBatchUC,
		QueryUC:          queryUC,
		ConfirmUC:        confirmUC,
		LedgerUC:         ledgerUC,
		ReportUC:         reportUC,
		NotificationRepo: notificationRepo,
		JWTSecret:        cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("server HTTP berhenti")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("sinyal shutdown diterima, menutup server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown server")
	}

	log.Info().Msg("aplikasi berhenti")
}
