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

	"github.com/jhoicas/Puntos-api/internal/application/auth"
	"github.com/jhoicas/Puntos-api/internal/application/ledger"
	"github.com/jhoicas/Puntos-api/internal/application/statement"
	"github.com/jhoicas/Puntos-api/internal/application/usecase"
	infrapdf "github.com/jhoicas/Puntos-api/internal/infrastructure/pdf"
	"github.com/jhoicas/Puntos-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/Puntos-api/internal/interfaces/http"
	"github.com/jhoicas/Puntos-api/pkg/config"
	"github.com/jhoicas/Puntos-api/pkg/logger"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Int("port", cfg.HTTP.Port).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	userRepo := postgres.NewUserRepository(pool)
	txRepo := postgres.NewTransactionRepository(pool)
	promoRepo := postgres.NewPromotionRepository(pool)
	eventRepo := postgres.NewEventRepository(pool)
	resetRepo := postgres.NewResetTokenRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	authUC := auth.NewUseCase(userRepo, resetRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	}, cfg.Resets.TokenTTL)
	userUC := usecase.NewUserUseCase(userRepo, promoRepo)
	transactionUC := usecase.NewTransactionUseCase(txRepo, userRepo)
	promotionUC := usecase.NewPromotionUseCase(promoRepo)
	eventUC := usecase.NewEventUseCase(eventRepo, userRepo)
	ledgerUC := ledger.NewUseCase(txRunner, userRepo, txRepo, promoRepo, eventRepo)

	// PDF: estado de cuenta de puntos
	pdfGenerator := infrapdf.NewMarotoStatementGenerator()
	statementUC := statement.NewUseCase(userRepo, txRepo, pdfGenerator)

	if err := os.MkdirAll(cfg.Uploads.Dir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("crear directorio de uploads")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Puntos Campus API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	// Avatares subidos
	app.Static(cfg.Uploads.URLPrefix, cfg.Uploads.Dir)

	httpRouter.Router(app, httpRouter.RouterDeps{
		AuthUC:        authUC,
		UserUC:        userUC,
		TransactionUC: transactionUC,
		PromotionUC:   promotionUC,
		EventUC:       eventUC,
		LedgerUC:      ledgerUC,
		StatementUC:   statementUC,
		JWTSecret:     cfg.JWT.Secret,
		UploadsDir:    cfg.Uploads.Dir,
		UploadsPrefix: cfg.Uploads.URLPrefix,
		ResetsMax:     cfg.Resets.MaxPerWindow,
		ResetsWindow:  time.Duration(cfg.Resets.WindowSeconds) * time.Second,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
