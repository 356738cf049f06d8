package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Puntos-api/internal/application/auth"
	"github.com/jhoicas/Puntos-api/internal/application/ledger"
	"github.com/jhoicas/Puntos-api/internal/application/statement"
	"github.com/jhoicas/Puntos-api/internal/application/usecase"
	"github.com/jhoicas/Puntos-api/internal/domain/entity"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC        *auth.UseCase
	UserUC        *usecase.UserUseCase
	TransactionUC *usecase.TransactionUseCase
	PromotionUC   *usecase.PromotionUseCase
	EventUC       *usecase.EventUseCase
	LedgerUC      *ledger.UseCase
	StatementUC   *statement.UseCase
	JWTSecret     string
	UploadsDir    string
	UploadsPrefix string
	ResetsMax     int
	ResetsWindow  time.Duration
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	authHandler := NewAuthHandler(deps.AuthUC)
	userHandler := NewUserHandler(deps.UserUC, deps.AuthUC, deps.UploadsDir, deps.UploadsPrefix)
	txHandler := NewTransactionHandler(deps.LedgerUC, deps.TransactionUC, deps.StatementUC)
	promoHandler := NewPromotionHandler(deps.PromotionUC)
	eventHandler := NewEventHandler(deps.EventUC, deps.LedgerUC)

	// Auth (público)
	authGroup := app.Group("/auth")
	authGroup.Post("/tokens", authHandler.Login)
	resetLimiter := NewResetRateLimiter(deps.ResetsMax, deps.ResetsWindow)
	authGroup.Post("/resets", resetLimiter.Middleware(), authHandler.RequestReset)
	authGroup.Post("/resets/:resetToken", authHandler.CompleteReset)

	// Rutas protegidas (requieren Bearer Token)
	protected := app.Group("/", AuthMiddleware(deps.JWTSecret))

	// Perfil propio
	me := protected.Group("/users/me")
	me.Get("/", userHandler.Me)
	me.Patch("/", userHandler.UpdateMe)
	me.Patch("/password", authHandler.ChangePassword)
	me.Post("/avatar", userHandler.UploadAvatar)
	me.Post("/transactions", txHandler.CreateRedemption)
	me.Get("/transactions", txHandler.ListMine)
	me.Get("/transactions/statement", txHandler.DownloadStatement)

	// Usuarios
	users := protected.Group("/users")
	users.Post("/", RequireRole(entity.RoleCashier), userHandler.Register)
	users.Get("/", RequireRole(entity.RoleManager), userHandler.List)
	users.Get("/:id", RequireRole(entity.RoleCashier), userHandler.GetByID)
	users.Patch("/:id", RequireRole(entity.RoleManager), userHandler.Update)
	users.Post("/:userId/transactions", txHandler.CreateTransfer)

	// Transacciones del ledger
	transactions := protected.Group("/transactions")
	transactions.Post("/", RequireRole(entity.RoleCashier), txHandler.Create)
	transactions.Get("/", RequireRole(entity.RoleManager), txHandler.List)
	transactions.Get("/:id", RequireRole(entity.RoleManager), txHandler.GetByID)
	transactions.Patch("/:id/suspicious", RequireRole(entity.RoleManager), txHandler.SetSuspicious)
	transactions.Patch("/:id/processed", RequireRole(entity.RoleCashier), txHandler.Process)

	// Promociones
	promotions := protected.Group("/promotions")
	promotions.Post("/", RequireRole(entity.RoleManager), promoHandler.Create)
	promotions.Get("/", promoHandler.List)
	promotions.Get("/:id", promoHandler.GetByID)
	promotions.Patch("/:id", RequireRole(entity.RoleManager), promoHandler.Update)
	promotions.Delete("/:id", RequireRole(entity.RoleManager), promoHandler.Delete)

	// Eventos
	events := protected.Group("/events")
	events.Post("/", RequireRole(entity.RoleManager), eventHandler.Create)
	events.Get("/", eventHandler.List)
	events.Get("/:id", eventHandler.GetByID)
	events.Patch("/:id", eventHandler.Update)
	events.Delete("/:id", RequireRole(entity.RoleManager), eventHandler.Delete)
	events.Post("/:id/organizers", RequireRole(entity.RoleManager), eventHandler.AddOrganizer)
	events.Delete("/:id/organizers/:userId", RequireRole(entity.RoleManager), eventHandler.RemoveOrganizer)
	events.Post("/:id/guests/me", eventHandler.RSVP)
	events.Delete("/:id/guests/me", eventHandler.CancelRSVP)
	events.Post("/:id/guests", eventHandler.AddGuest)
	events.Delete("/:id/guests/:userId", RequireRole(entity.RoleManager), eventHandler.RemoveGuest)
	events.Post("/:id/transactions", eventHandler.Award)
}
