package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Puntos-api/internal/application/dto"
	"github.com/jhoicas/Puntos-api/internal/domain"
)

// respondError traduce los errores de dominio a códigos HTTP. Los handlers
// solo validan la forma de la petición; las reglas viven en los casos de uso.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrSelfTransfer),
		errors.Is(err, domain.ErrAlreadyProcessed),
		errors.Is(err, domain.ErrPromotionInactive),
		errors.Is(err, domain.ErrPromotionAlreadyUsed),
		errors.Is(err, domain.ErrEventEnded),
		errors.Is(err, domain.ErrInsufficientPoints),
		errors.Is(err, domain.ErrEventBudgetExceeded),
		errors.Is(err, domain.ErrNotGuest):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "credenciales inválidas"})
	// Un usuario sin verificar tiene la cuenta pero no el permiso de redimir.
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrUserNotVerified):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{Code: "FORBIDDEN", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrConflict), errors.Is(err, domain.ErrEventFull):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()})
	case errors.Is(err, domain.ErrGone):
		return c.Status(fiber.StatusGone).JSON(dto.ErrorResponse{Code: "GONE", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
