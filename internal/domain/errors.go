package domain

import "errors"

// Errores de dominio (sin dependencias externas). El mapeo a códigos HTTP
// vive en la capa de interfaces.
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrUserNotFound = errors.New("usuario no encontrado")
	ErrValidation   = errors.New("entrada inválida")
	ErrUnauthorized = errors.New("no autorizado")
	ErrForbidden    = errors.New("acceso denegado")
	ErrConflict     = errors.New("conflicto con el estado actual")
	ErrGone         = errors.New("el recurso ya no está disponible")

	// Ledger de puntos
	ErrInsufficientPoints = errors.New("saldo de puntos insuficiente")
	ErrSelfTransfer       = errors.New("no puedes transferirte puntos a ti mismo")
	ErrUserNotVerified    = errors.New("el usuario no está verificado")
	ErrAlreadyProcessed   = errors.New("la transacción ya fue procesada")

	// Promociones
	ErrPromotionInactive    = errors.New("la promoción no está vigente")
	ErrPromotionAlreadyUsed = errors.New("la promoción ya fue usada por este usuario")

	// Eventos
	ErrEventEnded          = errors.New("el evento ya terminó")
	ErrEventFull           = errors.New("el evento alcanzó su capacidad")
	ErrNotGuest            = errors.New("el usuario no está registrado como invitado del evento")
	ErrEventBudgetExceeded = errors.New("los puntos restantes del evento no alcanzan")
)
