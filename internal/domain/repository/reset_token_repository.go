package repository

import "github.com/jhoicas/Puntos-api/internal/domain/entity"

// ResetTokenRepository define el puerto de persistencia para tokens de reseteo.
type ResetTokenRepository interface {
	Create(t *entity.ResetToken) error
	GetByToken(token string) (*entity.ResetToken, error)
	MarkUsed(token string) error
	// InvalidateForUser marca como usados los tokens vigentes del usuario
	// (emitir uno nuevo revoca los anteriores).
	InvalidateForUser(userID string) error
}
