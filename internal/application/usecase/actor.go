package usecase

import "github.com/jhoicas/Puntos-api/internal/domain/entity"

// Actor identidad resuelta por el middleware de auth, tal como la consumen
// los casos de uso que deciden por rol u organización.
type Actor struct {
	ID         string
	ExternalID string
	Role       entity.Role
}
