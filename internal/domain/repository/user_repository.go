package repository

import "github.com/jhoicas/Puntos-api/internal/domain/entity"

// UserFilter filtros opcionales para listados de usuarios.
type UserFilter struct {
	Name      string // substring sobre name o external_id
	Role      *entity.Role
	Verified  *bool
	Activated *bool // cuenta con contraseña asignada
}

// UserRepository define el puerto de persistencia para User (DIP).
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id string) (*entity.User, error)
	GetByExternalID(externalID string) (*entity.User, error)
	// GetForUpdate bloquea la fila del usuario (SELECT FOR UPDATE); usar solo dentro de una tx.
	GetForUpdate(id string) (*entity.User, error)
	Update(user *entity.User) error
	UpdateLastLogin(id string) error
	List(f UserFilter, limit, offset int) ([]*entity.User, int, error)
	// CreditPoints suma delta (con signo) al saldo del usuario.
	CreditPoints(id string, delta int) error
	// DebitPoints resta amount solo si el saldo alcanza (update condicional en una
	// sola sentencia). Devuelve false si el saldo era insuficiente.
	DebitPoints(id string, amount int) (bool, error)
}
