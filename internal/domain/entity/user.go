package entity

import "time"

// User representa una cuenta del programa de puntos.
// Points solo se modifica a través de las operaciones del ledger,
// nunca directamente desde un handler de recursos.
type User struct {
	ID           string
	ExternalID   string // identificador institucional único (credencial universitaria)
	Name         string
	Email        string
	PasswordHash *string // nil hasta que la cuenta se activa con el token de reseteo
	Role         Role
	Points       int
	Verified     bool
	Suspicious   bool // un cajero sospechoso crea compras retenidas (sin acreditar)
	AvatarURL    *string
	Birthday     *string // YYYY-MM-DD
	CreatedAt    time.Time
	LastLogin    *time.Time
}

// Activated indica si la cuenta ya fue activada (tiene contraseña).
func (u *User) Activated() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}
