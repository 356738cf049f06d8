package entity

import "time"

// ResetToken token de un solo uso para activar la cuenta o restablecer contraseña.
// Solo se emite; la entrega por correo queda fuera del sistema.
type ResetToken struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	Used      bool
	CreatedAt time.Time
}

// Expired indica si el token ya venció.
func (t *ResetToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
