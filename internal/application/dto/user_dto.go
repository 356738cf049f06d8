package dto

import "time"

// RegisterUserRequest entrada para POST /users (cajero o superior).
// La cuenta queda sin contraseña; se activa con el token de reseteo devuelto.
type RegisterUserRequest struct {
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
}

// RegisterUserResponse usuario creado más su token de activación.
type RegisterUserResponse struct {
	UserResponse
	ResetToken string    `json:"reset_token"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// UpdateUserRequest parche de PATCH /users/:id (manager o superior).
// Punteros nil = campo no enviado; así cada regla de mutabilidad se evalúa una vez.
type UpdateUserRequest struct {
	Email      *string `json:"email"`
	Verified   *bool   `json:"verified"`
	Suspicious *bool   `json:"suspicious"`
	Role       *string `json:"role"`
}

// UpdateMeRequest parche de PATCH /users/me.
type UpdateMeRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Birthday *string `json:"birthday"` // YYYY-MM-DD
}

// UserResponse salida completa de un usuario (vista manager+ y /users/me).
type UserResponse struct {
	ID         string     `json:"id"`
	ExternalID string     `json:"external_id"`
	Name       string     `json:"name"`
	Email      string     `json:"email"`
	Birthday   *string    `json:"birthday,omitempty"`
	Role       string     `json:"role"`
	Points     int        `json:"points"`
	Verified   bool       `json:"verified"`
	Suspicious bool       `json:"suspicious"`
	AvatarURL  *string    `json:"avatar_url,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	LastLogin  *time.Time `json:"last_login,omitempty"`
}

// UserSummaryResponse vista reducida para cajeros: lo necesario para atender
// una compra, incluidas las one-time disponibles del usuario.
type UserSummaryResponse struct {
	ID         string              `json:"id"`
	ExternalID string              `json:"external_id"`
	Name       string              `json:"name"`
	Points     int                 `json:"points"`
	Verified   bool                `json:"verified"`
	Promotions []PromotionResponse `json:"promotions"`
}
