package dto

import "time"

// LoginRequest entrada para POST /auth/tokens.
type LoginRequest struct {
	ExternalID string `json:"external_id"`
	Password   string `json:"password"`
}

// LoginResponse token firmado y su expiración.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ResetRequest entrada para POST /auth/resets.
type ResetRequest struct {
	ExternalID string `json:"external_id"`
}

// ResetResponse token de reseteo emitido (la entrega por correo queda fuera del sistema).
type ResetResponse struct {
	ResetToken string    `json:"reset_token"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// ResetCompleteRequest entrada para POST /auth/resets/:resetToken.
type ResetCompleteRequest struct {
	ExternalID string `json:"external_id"`
	Password   string `json:"password"`
}

// ChangePasswordRequest entrada para PATCH /users/me/password.
type ChangePasswordRequest struct {
	Old string `json:"old"`
	New string `json:"new"`
}
