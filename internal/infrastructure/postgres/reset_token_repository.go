package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Puntos-api/internal/domain/entity"
	"github.com/jhoicas/Puntos-api/internal/domain/repository"
)

var _ repository.ResetTokenRepository = (*ResetTokenRepo)(nil)

// ResetTokenRepo implementación del puerto ResetTokenRepository sobre PostgreSQL.
type ResetTokenRepo struct {
	q Querier
}

// NewResetTokenRepository construye el adaptador de tokens de reseteo.
func NewResetTokenRepository(q Querier) *ResetTokenRepo {
	return &ResetTokenRepo{q: q}
}

// Create persiste un token de reseteo.
func (r *ResetTokenRepo) Create(t *entity.ResetToken) error {
	query := `
		INSERT INTO reset_tokens (token, user_id, expires_at, used, created_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.q.Exec(context.Background(), query,
		t.Token, t.UserID, t.ExpiresAt, t.Used, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert reset token: %w", err)
	}
	return nil
}

// GetByToken obtiene un token de reseteo.
func (r *ResetTokenRepo) GetByToken(token string) (*entity.ResetToken, error) {
	query := `
		SELECT token, user_id, expires_at, used, created_at
		FROM reset_tokens WHERE token = $1`
	var t entity.ResetToken
	err := r.q.QueryRow(context.Background(), query, token).Scan(
		&t.Token, &t.UserID, &t.ExpiresAt, &t.Used, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get reset token: %w", err)
	}
	return &t, nil
}

// MarkUsed consume el token.
func (r *ResetTokenRepo) MarkUsed(token string) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE reset_tokens SET used = true WHERE token = $1`, token)
	if err != nil {
		return fmt.Errorf("mark reset token used: %w", err)
	}
	return nil
}

// InvalidateForUser marca como usados todos los tokens vigentes del usuario
// (al emitir uno nuevo los anteriores dejan de servir).
func (r *ResetTokenRepo) InvalidateForUser(userID string) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE reset_tokens SET used = true WHERE user_id = $1 AND NOT used`, userID)
	if err != nil {
		return fmt.Errorf("invalidate reset tokens: %w", err)
	}
	return nil
}
