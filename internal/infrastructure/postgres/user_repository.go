package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Puntos-api/internal/domain"
	"github.com/jhoicas/Puntos-api/internal/domain/entity"
	"github.com/jhoicas/Puntos-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación del puerto UserRepository sobre PostgreSQL.
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de usuarios. Pasar pool o tx (Querier).
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

const userColumns = `id, external_id, name, email, password_hash, role, points, verified, suspicious, avatar_url, birthday, created_at, last_login`

// Create persiste un nuevo usuario.
func (r *UserRepo) Create(user *entity.User) error {
	query := `
		INSERT INTO users (id, external_id, name, email, password_hash, role, points, verified, suspicious, avatar_url, birthday, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		user.ID, user.ExternalID, user.Name, user.Email, user.PasswordHash, user.Role.String(),
		user.Points, user.Verified, user.Suspicious, user.AvatarURL, user.Birthday, user.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID obtiene un usuario por ID.
func (r *UserRepo) GetByID(id string) (*entity.User, error) {
	return r.getOne(`SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// GetByExternalID obtiene un usuario por su credencial institucional.
func (r *UserRepo) GetByExternalID(externalID string) (*entity.User, error) {
	return r.getOne(`SELECT `+userColumns+` FROM users WHERE external_id = $1`, externalID)
}

// GetForUpdate bloquea la fila del usuario; usar solo dentro de una tx.
func (r *UserRepo) GetForUpdate(id string) (*entity.User, error) {
	return r.getOne(`SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, id)
}

func (r *UserRepo) getOne(query string, arg any) (*entity.User, error) {
	row := r.q.QueryRow(context.Background(), query, arg)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// Update actualiza los campos mutables del usuario (el saldo va por
// CreditPoints/DebitPoints).
func (r *UserRepo) Update(user *entity.User) error {
	query := `
		UPDATE users SET name = $2, email = $3, password_hash = $4, role = $5,
			verified = $6, suspicious = $7, avatar_url = $8, birthday = $9
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		user.ID, user.Name, user.Email, user.PasswordHash, user.Role.String(),
		user.Verified, user.Suspicious, user.AvatarURL, user.Birthday,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// UpdateLastLogin registra el instante del login exitoso.
func (r *UserRepo) UpdateLastLogin(id string) error {
	_, err := r.q.Exec(context.Background(), `UPDATE users SET last_login = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// List lista usuarios con filtros y paginación, junto con el total sin paginar.
func (r *UserRepo) List(f repository.UserFilter, limit, offset int) ([]*entity.User, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	pos := 1
	if f.Name != "" {
		where += fmt.Sprintf(" AND (name ILIKE $%d OR external_id ILIKE $%d)", pos, pos)
		args = append(args, "%"+f.Name+"%")
		pos++
	}
	if f.Role != nil {
		where += fmt.Sprintf(" AND role = $%d", pos)
		args = append(args, f.Role.String())
		pos++
	}
	if f.Verified != nil {
		where += fmt.Sprintf(" AND verified = $%d", pos)
		args = append(args, *f.Verified)
		pos++
	}
	if f.Activated != nil {
		if *f.Activated {
			where += " AND password_hash IS NOT NULL"
		} else {
			where += " AND password_hash IS NULL"
		}
	}

	var total int
	if err := r.q.QueryRow(context.Background(), `SELECT COUNT(*) FROM users`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := `SELECT ` + userColumns + ` FROM users` + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	var list []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan user: %w", err)
		}
		list = append(list, u)
	}
	return list, total, rows.Err()
}

// CreditPoints suma delta (con signo) al saldo del usuario. Un delta negativo
// que dejaría el saldo bajo cero dispara el CHECK points >= 0; se traduce a
// ErrInsufficientPoints para que el caso de uso lo rechace como regla de negocio.
func (r *UserRepo) CreditPoints(id string, delta int) error {
	_, err := r.q.Exec(context.Background(), `UPDATE users SET points = points + $2 WHERE id = $1`, id, delta)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInsufficientPoints
		}
		return fmt.Errorf("credit points: %w", err)
	}
	return nil
}

// DebitPoints resta amount solo si el saldo alcanza. El update condicional en
// una sola sentencia cierra la carrera entre débitos concurrentes.
func (r *UserRepo) DebitPoints(id string, amount int) (bool, error) {
	tag, err := r.q.Exec(context.Background(),
		`UPDATE users SET points = points - $2 WHERE id = $1 AND points >= $2`, id, amount)
	if err != nil {
		return false, fmt.Errorf("debit points: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanUser(row pgx.Row) (*entity.User, error) {
	var u entity.User
	var role string
	if err := row.Scan(
		&u.ID, &u.ExternalID, &u.Name, &u.Email, &u.PasswordHash, &role,
		&u.Points, &u.Verified, &u.Suspicious, &u.AvatarURL, &u.Birthday,
		&u.CreatedAt, &u.LastLogin,
	); err != nil {
		return nil, err
	}
	u.Role, _ = entity.ParseRole(role)
	return &u, nil
}
