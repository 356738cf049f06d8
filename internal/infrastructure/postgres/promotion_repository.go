package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Puntos-api/internal/domain/entity"
	"github.com/jhoicas/Puntos-api/internal/domain/repository"
)

var _ repository.PromotionRepository = (*PromotionRepo)(nil)

// PromotionRepo implementación del puerto PromotionRepository sobre PostgreSQL.
type PromotionRepo struct {
	q Querier
}

// NewPromotionRepository construye el adaptador de promociones. Pasar pool o tx (Querier).
func NewPromotionRepository(q Querier) *PromotionRepo {
	return &PromotionRepo{q: q}
}

const promotionColumns = `id, name, description, type, start_time, end_time, min_spending, rate, points, created_at`

// Create persiste una promoción.
func (r *PromotionRepo) Create(p *entity.Promotion) error {
	query := `
		INSERT INTO promotions (id, name, description, type, start_time, end_time, min_spending, rate, points, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(context.Background(), query,
		p.ID, p.Name, p.Description, p.Type, p.StartTime, p.EndTime,
		p.MinSpending, p.Rate, p.Points, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert promotion: %w", err)
	}
	return nil
}

// GetByID obtiene una promoción por ID.
func (r *PromotionRepo) GetByID(id string) (*entity.Promotion, error) {
	row := r.q.QueryRow(context.Background(),
		`SELECT `+promotionColumns+` FROM promotions WHERE id = $1`, id)
	p, err := scanPromotion(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get promotion: %w", err)
	}
	return p, nil
}

// Update actualiza una promoción.
func (r *PromotionRepo) Update(p *entity.Promotion) error {
	query := `
		UPDATE promotions SET name = $2, description = $3, type = $4, start_time = $5,
			end_time = $6, min_spending = $7, rate = $8, points = $9
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		p.ID, p.Name, p.Description, p.Type, p.StartTime, p.EndTime,
		p.MinSpending, p.Rate, p.Points,
	)
	if err != nil {
		return fmt.Errorf("update promotion: %w", err)
	}
	return nil
}

// Delete elimina una promoción por ID.
func (r *PromotionRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM promotions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete promotion: %w", err)
	}
	return nil
}

// List lista promociones con filtros y paginación, junto con el total sin paginar.
func (r *PromotionRepo) List(f repository.PromotionFilter, now time.Time, limit, offset int) ([]*entity.Promotion, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	pos := 1
	if f.Name != "" {
		where += fmt.Sprintf(" AND name ILIKE $%d", pos)
		args = append(args, "%"+f.Name+"%")
		pos++
	}
	if f.Type != "" {
		where += fmt.Sprintf(" AND type = $%d", pos)
		args = append(args, f.Type)
		pos++
	}
	if f.Started != nil {
		op := ">"
		if *f.Started {
			op = "<="
		}
		where += fmt.Sprintf(" AND start_time %s $%d", op, pos)
		args = append(args, now)
		pos++
	}
	if f.Ended != nil {
		op := ">="
		if *f.Ended {
			op = "<"
		}
		where += fmt.Sprintf(" AND end_time %s $%d", op, pos)
		args = append(args, now)
		pos++
	}
	return r.listWhere(``, where, args, pos, limit, offset)
}

// ListAvailable devuelve las promociones vigentes visibles para un usuario
// regular: automáticas más one-time que aún no ha usado.
func (r *PromotionRepo) ListAvailable(userID string, now time.Time, limit, offset int) ([]*entity.Promotion, int, error) {
	where := ` WHERE start_time <= $1 AND end_time >= $1
		AND (type = 'automatic' OR NOT EXISTS (
			SELECT 1 FROM promotion_uses pu WHERE pu.promotion_id = promotions.id AND pu.user_id = $2))`
	args := []any{now, userID}
	return r.listWhere(``, where, args, 3, limit, offset)
}

// ListAutomaticActive devuelve todas las automáticas vigentes (sin paginar);
// se aplican a cada compra que califique.
func (r *PromotionRepo) ListAutomaticActive(now time.Time) ([]*entity.Promotion, error) {
	rows, err := r.q.Query(context.Background(), `
		SELECT `+promotionColumns+` FROM promotions
		WHERE type = 'automatic' AND start_time <= $1 AND end_time >= $1
		ORDER BY created_at`, now)
	if err != nil {
		return nil, fmt.Errorf("list automatic promotions: %w", err)
	}
	defer rows.Close()
	return collectPromotions(rows)
}

// HasUsed indica si el usuario ya consumió la one-time.
func (r *PromotionRepo) HasUsed(userID, promotionID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(context.Background(), `
		SELECT EXISTS (SELECT 1 FROM promotion_uses WHERE user_id = $1 AND promotion_id = $2)`,
		userID, promotionID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("has used promotion: %w", err)
	}
	return exists, nil
}

// MarkUsed registra el consumo de una one-time por un usuario. RowsAffected
// distingue el insert real del conflicto: 0 filas significa que otra compra
// concurrente ya consumió la promoción.
func (r *PromotionRepo) MarkUsed(userID, promotionID string) (bool, error) {
	tag, err := r.q.Exec(context.Background(), `
		INSERT INTO promotion_uses (user_id, promotion_id, used_at)
		VALUES ($1, $2, now()) ON CONFLICT DO NOTHING`, userID, promotionID)
	if err != nil {
		return false, fmt.Errorf("mark promotion used: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *PromotionRepo) listWhere(join, where string, args []any, pos, limit, offset int) ([]*entity.Promotion, int, error) {
	var total int
	if err := r.q.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM promotions`+join+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count promotions: %w", err)
	}

	query := `SELECT ` + promotionColumns + ` FROM promotions` + join + where +
		fmt.Sprintf(" ORDER BY start_time DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list promotions: %w", err)
	}
	defer rows.Close()
	list, err := collectPromotions(rows)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func collectPromotions(rows pgx.Rows) ([]*entity.Promotion, error) {
	var list []*entity.Promotion
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan promotion: %w", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

func scanPromotion(row pgx.Row) (*entity.Promotion, error) {
	var p entity.Promotion
	if err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Type, &p.StartTime, &p.EndTime,
		&p.MinSpending, &p.Rate, &p.Points, &p.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}
