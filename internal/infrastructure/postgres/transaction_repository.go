package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Puntos-api/internal/domain/entity"
	"github.com/jhoicas/Puntos-api/internal/domain/repository"
)

var _ repository.TransactionRepository = (*TransactionRepo)(nil)

// TransactionRepo implementación del puerto TransactionRepository sobre PostgreSQL.
type TransactionRepo struct {
	q Querier
}

// NewTransactionRepository construye el adaptador del ledger. Pasar pool o tx (Querier).
func NewTransactionRepository(q Querier) *TransactionRepo {
	return &TransactionRepo{q: q}
}

const txColumns = `t.id, t.user_id, t.type, t.amount, t.spent, t.related_id, t.suspicious, t.remark, t.created_by, t.processed_by, t.created_at`

// Create persiste una transacción del ledger.
func (r *TransactionRepo) Create(tx *entity.Transaction) error {
	query := `
		INSERT INTO transactions (id, user_id, type, amount, spent, related_id, suspicious, remark, created_by, processed_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(context.Background(), query,
		tx.ID, tx.UserID, string(tx.Type), tx.Amount, tx.Spent, tx.RelatedID,
		tx.Suspicious, tx.Remark, tx.CreatedBy, tx.ProcessedBy, tx.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID obtiene una transacción por ID, con sus promociones aplicadas.
func (r *TransactionRepo) GetByID(id string) (*entity.Transaction, error) {
	return r.getOne(`SELECT `+txColumns+` FROM transactions t WHERE t.id = $1`, id)
}

// GetForUpdate bloquea la fila de la transacción; usar solo dentro de una tx.
func (r *TransactionRepo) GetForUpdate(id string) (*entity.Transaction, error) {
	return r.getOne(`SELECT `+txColumns+` FROM transactions t WHERE t.id = $1 FOR UPDATE`, id)
}

func (r *TransactionRepo) getOne(query, id string) (*entity.Transaction, error) {
	row := r.q.QueryRow(context.Background(), query, id)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	if err := r.loadPromotions(t); err != nil {
		return nil, err
	}
	return t, nil
}

// List lista transacciones con filtros y paginación, junto con el total sin paginar.
func (r *TransactionRepo) List(f repository.TransactionFilter, limit, offset int) ([]*entity.Transaction, int, error) {
	from := ` FROM transactions t`
	where := ` WHERE 1=1`
	args := []any{}
	pos := 1

	if f.UserSearch != "" {
		from += ` JOIN users u ON u.id = t.user_id`
		where += fmt.Sprintf(" AND (u.external_id = $%d OR u.name ILIKE $%d)", pos, pos+1)
		args = append(args, f.UserSearch, "%"+f.UserSearch+"%")
		pos += 2
	}
	if f.UserID != "" {
		where += fmt.Sprintf(" AND t.user_id = $%d", pos)
		args = append(args, f.UserID)
		pos++
	}
	if f.CreatedBy != "" {
		where += fmt.Sprintf(" AND t.created_by = $%d", pos)
		args = append(args, f.CreatedBy)
		pos++
	}
	if f.Type != "" {
		where += fmt.Sprintf(" AND t.type = $%d", pos)
		args = append(args, f.Type)
		pos++
	}
	if f.RelatedID != nil {
		where += fmt.Sprintf(" AND t.related_id = $%d", pos)
		args = append(args, *f.RelatedID)
		pos++
	}
	if f.PromotionID != "" {
		where += fmt.Sprintf(" AND EXISTS (SELECT 1 FROM transaction_promotions tp WHERE tp.transaction_id = t.id AND tp.promotion_id = $%d)", pos)
		args = append(args, f.PromotionID)
		pos++
	}
	if f.Amount != nil {
		op := ">="
		if f.Operator == "lte" {
			op = "<="
		}
		where += fmt.Sprintf(" AND t.amount %s $%d", op, pos)
		args = append(args, *f.Amount)
		pos++
	}
	if f.Suspicious != nil {
		where += fmt.Sprintf(" AND t.suspicious = $%d", pos)
		args = append(args, *f.Suspicious)
		pos++
	}
	if f.Pending != nil {
		if *f.Pending {
			where += ` AND t.type = 'redemption' AND t.processed_by IS NULL`
		} else {
			where += ` AND NOT (t.type = 'redemption' AND t.processed_by IS NULL)`
		}
	}

	var total int
	if err := r.q.QueryRow(context.Background(), `SELECT COUNT(*)`+from+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}

	query := `SELECT ` + txColumns + from + where +
		fmt.Sprintf(" ORDER BY t.created_at DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()
	var list []*entity.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan transaction: %w", err)
		}
		list = append(list, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for _, t := range list {
		if err := r.loadPromotions(t); err != nil {
			return nil, 0, err
		}
	}
	return list, total, nil
}

// SetSuspicious persiste la marca de sospechosa.
func (r *TransactionRepo) SetSuspicious(id string, suspicious bool) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE transactions SET suspicious = $2 WHERE id = $1`, id, suspicious)
	if err != nil {
		return fmt.Errorf("set suspicious: %w", err)
	}
	return nil
}

// SetProcessed marca una redención como procesada por el cajero dado.
func (r *TransactionRepo) SetProcessed(id, processorID string) error {
	_, err := r.q.Exec(context.Background(),
		`UPDATE transactions SET processed_by = $2 WHERE id = $1`, id, processorID)
	if err != nil {
		return fmt.Errorf("set processed: %w", err)
	}
	return nil
}

// SumPendingRedemptions suma los montos (valor absoluto) de las redenciones
// pendientes del usuario.
func (r *TransactionRepo) SumPendingRedemptions(userID string) (int, error) {
	var total int
	err := r.q.QueryRow(context.Background(), `
		SELECT COALESCE(SUM(-amount), 0) FROM transactions
		WHERE user_id = $1 AND type = 'redemption' AND processed_by IS NULL`, userID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum pending redemptions: %w", err)
	}
	return total, nil
}

// LinkPromotions asocia las promociones aplicadas a una compra.
func (r *TransactionRepo) LinkPromotions(txID string, promotionIDs []string) error {
	for _, pid := range promotionIDs {
		_, err := r.q.Exec(context.Background(), `
			INSERT INTO transaction_promotions (transaction_id, promotion_id)
			VALUES ($1, $2) ON CONFLICT DO NOTHING`, txID, pid)
		if err != nil {
			return fmt.Errorf("link promotion: %w", err)
		}
	}
	return nil
}

func (r *TransactionRepo) loadPromotions(t *entity.Transaction) error {
	rows, err := r.q.Query(context.Background(),
		`SELECT promotion_id FROM transaction_promotions WHERE transaction_id = $1`, t.ID)
	if err != nil {
		return fmt.Errorf("load promotions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var pid string
		if err := rows.Scan(&pid); err != nil {
			return fmt.Errorf("scan promotion id: %w", err)
		}
		t.PromotionIDs = append(t.PromotionIDs, pid)
	}
	return rows.Err()
}

func scanTransaction(row pgx.Row) (*entity.Transaction, error) {
	var t entity.Transaction
	var txType string
	if err := row.Scan(
		&t.ID, &t.UserID, &txType, &t.Amount, &t.Spent, &t.RelatedID,
		&t.Suspicious, &t.Remark, &t.CreatedBy, &t.ProcessedBy, &t.CreatedAt,
	); err != nil {
		return nil, err
	}
	t.Type = entity.TransactionType(txType)
	return &t, nil
}
