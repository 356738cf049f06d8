package postgres

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	return hasPgCode(err, "23505") // unique_violation
}

// isCheckViolation verifica si un error es una violación de CHECK (23514),
// p.ej. el CHECK points >= 0 de users al aplicar un delta negativo.
func isCheckViolation(err error) bool {
	return hasPgCode(err, "23514") // check_violation
}

func hasPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == code
	}
	return strings.Contains(err.Error(), code)
}
