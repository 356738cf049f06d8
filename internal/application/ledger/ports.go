// Package ledger implementa las operaciones que mutan saldos de puntos:
// compra, ajuste, transferencia, redención (solicitud y procesamiento),
// premios de evento y el toggle de sospechosa. Cada operación corre dentro
// de una transacción de base de datos: o se aplican todas las filas (registro
// de auditoría, saldos, marcadores de uso, presupuesto de evento) o ninguna.
package ledger

import (
	"context"
	"time"

	"github.com/jhoicas/Puntos-api/internal/domain/repository"
)

// TxRunner ejecuta un callback con repositorios atados a una transacción SQL.
// Commit si fn devuelve nil; Rollback en caso contrario.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		users repository.UserRepository,
		txs repository.TransactionRepository,
		promos repository.PromotionRepository,
		events repository.EventRepository,
	) error) error
}

// UseCase agrupa las operaciones del ledger. Los repositorios sueltos (atados
// al pool) se usan para prevalidación; toda mutación pasa por txRunner.
type UseCase struct {
	txRunner  TxRunner
	userRepo  repository.UserRepository
	txRepo    repository.TransactionRepository
	promoRepo repository.PromotionRepository
	eventRepo repository.EventRepository
	now       func() time.Time
}

// NewUseCase construye el caso de uso del ledger.
func NewUseCase(
	txRunner TxRunner,
	userRepo repository.UserRepository,
	txRepo repository.TransactionRepository,
	promoRepo repository.PromotionRepository,
	eventRepo repository.EventRepository,
) *UseCase {
	return &UseCase{
		txRunner:  txRunner,
		userRepo:  userRepo,
		txRepo:    txRepo,
		promoRepo: promoRepo,
		eventRepo: eventRepo,
		now:       time.Now,
	}
}

// WithClock reemplaza el reloj (para tests).
func (uc *UseCase) WithClock(now func() time.Time) *UseCase {
	uc.now = now
	return uc
}

// truncPoints convierte un monto JSON a puntos enteros con truncamiento hacia
// cero (no redondeo). ok es false si el valor no fue enviado.
func truncPoints(f *float64) (int, bool) {
	if f == nil {
		return 0, false
	}
	return int(*f), true
}
