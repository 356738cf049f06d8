package ledger

import (
	"context"
	"fmt"

	"github.com/jhoicas/Puntos-api/internal/domain"
	"github.com/jhoicas/Puntos-api/internal/domain/entity"
	"github.com/jhoicas/Puntos-api/internal/domain/repository"
)

// SetSuspicious cambia la marca de sospechosa de una transacción y aplica el
// delta inverso sobre el saldo del dueño: marcar retira el efecto previo de la
// transacción, desmarcar lo restaura. Si la marca no cambia es un no-op (se
// devuelve el estado actual), lo que impide el doble conteo.
func (uc *UseCase) SetSuspicious(ctx context.Context, actorID, txID string, suspicious bool) (*entity.Transaction, error) {
	actor, err := uc.userRepo.GetByID(actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil || !actor.Role.AtLeast(entity.RoleManager) {
		return nil, domain.ErrForbidden
	}

	var result *entity.Transaction
	err = uc.txRunner.Run(ctx, func(
		users repository.UserRepository,
		txs repository.TransactionRepository,
		_ repository.PromotionRepository,
		_ repository.EventRepository,
	) error {
		t, err := txs.GetForUpdate(txID)
		if err != nil {
			return err
		}
		if t == nil {
			return domain.ErrNotFound
		}
		if t.Suspicious == suspicious {
			result = t // no-op: la marca ya está en el estado pedido
			return nil
		}
		// Una redención pendiente aún no afectó el saldo; no hay efecto que
		// retirar ni restaurar.
		if t.Pending() {
			return fmt.Errorf("%w: no se puede marcar una redención pendiente", domain.ErrValidation)
		}

		delta := t.Amount
		if suspicious {
			delta = -delta
		}
		if err := users.CreditPoints(t.UserID, delta); err != nil {
			return err
		}
		if err := txs.SetSuspicious(t.ID, suspicious); err != nil {
			return err
		}
		t.Suspicious = suspicious
		result = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
