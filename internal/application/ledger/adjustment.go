package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/Puntos-api/internal/domain"
	"github.com/jhoicas/Puntos-api/internal/domain/entity"
	"github.com/jhoicas/Puntos-api/internal/domain/repository"
)

// AdjustmentInput entrada de un ajuste manual hecho por un manager.
type AdjustmentInput struct {
	ActorID    string
	ExternalID string   // usuario afectado
	Amount     *float64 // puntos con signo; se trunca hacia cero
	RelatedID  *string  // transacción que se ajusta (opcional)
	Remark     string
}

// Adjustment crea un ajuste con monto con signo y aplica el delta al saldo.
// Queda procesado de inmediato por el actor. Si se da related_id debe
// referenciar una transacción existente del mismo usuario.
func (uc *UseCase) Adjustment(ctx context.Context, in AdjustmentInput) (*entity.Transaction, error) {
	actor, err := uc.userRepo.GetByID(in.ActorID)
	if err != nil {
		return nil, err
	}
	if actor == nil || !actor.Role.AtLeast(entity.RoleManager) {
		return nil, domain.ErrForbidden
	}

	target, err := uc.userRepo.GetByExternalID(in.ExternalID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, domain.ErrUserNotFound
	}

	amount, ok := truncPoints(in.Amount)
	if !ok || amount == 0 {
		return nil, fmt.Errorf("%w: amount debe ser un entero distinto de cero", domain.ErrValidation)
	}

	if in.RelatedID != nil {
		ref, err := uc.txRepo.GetByID(*in.RelatedID)
		if err != nil {
			return nil, err
		}
		if ref == nil || ref.UserID != target.ID {
			return nil, fmt.Errorf("%w: related_id no referencia una transacción del usuario", domain.ErrValidation)
		}
	}

	actorID := actor.ID
	tx := &entity.Transaction{
		ID:          uuid.New().String(),
		UserID:      target.ID,
		Type:        entity.TxAdjustment,
		Amount:      amount,
		RelatedID:   in.RelatedID,
		Suspicious:  actor.Suspicious,
		Remark:      in.Remark,
		CreatedBy:   actor.ID,
		ProcessedBy: &actorID,
		CreatedAt:   uc.now(),
	}

	err = uc.txRunner.Run(ctx, func(
		users repository.UserRepository,
		txs repository.TransactionRepository,
		_ repository.PromotionRepository,
		_ repository.EventRepository,
	) error {
		if err := txs.Create(tx); err != nil {
			return err
		}
		if !tx.Suspicious {
			if err := users.CreditPoints(target.ID, amount); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tx, nil
}
