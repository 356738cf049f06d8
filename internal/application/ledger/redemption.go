package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/Puntos-api/internal/domain"
	"github.com/jhoicas/Puntos-api/internal/domain/entity"
	"github.com/jhoicas/Puntos-api/internal/domain/repository"
)

// RedemptionInput solicitud de redención del propio usuario.
type RedemptionInput struct {
	UserID string
	Amount *float64 // se trunca hacia cero
	Remark string
}

// RequestRedemption crea una redención pendiente (processed_by = nil) sin tocar
// el saldo. Se permiten varias pendientes a la vez, pero la disponibilidad se
// calcula como saldo menos redenciones ya pendientes: un usuario no puede
// comprometer más puntos de los que tiene.
func (uc *UseCase) RequestRedemption(ctx context.Context, in RedemptionInput) (*entity.Transaction, error) {
	amount, ok := truncPoints(in.Amount)
	if !ok || amount <= 0 {
		return nil, fmt.Errorf("%w: amount debe ser un entero positivo", domain.ErrValidation)
	}

	tx := &entity.Transaction{
		ID:        uuid.New().String(),
		Type:      entity.TxRedemption,
		Amount:    -amount,
		Remark:    in.Remark,
		CreatedAt: uc.now(),
	}

	err := uc.txRunner.Run(ctx, func(
		users repository.UserRepository,
		txs repository.TransactionRepository,
		_ repository.PromotionRepository,
		_ repository.EventRepository,
	) error {
		// Bloquea la fila del usuario para que el cómputo de pendientes y el
		// insert sean consistentes frente a solicitudes concurrentes.
		user, err := users.GetForUpdate(in.UserID)
		if err != nil {
			return err
		}
		if user == nil {
			return domain.ErrUserNotFound
		}
		if !user.Verified {
			return domain.ErrUserNotVerified
		}
		pending, err := txs.SumPendingRedemptions(user.ID)
		if err != nil {
			return err
		}
		if amount > user.Points-pending {
			return domain.ErrInsufficientPoints
		}
		tx.UserID = user.ID
		tx.CreatedBy = user.ID
		return txs.Create(tx)
	})
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// ProcessRedemption marca una redención pendiente como procesada por el actor
// (cajero o superior) y debita el saldo del dueño. El débito usa un update
// condicional: si el saldo ya no alcanza, la operación falla sin efectos.
func (uc *UseCase) ProcessRedemption(ctx context.Context, actorID, txID string) (*entity.Transaction, error) {
	actor, err := uc.userRepo.GetByID(actorID)
	if err != nil {
		return nil, err
	}
	if actor == nil || !actor.Role.AtLeast(entity.RoleCashier) {
		return nil, domain.ErrForbidden
	}

	var processed *entity.Transaction
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
		if t.Type != entity.TxRedemption {
			return fmt.Errorf("%w: la transacción no es una redención", domain.ErrValidation)
		}
		if t.ProcessedBy != nil {
			return domain.ErrAlreadyProcessed
		}
		amount := -t.Amount
		ok, err := users.DebitPoints(t.UserID, amount)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInsufficientPoints
		}
		if err := txs.SetProcessed(t.ID, actor.ID); err != nil {
			return err
		}
		actorID := actor.ID
		t.ProcessedBy = &actorID
		processed = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return processed, nil
}
