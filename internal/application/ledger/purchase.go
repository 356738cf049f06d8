package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/jhoicas/Puntos-api/internal/domain"
	"github.com/jhoicas/Puntos-api/internal/domain/entity"
	"github.com/jhoicas/Puntos-api/internal/domain/promotion"
	"github.com/jhoicas/Puntos-api/internal/domain/repository"
)

// PurchaseInput entrada de una compra registrada por un cajero.
type PurchaseInput struct {
	ActorID      string // cajero que registra
	ExternalID   string // usuario que compra
	Spent        *decimal.Decimal
	PromotionIDs []string // one-time seleccionadas explícitamente
	Remark       string
}

// Purchase registra una compra: calcula los puntos ganados (base + promociones),
// crea la transacción, asocia promociones, consume las one-time y acredita el
// saldo — salvo que el cajero esté marcado sospechoso, en cuyo caso la
// transacción queda retenida (suspicious) sin acreditar.
//
// La selección de una one-time inactiva, usada o desconocida invalida toda la
// solicitud (todo-o-nada), nunca se omite en silencio.
func (uc *UseCase) Purchase(ctx context.Context, in PurchaseInput) (*entity.Transaction, error) {
	actor, err := uc.userRepo.GetByID(in.ActorID)
	if err != nil {
		return nil, err
	}
	if actor == nil || !actor.Role.AtLeast(entity.RoleCashier) {
		return nil, domain.ErrForbidden
	}

	target, err := uc.userRepo.GetByExternalID(in.ExternalID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, domain.ErrUserNotFound
	}

	if in.Spent == nil || in.Spent.IsNegative() {
		return nil, fmt.Errorf("%w: spent debe ser un monto no negativo", domain.ErrValidation)
	}

	now := uc.now()

	automatic, err := uc.promoRepo.ListAutomaticActive(now)
	if err != nil {
		return nil, err
	}

	// Validación todo-o-nada de las one-time seleccionadas.
	seen := make(map[string]bool, len(in.PromotionIDs))
	selected := make([]*entity.Promotion, 0, len(in.PromotionIDs))
	for _, id := range in.PromotionIDs {
		if seen[id] {
			return nil, fmt.Errorf("%w: promoción repetida %s", domain.ErrValidation, id)
		}
		seen[id] = true
		p, err := uc.promoRepo.GetByID(id)
		if err != nil {
			return nil, err
		}
		if p == nil || p.Type != entity.PromotionOneTime {
			return nil, fmt.Errorf("%w: promoción %s no es una one-time válida", domain.ErrValidation, id)
		}
		if !p.Active(now) {
			return nil, domain.ErrPromotionInactive
		}
		used, err := uc.promoRepo.HasUsed(target.ID, id)
		if err != nil {
			return nil, err
		}
		if used {
			return nil, domain.ErrPromotionAlreadyUsed
		}
		selected = append(selected, p)
	}

	earned := promotion.EarnedPoints(*in.Spent, append(automatic, selected...))

	spent := *in.Spent
	tx := &entity.Transaction{
		ID:         uuid.New().String(),
		UserID:     target.ID,
		Type:       entity.TxPurchase,
		Amount:     earned,
		Spent:      &spent,
		Suspicious: actor.Suspicious,
		Remark:     in.Remark,
		CreatedBy:  actor.ID,
		CreatedAt:  now,
	}
	for _, p := range append(automatic, selected...) {
		tx.PromotionIDs = append(tx.PromotionIDs, p.ID)
	}

	err = uc.txRunner.Run(ctx, func(
		users repository.UserRepository,
		txs repository.TransactionRepository,
		promos repository.PromotionRepository,
		_ repository.EventRepository,
	) error {
		if err := txs.Create(tx); err != nil {
			return err
		}
		if err := txs.LinkPromotions(tx.ID, tx.PromotionIDs); err != nil {
			return err
		}
		// Re-validación dentro de la tx: si otra compra concurrente consumió la
		// one-time después de la prevalidación, el insert de uso no afecta filas
		// y toda la compra se revierte.
		for _, p := range selected {
			inserted, err := promos.MarkUsed(target.ID, p.ID)
			if err != nil {
				return err
			}
			if !inserted {
				return domain.ErrPromotionAlreadyUsed
			}
		}
		if !tx.Suspicious {
			if err := users.CreditPoints(target.ID, earned); err != nil {
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
