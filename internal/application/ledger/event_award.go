package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/Puntos-api/internal/domain"
	"github.com/jhoicas/Puntos-api/internal/domain/entity"
	"github.com/jhoicas/Puntos-api/internal/domain/repository"
)

// EventAwardInput premio de puntos de un evento a un invitado o a todos.
type EventAwardInput struct {
	ActorID    string
	EventID    string
	ExternalID string // vacío = premiar a todos los invitados
	Amount     *float64
	Remark     string
}

// AwardEvent acredita puntos del presupuesto de un evento a un invitado con
// RSVP, o a todos los invitados en un solo lote atómico. El presupuesto se
// descuenta con un update condicional (points_remain >= total), de modo que
// points_remain + points_awarded == points_total se conserva siempre y nunca
// queda negativo.
func (uc *UseCase) AwardEvent(ctx context.Context, in EventAwardInput) ([]*entity.Transaction, error) {
	actor, err := uc.userRepo.GetByID(in.ActorID)
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, domain.ErrForbidden
	}

	event, err := uc.eventRepo.GetByID(in.EventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, domain.ErrNotFound
	}

	// Managers pueden premiar en cualquier estado; organizadores solo si el
	// evento está publicado.
	if !actor.Role.AtLeast(entity.RoleManager) {
		organizer, err := uc.eventRepo.IsOrganizer(event.ID, actor.ID)
		if err != nil {
			return nil, err
		}
		if !organizer || !event.Published {
			return nil, domain.ErrForbidden
		}
	}

	if event.Ended(uc.now()) {
		return nil, domain.ErrEventEnded
	}

	amount, ok := truncPoints(in.Amount)
	if !ok || amount <= 0 {
		return nil, fmt.Errorf("%w: amount debe ser un entero positivo", domain.ErrValidation)
	}

	var created []*entity.Transaction
	err = uc.txRunner.Run(ctx, func(
		users repository.UserRepository,
		txs repository.TransactionRepository,
		_ repository.PromotionRepository,
		events repository.EventRepository,
	) error {
		// Bloquea la fila del evento: el chequeo de presupuesto y los créditos
		// van en la misma transacción.
		ev, err := events.GetForUpdate(event.ID)
		if err != nil {
			return err
		}
		if ev == nil {
			return domain.ErrNotFound
		}

		var recipients []*entity.User
		if in.ExternalID != "" {
			guest, err := users.GetByExternalID(in.ExternalID)
			if err != nil {
				return err
			}
			if guest == nil {
				return domain.ErrUserNotFound
			}
			isGuest, err := events.IsGuest(ev.ID, guest.ID)
			if err != nil {
				return err
			}
			if !isGuest {
				return domain.ErrNotGuest
			}
			recipients = []*entity.User{guest}
		} else {
			recipients, err = events.ListGuests(ev.ID)
			if err != nil {
				return err
			}
			if len(recipients) == 0 {
				return fmt.Errorf("%w: el evento no tiene invitados", domain.ErrValidation)
			}
		}

		total := amount * len(recipients)
		ok, err := events.ApplyAward(ev.ID, total)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrEventBudgetExceeded
		}

		eventID := ev.ID
		now := uc.now()
		for _, guest := range recipients {
			tx := &entity.Transaction{
				ID:        uuid.New().String(),
				UserID:    guest.ID,
				Type:      entity.TxEvent,
				Amount:    amount,
				RelatedID: &eventID,
				Remark:    in.Remark,
				CreatedBy: actor.ID,
				CreatedAt: now,
			}
			if err := txs.Create(tx); err != nil {
				return err
			}
			if err := users.CreditPoints(guest.ID, amount); err != nil {
				return err
			}
			created = append(created, tx)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
