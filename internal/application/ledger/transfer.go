package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/Puntos-api/internal/domain"
	"github.com/jhoicas/Puntos-api/internal/domain/entity"
	"github.com/jhoicas/Puntos-api/internal/domain/repository"
)

// TransferInput entrada de una transferencia entre usuarios.
type TransferInput struct {
	SenderID            string // usuario autenticado que envía
	RecipientExternalID string
	Amount              *float64 // se trunca hacia cero
	Remark              string
}

// TransferResult par débito/crédito creado por una transferencia.
type TransferResult struct {
	Debit  *entity.Transaction
	Credit *entity.Transaction
}

// Transfer mueve puntos del remitente al destinatario creando el par de
// transacciones enlazadas (débito y crédito se referencian mutuamente vía
// related_id). La suficiencia de saldo se re-verifica dentro de la misma
// transacción SQL con un update condicional: dos transferencias concurrentes
// del mismo remitente no pueden dejar el saldo negativo.
func (uc *UseCase) Transfer(ctx context.Context, in TransferInput) (*TransferResult, error) {
	sender, err := uc.userRepo.GetByID(in.SenderID)
	if err != nil {
		return nil, err
	}
	if sender == nil {
		return nil, domain.ErrUserNotFound
	}
	if !sender.Verified {
		return nil, fmt.Errorf("%w: el remitente no está verificado", domain.ErrValidation)
	}

	amount, ok := truncPoints(in.Amount)
	if !ok || amount <= 0 {
		return nil, fmt.Errorf("%w: amount debe ser un entero positivo", domain.ErrValidation)
	}

	recipient, err := uc.userRepo.GetByExternalID(in.RecipientExternalID)
	if err != nil {
		return nil, err
	}
	if recipient == nil {
		return nil, domain.ErrUserNotFound
	}
	if recipient.ID == sender.ID {
		return nil, domain.ErrSelfTransfer
	}

	now := uc.now()
	recipientID := recipient.ID
	senderID := sender.ID
	debit := &entity.Transaction{
		ID:        uuid.New().String(),
		UserID:    sender.ID,
		Type:      entity.TxTransfer,
		Amount:    -amount,
		RelatedID: &recipientID,
		Remark:    in.Remark,
		CreatedBy: sender.ID,
		CreatedAt: now,
	}
	credit := &entity.Transaction{
		ID:        uuid.New().String(),
		UserID:    recipient.ID,
		Type:      entity.TxTransfer,
		Amount:    amount,
		RelatedID: &senderID,
		Remark:    in.Remark,
		CreatedBy: sender.ID,
		CreatedAt: now,
	}

	err = uc.txRunner.Run(ctx, func(
		users repository.UserRepository,
		txs repository.TransactionRepository,
		_ repository.PromotionRepository,
		_ repository.EventRepository,
	) error {
		ok, err := users.DebitPoints(sender.ID, amount)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrInsufficientPoints
		}
		if err := users.CreditPoints(recipient.ID, amount); err != nil {
			return err
		}
		if err := txs.Create(debit); err != nil {
			return err
		}
		return txs.Create(credit)
	})
	if err != nil {
		return nil, err
	}
	return &TransferResult{Debit: debit, Credit: credit}, nil
}
