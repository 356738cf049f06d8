package usecase

import (
	"fmt"

	"github.com/jhoicas/Puntos-api/internal/application/dto"
	"github.com/jhoicas/Puntos-api/internal/domain"
	"github.com/jhoicas/Puntos-api/internal/domain/entity"
	"github.com/jhoicas/Puntos-api/internal/domain/repository"
)

// TransactionUseCase consultas del ledger: listados con filtros para managers,
// historial propio y detalle. Las mutaciones viven en el paquete ledger.
type TransactionUseCase struct {
	txRepo   repository.TransactionRepository
	userRepo repository.UserRepository
}

// NewTransactionUseCase construye el caso de uso de consultas de transacciones.
func NewTransactionUseCase(txRepo repository.TransactionRepository, userRepo repository.UserRepository) *TransactionUseCase {
	return &TransactionUseCase{txRepo: txRepo, userRepo: userRepo}
}

// List lista transacciones de todo el ledger (manager o superior).
func (uc *TransactionUseCase) List(f dto.TransactionListFilters, page dto.PageRequest) (*dto.ListResponse[dto.TransactionResponse], error) {
	filter, err := toTransactionFilter(f)
	if err != nil {
		return nil, err
	}
	filter.UserSearch = f.Name
	return uc.list(filter, page)
}

// ListForUser lista el historial del propio usuario. Los filtros de nombre y
// suspicious no aplican a la vista propia.
func (uc *TransactionUseCase) ListForUser(userID string, f dto.TransactionListFilters, page dto.PageRequest) (*dto.ListResponse[dto.TransactionResponse], error) {
	filter, err := toTransactionFilter(f)
	if err != nil {
		return nil, err
	}
	filter.UserID = userID
	filter.Suspicious = nil
	return uc.list(filter, page)
}

// GetByID devuelve el detalle de una transacción (manager o superior).
func (uc *TransactionUseCase) GetByID(id string) (*dto.TransactionResponse, error) {
	t, err := uc.txRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	resolve, err := uc.externalIDResolver([]*entity.Transaction{t})
	if err != nil {
		return nil, err
	}
	return toTransactionResponse(t, resolve), nil
}

func (uc *TransactionUseCase) list(filter repository.TransactionFilter, page dto.PageRequest) (*dto.ListResponse[dto.TransactionResponse], error) {
	txs, total, err := uc.txRepo.List(filter, page.Limit, page.Offset())
	if err != nil {
		return nil, err
	}
	resolve, err := uc.externalIDResolver(txs)
	if err != nil {
		return nil, err
	}
	out := &dto.ListResponse[dto.TransactionResponse]{Count: total, Results: make([]dto.TransactionResponse, 0, len(txs))}
	for _, t := range txs {
		out.Results = append(out.Results, *toTransactionResponse(t, resolve))
	}
	return out, nil
}

// externalIDResolver precarga los external_id de los dueños de las
// transacciones del lote para no consultar usuario por usuario en la respuesta.
func (uc *TransactionUseCase) externalIDResolver(txs []*entity.Transaction) (func(string) string, error) {
	cache := make(map[string]string, len(txs))
	for _, t := range txs {
		if _, ok := cache[t.UserID]; ok {
			continue
		}
		user, err := uc.userRepo.GetByID(t.UserID)
		if err != nil {
			return nil, err
		}
		if user != nil {
			cache[t.UserID] = user.ExternalID
		}
	}
	return func(userID string) string { return cache[userID] }, nil
}

func toTransactionFilter(f dto.TransactionListFilters) (repository.TransactionFilter, error) {
	filter := repository.TransactionFilter{
		Type:        f.Type,
		RelatedID:   f.RelatedID,
		PromotionID: f.Promotion,
		Suspicious:  f.Suspicious,
		Pending:     f.Pending,
	}
	if f.Type != "" && !entity.ValidTransactionType(f.Type) {
		return filter, fmt.Errorf("%w: type desconocido %q", domain.ErrValidation, f.Type)
	}
	if f.RelatedID != nil && f.Type == "" {
		return filter, fmt.Errorf("%w: related_id requiere type", domain.ErrValidation)
	}
	if (f.Amount == nil) != (f.Operator == "") {
		return filter, fmt.Errorf("%w: amount y operator van juntos", domain.ErrValidation)
	}
	if f.Amount != nil {
		if f.Operator != "gte" && f.Operator != "lte" {
			return filter, fmt.Errorf("%w: operator debe ser gte o lte", domain.ErrValidation)
		}
		amount := int(*f.Amount)
		filter.Amount = &amount
		filter.Operator = f.Operator
	}
	return filter, nil
}

func toTransactionResponse(t *entity.Transaction, resolveExternalID func(string) string) *dto.TransactionResponse {
	return &dto.TransactionResponse{
		ID:           t.ID,
		ExternalID:   resolveExternalID(t.UserID),
		Type:         string(t.Type),
		Amount:       t.Amount,
		Spent:        t.Spent,
		RelatedID:    t.RelatedID,
		Suspicious:   t.Suspicious,
		Remark:       t.Remark,
		CreatedBy:    t.CreatedBy,
		ProcessedBy:  t.ProcessedBy,
		CreatedAt:    t.CreatedAt,
		PromotionIDs: t.PromotionIDs,
	}
}
