package repository

import "github.com/jhoicas/Puntos-api/internal/domain/entity"

// TransactionFilter filtros opcionales para listados de transacciones.
type TransactionFilter struct {
	UserID      string
	UserSearch  string // external_id exacto o substring del nombre del dueño
	CreatedBy   string
	Type        string
	RelatedID   *string
	PromotionID string
	Amount      *int   // junto con Operator
	Operator    string // "gte" | "lte"
	Suspicious  *bool
	Pending     *bool // redenciones sin procesar
}

// TransactionRepository define el puerto de persistencia del ledger.
type TransactionRepository interface {
	Create(tx *entity.Transaction) error
	GetByID(id string) (*entity.Transaction, error)
	// GetForUpdate bloquea la fila de la transacción; usar solo dentro de una tx.
	GetForUpdate(id string) (*entity.Transaction, error)
	List(f TransactionFilter, limit, offset int) ([]*entity.Transaction, int, error)
	SetSuspicious(id string, suspicious bool) error
	SetProcessed(id, processorID string) error
	// SumPendingRedemptions suma los montos (valor absoluto) de las redenciones
	// pendientes del usuario.
	SumPendingRedemptions(userID string) (int, error)
	LinkPromotions(txID string, promotionIDs []string) error
}
