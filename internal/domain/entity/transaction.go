package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType tipos de transacción del ledger.
type TransactionType string

const (
	TxPurchase   TransactionType = "purchase"
	TxAdjustment TransactionType = "adjustment"
	TxTransfer   TransactionType = "transfer"
	TxRedemption TransactionType = "redemption"
	TxEvent      TransactionType = "event"
)

// ValidTransactionType indica si el string es un tipo conocido.
func ValidTransactionType(s string) bool {
	switch TransactionType(s) {
	case TxPurchase, TxAdjustment, TxTransfer, TxRedemption, TxEvent:
		return true
	}
	return false
}

// Transaction es el registro de auditoría del ledger: inmutable una vez creado,
// salvo los campos Suspicious y ProcessedBy.
//
// RelatedID referencia según el tipo:
//   - transfer: el usuario contraparte (las dos filas del par se apuntan mutuamente)
//   - event: el evento que otorgó los puntos
//   - adjustment: la transacción que se está ajustando
type Transaction struct {
	ID           string
	UserID       string
	Type         TransactionType
	Amount       int              // puntos, con signo
	Spent        *decimal.Decimal // monto gastado, solo purchase
	RelatedID    *string
	Suspicious   bool
	Remark       string
	CreatedBy    string  // usuario que originó la operación
	ProcessedBy  *string // nil mientras una redención está pendiente
	CreatedAt    time.Time
	PromotionIDs []string // promociones aplicadas (solo purchase)
}

// Pending indica si es una redención aún no procesada.
func (t *Transaction) Pending() bool {
	return t.Type == TxRedemption && t.ProcessedBy == nil
}
