package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateTransactionRequest cuerpo de POST /transactions. El campo type decide
// la operación (purchase | adjustment); el handler lo traduce al input
// específico de cada operación del ledger.
// Amount llega como número JSON y se trunca hacia cero al convertir a puntos.
type CreateTransactionRequest struct {
	ExternalID   string           `json:"external_id"` // usuario destino
	Type         string           `json:"type"`
	Spent        *decimal.Decimal `json:"spent"`         // purchase
	Amount       *float64         `json:"amount"`        // adjustment
	RelatedID    *string          `json:"related_id"`    // adjustment: transacción referenciada
	PromotionIDs []string         `json:"promotion_ids"` // purchase: one-time seleccionadas
	Remark       string           `json:"remark"`
}

// RedemptionRequest cuerpo de POST /users/me/transactions.
type RedemptionRequest struct {
	Type   string   `json:"type"` // debe ser "redemption"
	Amount *float64 `json:"amount"`
	Remark string   `json:"remark"`
}

// TransferRequest cuerpo de POST /users/:userId/transactions.
type TransferRequest struct {
	Type   string   `json:"type"` // debe ser "transfer"
	Amount *float64 `json:"amount"`
	Remark string   `json:"remark"`
}

// EventAwardRequest cuerpo de POST /events/:id/transactions.
// ExternalID vacío = premiar a todos los invitados.
type EventAwardRequest struct {
	Type       string   `json:"type"` // debe ser "event"
	ExternalID string   `json:"external_id"`
	Amount     *float64 `json:"amount"`
	Remark     string   `json:"remark"`
}

// SetSuspiciousRequest cuerpo de PATCH /transactions/:id/suspicious.
type SetSuspiciousRequest struct {
	Suspicious *bool `json:"suspicious"`
}

// TransactionResponse salida de una transacción del ledger.
type TransactionResponse struct {
	ID           string           `json:"id"`
	ExternalID   string           `json:"external_id"` // dueño de la transacción
	Type         string           `json:"type"`
	Amount       int              `json:"amount"`
	Spent        *decimal.Decimal `json:"spent,omitempty"`
	RelatedID    *string          `json:"related_id,omitempty"`
	Suspicious   bool             `json:"suspicious"`
	Remark       string           `json:"remark,omitempty"`
	CreatedBy    string           `json:"created_by"`
	ProcessedBy  *string          `json:"processed_by,omitempty"`
	CreatedAt    time.Time        `json:"created_at"`
	PromotionIDs []string         `json:"promotion_ids,omitempty"`
}

// TransactionListFilters filtros de query para listados de transacciones.
type TransactionListFilters struct {
	Name       string   `query:"name"` // external_id o substring de nombre (solo manager)
	Type       string   `query:"type"`
	RelatedID  *string  `query:"related_id"`
	Promotion  string   `query:"promotion_id"`
	Amount     *float64 `query:"amount"`
	Operator   string   `query:"operator"` // gte | lte
	Suspicious *bool    `query:"suspicious"`
	Pending    *bool    `query:"pending"`
}
