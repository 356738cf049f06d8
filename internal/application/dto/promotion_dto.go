package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreatePromotionRequest entrada para POST /promotions (manager o superior).
type CreatePromotionRequest struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Type        string           `json:"type"` // automatic | one-time
	StartTime   time.Time        `json:"start_time"`
	EndTime     time.Time        `json:"end_time"`
	MinSpending *decimal.Decimal `json:"min_spending"`
	Rate        *decimal.Decimal `json:"rate"`
	Points      *int             `json:"points"`
}

// UpdatePromotionRequest parche de PATCH /promotions/:id. Punteros nil = campo
// no enviado. type y start_time son inmutables una vez comenzada la promoción.
type UpdatePromotionRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Type        *string          `json:"type"`
	StartTime   *time.Time       `json:"start_time"`
	EndTime     *time.Time       `json:"end_time"`
	MinSpending *decimal.Decimal `json:"min_spending"`
	Rate        *decimal.Decimal `json:"rate"`
	Points      *int             `json:"points"`
}

// PromotionResponse salida de una promoción. Los campos de ventana solo se
// incluyen en vistas manager+.
type PromotionResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	Type        string           `json:"type"`
	StartTime   *time.Time       `json:"start_time,omitempty"`
	EndTime     *time.Time       `json:"end_time,omitempty"`
	MinSpending *decimal.Decimal `json:"min_spending,omitempty"`
	Rate        *decimal.Decimal `json:"rate,omitempty"`
	Points      *int             `json:"points,omitempty"`
}

// PromotionListFilters filtros de query para listados de promociones.
type PromotionListFilters struct {
	Name    string `query:"name"`
	Type    string `query:"type"`
	Started *bool  `query:"started"` // solo manager+
	Ended   *bool  `query:"ended"`   // solo manager+
}
