package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PromotionType tipos de promoción.
const (
	PromotionAutomatic = "automatic" // aplica a toda compra que califique
	PromotionOneTime   = "one-time"  // consumible una sola vez por usuario
)

// ValidPromotionType indica si el string es un tipo conocido.
func ValidPromotionType(s string) bool {
	return s == PromotionAutomatic || s == PromotionOneTime
}

// Promotion define un bono de puntos sobre compras dentro de una ventana de vigencia.
// Rate y Points son opcionales e independientes; MinSpending condiciona ambos.
type Promotion struct {
	ID          string
	Name        string
	Description string
	Type        string // automatic | one-time
	StartTime   time.Time
	EndTime     time.Time
	MinSpending *decimal.Decimal
	Rate        *decimal.Decimal // bono = round(spent * 100 * rate)
	Points      *int             // bono plano
	CreatedAt   time.Time
}

// Active indica si la promoción está vigente en el instante dado (start <= now <= end).
func (p *Promotion) Active(now time.Time) bool {
	return !now.Before(p.StartTime) && !now.After(p.EndTime)
}

// Started indica si la ventana ya comenzó; congela type y start_time en updates
// y bloquea el delete.
func (p *Promotion) Started(now time.Time) bool {
	return !now.Before(p.StartTime)
}
