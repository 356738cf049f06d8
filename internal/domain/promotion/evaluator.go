// Package promotion implementa el cálculo puro de puntos ganados en una compra:
// puntos base por monto gastado más los bonos de las promociones aplicables.
// No toca persistencia; la selección/validación de promociones one-time la hace
// el caso de uso de compra.
package promotion

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/jhoicas/Puntos-api/internal/domain/entity"
)

var (
	four    = decimal.NewFromInt(4)
	hundred = decimal.NewFromInt(100)
)

// BasePoints calcula los puntos base de una compra: round(spent / 0.25),
// es decir 4 puntos por unidad monetaria con redondeo al entero más cercano.
func BasePoints(spent decimal.Decimal) int {
	return int(spent.Mul(four).Round(0).IntPart())
}

// Bonus calcula el bono que aporta una promoción a una compra.
// Si MinSpending está definido y spent no lo alcanza, el bono es cero.
// El bono por tasa es round(spent * 100 * rate); el factor 100 es fijo.
func Bonus(spent decimal.Decimal, p *entity.Promotion) int {
	if p.MinSpending != nil && spent.LessThan(*p.MinSpending) {
		return 0
	}
	bonus := 0
	if p.Rate != nil {
		bonus += int(spent.Mul(hundred).Mul(*p.Rate).Round(0).IntPart())
	}
	if p.Points != nil {
		bonus += *p.Points
	}
	return bonus
}

// EarnedPoints calcula el total ganado: base + suma de bonos de todas las
// promociones aplicables (automáticas siempre; one-time solo las seleccionadas
// y ya validadas por el caller).
func EarnedPoints(spent decimal.Decimal, promos []*entity.Promotion) int {
	total := BasePoints(spent)
	for _, p := range promos {
		total += Bonus(spent, p)
	}
	return total
}

// FilterActive devuelve las promociones vigentes en el instante dado.
func FilterActive(promos []*entity.Promotion, now time.Time) []*entity.Promotion {
	var active []*entity.Promotion
	for _, p := range promos {
		if p.Active(now) {
			active = append(active, p)
		}
	}
	return active
}
