package repository

import (
	"time"

	"github.com/jhoicas/Puntos-api/internal/domain/entity"
)

// PromotionFilter filtros opcionales para listados de promociones.
type PromotionFilter struct {
	Name    string // substring
	Type    string // automatic | one-time
	Started *bool  // ventana ya comenzó (solo manager+)
	Ended   *bool  // ventana ya terminó (solo manager+)
}

// PromotionRepository define el puerto de persistencia para Promotion y el
// registro de uso por usuario de las one-time.
type PromotionRepository interface {
	Create(p *entity.Promotion) error
	GetByID(id string) (*entity.Promotion, error)
	Update(p *entity.Promotion) error
	Delete(id string) error
	List(f PromotionFilter, now time.Time, limit, offset int) ([]*entity.Promotion, int, error)
	// ListAvailable devuelve las promociones vigentes visibles para un usuario
	// regular: automáticas más one-time que aún no ha usado.
	ListAvailable(userID string, now time.Time, limit, offset int) ([]*entity.Promotion, int, error)
	ListAutomaticActive(now time.Time) ([]*entity.Promotion, error)
	HasUsed(userID, promotionID string) (bool, error)
	// MarkUsed registra el consumo de una one-time por un usuario. Devuelve
	// false si la clave usuario+promoción ya existía (otra operación la
	// consumió primero); el caller decide si eso invalida su transacción.
	MarkUsed(userID, promotionID string) (bool, error)
}
