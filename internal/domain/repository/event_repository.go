package repository

import "github.com/jhoicas/Puntos-api/internal/domain/entity"

// EventFilter filtros opcionales para listados de eventos.
type EventFilter struct {
	Name      string // substring
	Location  string // substring
	Started   *bool
	Ended     *bool
	Published *bool // para usuarios regulares se fuerza a true
	ShowFull  bool  // incluir eventos con capacidad llena
}

// EventRepository define el puerto de persistencia para Event y sus conjuntos
// de organizadores e invitados.
type EventRepository interface {
	Create(e *entity.Event) error
	GetByID(id string) (*entity.Event, error)
	// GetForUpdate bloquea la fila del evento (presupuesto); usar solo dentro de una tx.
	GetForUpdate(id string) (*entity.Event, error)
	Update(e *entity.Event) error
	Delete(id string) error
	List(f EventFilter, limit, offset int) ([]*entity.Event, int, error)
	// ApplyAward descuenta amount de points_remain y lo suma a points_awarded en
	// una sola sentencia condicional (points_remain >= amount). Devuelve false si
	// el presupuesto no alcanza.
	ApplyAward(id string, amount int) (bool, error)

	AddOrganizer(eventID, userID string) error
	RemoveOrganizer(eventID, userID string) error
	IsOrganizer(eventID, userID string) (bool, error)
	ListOrganizers(eventID string) ([]*entity.User, error)

	AddGuest(eventID, userID string) error
	RemoveGuest(eventID, userID string) error
	IsGuest(eventID, userID string) (bool, error)
	ListGuests(eventID string) ([]*entity.User, error)
	CountGuests(eventID string) (int, error)
}
