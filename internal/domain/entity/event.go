package entity

import "time"

// Event es un evento con presupuesto de puntos para premiar asistentes.
// Invariante: PointsRemain + PointsAwarded == PointsTotal en todo momento,
// y PointsRemain nunca baja de cero.
type Event struct {
	ID            string
	Name          string
	Description   string
	Location      string
	StartTime     time.Time
	EndTime       time.Time
	Capacity      *int // nil = sin límite de invitados
	Published     bool
	PointsTotal   int
	PointsRemain  int
	PointsAwarded int
	CreatedAt     time.Time
}

// Started indica si el evento ya comenzó; congela los campos descriptivos.
func (e *Event) Started(now time.Time) bool {
	return !now.Before(e.StartTime)
}

// Ended indica si el evento ya terminó; bloquea RSVPs y premios.
func (e *Event) Ended(now time.Time) bool {
	return now.After(e.EndTime)
}

// Full indica si se alcanzó la capacidad con el número actual de invitados.
func (e *Event) Full(guestCount int) bool {
	return e.Capacity != nil && guestCount >= *e.Capacity
}

// EventOrganizer relación evento-organizador.
type EventOrganizer struct {
	EventID string
	UserID  string
}

// EventGuest RSVP de un usuario a un evento.
type EventGuest struct {
	EventID string
	UserID  string
}
