package dto

import "time"

// CreateEventRequest entrada para POST /events (manager o superior).
type CreateEventRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Capacity    *int      `json:"capacity"`
	Points      int       `json:"points"` // presupuesto total
}

// UpdateEventRequest parche de PATCH /events/:id. Punteros nil = campo no
// enviado. Los campos descriptivos se congelan cuando el evento comienza;
// points y published solo los toca un manager.
type UpdateEventRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Location    *string    `json:"location"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Capacity    *int       `json:"capacity"`
	Points      *int       `json:"points"`
	Published   *bool      `json:"published"`
}

// AddMemberRequest entrada para agregar organizador o invitado por external_id.
type AddMemberRequest struct {
	ExternalID string `json:"external_id"`
}

// EventMemberResponse miembro (organizador o invitado) de un evento.
type EventMemberResponse struct {
	ID         string `json:"id"`
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
}

// EventResponse salida de un evento. Los campos de presupuesto solo se
// incluyen para managers u organizadores del evento.
type EventResponse struct {
	ID            string                `json:"id"`
	Name          string                `json:"name"`
	Description   string                `json:"description,omitempty"`
	Location      string                `json:"location"`
	StartTime     time.Time             `json:"start_time"`
	EndTime       time.Time             `json:"end_time"`
	Capacity      *int                  `json:"capacity,omitempty"`
	Published     *bool                 `json:"published,omitempty"`
	PointsTotal   *int                  `json:"points_total,omitempty"`
	PointsRemain  *int                  `json:"points_remain,omitempty"`
	PointsAwarded *int                  `json:"points_awarded,omitempty"`
	GuestCount    int                   `json:"guest_count"`
	Organizers    []EventMemberResponse `json:"organizers,omitempty"`
	Guests        []EventMemberResponse `json:"guests,omitempty"`
}

// EventListFilters filtros de query para listados de eventos.
type EventListFilters struct {
	Name      string `query:"name"`
	Location  string `query:"location"`
	Started   *bool  `query:"started"`
	Ended     *bool  `query:"ended"`
	Published *bool  `query:"published"` // solo manager+; regulares ven solo publicados
	ShowFull  bool   `query:"show_full"`
}
