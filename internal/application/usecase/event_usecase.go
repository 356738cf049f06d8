package usecase

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/Puntos-api/internal/application/dto"
	"github.com/jhoicas/Puntos-api/internal/domain"
	"github.com/jhoicas/Puntos-api/internal/domain/entity"
	"github.com/jhoicas/Puntos-api/internal/domain/repository"
)

// EventUseCase reglas de negocio para eventos: CRUD con campos congelados tras
// el inicio, gestión de organizadores e invitados con capacidad, y vistas de
// presupuesto recortadas por rol.
type EventUseCase struct {
	eventRepo repository.EventRepository
	userRepo  repository.UserRepository
	now       func() time.Time
}

// NewEventUseCase construye el caso de uso de eventos.
func NewEventUseCase(eventRepo repository.EventRepository, userRepo repository.UserRepository) *EventUseCase {
	return &EventUseCase{eventRepo: eventRepo, userRepo: userRepo, now: time.Now}
}

// WithClock reemplaza el reloj (para tests).
func (uc *EventUseCase) WithClock(now func() time.Time) *EventUseCase {
	uc.now = now
	return uc
}

// Create crea un evento sin publicar con el presupuesto completo disponible.
func (uc *EventUseCase) Create(in dto.CreateEventRequest) (*dto.EventResponse, error) {
	if in.Name == "" || in.Location == "" {
		return nil, fmt.Errorf("%w: name y location son requeridos", domain.ErrValidation)
	}
	if !in.EndTime.After(in.StartTime) {
		return nil, fmt.Errorf("%w: end_time debe ser posterior a start_time", domain.ErrValidation)
	}
	if in.EndTime.Before(uc.now()) {
		return nil, fmt.Errorf("%w: end_time no puede estar en el pasado", domain.ErrValidation)
	}
	if in.Points <= 0 {
		return nil, fmt.Errorf("%w: points debe ser positivo", domain.ErrValidation)
	}
	if in.Capacity != nil && *in.Capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity debe ser positiva", domain.ErrValidation)
	}
	e := &entity.Event{
		ID:           uuid.New().String(),
		Name:         in.Name,
		Description:  in.Description,
		Location:     in.Location,
		StartTime:    in.StartTime,
		EndTime:      in.EndTime,
		Capacity:     in.Capacity,
		PointsTotal:  in.Points,
		PointsRemain: in.Points,
		CreatedAt:    uc.now(),
	}
	if err := uc.eventRepo.Create(e); err != nil {
		return nil, err
	}
	return uc.toEventResponse(e, true, true)
}

// Get devuelve un evento. Los regulares solo ven eventos publicados y sin los
// campos de presupuesto; managers y organizadores del evento ven todo.
func (uc *EventUseCase) Get(actor Actor, id string) (*dto.EventResponse, error) {
	e, err := uc.eventRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, domain.ErrNotFound
	}
	privileged, err := uc.privileged(actor, e.ID)
	if err != nil {
		return nil, err
	}
	if !privileged && !e.Published {
		return nil, domain.ErrNotFound
	}
	return uc.toEventResponse(e, privileged, true)
}

// List lista eventos. Los regulares solo ven publicados y, salvo show_full,
// con cupo disponible; published es un filtro exclusivo de manager+.
func (uc *EventUseCase) List(actor Actor, f dto.EventListFilters, page dto.PageRequest) (*dto.ListResponse[dto.EventResponse], error) {
	manager := actor.Role.AtLeast(entity.RoleManager)
	if f.Started != nil && f.Ended != nil {
		return nil, fmt.Errorf("%w: started y ended son excluyentes", domain.ErrValidation)
	}
	filter := repository.EventFilter{
		Name:     f.Name,
		Location: f.Location,
		Started:  f.Started,
		Ended:    f.Ended,
		ShowFull: f.ShowFull,
	}
	if manager {
		filter.Published = f.Published
		filter.ShowFull = true
	} else {
		if f.Published != nil {
			return nil, fmt.Errorf("%w: published requiere rol manager", domain.ErrValidation)
		}
		published := true
		filter.Published = &published
	}
	events, total, err := uc.eventRepo.List(filter, page.Limit, page.Offset())
	if err != nil {
		return nil, err
	}
	out := &dto.ListResponse[dto.EventResponse]{Count: total, Results: make([]dto.EventResponse, 0, len(events))}
	for _, e := range events {
		resp, err := uc.toEventResponse(e, manager, false)
		if err != nil {
			return nil, err
		}
		out.Results = append(out.Results, *resp)
	}
	return out, nil
}

// Update aplica el parche de PATCH /events/:id. Organizadores pueden editar
// los campos descriptivos mientras el evento no comience; points y published
// quedan reservados a managers. El presupuesto se reajusta manteniendo
// remain = total - awarded, sin bajar de cero.
func (uc *EventUseCase) Update(actor Actor, id string, in dto.UpdateEventRequest) (*dto.EventResponse, error) {
	e, err := uc.eventRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, domain.ErrNotFound
	}
	privileged, err := uc.privileged(actor, e.ID)
	if err != nil {
		return nil, err
	}
	if !privileged {
		return nil, domain.ErrForbidden
	}
	manager := actor.Role.AtLeast(entity.RoleManager)
	now := uc.now()
	started := e.Started(now)

	descriptive := in.Name != nil || in.Description != nil || in.Location != nil ||
		in.StartTime != nil || in.EndTime != nil || in.Capacity != nil
	if descriptive && started {
		return nil, fmt.Errorf("%w: los campos descriptivos se congelan al comenzar el evento", domain.ErrValidation)
	}

	if in.Name != nil {
		if *in.Name == "" {
			return nil, fmt.Errorf("%w: name no puede ser vacío", domain.ErrValidation)
		}
		e.Name = *in.Name
	}
	if in.Description != nil {
		e.Description = *in.Description
	}
	if in.Location != nil {
		if *in.Location == "" {
			return nil, fmt.Errorf("%w: location no puede ser vacía", domain.ErrValidation)
		}
		e.Location = *in.Location
	}
	if in.StartTime != nil {
		if in.StartTime.Before(now) {
			return nil, fmt.Errorf("%w: start_time no puede estar en el pasado", domain.ErrValidation)
		}
		e.StartTime = *in.StartTime
	}
	if in.EndTime != nil {
		if in.EndTime.Before(now) {
			return nil, fmt.Errorf("%w: end_time no puede estar en el pasado", domain.ErrValidation)
		}
		e.EndTime = *in.EndTime
	}
	if !e.EndTime.After(e.StartTime) {
		return nil, fmt.Errorf("%w: end_time debe ser posterior a start_time", domain.ErrValidation)
	}
	if in.Capacity != nil {
		if *in.Capacity <= 0 {
			return nil, fmt.Errorf("%w: capacity debe ser positiva", domain.ErrValidation)
		}
		guests, err := uc.eventRepo.CountGuests(e.ID)
		if err != nil {
			return nil, err
		}
		if *in.Capacity < guests {
			return nil, fmt.Errorf("%w: capacity no puede ser menor que los invitados actuales", domain.ErrValidation)
		}
		e.Capacity = in.Capacity
	}
	if in.Points != nil {
		if !manager {
			return nil, domain.ErrForbidden
		}
		remain := *in.Points - e.PointsAwarded
		if remain < 0 {
			return nil, fmt.Errorf("%w: points no puede ser menor que lo ya otorgado", domain.ErrValidation)
		}
		e.PointsTotal = *in.Points
		e.PointsRemain = remain
	}
	if in.Published != nil {
		if !manager {
			return nil, domain.ErrForbidden
		}
		if !*in.Published && e.Published {
			return nil, fmt.Errorf("%w: published no puede volver a false", domain.ErrValidation)
		}
		e.Published = *in.Published
	}

	if err := uc.eventRepo.Update(e); err != nil {
		return nil, err
	}
	return uc.toEventResponse(e, privileged, true)
}

// Delete elimina un evento aún no publicado (manager o superior).
func (uc *EventUseCase) Delete(id string) error {
	e, err := uc.eventRepo.GetByID(id)
	if err != nil {
		return err
	}
	if e == nil {
		return domain.ErrNotFound
	}
	if e.Published {
		return fmt.Errorf("%w: no se puede eliminar un evento publicado", domain.ErrForbidden)
	}
	return uc.eventRepo.Delete(id)
}

// AddOrganizer agrega un organizador por external_id (manager o superior).
// El usuario no puede ser a la vez invitado del mismo evento.
func (uc *EventUseCase) AddOrganizer(eventID, externalID string) (*dto.EventResponse, error) {
	e, user, err := uc.eventAndUser(eventID, externalID)
	if err != nil {
		return nil, err
	}
	if e.Ended(uc.now()) {
		return nil, fmt.Errorf("%w: el evento ya terminó", domain.ErrGone)
	}
	isGuest, err := uc.eventRepo.IsGuest(e.ID, user.ID)
	if err != nil {
		return nil, err
	}
	if isGuest {
		return nil, fmt.Errorf("%w: el usuario ya es invitado del evento", domain.ErrConflict)
	}
	if err := uc.eventRepo.AddOrganizer(e.ID, user.ID); err != nil {
		return nil, err
	}
	return uc.toEventResponse(e, true, true)
}

// RemoveOrganizer quita un organizador (manager o superior).
func (uc *EventUseCase) RemoveOrganizer(eventID, userID string) error {
	e, err := uc.eventRepo.GetByID(eventID)
	if err != nil {
		return err
	}
	if e == nil {
		return domain.ErrNotFound
	}
	ok, err := uc.eventRepo.IsOrganizer(e.ID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return uc.eventRepo.RemoveOrganizer(e.ID, userID)
}

// AddGuest agrega un invitado por external_id (manager u organizador del
// evento). Respeta capacidad y fin del evento; el usuario no puede ser
// organizador del mismo evento.
func (uc *EventUseCase) AddGuest(actor Actor, eventID, externalID string) (*dto.EventResponse, error) {
	e, user, err := uc.eventAndUser(eventID, externalID)
	if err != nil {
		return nil, err
	}
	privileged, err := uc.privileged(actor, e.ID)
	if err != nil {
		return nil, err
	}
	if !privileged {
		return nil, domain.ErrForbidden
	}
	if err := uc.addGuest(e, user.ID); err != nil {
		return nil, err
	}
	return uc.toEventResponse(e, privileged, true)
}

// RemoveGuest quita un invitado (manager o superior).
func (uc *EventUseCase) RemoveGuest(eventID, userID string) error {
	e, err := uc.eventRepo.GetByID(eventID)
	if err != nil {
		return err
	}
	if e == nil {
		return domain.ErrNotFound
	}
	ok, err := uc.eventRepo.IsGuest(e.ID, userID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return uc.eventRepo.RemoveGuest(e.ID, userID)
}

// RSVP inscribe al usuario autenticado como invitado de un evento publicado.
func (uc *EventUseCase) RSVP(actor Actor, eventID string) (*dto.EventResponse, error) {
	e, err := uc.eventRepo.GetByID(eventID)
	if err != nil {
		return nil, err
	}
	if e == nil || !e.Published {
		return nil, domain.ErrNotFound
	}
	if err := uc.addGuest(e, actor.ID); err != nil {
		return nil, err
	}
	return uc.toEventResponse(e, false, true)
}

// CancelRSVP retira al usuario autenticado de la lista de invitados mientras
// el evento no haya terminado.
func (uc *EventUseCase) CancelRSVP(actor Actor, eventID string) error {
	e, err := uc.eventRepo.GetByID(eventID)
	if err != nil {
		return err
	}
	if e == nil || !e.Published {
		return domain.ErrNotFound
	}
	if e.Ended(uc.now()) {
		return fmt.Errorf("%w: el evento ya terminó", domain.ErrGone)
	}
	ok, err := uc.eventRepo.IsGuest(e.ID, actor.ID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return uc.eventRepo.RemoveGuest(e.ID, actor.ID)
}

func (uc *EventUseCase) addGuest(e *entity.Event, userID string) error {
	if e.Ended(uc.now()) {
		return fmt.Errorf("%w: el evento ya terminó", domain.ErrGone)
	}
	isOrganizer, err := uc.eventRepo.IsOrganizer(e.ID, userID)
	if err != nil {
		return err
	}
	if isOrganizer {
		return fmt.Errorf("%w: el usuario es organizador del evento", domain.ErrConflict)
	}
	isGuest, err := uc.eventRepo.IsGuest(e.ID, userID)
	if err != nil {
		return err
	}
	if isGuest {
		return fmt.Errorf("%w: el usuario ya es invitado del evento", domain.ErrConflict)
	}
	guests, err := uc.eventRepo.CountGuests(e.ID)
	if err != nil {
		return err
	}
	if e.Full(guests) {
		return domain.ErrEventFull
	}
	return uc.eventRepo.AddGuest(e.ID, userID)
}

// privileged indica si el actor ve los campos de presupuesto: manager+ o
// organizador del evento.
func (uc *EventUseCase) privileged(actor Actor, eventID string) (bool, error) {
	if actor.Role.AtLeast(entity.RoleManager) {
		return true, nil
	}
	return uc.eventRepo.IsOrganizer(eventID, actor.ID)
}

func (uc *EventUseCase) eventAndUser(eventID, externalID string) (*entity.Event, *entity.User, error) {
	e, err := uc.eventRepo.GetByID(eventID)
	if err != nil {
		return nil, nil, err
	}
	if e == nil {
		return nil, nil, domain.ErrNotFound
	}
	user, err := uc.userRepo.GetByExternalID(externalID)
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, domain.ErrUserNotFound
	}
	return e, user, nil
}

func (uc *EventUseCase) toEventResponse(e *entity.Event, privileged, members bool) (*dto.EventResponse, error) {
	guests, err := uc.eventRepo.CountGuests(e.ID)
	if err != nil {
		return nil, err
	}
	out := &dto.EventResponse{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		Location:    e.Location,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		Capacity:    e.Capacity,
		GuestCount:  guests,
	}
	if privileged {
		published, total, remain, awarded := e.Published, e.PointsTotal, e.PointsRemain, e.PointsAwarded
		out.Published = &published
		out.PointsTotal = &total
		out.PointsRemain = &remain
		out.PointsAwarded = &awarded
	}
	if members {
		organizers, err := uc.eventRepo.ListOrganizers(e.ID)
		if err != nil {
			return nil, err
		}
		out.Organizers = toMemberResponses(organizers)
		if privileged {
			guestUsers, err := uc.eventRepo.ListGuests(e.ID)
			if err != nil {
				return nil, err
			}
			out.Guests = toMemberResponses(guestUsers)
		}
	}
	return out, nil
}

func toMemberResponses(users []*entity.User) []dto.EventMemberResponse {
	out := make([]dto.EventMemberResponse, 0, len(users))
	for _, u := range users {
		out = append(out, dto.EventMemberResponse{ID: u.ID, ExternalID: u.ExternalID, Name: u.Name})
	}
	return out
}
