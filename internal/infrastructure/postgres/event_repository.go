package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Puntos-api/internal/domain"
	"github.com/jhoicas/Puntos-api/internal/domain/entity"
	"github.com/jhoicas/Puntos-api/internal/domain/repository"
)

var _ repository.EventRepository = (*EventRepo)(nil)

// EventRepo implementación del puerto EventRepository sobre PostgreSQL.
type EventRepo struct {
	q   Querier
	now func() time.Time
}

// NewEventRepository construye el adaptador de eventos. Pasar pool o tx (Querier).
func NewEventRepository(q Querier) *EventRepo {
	return &EventRepo{q: q, now: time.Now}
}

const eventColumns = `id, name, description, location, start_time, end_time, capacity, published, points_total, points_remain, points_awarded, created_at`

// Create persiste un evento.
func (r *EventRepo) Create(e *entity.Event) error {
	query := `
		INSERT INTO events (id, name, description, location, start_time, end_time, capacity, published, points_total, points_remain, points_awarded, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(context.Background(), query,
		e.ID, e.Name, e.Description, e.Location, e.StartTime, e.EndTime,
		e.Capacity, e.Published, e.PointsTotal, e.PointsRemain, e.PointsAwarded, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// GetByID obtiene un evento por ID.
func (r *EventRepo) GetByID(id string) (*entity.Event, error) {
	return r.getOne(`SELECT `+eventColumns+` FROM events WHERE id = $1`, id)
}

// GetForUpdate bloquea la fila del evento (presupuesto); usar solo dentro de una tx.
func (r *EventRepo) GetForUpdate(id string) (*entity.Event, error) {
	return r.getOne(`SELECT `+eventColumns+` FROM events WHERE id = $1 FOR UPDATE`, id)
}

func (r *EventRepo) getOne(query, id string) (*entity.Event, error) {
	row := r.q.QueryRow(context.Background(), query, id)
	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// Update actualiza un evento (incluido el presupuesto; los premios van por ApplyAward).
func (r *EventRepo) Update(e *entity.Event) error {
	query := `
		UPDATE events SET name = $2, description = $3, location = $4, start_time = $5,
			end_time = $6, capacity = $7, published = $8, points_total = $9,
			points_remain = $10, points_awarded = $11
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		e.ID, e.Name, e.Description, e.Location, e.StartTime, e.EndTime,
		e.Capacity, e.Published, e.PointsTotal, e.PointsRemain, e.PointsAwarded,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return nil
}

// Delete elimina un evento por ID.
func (r *EventRepo) Delete(id string) error {
	_, err := r.q.Exec(context.Background(), `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

// List lista eventos con filtros y paginación, junto con el total sin paginar.
func (r *EventRepo) List(f repository.EventFilter, limit, offset int) ([]*entity.Event, int, error) {
	where := ` WHERE 1=1`
	args := []any{}
	pos := 1
	now := r.now()
	if f.Name != "" {
		where += fmt.Sprintf(" AND name ILIKE $%d", pos)
		args = append(args, "%"+f.Name+"%")
		pos++
	}
	if f.Location != "" {
		where += fmt.Sprintf(" AND location ILIKE $%d", pos)
		args = append(args, "%"+f.Location+"%")
		pos++
	}
	if f.Started != nil {
		op := ">"
		if *f.Started {
			op = "<="
		}
		where += fmt.Sprintf(" AND start_time %s $%d", op, pos)
		args = append(args, now)
		pos++
	}
	if f.Ended != nil {
		op := ">="
		if *f.Ended {
			op = "<"
		}
		where += fmt.Sprintf(" AND end_time %s $%d", op, pos)
		args = append(args, now)
		pos++
	}
	if f.Published != nil {
		where += fmt.Sprintf(" AND published = $%d", pos)
		args = append(args, *f.Published)
		pos++
	}
	if !f.ShowFull {
		where += ` AND (capacity IS NULL OR capacity > (SELECT COUNT(*) FROM event_guests g WHERE g.event_id = events.id))`
	}

	var total int
	if err := r.q.QueryRow(context.Background(), `SELECT COUNT(*) FROM events`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	query := `SELECT ` + eventColumns + ` FROM events` + where +
		fmt.Sprintf(" ORDER BY start_time LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()
	var list []*entity.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan event: %w", err)
		}
		list = append(list, e)
	}
	return list, total, rows.Err()
}

// ApplyAward descuenta amount de points_remain y lo suma a points_awarded en
// una sola sentencia condicional. Devuelve false si el presupuesto no alcanza.
func (r *EventRepo) ApplyAward(id string, amount int) (bool, error) {
	tag, err := r.q.Exec(context.Background(), `
		UPDATE events SET points_remain = points_remain - $2, points_awarded = points_awarded + $2
		WHERE id = $1 AND points_remain >= $2`, id, amount)
	if err != nil {
		return false, fmt.Errorf("apply award: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// AddOrganizer agrega un organizador al evento.
func (r *EventRepo) AddOrganizer(eventID, userID string) error {
	_, err := r.q.Exec(context.Background(), `
		INSERT INTO event_organizers (event_id, user_id) VALUES ($1, $2)`, eventID, userID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("add organizer: %w", err)
	}
	return nil
}

// RemoveOrganizer quita un organizador del evento.
func (r *EventRepo) RemoveOrganizer(eventID, userID string) error {
	_, err := r.q.Exec(context.Background(), `
		DELETE FROM event_organizers WHERE event_id = $1 AND user_id = $2`, eventID, userID)
	if err != nil {
		return fmt.Errorf("remove organizer: %w", err)
	}
	return nil
}

// IsOrganizer indica si el usuario organiza el evento.
func (r *EventRepo) IsOrganizer(eventID, userID string) (bool, error) {
	return r.isMember(`event_organizers`, eventID, userID)
}

// ListOrganizers lista los organizadores del evento.
func (r *EventRepo) ListOrganizers(eventID string) ([]*entity.User, error) {
	return r.listMembers(`event_organizers`, eventID)
}

// AddGuest agrega un invitado al evento.
func (r *EventRepo) AddGuest(eventID, userID string) error {
	_, err := r.q.Exec(context.Background(), `
		INSERT INTO event_guests (event_id, user_id) VALUES ($1, $2)`, eventID, userID)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConflict
		}
		return fmt.Errorf("add guest: %w", err)
	}
	return nil
}

// RemoveGuest quita un invitado del evento.
func (r *EventRepo) RemoveGuest(eventID, userID string) error {
	_, err := r.q.Exec(context.Background(), `
		DELETE FROM event_guests WHERE event_id = $1 AND user_id = $2`, eventID, userID)
	if err != nil {
		return fmt.Errorf("remove guest: %w", err)
	}
	return nil
}

// IsGuest indica si el usuario es invitado del evento.
func (r *EventRepo) IsGuest(eventID, userID string) (bool, error) {
	return r.isMember(`event_guests`, eventID, userID)
}

// ListGuests lista los invitados del evento.
func (r *EventRepo) ListGuests(eventID string) ([]*entity.User, error) {
	return r.listMembers(`event_guests`, eventID)
}

// CountGuests cuenta los invitados del evento.
func (r *EventRepo) CountGuests(eventID string) (int, error) {
	var count int
	err := r.q.QueryRow(context.Background(),
		`SELECT COUNT(*) FROM event_guests WHERE event_id = $1`, eventID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count guests: %w", err)
	}
	return count, nil
}

func (r *EventRepo) isMember(table, eventID, userID string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(context.Background(),
		`SELECT EXISTS (SELECT 1 FROM `+table+` WHERE event_id = $1 AND user_id = $2)`,
		eventID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("is member of %s: %w", table, err)
	}
	return exists, nil
}

func (r *EventRepo) listMembers(table, eventID string) ([]*entity.User, error) {
	rows, err := r.q.Query(context.Background(), `
		SELECT `+userColumns+` FROM users
		JOIN `+table+` m ON m.user_id = users.id
		WHERE m.event_id = $1 ORDER BY users.name`, eventID)
	if err != nil {
		return nil, fmt.Errorf("list members of %s: %w", table, err)
	}
	defer rows.Close()
	var list []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		list = append(list, u)
	}
	return list, rows.Err()
}

func scanEvent(row pgx.Row) (*entity.Event, error) {
	var e entity.Event
	if err := row.Scan(
		&e.ID, &e.Name, &e.Description, &e.Location, &e.StartTime, &e.EndTime,
		&e.Capacity, &e.Published, &e.PointsTotal, &e.PointsRemain, &e.PointsAwarded,
		&e.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &e, nil
}
