package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"pulse/internal/domain"
)

const eventColumns = `id, name, category, date, start_time, end_time, description, image,
		location_lat, location_lng, address, visibility_radius_km, max_attendees,
		rsvp_count, attendees, creator_id, created_at, updated_at`

type eventRepository struct {
	DB *sql.DB
}

func NewEventRepository(db *sql.DB) domain.EventRepository {
	return &eventRepository{
		DB: db,
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (*domain.Event, error) {
	e := &domain.Event{}
	var descNull, imageNull, addrNull sql.NullString
	var radiusNull sql.NullFloat64
	var maxNull sql.NullInt64
	err := row.Scan(
		&e.ID, &e.Name, &e.Category, &e.Date, &e.StartTime, &e.EndTime,
		&descNull, &imageNull, &e.LocationLat, &e.LocationLng, &addrNull,
		&radiusNull, &maxNull, &e.RSVPCount, pq.Array(&e.Attendees),
		&e.CreatorID, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if descNull.Valid {
		e.Description = &descNull.String
	}
	if imageNull.Valid {
		e.Image = &imageNull.String
	}
	if addrNull.Valid {
		e.Address = &addrNull.String
	}
	if radiusNull.Valid {
		e.VisibilityRadiusKm = &radiusNull.Float64
	}
	if maxNull.Valid {
		m := int(maxNull.Int64)
		e.MaxAttendees = &m
	}
	if e.Attendees == nil {
		e.Attendees = []string{}
	}
	return e, nil
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	query := `
		INSERT INTO events (name, category, date, start_time, end_time, description, image,
			location_lat, location_lng, address, visibility_radius_km, max_attendees,
			rsvp_count, attendees, creator_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 0, '{}', $13, $14, $15)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		e.Name, e.Category, e.Date, e.StartTime, e.EndTime, e.Description, e.Image,
		e.LocationLat, e.LocationLng, e.Address, e.VisibilityRadiusKm, e.MaxAttendees,
		e.CreatorID, e.CreatedAt, e.UpdatedAt,
	).Scan(&e.ID)
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE id = $1`, eventColumns)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

func (r *eventRepository) List(ctx context.Context) ([]*domain.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events ORDER BY date ASC, created_at DESC`, eventColumns)
	return r.queryEvents(ctx, query)
}

func (r *eventRepository) ListByCreatorID(ctx context.Context, creatorID string) ([]*domain.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM events WHERE creator_id = $1 ORDER BY created_at DESC`, eventColumns)
	return r.queryEvents(ctx, query, creatorID)
}

func (r *eventRepository) queryEvents(ctx context.Context, query string, args ...any) ([]*domain.Event, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	events := make([]*domain.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Update applies the non-nil fields of upd. The ledger columns
// (rsvp_count, attendees) and creator_id are never part of the SET
// clause; only RSVPRepository.Toggle writes the ledger.
func (r *eventRepository) Update(ctx context.Context, eventID string, upd domain.EventUpdate) (*domain.Event, error) {
	setClauses := []string{"updated_at = NOW()"}
	args := []any{}
	n := 1
	add := func(column string, value any) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, n))
		args = append(args, value)
		n++
	}
	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Category != nil {
		add("category", *upd.Category)
	}
	if upd.Date != nil {
		add("date", *upd.Date)
	}
	if upd.StartTime != nil {
		add("start_time", *upd.StartTime)
	}
	if upd.EndTime != nil {
		add("end_time", *upd.EndTime)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.Image != nil {
		add("image", *upd.Image)
	}
	if upd.LocationLat != nil {
		add("location_lat", *upd.LocationLat)
	}
	if upd.LocationLng != nil {
		add("location_lng", *upd.LocationLng)
	}
	if upd.Address != nil {
		add("address", *upd.Address)
	}
	if upd.VisibilityRadiusKm != nil {
		add("visibility_radius_km", *upd.VisibilityRadiusKm)
	}
	if upd.MaxAttendees != nil {
		add("max_attendees", *upd.MaxAttendees)
	}
	if n == 1 {
		// No fields to update; just fetch current row
		return r.GetByID(ctx, eventID)
	}
	args = append(args, eventID)
	query := fmt.Sprintf(`
		UPDATE events SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), n, eventColumns)
	e, err := scanEvent(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

// Delete removes the event and its RSVP markers in one transaction, so a
// deleted event never leaves authoritative-looking markers behind.
func (r *eventRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM event_rsvps WHERE event_id = $1`, id); err != nil {
		return err
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return tx.Commit()
}
