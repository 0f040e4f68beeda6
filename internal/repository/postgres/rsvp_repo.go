package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"pulse/internal/domain"
)

// Postgres error codes that mean a concurrent transaction invalidated
// ours. Both are safe to retry from scratch.
const (
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
)

type rsvpRepository struct {
	DB *sql.DB
}

func NewRSVPRepository(db *sql.DB) domain.RSVPRepository {
	return &rsvpRepository{
		DB: db,
	}
}

// Toggle flips the user's attendance for the event in a single
// serializable transaction. The event row is locked first (FOR UPDATE),
// which serializes toggles per event: concurrent callers on the same
// event queue on the row lock, callers on different events never
// contend. The capacity check and the ledger writes therefore see the
// same snapshot, so rsvp_count can never transiently exceed
// max_attendees and no update is lost.
func (r *rsvpRepository) Toggle(ctx context.Context, eventID, userID string) (bool, error) {
	tx, err := r.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return false, fmt.Errorf("begin toggle tx: %w", err)
	}
	defer tx.Rollback()

	var rsvpCount int
	var maxAttendees sql.NullInt64
	err = tx.QueryRowContext(ctx,
		`SELECT rsvp_count, max_attendees FROM events WHERE id = $1 FOR UPDATE`,
		eventID,
	).Scan(&rsvpCount, &maxAttendees)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, domain.ErrNotFound
		}
		return false, mapTxError(err)
	}

	var markerID string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM event_rsvps WHERE event_id = $1 AND user_id = $2`,
		eventID, userID,
	).Scan(&markerID)

	var attending bool
	switch {
	case err == nil:
		// Marker exists: this is a cancellation. Always permitted, even
		// at capacity, because it only decreases load.
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM event_rsvps WHERE id = $1`, markerID); err != nil {
			return false, mapTxError(err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE events
			 SET rsvp_count = rsvp_count - 1,
			     attendees = array_remove(attendees, $2),
			     updated_at = NOW()
			 WHERE id = $1`,
			eventID, userID); err != nil {
			return false, mapTxError(err)
		}
		attending = false

	case errors.Is(err, sql.ErrNoRows):
		// Marker absent: this is a new RSVP. Reject before any write if
		// the event is at capacity.
		if maxAttendees.Valid && int64(rsvpCount) >= maxAttendees.Int64 {
			return false, domain.ErrEventFull
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO event_rsvps (event_id, user_id, created_at) VALUES ($1, $2, NOW())`,
			eventID, userID); err != nil {
			return false, mapTxError(err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE events
			 SET rsvp_count = rsvp_count + 1,
			     attendees = array_append(attendees, $2),
			     updated_at = NOW()
			 WHERE id = $1`,
			eventID, userID); err != nil {
			return false, mapTxError(err)
		}
		attending = true

	default:
		return false, mapTxError(err)
	}

	if err := tx.Commit(); err != nil {
		return false, mapTxError(err)
	}
	return attending, nil
}

// mapTxError translates retryable Postgres failures into ErrTxConflict.
func mapTxError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pqSerializationFailure, pqDeadlockDetected:
			return fmt.Errorf("%w: %s", domain.ErrTxConflict, pqErr.Message)
		}
	}
	return err
}

func (r *rsvpRepository) GetByEventAndUser(ctx context.Context, eventID, userID string) (*domain.RSVP, error) {
	query := `
		SELECT id, event_id, user_id, created_at
		FROM event_rsvps
		WHERE event_id = $1 AND user_id = $2
	`
	rsvp := &domain.RSVP{}
	err := r.DB.QueryRowContext(ctx, query, eventID, userID).
		Scan(&rsvp.ID, &rsvp.EventID, &rsvp.UserID, &rsvp.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return rsvp, nil
}

func (r *rsvpRepository) ListByUserID(ctx context.Context, userID string) ([]*domain.RSVP, error) {
	query := `
		SELECT id, event_id, user_id, created_at
		FROM event_rsvps
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rsvps []*domain.RSVP
	for rows.Next() {
		rsvp := &domain.RSVP{}
		if err := rows.Scan(&rsvp.ID, &rsvp.EventID, &rsvp.UserID, &rsvp.CreatedAt); err != nil {
			return nil, err
		}
		rsvps = append(rsvps, rsvp)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if rsvps == nil {
		rsvps = []*domain.RSVP{}
	}
	return rsvps, nil
}
