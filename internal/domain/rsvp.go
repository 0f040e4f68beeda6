package domain

import (
	"context"
	"time"
)

// RSVP is the membership marker for one (event, user) pair. Existence of
// the row is the RSVP state: a row exists if and only if the user is in
// the event's attendees.
// swagger:model RSVP
type RSVP struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// RSVPRepository defines storage operations for RSVP markers.
type RSVPRepository interface {
	// Toggle flips the user's attendance for the event atomically: the
	// marker mutation, the rsvp_count change, and the attendees change
	// commit together or not at all. It returns the user's attendance
	// after the commit.
	//
	// Errors: ErrNotFound if the event does not exist, ErrEventFull if a
	// new RSVP would exceed capacity (nothing is written), ErrTxConflict
	// if a concurrent writer invalidated the snapshot (safe to retry).
	Toggle(ctx context.Context, eventID, userID string) (attending bool, err error)
	GetByEventAndUser(ctx context.Context, eventID, userID string) (*RSVP, error)
	ListByUserID(ctx context.Context, userID string) ([]*RSVP, error)
}

// RSVPWithEvent bundles a marker with its event for "events I'm
// attending" listings.
type RSVPWithEvent struct {
	RSVP  *RSVP  `json:"rsvp"`
	Event *Event `json:"event"`
}

// RSVPService defines attendee-facing RSVP operations.
type RSVPService interface {
	// ToggleRSVP adds or cancels the user's RSVP. Conflicting concurrent
	// toggles are retried up to a bounded number of attempts.
	ToggleRSVP(ctx context.Context, eventID, userID string) (attending bool, err error)
	ListAttendees(ctx context.Context, eventID string) ([]*UserProfile, error)
	ListMyAttendingEvents(ctx context.Context, userID string) ([]*RSVPWithEvent, error)
}
