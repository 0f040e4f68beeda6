package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors shared across services and repositories.
var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrInvalidInput     = errors.New("invalid input")
	// ErrEventFull is returned when a new RSVP would exceed max_attendees.
	ErrEventFull = errors.New("event has reached its maximum attendance")
	// ErrTxConflict signals that a concurrent writer invalidated the
	// transaction snapshot. Callers retry; it is never surfaced as-is.
	ErrTxConflict = errors.New("transaction conflict")
)

// Event represents a hostable gathering ("Pulse").
//
// RSVPCount, Attendees, and MaxAttendees form the capacity ledger: they
// are mutated only inside RSVPRepository.Toggle, and after any committed
// toggle RSVPCount == len(Attendees), and RSVPCount <= MaxAttendees when
// MaxAttendees is set. CreatorID is fixed at creation.
// swagger:model Event
type Event struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Category           string    `json:"category"`
	Date               time.Time `json:"date"`
	StartTime          string    `json:"start_time"`
	EndTime            string    `json:"end_time"`
	Description        *string   `json:"description,omitempty"`
	Image              *string   `json:"image,omitempty"`
	LocationLat        float64   `json:"location_lat"`
	LocationLng        float64   `json:"location_lng"`
	Address            *string   `json:"address,omitempty"`
	VisibilityRadiusKm *float64  `json:"visibility_radius_km,omitempty"`
	MaxAttendees       *int      `json:"max_attendees,omitempty"`
	RSVPCount          int       `json:"rsvp_count"`
	Attendees          []string  `json:"attendees"`
	CreatorID          string    `json:"creator_id"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// IsFull reports whether a new RSVP would exceed the event's capacity.
// Events without MaxAttendees are unbounded.
func (e *Event) IsFull() bool {
	return e.MaxAttendees != nil && e.RSVPCount >= *e.MaxAttendees
}

// EventUpdate carries the mutable fields for a partial event update.
// Nil fields are left unchanged. The ledger fields and CreatorID are not
// representable here: updates cannot touch them.
type EventUpdate struct {
	Name               *string
	Category           *string
	Date               *time.Time
	StartTime          *string
	EndTime            *string
	Description        *string
	Image              *string
	LocationLat        *float64
	LocationLng        *float64
	Address            *string
	VisibilityRadiusKm *float64
	MaxAttendees       *int
}

// EventRepository defines the interface for event storage.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id string) (*Event, error)
	List(ctx context.Context) ([]*Event, error)
	ListByCreatorID(ctx context.Context, creatorID string) ([]*Event, error)
	Update(ctx context.Context, eventID string, upd EventUpdate) (*Event, error)
	// Delete removes the event and all of its RSVP markers in one
	// transaction.
	Delete(ctx context.Context, id string) error
}

// EventService defines event lifecycle operations. Update and Delete are
// creator-only.
type EventService interface {
	CreateEvent(ctx context.Context, event *Event) error
	GetEventByID(ctx context.Context, eventID string) (*Event, error)
	ListEvents(ctx context.Context) ([]*Event, error)
	ListEventsByCreator(ctx context.Context, creatorID string) ([]*Event, error)
	UpdateEvent(ctx context.Context, eventID, callerID string, upd EventUpdate) (*Event, error)
	DeleteEvent(ctx context.Context, eventID, callerID string) error
	// NearbyEvents returns the feed for the viewer at (lat, lng),
	// filtered by the viewer's stored preferences.
	NearbyEvents(ctx context.Context, viewerID string, lat, lng float64) ([]*EventWithDistance, error)
	SendEventInvitations(ctx context.Context, eventID, callerID string, emails []string) (sent int, failed []string, err error)
}

// EventWithDistance is a feed entry: an event plus its great-circle
// distance from the viewer in kilometers.
type EventWithDistance struct {
	Event      *Event  `json:"event"`
	DistanceKm float64 `json:"distance_km"`
}
