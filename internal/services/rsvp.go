package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pulse/internal/domain"
)

// maxToggleAttempts bounds the optimistic-concurrency retry loop. The
// per-event row lock makes conflicts rare, so a handful of attempts is
// plenty before surfacing the failure.
const maxToggleAttempts = 5

type rsvpService struct {
	eventRepo      domain.EventRepository
	rsvpRepo       domain.RSVPRepository
	userRepo       domain.UserRepository
	feed           domain.FeedBroadcaster
	contextTimeout time.Duration
}

// NewRSVPService creates an RSVPService with the given repositories.
// feed may be nil; change notices are then skipped.
func NewRSVPService(
	eventRepo domain.EventRepository,
	rsvpRepo domain.RSVPRepository,
	userRepo domain.UserRepository,
	feed domain.FeedBroadcaster,
	timeout time.Duration,
) domain.RSVPService {
	return &rsvpService{
		eventRepo:      eventRepo,
		rsvpRepo:       rsvpRepo,
		userRepo:       userRepo,
		feed:           feed,
		contextTimeout: timeout,
	}
}

// ToggleRSVP adds or cancels the user's attendance for the event. The
// whole read-check-write runs inside the repository's transaction;
// this layer only guards identity, retries conflicts, and publishes the
// change notice after a successful commit.
func (s *rsvpService) ToggleRSVP(ctx context.Context, eventID, userID string) (bool, error) {
	if userID == "" {
		return false, domain.ErrNotAuthenticated
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	var attending bool
	var err error
	for attempt := 0; attempt < maxToggleAttempts; attempt++ {
		attending, err = s.rsvpRepo.Toggle(ctx, eventID, userID)
		if err == nil {
			s.publishChange(ctx, eventID)
			return attending, nil
		}
		if !errors.Is(err, domain.ErrTxConflict) {
			break
		}
	}
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrEventFull) {
		return false, err
	}
	return false, fmt.Errorf("toggle rsvp: %w", err)
}

func (s *rsvpService) publishChange(ctx context.Context, eventID string) {
	if s.feed == nil {
		return
	}
	// Best effort: the authoritative state is in the store, so a failed
	// re-read just drops the notice payload.
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		event = nil
	}
	s.feed.Publish(domain.FeedChange{
		Kind:    domain.FeedRSVPChanged,
		EventID: eventID,
		Event:   event,
	})
}

func (s *rsvpService) ListAttendees(ctx context.Context, eventID string) ([]*domain.UserProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	users, err := s.userRepo.ListByIDs(ctx, event.Attendees)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	if users == nil {
		users = []*domain.UserProfile{}
	}
	return users, nil
}

func (s *rsvpService) ListMyAttendingEvents(ctx context.Context, userID string) ([]*domain.RSVPWithEvent, error) {
	if userID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	rsvps, err := s.rsvpRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list rsvps: %w", err)
	}

	result := make([]*domain.RSVPWithEvent, 0, len(rsvps))
	for _, rsvp := range rsvps {
		event, err := s.eventRepo.GetByID(ctx, rsvp.EventID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				// Event deleted out from under the marker; skip it.
				continue
			}
			return nil, fmt.Errorf("get event for rsvp: %w", err)
		}
		result = append(result, &domain.RSVPWithEvent{
			RSVP:  rsvp,
			Event: event,
		})
	}
	return result, nil
}
