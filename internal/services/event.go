package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pulse/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	userRepo       domain.UserRepository
	invitationRepo domain.EventInvitationRepository
	emailService   domain.EmailService
	feed           domain.FeedBroadcaster
	contextTimeout time.Duration
}

func NewEventService(
	eventRepo domain.EventRepository,
	userRepo domain.UserRepository,
	invitationRepo domain.EventInvitationRepository,
	emailService domain.EmailService,
	feed domain.FeedBroadcaster,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		invitationRepo: invitationRepo,
		emailService:   emailService,
		feed:           feed,
		contextTimeout: timeout,
	}
}

func (s *eventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if event.CreatorID == "" {
		return domain.ErrNotAuthenticated
	}
	if strings.TrimSpace(event.Name) == "" {
		return fmt.Errorf("%w: event name is required", domain.ErrInvalidInput)
	}

	// A new event always starts with an empty ledger, whatever the
	// caller supplied.
	event.RSVPCount = 0
	event.Attendees = []string{}
	event.CreatedAt = time.Now()
	event.UpdatedAt = time.Now()

	if err := s.eventRepo.Create(ctx, event); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	s.publish(domain.FeedEventCreated, event.ID, event)
	return nil
}

func (s *eventService) GetEventByID(ctx context.Context, eventID string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return event, nil
}

func (s *eventService) ListEvents(ctx context.Context) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.eventRepo.List(ctx)
}

func (s *eventService) ListEventsByCreator(ctx context.Context, creatorID string) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.eventRepo.ListByCreatorID(ctx, creatorID)
}

// UpdateEvent applies a partial update of mutable fields. Only the
// creator may update; the EventUpdate type cannot express rsvp_count,
// attendees, or creator_id, so those survive any update unchanged.
func (s *eventService) UpdateEvent(ctx context.Context, eventID, callerID string, upd domain.EventUpdate) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if callerID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	if event.CreatorID != callerID {
		return nil, domain.ErrForbidden
	}
	updated, err := s.eventRepo.Update(ctx, eventID, upd)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	s.publish(domain.FeedEventUpdated, eventID, updated)
	return updated, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID, callerID string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if callerID == "" {
		return domain.ErrNotAuthenticated
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("get event: %w", err)
	}
	if event.CreatorID != callerID {
		return domain.ErrForbidden
	}
	if err := s.eventRepo.Delete(ctx, eventID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("delete event: %w", err)
	}
	s.publish(domain.FeedEventDeleted, eventID, nil)
	return nil
}

// NearbyEvents builds the viewer's feed: all events filtered by the
// viewer's stored max distance and category subscriptions against their
// current coordinates.
func (s *eventService) NearbyEvents(ctx context.Context, viewerID string, lat, lng float64) ([]*domain.EventWithDistance, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if viewerID == "" {
		return nil, domain.ErrNotAuthenticated
	}
	viewer, err := s.userRepo.GetByID(ctx, viewerID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get viewer: %w", err)
	}
	events, err := s.eventRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return FilterNearby(events, NearbyQuery{
		ViewerID:      viewerID,
		Lat:           lat,
		Lng:           lng,
		MaxDistanceKm: viewer.MaxDistanceKm,
		Categories:    viewer.Preferences,
	}), nil
}

func (s *eventService) SendEventInvitations(ctx context.Context, eventID, callerID string, emails []string) (sent int, failed []string, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if callerID == "" {
		return 0, nil, domain.ErrNotAuthenticated
	}
	event, err := s.eventRepo.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return 0, nil, domain.ErrNotFound
		}
		return 0, nil, fmt.Errorf("get event: %w", err)
	}
	if event.CreatorID != callerID {
		return 0, nil, domain.ErrForbidden
	}

	creatorName := "The host"
	if creator, err := s.userRepo.GetByID(ctx, callerID); err == nil && creator.Name != "" {
		creatorName = creator.Name
	}
	address := ""
	if event.Address != nil {
		address = *event.Address
	}

	for _, email := range emails {
		email = strings.TrimSpace(strings.ToLower(email))
		if email == "" {
			continue
		}
		inv := &domain.EventInvitation{
			EventID: eventID,
			Email:   email,
			SentAt:  time.Now(),
		}
		if err := s.invitationRepo.Create(ctx, inv); err != nil {
			failed = append(failed, email)
			continue
		}
		data := &domain.EventInvitationEmailData{
			Email:       email,
			CreatorName: creatorName,
			EventName:   event.Name,
			EventDate:   event.Date.Format("January 2, 2006"),
			Address:     address,
		}
		if err := s.emailService.SendEventInvitation(ctx, data); err != nil {
			failed = append(failed, email)
			continue
		}
		sent++
	}
	return sent, failed, nil
}

func (s *eventService) publish(kind domain.FeedChangeKind, eventID string, event *domain.Event) {
	if s.feed == nil {
		return
	}
	s.feed.Publish(domain.FeedChange{Kind: kind, EventID: eventID, Event: event})
}
