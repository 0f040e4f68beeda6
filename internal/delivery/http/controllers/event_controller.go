package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"pulse/internal/delivery/http/helpers"
	"pulse/internal/delivery/http/middleware"
	"pulse/internal/domain"
)

// uuidRegexEvent matches a canonical UUID string (8-4-4-4-12 hex).
var uuidRegexEvent = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

const eventDateLayout = "2006-01-02"

// timeOfDayRegex matches HH:MM in 24h form.
var timeOfDayRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Name               string   `json:"name"`
	Category           string   `json:"category"`
	Date               string   `json:"date"`
	StartTime          string   `json:"start_time"`
	EndTime            string   `json:"end_time"`
	Description        *string  `json:"description"`
	Image              *string  `json:"image"`
	LocationLat        float64  `json:"location_lat"`
	LocationLng        float64  `json:"location_lng"`
	Address            *string  `json:"address"`
	VisibilityRadiusKm *float64 `json:"visibility_radius_km"`
	MaxAttendees       *int     `json:"max_attendees"`

	parsedDate time.Time
}

// Validate implements helpers.Validator.
func (r *CreateEventRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(r.Name) == "" {
		errs = append(errs, "name is required")
	}
	if strings.TrimSpace(r.Category) == "" {
		errs = append(errs, "category is required")
	}
	d, err := time.Parse(eventDateLayout, r.Date)
	if err != nil {
		errs = append(errs, "date must be YYYY-MM-DD")
	} else {
		r.parsedDate = d
	}
	if !timeOfDayRegex.MatchString(r.StartTime) {
		errs = append(errs, "start_time must be HH:MM")
	}
	if !timeOfDayRegex.MatchString(r.EndTime) {
		errs = append(errs, "end_time must be HH:MM")
	}
	if r.LocationLat < -90 || r.LocationLat > 90 {
		errs = append(errs, "location_lat must be between -90 and 90")
	}
	if r.LocationLng < -180 || r.LocationLng > 180 {
		errs = append(errs, "location_lng must be between -180 and 180")
	}
	if r.VisibilityRadiusKm != nil && *r.VisibilityRadiusKm <= 0 {
		errs = append(errs, "visibility_radius_km must be positive")
	}
	if r.MaxAttendees != nil && *r.MaxAttendees < 1 {
		errs = append(errs, "max_attendees must be at least 1")
	}
	return errs
}

// EventSuccessResponse is the success envelope for endpoints returning a single event.
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// EventListSuccessResponse is the success envelope for endpoints returning event lists.
type EventListSuccessResponse struct {
	Data  []*domain.Event   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CreateEvent godoc
// @Summary Create a new event
// @Description Creates an event owned by the authenticated user. The RSVP ledger starts empty.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.CreateEventRequest true "Event payload"
// @Success 201 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	event := &domain.Event{
		Name:               strings.TrimSpace(req.Name),
		Category:           strings.TrimSpace(req.Category),
		Date:               req.parsedDate,
		StartTime:          req.StartTime,
		EndTime:            req.EndTime,
		Description:        req.Description,
		Image:              req.Image,
		LocationLat:        req.LocationLat,
		LocationLng:        req.LocationLng,
		Address:            req.Address,
		VisibilityRadiusKm: req.VisibilityRadiusKm,
		MaxAttendees:       req.MaxAttendees,
		CreatorID:          userID,
	}
	if err := c.Service.CreateEvent(r.Context(), event); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// GetEvent godoc
// @Summary Get an event by ID
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := c.eventIDFromPath(w, r)
	if !ok {
		return
	}
	event, err := c.Service.GetEventByID(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// ListEvents godoc
// @Summary List all events
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.EventListSuccessResponse
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := c.Service.ListEvents(r.Context())
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	if events == nil {
		events = []*domain.Event{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// NearbyEventsSuccessResponse is the success envelope for GET /events/nearby (200).
type NearbyEventsSuccessResponse struct {
	Data  []*domain.EventWithDistance `json:"data"`
	Error *helpers.APIError           `json:"error"`
}

// NearbyEvents godoc
// @Summary List events near the caller
// @Description Filters events by the caller's stored max distance and category preferences against the supplied coordinates. The caller's own events are excluded.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param lat query number true "Viewer latitude"
// @Param lng query number true "Viewer longitude"
// @Success 200 {object} controllers.NearbyEventsSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/nearby [get]
func (c *EventController) NearbyEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "lat must be a number between -90 and 90")
		return
	}
	lng, err := strconv.ParseFloat(r.URL.Query().Get("lng"), 64)
	if err != nil || lng < -180 || lng > 180 {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "lng must be a number between -180 and 180")
		return
	}

	items, err := c.Service.NearbyEvents(r.Context(), userID, lat, lng)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	if items == nil {
		items = []*domain.EventWithDistance{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, items)
}

// ListMyEvents godoc
// @Summary List events created by the caller
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.EventListSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /me/events [get]
func (c *EventController) ListMyEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	events, err := c.Service.ListEventsByCreator(r.Context(), userID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	if events == nil {
		events = []*domain.Event{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// UpdateEventRequest is the request body for PATCH /events/{eventID}.
// Only mutable fields are accepted; unknown fields (including rsvp_count,
// attendees, creator_id) are rejected by the decoder.
type UpdateEventRequest struct {
	Name               *string  `json:"name"`
	Category           *string  `json:"category"`
	Date               *string  `json:"date"`
	StartTime          *string  `json:"start_time"`
	EndTime            *string  `json:"end_time"`
	Description        *string  `json:"description"`
	Image              *string  `json:"image"`
	LocationLat        *float64 `json:"location_lat"`
	LocationLng        *float64 `json:"location_lng"`
	Address            *string  `json:"address"`
	VisibilityRadiusKm *float64 `json:"visibility_radius_km"`
	MaxAttendees       *int     `json:"max_attendees"`

	parsedDate *time.Time
}

// Validate implements helpers.Validator.
func (r *UpdateEventRequest) Validate() []string {
	var errs []string
	if r.Name != nil && strings.TrimSpace(*r.Name) == "" {
		errs = append(errs, "name must not be empty")
	}
	if r.Category != nil && strings.TrimSpace(*r.Category) == "" {
		errs = append(errs, "category must not be empty")
	}
	if r.Date != nil {
		d, err := time.Parse(eventDateLayout, *r.Date)
		if err != nil {
			errs = append(errs, "date must be YYYY-MM-DD")
		} else {
			r.parsedDate = &d
		}
	}
	if r.StartTime != nil && !timeOfDayRegex.MatchString(*r.StartTime) {
		errs = append(errs, "start_time must be HH:MM")
	}
	if r.EndTime != nil && !timeOfDayRegex.MatchString(*r.EndTime) {
		errs = append(errs, "end_time must be HH:MM")
	}
	if r.LocationLat != nil && (*r.LocationLat < -90 || *r.LocationLat > 90) {
		errs = append(errs, "location_lat must be between -90 and 90")
	}
	if r.LocationLng != nil && (*r.LocationLng < -180 || *r.LocationLng > 180) {
		errs = append(errs, "location_lng must be between -180 and 180")
	}
	if r.VisibilityRadiusKm != nil && *r.VisibilityRadiusKm <= 0 {
		errs = append(errs, "visibility_radius_km must be positive")
	}
	if r.MaxAttendees != nil && *r.MaxAttendees < 1 {
		errs = append(errs, "max_attendees must be at least 1")
	}
	return errs
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Applies a partial update of mutable fields. Only the event creator may update. rsvp_count, attendees, and creator_id cannot be changed through this endpoint.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body controllers.UpdateEventRequest true "Fields to update"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not the creator)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := c.eventIDFromPath(w, r)
	if !ok {
		return
	}
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	upd := domain.EventUpdate{
		Name:               req.Name,
		Category:           req.Category,
		Date:               req.parsedDate,
		StartTime:          req.StartTime,
		EndTime:            req.EndTime,
		Description:        req.Description,
		Image:              req.Image,
		LocationLat:        req.LocationLat,
		LocationLng:        req.LocationLng,
		Address:            req.Address,
		VisibilityRadiusKm: req.VisibilityRadiusKm,
		MaxAttendees:       req.MaxAttendees,
	}
	event, err := c.Service.UpdateEvent(r.Context(), eventID, userID, upd)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deletes the event and all of its RSVPs. Only the event creator may delete.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not the creator)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	eventID, ok := c.eventIDFromPath(w, r)
	if !ok {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.DeleteEvent(r.Context(), eventID, userID); err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// SendInvitationsRequest is the request body for POST /events/{eventID}/invitations.
type SendInvitationsRequest struct {
	Emails []string `json:"emails"`
}

// Validate implements helpers.Validator.
func (r *SendInvitationsRequest) Validate() []string {
	if len(r.Emails) == 0 {
		return []string{"emails is required"}
	}
	return nil
}

// SendInvitationsResponseData summarizes the invitation send.
type SendInvitationsResponseData struct {
	Sent   int      `json:"sent"`
	Failed []string `json:"failed"`
}

// SendInvitationsSuccessResponse is the success envelope for POST /events/{eventID}/invitations (200).
type SendInvitationsSuccessResponse struct {
	Data  *SendInvitationsResponseData `json:"data"`
	Error *helpers.APIError            `json:"error"`
}

// SendInvitations godoc
// @Summary Invite people to an event by email
// @Description Records an invitation per email and sends the invite. Only the event creator may invite.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body controllers.SendInvitationsRequest true "Emails to invite"
// @Success 200 {object} controllers.SendInvitationsSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not the creator)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/invitations [post]
func (c *EventController) SendInvitations(w http.ResponseWriter, r *http.Request) {
	eventID, ok := c.eventIDFromPath(w, r)
	if !ok {
		return
	}
	var req SendInvitationsRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	sent, failed, err := c.Service.SendEventInvitations(r.Context(), eventID, userID, req.Emails)
	if err != nil {
		c.writeServiceError(w, r, err)
		return
	}
	if failed == nil {
		failed = []string{}
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, &SendInvitationsResponseData{Sent: sent, Failed: failed})
}

func (c *EventController) eventIDFromPath(w http.ResponseWriter, r *http.Request) (string, bool) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return "", false
	}
	if !uuidRegexEvent.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return "", false
	}
	return eventID, true
}

func (c *EventController) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrNotAuthenticated):
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	default:
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}
