package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"regexp"

	"pulse/internal/delivery/http/helpers"
	"pulse/internal/delivery/http/middleware"
	"pulse/internal/domain"
)

// uuidRegexRSVP matches a canonical UUID string (8-4-4-4-12 hex).
var uuidRegexRSVP = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

type RSVPController struct {
	Logger  *slog.Logger
	Service domain.RSVPService
}

func NewRSVPController(logger *slog.Logger, svc domain.RSVPService) *RSVPController {
	return &RSVPController{
		Logger:  logger,
		Service: svc,
	}
}

// ToggleRSVPResponseData reports the caller's attendance after the toggle.
type ToggleRSVPResponseData struct {
	Attending bool `json:"attending"`
}

// ToggleRSVPSuccessResponse is the success response envelope for POST /events/{eventID}/rsvp (200).
type ToggleRSVPSuccessResponse struct {
	Data  *ToggleRSVPResponseData `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

// ToggleRSVP godoc
// @Summary Toggle the caller's RSVP for an event
// @Description Adds the RSVP if absent, cancels it if present. Adding fails with 409 when the event is at capacity; cancelling always succeeds. The count change and the membership change commit atomically.
// @Tags rsvps
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.ToggleRSVPSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: event_full"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/rsvp [post]
func (c *RSVPController) ToggleRSVP(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	if !uuidRegexRSVP.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}

	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	attending, err := c.Service.ToggleRSVP(r.Context(), eventID, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
		case errors.Is(err, domain.ErrEventFull):
			helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeEventFull, "event has reached its maximum attendance")
		case errors.Is(err, domain.ErrNotAuthenticated):
			helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		default:
			c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
			helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, &ToggleRSVPResponseData{Attending: attending})
}

// AttendeesSuccessResponse is the success response envelope for GET /events/{eventID}/attendees (200).
type AttendeesSuccessResponse struct {
	Data  []*domain.UserProfile `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// ListAttendees godoc
// @Summary List an event's attendees
// @Tags rsvps
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.AttendeesSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/attendees [get]
func (c *RSVPController) ListAttendees(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	if !uuidRegexRSVP.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return
	}

	users, err := c.Service.ListAttendees(r.Context(), eventID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, users)
}

// AttendingItem is an item in the response for GET /me/attending.
type AttendingItem struct {
	Event *domain.Event `json:"event"`
	RSVP  *domain.RSVP  `json:"rsvp"`
}

// AttendingSuccessResponse is the success response envelope for GET /me/attending (200).
type AttendingSuccessResponse struct {
	Data  []AttendingItem   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListMyAttendingEvents godoc
// @Summary List events the caller has RSVP'd to
// @Tags rsvps
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.AttendingSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /me/attending [get]
func (c *RSVPController) ListMyAttendingEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	items, err := c.Service.ListMyAttendingEvents(r.Context(), userID)
	if err != nil {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
		return
	}

	responseItems := make([]AttendingItem, 0, len(items))
	for _, it := range items {
		responseItems = append(responseItems, AttendingItem{
			Event: it.Event,
			RSVP:  it.RSVP,
		})
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, responseItems)
}
