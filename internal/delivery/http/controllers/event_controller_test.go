package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pulse/internal/delivery/http/helpers"
	"pulse/internal/delivery/http/middleware"
	"pulse/internal/domain"
)

type mockEventService struct {
	event  *domain.Event
	events []*domain.Event
	nearby []*domain.EventWithDistance
	sent   int
	failed []string
	err    error

	gotEventID  string
	gotCallerID string
	gotUpdate   domain.EventUpdate
}

func (m *mockEventService) CreateEvent(ctx context.Context, event *domain.Event) error {
	if m.err != nil {
		return m.err
	}
	event.ID = "ev-created"
	m.event = event
	return nil
}

func (m *mockEventService) GetEventByID(ctx context.Context, eventID string) (*domain.Event, error) {
	m.gotEventID = eventID
	if m.err != nil {
		return nil, m.err
	}
	return m.event, nil
}

func (m *mockEventService) ListEvents(ctx context.Context) ([]*domain.Event, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.events, nil
}

func (m *mockEventService) ListEventsByCreator(ctx context.Context, creatorID string) ([]*domain.Event, error) {
	m.gotCallerID = creatorID
	if m.err != nil {
		return nil, m.err
	}
	return m.events, nil
}

func (m *mockEventService) UpdateEvent(ctx context.Context, eventID, callerID string, upd domain.EventUpdate) (*domain.Event, error) {
	m.gotEventID = eventID
	m.gotCallerID = callerID
	m.gotUpdate = upd
	if m.err != nil {
		return nil, m.err
	}
	return m.event, nil
}

func (m *mockEventService) DeleteEvent(ctx context.Context, eventID, callerID string) error {
	m.gotEventID = eventID
	m.gotCallerID = callerID
	return m.err
}

func (m *mockEventService) NearbyEvents(ctx context.Context, viewerID string, lat, lng float64) ([]*domain.EventWithDistance, error) {
	m.gotCallerID = viewerID
	if m.err != nil {
		return nil, m.err
	}
	return m.nearby, nil
}

func (m *mockEventService) SendEventInvitations(ctx context.Context, eventID, callerID string, emails []string) (int, []string, error) {
	m.gotEventID = eventID
	m.gotCallerID = callerID
	if m.err != nil {
		return 0, nil, m.err
	}
	return m.sent, m.failed, nil
}

func authedJSONRequest(method, target, body, userID string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req = req.WithContext(middleware.SetUserID(req.Context(), userID))
	}
	return req
}

func TestEventController_CreateEvent_Success(t *testing.T) {
	svc := &mockEventService{}
	ctrl := NewEventController(testLogger(), svc)

	body := `{
		"name": "Morning Run",
		"category": "sports",
		"date": "2026-04-01",
		"start_time": "08:00",
		"end_time": "09:30",
		"location_lat": 52.52,
		"location_lng": 13.405,
		"max_attendees": 20
	}`
	w := httptest.NewRecorder()
	ctrl.CreateEvent(w, authedJSONRequest(http.MethodPost, "/events", body, "u1"))

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, w.Code, w.Body.String())
	}
	if svc.event == nil || svc.event.CreatorID != "u1" {
		t.Fatalf("expected creator u1, got %+v", svc.event)
	}
	if svc.event.MaxAttendees == nil || *svc.event.MaxAttendees != 20 {
		t.Fatalf("expected max_attendees 20, got %+v", svc.event.MaxAttendees)
	}
}

func TestEventController_CreateEvent_ValidationErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"category":"sports","date":"2026-04-01","start_time":"08:00","end_time":"09:30","location_lat":0,"location_lng":0}`},
		{"bad date", `{"name":"Run","category":"sports","date":"01.04.2026","start_time":"08:00","end_time":"09:30","location_lat":0,"location_lng":0}`},
		{"bad start_time", `{"name":"Run","category":"sports","date":"2026-04-01","start_time":"8am","end_time":"09:30","location_lat":0,"location_lng":0}`},
		{"latitude out of range", `{"name":"Run","category":"sports","date":"2026-04-01","start_time":"08:00","end_time":"09:30","location_lat":91,"location_lng":0}`},
		{"zero max_attendees", `{"name":"Run","category":"sports","date":"2026-04-01","start_time":"08:00","end_time":"09:30","location_lat":0,"location_lng":0,"max_attendees":0}`},
		{"unknown field", `{"name":"Run","category":"sports","date":"2026-04-01","start_time":"08:00","end_time":"09:30","location_lat":0,"location_lng":0,"rsvp_count":5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockEventService{}
			ctrl := NewEventController(testLogger(), svc)

			w := httptest.NewRecorder()
			ctrl.CreateEvent(w, authedJSONRequest(http.MethodPost, "/events", tt.body, "u1"))

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected status %d, got %d: %s", http.StatusBadRequest, w.Code, w.Body.String())
			}
			if svc.event != nil {
				t.Fatal("service must not be called for invalid input")
			}
		})
	}
}

func TestEventController_UpdateEvent_Forbidden(t *testing.T) {
	svc := &mockEventService{err: domain.ErrForbidden}
	ctrl := NewEventController(testLogger(), svc)

	req := authedJSONRequest(http.MethodPatch, "/events/"+testEventID, `{"name":"New Name"}`, "intruder")
	req.SetPathValue("eventID", testEventID)
	w := httptest.NewRecorder()
	ctrl.UpdateEvent(w, req)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected status %d, got %d", http.StatusForbidden, w.Code)
	}
	resp := decodeAPIResponse(t, w)
	if resp.Error == nil || resp.Error.Code != helpers.ErrCodeForbidden {
		t.Fatalf("expected error code %q, got %+v", helpers.ErrCodeForbidden, resp.Error)
	}
}

func TestEventController_UpdateEvent_RejectsLedgerFields(t *testing.T) {
	svc := &mockEventService{}
	ctrl := NewEventController(testLogger(), svc)

	for _, body := range []string{
		`{"rsvp_count": 0}`,
		`{"attendees": []}`,
		`{"creator_id": "someone-else"}`,
	} {
		req := authedJSONRequest(http.MethodPatch, "/events/"+testEventID, body, "u1")
		req.SetPathValue("eventID", testEventID)
		w := httptest.NewRecorder()
		ctrl.UpdateEvent(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected status %d, got %d", body, http.StatusBadRequest, w.Code)
		}
	}
}

func TestEventController_UpdateEvent_Success(t *testing.T) {
	svc := &mockEventService{event: &domain.Event{ID: testEventID, Name: "New Name"}}
	ctrl := NewEventController(testLogger(), svc)

	req := authedJSONRequest(http.MethodPatch, "/events/"+testEventID, `{"name":"New Name","max_attendees":30}`, "u1")
	req.SetPathValue("eventID", testEventID)
	w := httptest.NewRecorder()
	ctrl.UpdateEvent(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
	}
	if svc.gotUpdate.Name == nil || *svc.gotUpdate.Name != "New Name" {
		t.Fatalf("expected name update, got %+v", svc.gotUpdate)
	}
	if svc.gotUpdate.MaxAttendees == nil || *svc.gotUpdate.MaxAttendees != 30 {
		t.Fatalf("expected max_attendees update, got %+v", svc.gotUpdate)
	}
}

func TestEventController_DeleteEvent_NotFound(t *testing.T) {
	svc := &mockEventService{err: domain.ErrNotFound}
	ctrl := NewEventController(testLogger(), svc)

	req := authedJSONRequest(http.MethodDelete, "/events/"+testEventID, "", "u1")
	req.SetPathValue("eventID", testEventID)
	w := httptest.NewRecorder()
	ctrl.DeleteEvent(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}
}

func TestEventController_DeleteEvent_InvalidID(t *testing.T) {
	svc := &mockEventService{}
	ctrl := NewEventController(testLogger(), svc)

	req := authedJSONRequest(http.MethodDelete, "/events/nope", "", "u1")
	req.SetPathValue("eventID", "nope")
	w := httptest.NewRecorder()
	ctrl.DeleteEvent(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
	}
	if svc.gotEventID != "" {
		t.Fatal("service must not be called for an invalid ID")
	}
}

func TestEventController_NearbyEvents(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &mockEventService{nearby: []*domain.EventWithDistance{
			{Event: &domain.Event{ID: "e1", Name: "Morning Run"}, DistanceKm: 1.2},
		}}
		ctrl := NewEventController(testLogger(), svc)

		req := authedJSONRequest(http.MethodGet, "/events/nearby?lat=52.52&lng=13.405", "", "u1")
		w := httptest.NewRecorder()
		ctrl.NearbyEvents(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
		}
		var resp NearbyEventsSuccessResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
		if len(resp.Data) != 1 || resp.Data[0].Event.ID != "e1" {
			t.Fatalf("unexpected response data: %+v", resp.Data)
		}
	})

	t.Run("missing coordinates", func(t *testing.T) {
		ctrl := NewEventController(testLogger(), &mockEventService{})

		req := authedJSONRequest(http.MethodGet, "/events/nearby", "", "u1")
		w := httptest.NewRecorder()
		ctrl.NearbyEvents(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
	})

	t.Run("latitude out of range", func(t *testing.T) {
		ctrl := NewEventController(testLogger(), &mockEventService{})

		req := authedJSONRequest(http.MethodGet, "/events/nearby?lat=95&lng=13.405", "", "u1")
		w := httptest.NewRecorder()
		ctrl.NearbyEvents(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
	})
}

func TestEventController_SendInvitations(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &mockEventService{sent: 2}
		ctrl := NewEventController(testLogger(), svc)

		req := authedJSONRequest(http.MethodPost, "/events/"+testEventID+"/invitations",
			`{"emails":["a@example.com","b@example.com"]}`, "u1")
		req.SetPathValue("eventID", testEventID)
		w := httptest.NewRecorder()
		ctrl.SendInvitations(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d: %s", http.StatusOK, w.Code, w.Body.String())
		}
		var resp SendInvitationsSuccessResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to unmarshal response: %v", err)
		}
		if resp.Data == nil || resp.Data.Sent != 2 || len(resp.Data.Failed) != 0 {
			t.Fatalf("unexpected response data: %+v", resp.Data)
		}
	})

	t.Run("empty email list", func(t *testing.T) {
		ctrl := NewEventController(testLogger(), &mockEventService{})

		req := authedJSONRequest(http.MethodPost, "/events/"+testEventID+"/invitations", `{"emails":[]}`, "u1")
		req.SetPathValue("eventID", testEventID)
		w := httptest.NewRecorder()
		ctrl.SendInvitations(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected status %d, got %d", http.StatusBadRequest, w.Code)
		}
	})
}
