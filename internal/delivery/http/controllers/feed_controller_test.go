package controllers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pulse/internal/domain"
)

type stubBroadcaster struct {
	ch chan domain.FeedChange
}

func (s *stubBroadcaster) Publish(change domain.FeedChange) {
	s.ch <- change
}

func (s *stubBroadcaster) Subscribe() (<-chan domain.FeedChange, func()) {
	return s.ch, func() {}
}

func TestFeedController_WatchEvents_StreamsChanges(t *testing.T) {
	feed := &stubBroadcaster{ch: make(chan domain.FeedChange, 1)}
	ctrl := NewFeedController(testLogger(), feed)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/events/watch", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	feed.ch <- domain.FeedChange{Kind: domain.FeedRSVPChanged, EventID: "ev-1"}

	done := make(chan struct{})
	go func() {
		defer close(done)
		ctrl.WatchEvents(w, req)
	}()

	// Give the handler a moment to drain the buffered change, then end
	// the request.
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler did not return after context cancellation")
	}

	if got := w.Header().Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("expected text/event-stream, got %q", got)
	}
	body := w.Body.String()
	if !strings.Contains(body, "event: rsvp_changed\n") {
		t.Fatalf("missing event line in stream: %q", body)
	}
	if !strings.Contains(body, `"event_id":"ev-1"`) {
		t.Fatalf("missing data payload in stream: %q", body)
	}
}

func TestFeedController_WatchEvents_ClosedSubscription(t *testing.T) {
	feed := &stubBroadcaster{ch: make(chan domain.FeedChange)}
	ctrl := NewFeedController(testLogger(), feed)

	close(feed.ch)

	req := httptest.NewRequest(http.MethodGet, "/events/watch", nil)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		ctrl.WatchEvents(w, req)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("handler did not return after the subscription closed")
	}
	if w.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
	}
}
