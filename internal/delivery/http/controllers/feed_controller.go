package controllers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"pulse/internal/delivery/http/helpers"
	"pulse/internal/domain"
)

type FeedController struct {
	Logger *slog.Logger
	Feed   domain.FeedBroadcaster
}

func NewFeedController(logger *slog.Logger, feed domain.FeedBroadcaster) *FeedController {
	return &FeedController{
		Logger: logger,
		Feed:   feed,
	}
}

// WatchEvents godoc
// @Summary Stream event collection changes
// @Description Server-sent events stream of change notices (event created/updated/deleted, RSVP changed). Clients re-fetch authoritative state on receipt; the stream itself carries no consistency guarantees.
// @Tags events
// @Produce text/event-stream
// @Security BearerAuth
// @Success 200 {string} string "SSE stream of FeedChange JSON payloads"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/watch [get]
func (c *FeedController) WatchEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, "streaming not supported")
		return
	}

	changes, cancel := c.Feed.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case change, ok := <-changes:
			if !ok {
				return
			}
			payload, err := json.Marshal(change)
			if err != nil {
				c.Logger.ErrorContext(r.Context(), "marshal feed change", "err", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", change.Kind, payload)
			flusher.Flush()
		}
	}
}
