package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pulse/internal/domain"
)

func TestHaversineKm(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
		wantKm                 float64
		tolerance              float64
	}{
		{
			name: "same point",
			lat1: 52.52, lng1: 13.405, lat2: 52.52, lng2: 13.405,
			wantKm: 0, tolerance: 0.001,
		},
		{
			name: "Berlin to Paris",
			lat1: 52.52, lng1: 13.405, lat2: 48.8566, lng2: 2.3522,
			wantKm: 878, tolerance: 5,
		},
		{
			name: "across the antimeridian",
			lat1: 0, lng1: 179.5, lat2: 0, lng2: -179.5,
			wantKm: 111, tolerance: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HaversineKm(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			assert.InDelta(t, tt.wantKm, got, tt.tolerance)
		})
	}
}

func TestFilterNearby(t *testing.T) {
	near := &domain.Event{
		ID: "ev-near", Category: "Sports", CreatorID: "creator-1",
		LocationLat: 52.53, LocationLng: 13.41,
	}
	far := &domain.Event{
		ID: "ev-far", Category: "sports", CreatorID: "creator-1",
		LocationLat: 48.85, LocationLng: 2.35,
	}
	smallRadius := 1.0
	shy := &domain.Event{
		ID: "ev-shy", Category: "sports", CreatorID: "creator-1",
		LocationLat: 52.60, LocationLng: 13.50, VisibilityRadiusKm: &smallRadius,
	}
	social := &domain.Event{
		ID: "ev-social", Category: "social", CreatorID: "creator-1",
		LocationLat: 52.53, LocationLng: 13.41,
	}
	mine := &domain.Event{
		ID: "ev-mine", Category: "sports", CreatorID: "viewer-1",
		LocationLat: 52.53, LocationLng: 13.41,
	}
	all := []*domain.Event{near, far, shy, social, mine}

	ids := func(feed []*domain.EventWithDistance) []string {
		out := make([]string, 0, len(feed))
		for _, item := range feed {
			out = append(out, item.Event.ID)
		}
		return out
	}

	dist := 50.0

	t.Run("distance cap drops far events", func(t *testing.T) {
		feed := FilterNearby(all, NearbyQuery{
			ViewerID: "viewer-1", Lat: 52.52, Lng: 13.405, MaxDistanceKm: &dist,
		})
		assert.NotContains(t, ids(feed), "ev-far")
		assert.Contains(t, ids(feed), "ev-near")
	})

	t.Run("event visibility radius overrides viewer distance", func(t *testing.T) {
		feed := FilterNearby(all, NearbyQuery{
			ViewerID: "viewer-1", Lat: 52.52, Lng: 13.405, MaxDistanceKm: &dist,
		})
		// ev-shy is well within 50km of the viewer but only wants to be
		// seen from 1km away.
		assert.NotContains(t, ids(feed), "ev-shy")
	})

	t.Run("category filter is case insensitive", func(t *testing.T) {
		feed := FilterNearby(all, NearbyQuery{
			ViewerID: "viewer-1", Lat: 52.52, Lng: 13.405, MaxDistanceKm: &dist,
			Categories: []string{"SPORTS"},
		})
		assert.Equal(t, []string{"ev-near"}, ids(feed))
	})

	t.Run("empty categories mean all categories", func(t *testing.T) {
		feed := FilterNearby(all, NearbyQuery{
			ViewerID: "viewer-1", Lat: 52.52, Lng: 13.405, MaxDistanceKm: &dist,
		})
		assert.Contains(t, ids(feed), "ev-social")
	})

	t.Run("excludes the viewer's own events", func(t *testing.T) {
		feed := FilterNearby(all, NearbyQuery{
			ViewerID: "viewer-1", Lat: 52.52, Lng: 13.405,
		})
		assert.NotContains(t, ids(feed), "ev-mine")
	})

	t.Run("no distance cap keeps far events", func(t *testing.T) {
		feed := FilterNearby(all, NearbyQuery{
			ViewerID: "viewer-1", Lat: 52.52, Lng: 13.405,
		})
		assert.Contains(t, ids(feed), "ev-far")
	})

	t.Run("reports the computed distance", func(t *testing.T) {
		feed := FilterNearby([]*domain.Event{far}, NearbyQuery{
			ViewerID: "viewer-1", Lat: 52.52, Lng: 13.405,
		})
		require.Len(t, feed, 1)
		assert.InDelta(t, 878, feed[0].DistanceKm, 5)
	})

	t.Run("empty input gives empty feed", func(t *testing.T) {
		feed := FilterNearby(nil, NearbyQuery{ViewerID: "viewer-1"})
		assert.NotNil(t, feed)
		assert.Empty(t, feed)
	})
}
