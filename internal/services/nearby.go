package services

import (
	"math"
	"strings"

	"pulse/internal/domain"
)

const earthRadiusKm = 6371.0

// NearbyQuery describes a viewer's position and filter preferences for
// the nearby feed.
type NearbyQuery struct {
	ViewerID string
	Lat      float64
	Lng      float64
	// MaxDistanceKm caps how far away events may be; nil means no cap.
	MaxDistanceKm *float64
	// Categories the viewer is subscribed to; empty means all categories.
	Categories []string
}

// FilterNearby returns the subset of events visible to the viewer:
// within the viewer's max distance, within the event's own visibility
// radius when it has one, matching the viewer's category subscriptions
// when any, and excluding the viewer's own events. It is a pure function
// over an already-fetched slice; results keep the input order.
func FilterNearby(events []*domain.Event, q NearbyQuery) []*domain.EventWithDistance {
	categories := make(map[string]struct{}, len(q.Categories))
	for _, c := range q.Categories {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" {
			categories[c] = struct{}{}
		}
	}

	result := make([]*domain.EventWithDistance, 0)
	for _, e := range events {
		if e.CreatorID == q.ViewerID {
			continue
		}
		dist := HaversineKm(q.Lat, q.Lng, e.LocationLat, e.LocationLng)
		if q.MaxDistanceKm != nil && dist > *q.MaxDistanceKm {
			continue
		}
		if e.VisibilityRadiusKm != nil && dist > *e.VisibilityRadiusKm {
			continue
		}
		if len(categories) > 0 {
			if _, ok := categories[strings.ToLower(strings.TrimSpace(e.Category))]; !ok {
				continue
			}
		}
		result = append(result, &domain.EventWithDistance{Event: e, DistanceKm: dist})
	}
	return result
}

// HaversineKm returns the great-circle distance in kilometers between
// two points given in degrees.
func HaversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	toRad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
