package models

import "time"

// TravelEstimate is a resolved travel duration between two points.
type TravelEstimate struct {
	Minutes    int       `json:"minutes"`
	Provider   string    `json:"provider"` // "cache", "google", "osrm"
	RushHour   bool      `json:"rush_hour"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// TravelCacheEntry is the persisted form of a resolved trip, keyed by
// (rounded origin, rounded destination, time bucket).
type TravelCacheEntry struct {
	Minutes    int       `json:"minutes"`
	Provider   string    `json:"provider"`
	ResolvedAt time.Time `json:"resolved_at"`
}

// GeoResult is a normalized geocoding response.
type GeoResult struct {
	Address    string   `json:"address"` // Normalized/formatted address
	Location   GeoPoint `json:"location"`
	Valid      bool     `json:"valid"`
	Confidence float64  `json:"confidence"`
}
