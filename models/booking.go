package models

import "time"

// Booking statuses.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCompleted = "completed"
)

// Booking represents a catering event booking.
type Booking struct {
	ID              string    `bson:"id" json:"id"`                           // Unique booking identifier (UUID)
	CustomerID      string    `bson:"customer_id" json:"customer_id"`         // Customer who made the booking
	Date            string    `bson:"date" json:"date"`                       // Event date in "YYYY-MM-DD" format
	Slot            string    `bson:"slot" json:"slot"`                       // Canonical slot name, e.g. "6PM"
	Start           time.Time `bson:"start" json:"start"`                     // Event start, possibly shifted off the slot base
	DurationMinutes int       `bson:"duration_minutes" json:"duration_minutes"`
	GuestCount      int       `bson:"guest_count" json:"guest_count"`
	VenueAddress    string    `bson:"venue_address" json:"venue_address"`
	VenueGeo        GeoPoint  `bson:"venue_geo" json:"venue_geo"`
	AssignedChefID  string    `bson:"assigned_chef_id,omitempty" json:"assigned_chef_id,omitempty"`
	Status          string    `bson:"status" json:"status"`
	Version         int       `bson:"version" json:"version"` // Optimistic concurrency guard for assignment
	CreatedAt       time.Time `bson:"created_at" json:"created_at"`
}

// End returns the event end time.
func (b Booking) End() time.Time {
	return b.Start.Add(time.Duration(b.DurationMinutes) * time.Minute)
}
