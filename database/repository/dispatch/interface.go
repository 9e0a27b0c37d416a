package dispatchRepo

import (
	"context"
	"errors"
	"time"

	"chefdispatch/models"
)

// ErrAssignmentConflict is returned when an optimistic assignment or shift
// loses to a concurrent writer. Callers retry against the next candidate.
var ErrAssignmentConflict = errors.New("booking was modified by a concurrent request")

// BookingRepository covers the booking reads and writes the dispatch core
// performs. Booking creation and general CRUD belong to the external
// booking API.
type BookingRepository interface {
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	// BookingsForDate returns all non-completed bookings on a date.
	BookingsForDate(ctx context.Context, date string) ([]models.Booking, error)
	// BookingsForChefOnDate returns the chef's bookings on a date, ordered
	// by start time.
	BookingsForChefOnDate(ctx context.Context, chefID, date string) ([]models.Booking, error)
	// CountChefBookingsInRange counts a chef's bookings with start in
	// [from, to), any status except completed cancellation.
	CountChefBookingsInRange(ctx context.Context, chefID string, from, to time.Time) (int, error)
	// CountCompletedWithCustomer counts completed bookings a chef has
	// served for one customer.
	CountCompletedWithCustomer(ctx context.Context, chefID, customerID string) (int, error)
	// AssignChef commits a chef and (possibly shifted) start time to an
	// unassigned booking. The expectedVersion guard makes the first
	// successful commit win; losers get ErrAssignmentConflict.
	AssignChef(ctx context.Context, bookingID, chefID string, start time.Time, expectedVersion int) error
	// ShiftBookingTime moves a booking's start, bumping its version.
	ShiftBookingTime(ctx context.Context, bookingID string, newStart time.Time) error
}
