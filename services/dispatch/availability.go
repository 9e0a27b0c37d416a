package dispatch

import (
	"context"
	"fmt"
	"time"

	chefRepo "chefdispatch/database/repository/chef"
	dispatchRepo "chefdispatch/database/repository/dispatch"
	"chefdispatch/models"
	"chefdispatch/utils"

	"go.uber.org/zap"
)

// overlapWindow is the coarse pre-filter radius around the target slot. A
// chef already booked within this window is dropped before any travel-time
// call; exact feasibility is re-checked by the slot manager's travel chain.
const overlapWindow = 3 * time.Hour

// AvailabilityEngine lists the chefs that could plausibly take a slot.
type AvailabilityEngine struct {
	ChefRepo    chefRepo.ChefRepository
	BookingRepo dispatchRepo.BookingRepository
	Logger      *zap.Logger
}

// AvailableChefs returns chefs not flagged unavailable, not on leave for
// the date, and not booked within the overlap window of slotTime. An empty
// result is a normal business outcome, not a fault.
func (e *AvailabilityEngine) AvailableChefs(ctx context.Context, date string, slotTime time.Time) ([]models.ChefInfo, error) {
	chefs, err := e.ChefRepo.ActiveChefsForDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load chef roster: %w", err)
	}
	if len(chefs) == 0 {
		return []models.ChefInfo{}, nil
	}

	bookings, err := e.BookingRepo.BookingsForDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings for %s: %w", date, err)
	}
	byChef := make(map[string][]models.Booking, len(bookings))
	for _, b := range bookings {
		if b.AssignedChefID != "" {
			byChef[b.AssignedChefID] = append(byChef[b.AssignedChefID], b)
		}
	}

	available := make([]models.ChefInfo, 0, len(chefs))
	for _, chef := range chefs {
		// The repository query already filters availability and leave;
		// re-check here so non-Mongo implementations stay honest.
		if !chef.Available || chef.OnLeave(date) {
			continue
		}
		if hasOverlappingBooking(byChef[chef.ID], slotTime) {
			continue
		}
		available = append(available, chef)
	}

	e.logger().Debug("availability snapshot",
		zap.String("date", date),
		zap.Time("slot", slotTime),
		zap.Int("roster", len(chefs)),
		zap.Int("available", len(available)))
	return available, nil
}

func hasOverlappingBooking(bookings []models.Booking, slotTime time.Time) bool {
	for _, b := range bookings {
		gap := b.Start.Sub(slotTime)
		if gap < 0 {
			gap = -gap
		}
		if gap < overlapWindow {
			return true
		}
	}
	return false
}

func (e *AvailabilityEngine) logger() *zap.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return utils.GetLogger()
}
