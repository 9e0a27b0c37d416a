package chefRepo

import (
	"context"

	"chefdispatch/models"
)

// ChefRepository exposes the roster reads the dispatch core needs. The
// authoritative roster lives in the external chef management system; this
// repository only reads snapshots.
type ChefRepository interface {
	GetByID(ctx context.Context, id string) (*models.ChefInfo, error)
	// ActiveChefsForDate returns chefs flagged available and not on leave
	// for the given date. Booking conflicts are filtered by the caller.
	ActiveChefsForDate(ctx context.Context, date string) ([]models.ChefInfo, error)
}
