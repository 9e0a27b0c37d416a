package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	chefRepo "chefdispatch/database/repository/chef"
	dispatchRepo "chefdispatch/database/repository/dispatch"
	"chefdispatch/models"
	"chefdispatch/services/geo"
	"chefdispatch/services/notification"
	"chefdispatch/services/travel"
	"chefdispatch/utils"

	"go.uber.org/zap"
)

// DispatchRequest asks for a chef assignment on an existing pending
// booking created by the booking API.
type DispatchRequest struct {
	BookingID          string `json:"bookingId" binding:"required"`
	PreferredChefID    string `json:"preferredChefId,omitempty"`
	PreferenceRequired bool   `json:"preferenceRequired,omitempty"`
}

// DispatchResult is the outcome of one scheduling decision. Exactly one of
// the three terminal shapes holds: an assignment, an open negotiation, or a
// human escalation.
type DispatchResult struct {
	Booking        *models.Booking            `json:"booking"`
	Recommendation models.Recommendation      `json:"recommendation"`
	Adjustment     models.SlotAdjustment      `json:"adjustment"`
	Negotiation    *models.NegotiationRequest `json:"negotiation,omitempty"`
	Escalated      bool                       `json:"escalated"`
	Message        string                     `json:"message,omitempty"`
}

// DispatchService runs the end-to-end scheduling flow.
type DispatchService interface {
	ScheduleBooking(ctx context.Context, req DispatchRequest) (*DispatchResult, error)
}

// DefaultDispatchService implements DispatchService.
type DefaultDispatchService struct {
	Slots        *SlotManager
	Availability *AvailabilityEngine
	Optimizer    ChefOptimizer
	Negotiation  NegotiationService
	Travel       travel.TravelTimeService
	Geocoder     geo.Geocoder
	ChefRepo     chefRepo.ChefRepository
	BookingRepo  dispatchRepo.BookingRepository
	Notifier     notification.NotificationService
	Logger       *zap.Logger
}

// maxCommitAttempts bounds the walk down the ranked list when concurrent
// requests keep claiming our candidates.
const maxCommitAttempts = 5

// ScheduleBooking resolves the venue, snapshots available chefs, checks
// travel-chain feasibility per candidate, ranks the feasible set, and
// commits the winner. When nothing fits it negotiates a shift with an
// existing customer, and as a last resort escalates to a human dispatcher.
func (s *DefaultDispatchService) ScheduleBooking(ctx context.Context, req DispatchRequest) (*DispatchResult, error) {
	logger := s.logger()

	booking, err := s.BookingRepo.GetByID(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.AssignedChefID != "" {
		return nil, fmt.Errorf("booking %s already has chef %s assigned", booking.ID, booking.AssignedChefID)
	}

	slot, err := s.Slots.ParseSlot(booking.Slot)
	if err != nil {
		return nil, err
	}

	if !booking.VenueGeo.Valid() {
		resolved, err := s.Geocoder.ResolveAddress(ctx, booking.VenueAddress)
		if err != nil {
			return nil, fmt.Errorf("venue geocoding failed: %w", err)
		}
		if !resolved.Valid {
			return nil, fmt.Errorf("invalidConfiguration: venue address %q could not be resolved", booking.VenueAddress)
		}
		booking.VenueGeo = resolved.Location
		booking.VenueAddress = resolved.Address
	}

	day, err := time.ParseInLocation("2006-01-02", booking.Date, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalidConfiguration: bad booking date %q: %w", booking.Date, err)
	}
	slotTime, err := s.Slots.SlotStart(slot, day)
	if err != nil {
		return nil, err
	}
	booking.Start = slotTime
	booking.DurationMinutes = s.Slots.EventDuration(booking.GuestCount)

	// One availability snapshot for the whole decision: every candidate is
	// scored against the same view, and the commit re-validates later.
	candidates, err := s.Availability.AvailableChefs(ctx, booking.Date, slotTime)
	if err != nil {
		return nil, err
	}

	feasible, adjustments, travelEscalations := s.filterByTravelChain(ctx, booking, candidates, slot, slotTime)

	rec, err := s.Optimizer.Recommend(ctx, *booking, feasible, booking.CustomerID, req.PreferredChefID, req.PreferenceRequired)
	if err != nil {
		return nil, err
	}

	if rec.Assigned() {
		result, committed, unresolved := s.commitRanked(ctx, booking, rec, adjustments, slotTime)
		if committed {
			return result, nil
		}
		if unresolved > 0 {
			// Every committable candidate had an exhausted provider chain.
			// The duration feeds billing, so refuse to assign on a guess.
			return &DispatchResult{
				Booking:        booking,
				Recommendation: rec,
				Escalated:      true,
				Message:        "We could not confirm travel times automatically. Please call us to finish scheduling.",
			}, nil
		}
		logger.Warn("all ranked candidates lost to concurrent commits",
			zap.String("bookingId", booking.ID))
	}

	if rec.Reason == ReasonPreferredAbsent {
		return &DispatchResult{
			Booking:        booking,
			Recommendation: rec,
			Message:        "The requested chef is unavailable for this slot.",
		}, nil
	}

	if len(feasible) == 0 && travelEscalations > 0 && len(candidates) > 0 {
		// Providers failed, not the schedule. Refuse to guess travel times.
		return &DispatchResult{
			Booking:        booking,
			Recommendation: rec,
			Escalated:      true,
			Message:        "We could not confirm travel times automatically. Please call us to finish scheduling.",
		}, nil
	}

	neg, err := s.negotiateDisplacement(ctx, booking, slot, slotTime)
	if err != nil {
		logger.Warn("negotiation attempt failed", zap.String("bookingId", booking.ID), zap.Error(err))
	}
	if neg != nil {
		return &DispatchResult{
			Booking:        booking,
			Recommendation: rec,
			Negotiation:    neg,
			Message:        "No chef is free for this slot; we are negotiating a shift with another customer.",
		}, nil
	}

	return &DispatchResult{
		Booking:        booking,
		Recommendation: rec,
		Escalated:      true,
		Message:        "No chefs available and no booking could be shifted. Please call us.",
	}, nil
}

// filterByTravelChain keeps candidates whose target slot can absorb the
// buffer + travel + setup chain after their previous commitment. Chefs with
// no prior booking that day pass with a zero adjustment.
func (s *DefaultDispatchService) filterByTravelChain(ctx context.Context, booking *models.Booking, candidates []models.ChefInfo, slot string, slotTime time.Time) ([]models.ChefInfo, map[string]models.SlotAdjustment, int) {
	logger := s.logger()
	feasible := make([]models.ChefInfo, 0, len(candidates))
	adjustments := make(map[string]models.SlotAdjustment, len(candidates))
	escalations := 0

	for _, chef := range candidates {
		prior, err := s.BookingRepo.BookingsForChefOnDate(ctx, chef.ID, booking.Date)
		if err != nil {
			logger.Warn("failed to load prior bookings", zap.String("chefId", chef.ID), zap.Error(err))
			continue
		}

		var prev *models.Booking
		for i := range prior {
			if prior[i].Start.Before(slotTime) {
				prev = &prior[i]
			}
		}
		if prev == nil {
			feasible = append(feasible, chef)
			adjustments[chef.ID] = models.SlotAdjustment{Slot: slot}
			continue
		}

		estimate, err := s.Travel.Resolve(ctx,
			prev.VenueGeo.Lat(), prev.VenueGeo.Lng(),
			booking.VenueGeo.Lat(), booking.VenueGeo.Lng(),
			prev.End())
		if err != nil {
			var escalate *travel.EscalateToHumanError
			if errors.As(err, &escalate) {
				escalations++
			}
			logger.Warn("travel chain unresolvable, dropping candidate",
				zap.String("chefId", chef.ID), zap.Error(err))
			continue
		}

		ok, adjustment, err := s.Slots.CanAbsorbTravel(prev.End(), estimate.Minutes, slot)
		if err != nil || !ok {
			continue
		}
		feasible = append(feasible, chef)
		adjustments[chef.ID] = adjustment
	}

	return feasible, adjustments, escalations
}

// commitRanked walks the ranked list until one assignment commits. Each
// attempt re-validates the chef's bookings so a chef claimed by a
// concurrent request is skipped rather than double-booked: the first
// successful commit wins and losers move to the next candidate. Candidates
// whose travel time never resolved are skipped outright and reported back,
// so the caller can escalate instead of assigning on a guess.
func (s *DefaultDispatchService) commitRanked(ctx context.Context, booking *models.Booking, rec models.Recommendation, adjustments map[string]models.SlotAdjustment, slotTime time.Time) (*DispatchResult, bool, int) {
	logger := s.logger()

	attempts := 0
	unresolved := 0
	for _, candidate := range rec.Ranked {
		if candidate.TravelUnresolved {
			logger.Warn("refusing to commit candidate with unresolved travel time",
				zap.String("chefId", candidate.ChefID))
			unresolved++
			continue
		}
		if attempts >= maxCommitAttempts {
			break
		}
		attempts++

		adjustment := adjustments[candidate.ChefID]
		start := slotTime.Add(time.Duration(adjustment.ShiftMinutes) * time.Minute)

		current, err := s.BookingRepo.BookingsForChefOnDate(ctx, candidate.ChefID, booking.Date)
		if err != nil {
			logger.Warn("commit re-validation failed", zap.String("chefId", candidate.ChefID), zap.Error(err))
			continue
		}
		if hasOverlappingBooking(current, start) {
			logger.Info("chef claimed by concurrent request, trying next candidate",
				zap.String("chefId", candidate.ChefID))
			continue
		}

		fresh, err := s.BookingRepo.GetByID(ctx, booking.ID)
		if err != nil {
			logger.Warn("failed to refresh booking before commit", zap.Error(err))
			return nil, false, unresolved
		}
		if fresh.AssignedChefID != "" {
			// Another request already scheduled this booking.
			return nil, false, unresolved
		}

		if err := s.BookingRepo.AssignChef(ctx, booking.ID, candidate.ChefID, start, fresh.Version); err != nil {
			if errors.Is(err, dispatchRepo.ErrAssignmentConflict) {
				continue
			}
			logger.Error("assignment commit failed", zap.String("chefId", candidate.ChefID), zap.Error(err))
			return nil, false, unresolved
		}

		booking.AssignedChefID = candidate.ChefID
		booking.Start = start
		booking.Status = models.BookingStatusConfirmed

		s.confirmToCustomer(ctx, booking, candidate.ChefName)

		winner := rec
		winner.ChefID = candidate.ChefID
		if candidate.ChefID != rec.ChefID {
			winner.Confidence = candidate.TotalScore
			winner.Reason = "next-ranked after scheduling conflict"
		}
		return &DispatchResult{
			Booking:        booking,
			Recommendation: winner,
			Adjustment:     adjustment,
			Message:        fmt.Sprintf("Chef %s confirmed for %s.", candidate.ChefName, start.Format("Jan 2 at 3:04 PM")),
		}, true, unresolved
	}
	return nil, false, unresolved
}

// negotiateDisplacement picks the existing booking with the most slack
// whose chef could serve the new request, and proposes moving it to a slot
// that frees the chef for the requested window.
func (s *DefaultDispatchService) negotiateDisplacement(ctx context.Context, booking *models.Booking, slot string, slotTime time.Time) (*models.NegotiationRequest, error) {
	existing, err := s.BookingRepo.BookingsForDate(ctx, booking.Date)
	if err != nil {
		return nil, err
	}

	var target *models.Booking
	for i := range existing {
		b := &existing[i]
		if b.AssignedChefID == "" || b.ID == booking.ID {
			continue
		}
		chef, err := s.ChefRepo.GetByID(ctx, b.AssignedChefID)
		if err != nil || chef.MaxGuests < booking.GuestCount {
			continue
		}
		// Furthest-out event first: that customer has the most slack.
		if target == nil || b.Start.After(target.Start) {
			target = b
		}
	}
	if target == nil {
		return nil, nil
	}

	proposed, ok := s.alternativeSlotTime(target, slotTime)
	if !ok {
		return nil, nil
	}

	reason := "Another event needs your chef's current time window."
	return s.Negotiation.ProposeShift(ctx, target.ID, proposed, reason)
}

// alternativeSlotTime finds the closest other grid slot for the displaced
// booking that stays clear of the requested window.
func (s *DefaultDispatchService) alternativeSlotTime(target *models.Booking, requestedSlotTime time.Time) (time.Time, bool) {
	var best time.Time
	var bestDistance time.Duration
	found := false

	for _, name := range s.Slots.SlotNames() {
		if name == target.Slot {
			continue
		}
		candidate, err := s.Slots.SlotStart(name, target.Start)
		if err != nil {
			continue
		}
		gap := candidate.Sub(requestedSlotTime)
		if gap < 0 {
			gap = -gap
		}
		if gap < overlapWindow {
			continue
		}
		distance := candidate.Sub(target.Start)
		if distance < 0 {
			distance = -distance
		}
		if !found || distance < bestDistance {
			best = candidate
			bestDistance = distance
			found = true
		}
	}
	return best, found
}

func (s *DefaultDispatchService) confirmToCustomer(ctx context.Context, booking *models.Booking, chefName string) {
	if s.Notifier == nil {
		return
	}
	title := "Your chef is confirmed!"
	body := fmt.Sprintf("%s will arrive ready to cook on %s at %s.",
		chefName, booking.Date, booking.Start.Format("3:04 PM"))
	if err := s.Notifier.SendCustomerPush(ctx, booking.CustomerID, title, body, map[string]string{
		"type":      "assignment_confirmed",
		"bookingId": booking.ID,
	}); err != nil {
		s.logger().Warn("confirmation push failed", zap.String("bookingId", booking.ID), zap.Error(err))
	}
}

func (s *DefaultDispatchService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return utils.GetLogger()
}
