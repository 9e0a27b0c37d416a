package dispatch

import (
	"context"
	"errors"
	"math"
	"sort"
	"sync"
	"time"

	dispatchRepo "chefdispatch/database/repository/dispatch"
	"chefdispatch/models"
	"chefdispatch/services/travel"
	"chefdispatch/utils"

	"go.uber.org/zap"
)

// Scoring weights. They sum to 1.00; the preferred chef additionally gets
// a 1.3x boost capped at 1.0.
const (
	WeightTravel     = 0.35
	WeightSkill      = 0.25
	WeightWorkload   = 0.20
	WeightHistory    = 0.15
	WeightPreference = 0.05

	PreferredBoost = 1.3

	maxTravelMinutes   = 120.0
	weeklyCapacity     = 7.0
	historyStep        = 0.25
	nearCapacityScore  = 0.9
	lowUtilizationBase = 0.7
	lowUtilizationRate = 0.6
)

// Recommendation reasons.
const (
	ReasonCustomerRequested  = "customer requested"
	ReasonCustomerPreference = "customer preference"
	ReasonClosestChef        = "closest available chef"
	ReasonBestSkillMatch     = "best skill match"
	ReasonBestOverallFit     = "best overall fit"
	ReasonNoChefs            = "no chefs available"
	ReasonPreferredAbsent    = "unassignable: preferred chef unavailable"
)

// ChefOptimizer ranks candidate chefs for a booking.
type ChefOptimizer interface {
	Recommend(ctx context.Context, booking models.Booking, candidates []models.ChefInfo, customerID, preferredChefID string, preferenceRequired bool) (models.Recommendation, error)
}

// DefaultChefOptimizer is the production implementation.
type DefaultChefOptimizer struct {
	Travel      travel.TravelTimeService
	BookingRepo dispatchRepo.BookingRepository
	Logger      *zap.Logger
}

// Recommend scores every candidate concurrently and returns the top chef
// plus the full ranked list so a dispatcher can override. An empty
// candidate set yields a zero-confidence recommendation, not an error: the
// caller routes that to negotiation or human escalation.
func (o *DefaultChefOptimizer) Recommend(ctx context.Context, booking models.Booking, candidates []models.ChefInfo, customerID, preferredChefID string, preferenceRequired bool) (models.Recommendation, error) {
	if preferenceRequired && preferredChefID != "" {
		for _, chef := range candidates {
			if chef.ID == preferredChefID {
				return models.Recommendation{
					ChefID:     chef.ID,
					Confidence: 1.0,
					Reason:     ReasonCustomerRequested,
					Ranked: []models.ChefScore{{
						ChefID:          chef.ID,
						ChefName:        chef.Name,
						PreferenceBonus: 1.0,
						TotalScore:      1.0,
						Notes:           "hard customer preference",
					}},
				}, nil
			}
		}
		// Never silently substitute when the customer insisted on a chef.
		return models.Recommendation{Confidence: 0, Reason: ReasonPreferredAbsent}, nil
	}

	if len(candidates) == 0 {
		return models.Recommendation{Confidence: 0, Reason: ReasonNoChefs}, nil
	}

	resultsCh := make(chan models.ChefScore, len(candidates))
	var wg sync.WaitGroup
	for _, chef := range candidates {
		wg.Add(1)
		go func(chef models.ChefInfo) {
			defer wg.Done()
			resultsCh <- o.scoreChef(ctx, booking, chef, customerID, preferredChefID)
		}(chef)
	}
	wg.Wait()
	close(resultsCh)

	var scores []models.ChefScore
	for s := range resultsCh {
		scores = append(scores, s)
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].TotalScore != scores[j].TotalScore {
			return scores[i].TotalScore > scores[j].TotalScore
		}
		// The preferred chef wins ties; chef id keeps the order stable.
		if (scores[i].ChefID == preferredChefID) != (scores[j].ChefID == preferredChefID) {
			return scores[i].ChefID == preferredChefID
		}
		return scores[i].ChefID < scores[j].ChefID
	})

	top := scores[0]
	return models.Recommendation{
		ChefID:     top.ChefID,
		Confidence: top.TotalScore,
		Reason:     dominantReason(top, preferredChefID),
		Ranked:     scores,
	}, nil
}

func (o *DefaultChefOptimizer) scoreChef(ctx context.Context, booking models.Booking, chef models.ChefInfo, customerID, preferredChefID string) models.ChefScore {
	logger := o.logger()
	score := models.ChefScore{ChefID: chef.ID, ChefName: chef.Name}

	origin := chef.DepartureGeo()
	estimate, err := o.Travel.Resolve(ctx, origin.Lat(), origin.Lng(),
		booking.VenueGeo.Lat(), booking.VenueGeo.Lng(), booking.Start)
	if err != nil {
		score.TravelUnresolved = true
		var escalate *travel.EscalateToHumanError
		if errors.As(err, &escalate) {
			// No providers could price this trip. Score it honestly at
			// zero rather than guessing a straight-line number.
			score.Notes = "travel time unresolved; needs dispatcher review"
		} else {
			score.Notes = "travel lookup failed"
		}
		logger.Warn("travel resolution failed during scoring",
			zap.String("chefId", chef.ID), zap.Error(err))
	} else {
		score.TravelMinutes = estimate.Minutes
		score.TravelScore = math.Max(0, 1-float64(estimate.Minutes)/maxTravelMinutes)
	}

	score.SkillScore = skillScore(booking.GuestCount, chef.MaxGuests)

	weekStart := isoWeekStart(booking.Start)
	weekly, err := o.BookingRepo.CountChefBookingsInRange(ctx, chef.ID, weekStart, weekStart.AddDate(0, 0, 7))
	if err != nil {
		logger.Warn("failed to read weekly workload", zap.String("chefId", chef.ID), zap.Error(err))
	} else {
		score.WorkloadScore = math.Max(0, 1-float64(weekly)/weeklyCapacity)
	}

	completed, err := o.BookingRepo.CountCompletedWithCustomer(ctx, chef.ID, customerID)
	if err != nil {
		logger.Warn("failed to read customer history", zap.String("chefId", chef.ID), zap.Error(err))
	} else {
		score.HistoryScore = math.Min(1.0, float64(completed)*historyStep)
	}

	if preferredChefID != "" && chef.ID == preferredChefID {
		score.PreferenceBonus = 1.0
	}

	total := WeightTravel*score.TravelScore +
		WeightSkill*score.SkillScore +
		WeightWorkload*score.WorkloadScore +
		WeightHistory*score.HistoryScore +
		WeightPreference*score.PreferenceBonus
	if score.PreferenceBonus > 0 {
		total = math.Min(1.0, total*PreferredBoost)
	}
	score.TotalScore = total
	return score
}

// skillScore rates capacity fit. Overqualified chefs are not penalized
// harshly; near-capacity assignments carry a small risk discount.
func skillScore(guestCount, maxGuests int) float64 {
	if maxGuests <= 0 || guestCount > maxGuests {
		return 0
	}
	utilization := float64(guestCount) / float64(maxGuests)
	switch {
	case utilization < 0.5:
		return math.Min(1.0, lowUtilizationBase+utilization*lowUtilizationRate)
	case utilization <= 0.9:
		return 1.0
	default:
		return nearCapacityScore
	}
}

// dominantReason picks the human-readable explanation for the winning
// score: preference, then travel, then skill, then overall.
func dominantReason(top models.ChefScore, preferredChefID string) string {
	if preferredChefID != "" && top.ChefID == preferredChefID {
		return ReasonCustomerPreference
	}
	travelContribution := WeightTravel * top.TravelScore
	skillContribution := WeightSkill * top.SkillScore
	if travelContribution >= skillContribution && top.TravelScore > 0 {
		return ReasonClosestChef
	}
	if top.SkillScore > 0 {
		return ReasonBestSkillMatch
	}
	return ReasonBestOverallFit
}

// isoWeekStart returns the Monday 00:00 of t's ISO week.
func isoWeekStart(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday belongs to the preceding ISO week
	}
	return day.AddDate(0, 0, -(weekday - 1))
}

func (o *DefaultChefOptimizer) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return utils.GetLogger()
}
