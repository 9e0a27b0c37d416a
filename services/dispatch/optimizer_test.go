package dispatch

import (
	"context"
	"testing"
	"time"

	"chefdispatch/models"
	"chefdispatch/services/travel"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testBooking(guests int) models.Booking {
	return models.Booking{
		ID:         "bk-1",
		CustomerID: "cust-1",
		Date:       "2026-04-10",
		Slot:       "3PM",
		Start:      time.Date(2026, 4, 10, 15, 0, 0, 0, time.UTC),
		GuestCount: guests,
		VenueGeo:   models.NewGeoPoint(40.731, -73.935),
	}
}

func testChef(id string, maxGuests int, lat float64) models.ChefInfo {
	return models.ChefInfo{
		ID:        id,
		Name:      "Chef " + id,
		MaxGuests: maxGuests,
		HomeGeo:   models.NewGeoPoint(lat, -74.006),
		Available: true,
	}
}

func TestScoringWeightsSumToOne(t *testing.T) {
	sum := WeightTravel + WeightSkill + WeightWorkload + WeightHistory + WeightPreference
	assert.InDelta(t, 1.0, sum, 1e-9)
}

func TestSkillScore(t *testing.T) {
	tests := []struct {
		name   string
		guests int
		max    int
		want   float64
	}{
		{name: "over capacity is disqualifying", guests: 30, max: 25, want: 0},
		{name: "zero capacity is disqualifying", guests: 10, max: 0, want: 0},
		{name: "comfortable utilization is perfect", guests: 25, max: 50, want: 1.0},
		{name: "upper comfortable bound", guests: 45, max: 50, want: 1.0},
		{name: "near capacity carries a discount", guests: 48, max: 50, want: 0.9},
		{name: "at exact capacity", guests: 50, max: 50, want: 0.9},
		{name: "overqualified chef", guests: 12, max: 50, want: 0.844},
		{name: "very overqualified stays capped", guests: 1, max: 2000, want: 0.7003},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, skillScore(tt.guests, tt.max), 1e-4)
		})
	}
}

func TestRecommend_ScoresAndRanks(t *testing.T) {
	repo := newFakeBookingRepo()
	tvl := &fakeTravel{
		minutesByOriginLat: map[float64]int{
			40.71: 15, // close chef
			40.60: 60, // far chef
		},
	}
	opt := &DefaultChefOptimizer{Travel: tvl, BookingRepo: repo, Logger: zap.NewNop()}

	near := testChef("chef-near", 50, 40.71)
	far := testChef("chef-far", 50, 40.60)

	rec, err := opt.Recommend(context.Background(), testBooking(12), []models.ChefInfo{far, near}, "cust-1", "", false)
	require.NoError(t, err)

	assert.Equal(t, "chef-near", rec.ChefID)
	require.Len(t, rec.Ranked, 2)
	top := rec.Ranked[0]
	assert.Equal(t, "chef-near", top.ChefID)
	assert.InDelta(t, 0.875, top.TravelScore, 1e-4)  // 1 - 15/120
	assert.InDelta(t, 0.844, top.SkillScore, 1e-4)   // 0.7 + 0.24*0.6
	assert.InDelta(t, 1.0, top.WorkloadScore, 1e-4)  // empty week
	assert.Equal(t, 15, top.TravelMinutes)
	assert.Equal(t, ReasonClosestChef, rec.Reason)
}

func TestRecommend_WorkloadAndHistory(t *testing.T) {
	repo := newFakeBookingRepo()
	repo.weekly["chef-busy"] = 5
	repo.completed["chef-known|cust-1"] = 3
	tvl := &fakeTravel{defaultMinutes: 30}
	opt := &DefaultChefOptimizer{Travel: tvl, BookingRepo: repo, Logger: zap.NewNop()}

	busy := testChef("chef-busy", 50, 40.71)
	known := testChef("chef-known", 50, 40.71)

	rec, err := opt.Recommend(context.Background(), testBooking(12), []models.ChefInfo{busy, known}, "cust-1", "", false)
	require.NoError(t, err)

	assert.Equal(t, "chef-known", rec.ChefID)
	for _, s := range rec.Ranked {
		switch s.ChefID {
		case "chef-busy":
			assert.InDelta(t, 1-5.0/7.0, s.WorkloadScore, 1e-4)
			assert.Zero(t, s.HistoryScore)
		case "chef-known":
			assert.InDelta(t, 1.0, s.WorkloadScore, 1e-4)
			assert.InDelta(t, 0.75, s.HistoryScore, 1e-4)
		}
	}
}

func TestRecommend_PreferredChefWinsTies(t *testing.T) {
	repo := newFakeBookingRepo()
	tvl := &fakeTravel{defaultMinutes: 30}
	opt := &DefaultChefOptimizer{Travel: tvl, BookingRepo: repo, Logger: zap.NewNop()}

	a := testChef("chef-a", 50, 40.71)
	b := testChef("chef-b", 50, 40.71)

	rec, err := opt.Recommend(context.Background(), testBooking(12), []models.ChefInfo{a, b}, "cust-1", "chef-b", false)
	require.NoError(t, err)

	assert.Equal(t, "chef-b", rec.ChefID)
	assert.Equal(t, ReasonCustomerPreference, rec.Reason)
	// The soft preference boost lifts the preferred chef's total.
	assert.Greater(t, rec.Ranked[0].TotalScore, rec.Ranked[1].TotalScore)
}

func TestRecommend_HardPreferencePresent(t *testing.T) {
	opt := &DefaultChefOptimizer{Travel: &fakeTravel{}, BookingRepo: newFakeBookingRepo(), Logger: zap.NewNop()}
	chef := testChef("chef-x", 50, 40.71)

	rec, err := opt.Recommend(context.Background(), testBooking(12), []models.ChefInfo{chef}, "cust-1", "chef-x", true)
	require.NoError(t, err)

	assert.Equal(t, "chef-x", rec.ChefID)
	assert.Equal(t, 1.0, rec.Confidence)
	assert.Equal(t, ReasonCustomerRequested, rec.Reason)
}

func TestRecommend_HardPreferenceAbsent(t *testing.T) {
	opt := &DefaultChefOptimizer{Travel: &fakeTravel{}, BookingRepo: newFakeBookingRepo(), Logger: zap.NewNop()}
	other := testChef("chef-other", 50, 40.71)

	rec, err := opt.Recommend(context.Background(), testBooking(12), []models.ChefInfo{other}, "cust-1", "chef-gone", true)
	require.NoError(t, err)

	// Never silently substitute a different chef.
	assert.False(t, rec.Assigned())
	assert.Zero(t, rec.Confidence)
	assert.Equal(t, ReasonPreferredAbsent, rec.Reason)
}

func TestRecommend_NoCandidates(t *testing.T) {
	opt := &DefaultChefOptimizer{Travel: &fakeTravel{}, BookingRepo: newFakeBookingRepo(), Logger: zap.NewNop()}

	rec, err := opt.Recommend(context.Background(), testBooking(12), nil, "cust-1", "", false)
	require.NoError(t, err)

	assert.False(t, rec.Assigned())
	assert.Zero(t, rec.Confidence)
	assert.Equal(t, ReasonNoChefs, rec.Reason)
}

func TestRecommend_TravelEscalationScoresHonestly(t *testing.T) {
	repo := newFakeBookingRepo()
	tvl := &fakeTravel{err: &travel.EscalateToHumanError{}}
	opt := &DefaultChefOptimizer{Travel: tvl, BookingRepo: repo, Logger: zap.NewNop()}

	chef := testChef("chef-a", 50, 40.71)
	rec, err := opt.Recommend(context.Background(), testBooking(12), []models.ChefInfo{chef}, "cust-1", "", false)
	require.NoError(t, err)

	require.Len(t, rec.Ranked, 1)
	s := rec.Ranked[0]
	assert.Zero(t, s.TravelScore)
	assert.Zero(t, s.TravelMinutes)
	assert.True(t, s.TravelUnresolved)
	assert.Contains(t, s.Notes, "dispatcher review")
	// The chef still scores on the remaining factors rather than a guessed distance.
	assert.Greater(t, s.TotalScore, 0.0)
}

func TestIsoWeekStart(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "wednesday maps to its monday",
			in:   time.Date(2026, 4, 8, 17, 30, 0, 0, time.UTC),
			want: time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "monday maps to itself",
			in:   time.Date(2026, 4, 6, 9, 0, 0, 0, time.UTC),
			want: time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "sunday belongs to the preceding week",
			in:   time.Date(2026, 4, 12, 12, 0, 0, 0, time.UTC),
			want: time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isoWeekStart(tt.in))
		})
	}
}
