package travel

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubProvider records calls and replies with canned durations.
type stubProvider struct {
	name    string
	minutes int
	err     error
	calls   int
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Duration(ctx context.Context, originLat, originLng, destLat, destLng float64, departure time.Time) (int, error) {
	p.calls++
	if p.err != nil {
		return 0, p.err
	}
	return p.minutes, nil
}

func newTestService(providers ...RouteProvider) *DefaultTravelTimeService {
	return &DefaultTravelTimeService{
		Providers:       providers,
		ProviderTimeout: time.Second,
		Logger:          zap.NewNop(),
	}
}

func TestResolve_PrimaryProvider(t *testing.T) {
	primary := &stubProvider{name: "google", minutes: 20}
	backup := &stubProvider{name: "osrm", minutes: 25}
	svc := newTestService(primary, backup)

	offpeak := time.Date(2026, 4, 10, 11, 0, 0, 0, time.UTC)
	estimate, err := svc.Resolve(context.Background(), 40.713, -74.006, 40.731, -73.935, offpeak)
	require.NoError(t, err)

	assert.Equal(t, 20, estimate.Minutes)
	assert.Equal(t, "google", estimate.Provider)
	assert.False(t, estimate.RushHour)
	assert.Zero(t, backup.calls, "backup must not be consulted when primary succeeds")
}

func TestResolve_RushHourAdjustment(t *testing.T) {
	primary := &stubProvider{name: "google", minutes: 20}
	svc := newTestService(primary)

	rush := time.Date(2026, 4, 10, 16, 0, 0, 0, time.UTC)
	estimate, err := svc.Resolve(context.Background(), 40.713, -74.006, 40.731, -73.935, rush)
	require.NoError(t, err)

	assert.Equal(t, 30, estimate.Minutes)
	assert.True(t, estimate.RushHour)
}

func TestResolve_FallsBackToBackup(t *testing.T) {
	primary := &stubProvider{name: "google", err: errors.New("quota exceeded")}
	backup := &stubProvider{name: "osrm", minutes: 25}
	svc := newTestService(primary, backup)

	offpeak := time.Date(2026, 4, 10, 11, 0, 0, 0, time.UTC)
	estimate, err := svc.Resolve(context.Background(), 40.713, -74.006, 40.731, -73.935, offpeak)
	require.NoError(t, err)

	assert.Equal(t, 25, estimate.Minutes)
	assert.Equal(t, "osrm", estimate.Provider)
	assert.Equal(t, 2, primary.calls, "primary gets a bounded retry before fallback")
}

func TestResolve_AllProvidersFail_EscalatesToHuman(t *testing.T) {
	primary := &stubProvider{name: "google", err: errors.New("quota exceeded")}
	backup := &stubProvider{name: "osrm", err: errors.New("connection refused")}
	svc := newTestService(primary, backup)

	offpeak := time.Date(2026, 4, 10, 11, 0, 0, 0, time.UTC)
	estimate, err := svc.Resolve(context.Background(), 40.713, -74.006, 40.731, -73.935, offpeak)

	var escalate *EscalateToHumanError
	require.ErrorAs(t, err, &escalate)
	assert.Len(t, escalate.Attempts, 2)
	// No estimate of any kind is returned once the chain is exhausted.
	assert.Zero(t, estimate.Minutes)
	assert.Empty(t, estimate.Provider)
}

func TestResolve_ProviderErrorWrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	primary := &stubProvider{name: "google", err: cause}
	svc := newTestService(primary)

	_, err := svc.Resolve(context.Background(), 40.713, -74.006, 40.731, -73.935, time.Now())

	var escalate *EscalateToHumanError
	require.ErrorAs(t, err, &escalate)
	require.Len(t, escalate.Attempts, 1)
	assert.ErrorIs(t, escalate.Attempts[0], cause)
}

func TestSecondsToMinutes(t *testing.T) {
	assert.Equal(t, 1, secondsToMinutes(0))
	assert.Equal(t, 1, secondsToMinutes(59))
	assert.Equal(t, 1, secondsToMinutes(60))
	assert.Equal(t, 2, secondsToMinutes(61))
	assert.Equal(t, 20, secondsToMinutes(1200))
}
