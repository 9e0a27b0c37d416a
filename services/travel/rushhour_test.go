package travel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsRushHour(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want bool
	}{
		{name: "weekday before window", at: time.Date(2026, 4, 10, 14, 59, 0, 0, time.UTC), want: false},
		{name: "weekday window start", at: time.Date(2026, 4, 10, 15, 0, 0, 0, time.UTC), want: true},
		{name: "weekday mid window", at: time.Date(2026, 4, 10, 17, 30, 0, 0, time.UTC), want: true},
		{name: "weekday last rush minute", at: time.Date(2026, 4, 10, 18, 59, 0, 0, time.UTC), want: true},
		{name: "weekday window end is exclusive", at: time.Date(2026, 4, 10, 19, 0, 0, 0, time.UTC), want: false},
		{name: "saturday in window hours", at: time.Date(2026, 4, 11, 17, 0, 0, 0, time.UTC), want: false},
		{name: "sunday in window hours", at: time.Date(2026, 4, 12, 16, 0, 0, 0, time.UTC), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRushHour(tt.at))
		})
	}
}

func TestAdjustForTraffic(t *testing.T) {
	rush := time.Date(2026, 4, 10, 16, 0, 0, 0, time.UTC)
	offpeak := time.Date(2026, 4, 10, 11, 0, 0, 0, time.UTC)

	assert.Equal(t, 30, AdjustForTraffic(20, rush))
	assert.Equal(t, 23, AdjustForTraffic(15, rush)) // 22.5 rounds up
	assert.Equal(t, 20, AdjustForTraffic(20, offpeak))
	assert.Equal(t, 0, AdjustForTraffic(0, rush))
}

func TestCacheKey_BucketsAndRounding(t *testing.T) {
	rush := time.Date(2026, 4, 10, 16, 0, 0, 0, time.UTC)
	offpeak := time.Date(2026, 4, 10, 11, 0, 0, 0, time.UTC)

	key := CacheKey(40.71283, -74.00594, 40.73061, -73.93524, rush)
	assert.Equal(t, "40.713,-74.006:40.731,-73.935:rush", key)

	// Origins within the rounding radius collapse onto one entry.
	near := CacheKey(40.71299, -74.00601, 40.73061, -73.93524, rush)
	assert.Equal(t, key, near)

	// Same trip off-peak lands in a different bucket.
	assert.NotEqual(t, key, CacheKey(40.71283, -74.00594, 40.73061, -73.93524, offpeak))

	// All off-peak hours share one bucket.
	morning := time.Date(2026, 4, 10, 8, 0, 0, 0, time.UTC)
	assert.Equal(t,
		CacheKey(40.71283, -74.00594, 40.73061, -73.93524, offpeak),
		CacheKey(40.71283, -74.00594, 40.73061, -73.93524, morning))
}
