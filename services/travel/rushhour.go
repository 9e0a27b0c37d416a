package travel

import (
	"fmt"
	"math"
	"time"
)

// RushHourMultiplier inflates raw provider durations during weekday peak
// traffic. Every travel-time consumer must go through AdjustForTraffic so
// the scheduling path and the fee path never disagree on traffic rules.
const RushHourMultiplier = 1.5

// IsRushHour reports whether t falls in weekday rush hour: Monday-Friday,
// 15:00-19:00 local, end-exclusive.
func IsRushHour(t time.Time) bool {
	switch t.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	h := t.Hour()
	return h >= 15 && h < 19
}

// AdjustForTraffic applies the rush-hour multiplier to a raw duration.
func AdjustForTraffic(rawMinutes int, departure time.Time) int {
	if !IsRushHour(departure) {
		return rawMinutes
	}
	return int(math.Round(float64(rawMinutes) * RushHourMultiplier))
}

// TimeBucket maps a departure time onto a cache bucket. All non-rush hours
// share one bucket so identical off-peak trips hit the same cache slot.
func TimeBucket(t time.Time) string {
	if IsRushHour(t) {
		return "rush"
	}
	return "offpeak"
}

// CacheKey builds the travel cache key from rounded coordinates and the
// departure bucket. Coordinates are rounded to three decimals (~110m) so
// nearby origins collapse onto one entry.
func CacheKey(originLat, originLng, destLat, destLng float64, departure time.Time) string {
	return fmt.Sprintf("%.3f,%.3f:%.3f,%.3f:%s",
		originLat, originLng, destLat, destLng, TimeBucket(departure))
}
