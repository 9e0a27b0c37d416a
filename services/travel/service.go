package travel

import (
	"context"
	"encoding/json"
	"time"

	"chefdispatch/models"
	"chefdispatch/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const providerAttempts = 2

// TravelTimeService resolves travel durations through a cache -> primary ->
// backup -> escalate chain. The cache and provider clients are injected; a
// process holds one long-lived instance shared by every caller.
type TravelTimeService interface {
	Resolve(ctx context.Context, originLat, originLng, destLat, destLng float64, departure time.Time) (models.TravelEstimate, error)
}

// DefaultTravelTimeService is the production implementation.
type DefaultTravelTimeService struct {
	Cache           *redis.Client
	Providers       []RouteProvider // Tried in order
	CacheTTL        time.Duration
	ProviderTimeout time.Duration
	Logger          *zap.Logger
}

// Resolve walks the failsafe chain. A cache hit is returned as-is: the
// bucketed key already encodes traffic, so no further adjustment applies.
// When every provider tier fails it returns *EscalateToHumanError and never
// substitutes a straight-line estimate.
func (s *DefaultTravelTimeService) Resolve(ctx context.Context, originLat, originLng, destLat, destLng float64, departure time.Time) (models.TravelEstimate, error) {
	logger := s.logger()
	key := utils.TravelCachePrefix + CacheKey(originLat, originLng, destLat, destLng, departure)

	if entry, ok := s.cacheLookup(ctx, key); ok {
		return models.TravelEstimate{
			Minutes:    entry.Minutes,
			Provider:   "cache",
			RushHour:   IsRushHour(departure),
			ResolvedAt: entry.ResolvedAt,
		}, nil
	}

	var attempts []error
	for _, provider := range s.Providers {
		raw, err := s.tryProvider(ctx, provider, originLat, originLng, destLat, destLng, departure)
		if err != nil {
			logger.Warn("route provider exhausted, falling back",
				zap.String("provider", provider.Name()), zap.Error(err))
			attempts = append(attempts, &ProviderError{Provider: provider.Name(), Err: err})
			continue
		}

		minutes := AdjustForTraffic(raw, departure)
		s.cacheStore(ctx, key, models.TravelCacheEntry{
			Minutes:    minutes,
			Provider:   provider.Name(),
			ResolvedAt: time.Now(),
		})

		return models.TravelEstimate{
			Minutes:    minutes,
			Provider:   provider.Name(),
			RushHour:   IsRushHour(departure),
			ResolvedAt: time.Now(),
		}, nil
	}

	logger.Error("all route providers failed, escalating to human",
		zap.Int("attempts", len(attempts)))
	return models.TravelEstimate{}, &EscalateToHumanError{Attempts: attempts}
}

// tryProvider runs one tier with bounded retry and a hard per-call timeout
// independent of the request deadline, so a slow provider cannot stall the
// optimizer.
func (s *DefaultTravelTimeService) tryProvider(ctx context.Context, provider RouteProvider, originLat, originLng, destLat, destLng float64, departure time.Time) (int, error) {
	var lastErr error
	for attempt := 0; attempt < providerAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(time.Duration(attempt) * 200 * time.Millisecond):
			}
		}

		callCtx, cancel := context.WithTimeout(ctx, s.providerTimeout())
		raw, err := provider.Duration(callCtx, originLat, originLng, destLat, destLng, departure)
		cancel()
		if err == nil {
			return raw, nil
		}
		lastErr = err
	}
	return 0, lastErr
}

func (s *DefaultTravelTimeService) cacheLookup(ctx context.Context, key string) (models.TravelCacheEntry, bool) {
	if s.Cache == nil {
		return models.TravelCacheEntry{}, false
	}
	data, err := s.Cache.Get(ctx, key).Result()
	if err != nil {
		return models.TravelCacheEntry{}, false
	}
	var entry models.TravelCacheEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		return models.TravelCacheEntry{}, false
	}
	return entry, true
}

// cacheStore upserts an entry. Writes are idempotent per bucketed key, so
// concurrent last-write-wins is fine and no locking is needed.
func (s *DefaultTravelTimeService) cacheStore(ctx context.Context, key string, entry models.TravelCacheEntry) {
	if s.Cache == nil {
		return
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := s.Cache.Set(ctx, key, data, s.cacheTTL()).Err(); err != nil {
		s.logger().Warn("failed to store travel cache entry", zap.String("key", key), zap.Error(err))
	}
}

func (s *DefaultTravelTimeService) cacheTTL() time.Duration {
	if s.CacheTTL > 0 {
		return s.CacheTTL
	}
	return time.Hour
}

func (s *DefaultTravelTimeService) providerTimeout() time.Duration {
	if s.ProviderTimeout > 0 {
		return s.ProviderTimeout
	}
	return 3 * time.Second
}

func (s *DefaultTravelTimeService) logger() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return utils.GetLogger()
}
