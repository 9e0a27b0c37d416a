// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"chefdispatch/config"

	"github.com/go-redis/redis/v8"
)

var (
	// TravelCacheClient caches resolved travel durations.
	TravelCacheClient *redis.Client
	// GeoCacheClient caches geocoding results.
	GeoCacheClient *redis.Client
	// NegotiationCacheClient stores open negotiation requests.
	NegotiationCacheClient *redis.Client
)

// InitTravelCache initializes the Redis client for travel-time caching.
func InitTravelCache() {
	TravelCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisTravelDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := TravelCacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Travel Cache): %v", err)
	}
}

// GetTravelCacheClient returns the travel cache client.
func GetTravelCacheClient() *redis.Client {
	if TravelCacheClient == nil {
		InitTravelCache()
	}
	return TravelCacheClient
}

// InitGeoCache initializes the Redis client for geocode caching.
func InitGeoCache() {
	GeoCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisGeoDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := GeoCacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Geo Cache): %v", err)
	}
}

// GetGeoCacheClient returns the geocode cache client.
func GetGeoCacheClient() *redis.Client {
	if GeoCacheClient == nil {
		InitGeoCache()
	}
	return GeoCacheClient
}

// InitNegotiationCache initializes the Redis client for negotiation storage.
func InitNegotiationCache() {
	NegotiationCacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisNegotiationDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := NegotiationCacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Negotiation Store): %v", err)
	}
}

// GetNegotiationCacheClient returns the negotiation store client.
func GetNegotiationCacheClient() *redis.Client {
	if NegotiationCacheClient == nil {
		InitNegotiationCache()
	}
	return NegotiationCacheClient
}

// InitRedis initializes all Redis clients used by the service.
func InitRedis() {
	InitTravelCache()
	InitGeoCache()
	InitNegotiationCache()
}
