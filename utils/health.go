package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// HealthStatus is a point-in-time snapshot of the backing stores the
// dispatch core depends on.
type HealthStatus struct {
	Mongo     bool            `json:"mongo"`
	Caches    map[string]bool `json:"caches"`
	CheckedAt time.Time       `json:"checkedAt"`
}

var (
	healthMu      sync.RWMutex
	currentHealth HealthStatus
)

const (
	healthCheckInterval = 30 * time.Second
	healthPingTimeout   = 3 * time.Second
)

// GetHealthStatus returns the latest stored snapshot.
func GetHealthStatus() HealthStatus {
	healthMu.RLock()
	defer healthMu.RUnlock()
	return currentHealth
}

// StartHealthMonitor pings the named Redis caches and Mongo on an interval
// and records the result for the health endpoint.
func StartHealthMonitor(caches map[string]*redis.Client, mongoClient *mongo.Client) {
	go func() {
		ticker := time.NewTicker(healthCheckInterval)
		defer ticker.Stop()

		for range ticker.C {
			snapshot := HealthStatus{
				Caches:    make(map[string]bool, len(caches)),
				CheckedAt: time.Now(),
			}

			ctx, cancel := context.WithTimeout(context.Background(), healthPingTimeout)
			for name, client := range caches {
				snapshot.Caches[name] = client.Ping(ctx).Err() == nil
			}
			snapshot.Mongo = mongoClient.Ping(ctx, nil) == nil
			cancel()

			healthMu.Lock()
			currentHealth = snapshot
			healthMu.Unlock()
		}
	}()
}
