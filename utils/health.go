package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Mongo     bool      `json:"mongo"`
	Redis     []bool    `json:"redis"`
	CheckedAt time.Time `json:"checkedAt"`
}

// Healthy reports whether every backing store answered the last ping.
func (h HealthStatus) Healthy() bool {
	if !h.Mongo {
		return false
	}
	for _, ok := range h.Redis {
		if !ok {
			return false
		}
	}
	return true
}

var (
	currentHealth HealthStatus
	mu            sync.RWMutex
)

// GetHealthStatus returns latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	mu.RLock()
	defer mu.RUnlock()
	return currentHealth
}

func checkHealth(ctx context.Context, redisClients []*redis.Client, mongoClient *mongo.Client) HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	status := HealthStatus{CheckedAt: time.Now()}
	for _, client := range redisClients {
		status.Redis = append(status.Redis, client.Ping(ctx).Err() == nil)
	}
	status.Mongo = mongoClient != nil && mongoClient.Ping(ctx, nil) == nil
	return status
}

// StartHealthMonitor checks the backing stores now and then every
// HealthCheckInterval until ctx is cancelled.
func StartHealthMonitor(ctx context.Context, redisClients []*redis.Client, mongoClient *mongo.Client) {
	update := func() {
		status := checkHealth(ctx, redisClients, mongoClient)
		if !status.Healthy() {
			GetLogger().Warn("Backing store unhealthy", zap.Bool("mongo", status.Mongo), zap.Bools("redis", status.Redis))
		}
		mu.Lock()
		currentHealth = status
		mu.Unlock()
	}

	update()
	go func() {
		ticker := time.NewTicker(HealthCheckInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				update()
			}
		}
	}()
}
