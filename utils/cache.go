// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"estuary/config"

	"github.com/go-redis/redis/v8"
)

var (
	// CacheClient backs the API query cache.
	CacheClient *redis.Client
	// AuthCacheClient is the dedicated client for auth sessions.
	AuthCacheClient *redis.Client
)

func newRedisClient(db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
}

func ping(client *redis.Client, name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (%s): %v", name, err)
	}
}

// InitCache initializes the query cache client.
func InitCache() {
	CacheClient = newRedisClient(config.AppConfig.RedisCacheDB)
	ping(CacheClient, "Cache")
}

// GetCacheClient returns the query cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		InitCache()
	}
	return CacheClient
}

// InitAuthCache initializes the Redis client holding auth sessions.
func InitAuthCache() {
	AuthCacheClient = newRedisClient(config.AppConfig.RedisAuthDB)
	ping(AuthCacheClient, "Auth Cache")
}

// GetAuthCacheClient returns the Redis client for auth sessions.
func GetAuthCacheClient() *redis.Client {
	if AuthCacheClient == nil {
		InitAuthCache()
	}
	return AuthCacheClient
}

// InitRedis eagerly connects both clients.
func InitRedis() {
	GetCacheClient()
	GetAuthCacheClient()
}
