package utils

import (
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cipherdrop/cipherdrop/config"
)

var (
	redisClient *redis.Client
	redisOnce   sync.Once
)

// InitRedis dials Redis when a host is configured. Leaving RedisHost empty
// keeps the client nil; callers then use their in-memory fallbacks, which is
// the default for single-node deployments.
func InitRedis(cfg config.AppConfig) *redis.Client {
	redisOnce.Do(func() {
		if cfg.RedisHost == "" {
			return
		}
		redisClient = redis.NewClient(&redis.Options{
			Addr:         net.JoinHostPort(cfg.RedisHost, strconv.Itoa(cfg.RedisPort)),
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			DialTimeout:  3 * time.Second,
			ReadTimeout:  2 * time.Second,
			WriteTimeout: 2 * time.Second,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := redisClient.Ping(ctx).Err(); err != nil && Sugar != nil {
			// keep the client; transient outages are fine, callers fail open
			Sugar.Warnw("redis ping failed", "addr", cfg.RedisHost, "error", err)
		}
	})
	return redisClient
}

// GetRedis returns the client set up by InitRedis; nil when Redis is not
// configured.
func GetRedis() *redis.Client {
	return redisClient
}
