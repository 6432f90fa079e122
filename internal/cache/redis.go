package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ydvvpn197-netizen/theglocal-phase2-sub007/internal/logger"
)

// RedisClient wraps the redis.Client with centralized connection pooling.
type RedisClient struct {
	client *redis.Client
}

// Singleton instance (package-level)
var globalRedis *RedisClient

// NewRedisClient creates and initializes a Redis client with connection pooling.
func NewRedisClient(host, port, password string) (*RedisClient, error) {
	if host == "" {
		host = "localhost"
	}
	if port == "" {
		port = "6379"
	}

	addr := fmt.Sprintf("%s:%s", host, port)

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           0,
		MaxRetries:   3,
		PoolSize:     10,
		MinIdleConns: 5,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.ErrorWithFields("Failed to connect to Redis", err)
		return nil, err
	}

	rc := &RedisClient{client: client}
	globalRedis = rc

	logger.Log.Info("Redis client connected",
		zap.String("address", addr),
	)

	return rc, nil
}

// GetRedisClient returns the global Redis client instance. May be nil when
// Redis is not configured; callers treat a nil client as a cache miss.
func GetRedisClient() *RedisClient {
	return globalRedis
}

// Close closes the Redis connection gracefully.
func (rc *RedisClient) Close() error {
	if rc == nil || rc.client == nil {
		return nil
	}
	return rc.client.Close()
}

// Ping tests the Redis connection.
func (rc *RedisClient) Ping(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

// Get retrieves a value from Redis.
func (rc *RedisClient) Get(ctx context.Context, key string) (string, error) {
	return rc.client.Get(ctx, key).Result()
}

// GetInt retrieves an integer value from Redis.
func (rc *RedisClient) GetInt(ctx context.Context, key string) (int64, error) {
	return rc.client.Get(ctx, key).Int64()
}

// SetEx stores a value in Redis with expiration.
func (rc *RedisClient) SetEx(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return rc.client.Set(ctx, key, value, ttl).Err()
}

// Del deletes one or more keys from Redis.
func (rc *RedisClient) Del(ctx context.Context, keys ...string) error {
	return rc.client.Del(ctx, keys...).Err()
}

// Incr increments a key value in Redis.
func (rc *RedisClient) Incr(ctx context.Context, key string) (int64, error) {
	return rc.client.Incr(ctx, key).Result()
}

// Expire sets an expiration timeout on a key.
func (rc *RedisClient) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return rc.client.Expire(ctx, key, ttl).Err()
}

// IsMiss reports whether err is a cache miss rather than a real failure.
func IsMiss(err error) bool {
	return err == redis.Nil
}

// Key builders. All cached state is derivable from Postgres, so keys carry
// TTLs and invalidation is best-effort.

// UnreadCountKey is the cached unread-notification counter for a user.
func UnreadCountKey(userID string) string {
	return "notif:unread:" + userID
}

// PollResultsKey caches the serialized tally for a poll.
func PollResultsKey(pollID string) string {
	return "poll:results:" + pollID
}

// RateLimitKey tracks request counts per client per route group.
func RateLimitKey(scope, clientID string) string {
	return "ratelimit:" + scope + ":" + clientID
}

// UnreadCountTTL bounds staleness if an invalidation is lost.
const UnreadCountTTL = 5 * time.Minute

// PollResultsTTL keeps result reads cheap on hot polls.
const PollResultsTTL = 30 * time.Second
