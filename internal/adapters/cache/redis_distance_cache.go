package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"itinerary-route-service/internal/platform/obs"
	"itinerary-route-service/internal/ports"
)

const defaultRedisPrefix = "itinerary:"

// RedisDistanceCache keeps matrix results in Redis with a TTL so several
// service instances share lookups.
type RedisDistanceCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

type redisDistance struct {
	Meters  int `json:"m"`
	Seconds int `json:"s"`
}

// NewRedisDistanceCache connects and pings the server before returning.
func NewRedisDistanceCache(addr, password string, dbIndex int, ttl time.Duration) (*RedisDistanceCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       dbIndex,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return NewRedisDistanceCacheFromClient(client, ttl), nil
}

func NewRedisDistanceCacheFromClient(client *redis.Client, ttl time.Duration) *RedisDistanceCache {
	return &RedisDistanceCache{client: client, prefix: defaultRedisPrefix, ttl: ttl}
}

func (c *RedisDistanceCache) Close() error {
	return c.client.Close()
}

func (c *RedisDistanceCache) key(origin, destination string) string {
	return c.prefix + "dist:" + origin + "|" + destination
}

func (c *RedisDistanceCache) GetMany(
	ctx context.Context,
	origin string,
	destinations []string,
) (_ map[string]ports.DistanceResult, err error) {
	defer obs.Time(ctx, "distance.redis.GetMany")(&err)

	if origin == "" {
		return nil, errors.New("get redis distance cache: origin must not be empty")
	}

	uniq := uniqueKeys(destinations)
	if len(uniq) == 0 {
		return map[string]ports.DistanceResult{}, nil
	}

	keys := make([]string, len(uniq))
	for i, d := range uniq {
		keys[i] = c.key(origin, d)
	}

	vals, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("get redis distance cache: mget: %w", err)
	}

	out := make(map[string]ports.DistanceResult, len(uniq))
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var rd redisDistance
		if err := json.Unmarshal([]byte(raw), &rd); err != nil {
			log.Printf("redis distance cache: dropping corrupt entry key=%s err=%v", keys[i], err)
			continue
		}
		out[uniq[i]] = ports.DistanceResult{DistanceMeters: rd.Meters, DurationSeconds: rd.Seconds}
	}
	return out, nil
}

// PutMany writes results in one pipeline. Unreachable results are skipped.
func (c *RedisDistanceCache) PutMany(
	ctx context.Context,
	origin string,
	results map[string]ports.DistanceResult,
) error {
	if origin == "" {
		return errors.New("insert redis distance cache: origin must not be empty")
	}
	if len(results) == 0 {
		return nil
	}

	pipe := c.client.Pipeline()
	queued := 0
	for dest, r := range results {
		if dest == "" {
			return errors.New("insert redis distance cache: empty destination key")
		}
		if r.Unreachable {
			continue
		}
		data, err := json.Marshal(redisDistance{Meters: r.DistanceMeters, Seconds: r.DurationSeconds})
		if err != nil {
			return fmt.Errorf("insert redis distance cache: marshal: %w", err)
		}
		pipe.Set(ctx, c.key(origin, dest), data, c.ttl)
		queued++
	}
	if queued == 0 {
		return nil
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("insert redis distance cache: exec pipeline: %w", err)
	}
	return nil
}
