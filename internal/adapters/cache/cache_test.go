package cache

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"itinerary-route-service/internal/domain"
	"itinerary-route-service/internal/platform/db"
	"itinerary-route-service/internal/ports"
)

// The cache tables are created inline to keep this package free of the
// repositories dependency.
func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	for _, stmt := range []string{
		`CREATE TABLE distance_cache (
			origin TEXT NOT NULL,
			destination TEXT NOT NULL,
			distance_meters INTEGER NOT NULL,
			duration_seconds INTEGER NOT NULL,
			updated_at BIGINT NOT NULL DEFAULT 0,
			PRIMARY KEY (origin, destination)
		);`,
		`CREATE TABLE geocode_cache (
			address TEXT PRIMARY KEY,
			lon DOUBLE PRECISION NOT NULL,
			lat DOUBLE PRECISION NOT NULL
		);`,
	} {
		_, err = conn.Exec(stmt)
		require.NoError(t, err)
	}
	return conn
}

func newTestRedis(t *testing.T, ttl time.Duration) (*RedisDistanceCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	c := NewRedisDistanceCacheFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), ttl)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestSQLDistanceCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewSQLDistanceCache(newTestDB(t), db.SQLite, 0)

	err := c.PutMany(ctx, "HUB", map[string]ports.DistanceResult{
		"A": {DistanceMeters: 1000, DurationSeconds: 300},
		"B": {Unreachable: true},
	})
	require.NoError(t, err)

	got, err := c.GetMany(ctx, "HUB", []string{"A", " A", "B", "C", ""})
	require.NoError(t, err)
	assert.Equal(t, map[string]ports.DistanceResult{
		"A": {DistanceMeters: 1000, DurationSeconds: 300},
	}, got)

	require.NoError(t, c.PutMany(ctx, "HUB", map[string]ports.DistanceResult{
		"A": {DistanceMeters: 1100, DurationSeconds: 320},
	}))
	got, err = c.GetMany(ctx, "HUB", []string{"A"})
	require.NoError(t, err)
	assert.Equal(t, 320, got["A"].DurationSeconds)
}

func TestSQLDistanceCacheExpiresOldEntries(t *testing.T) {
	ctx := context.Background()
	c := NewSQLDistanceCache(newTestDB(t), db.SQLite, time.Hour)

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	require.NoError(t, c.PutMany(ctx, "HUB", map[string]ports.DistanceResult{
		"A": {DistanceMeters: 1000, DurationSeconds: 300},
	}))

	now = now.Add(30 * time.Minute)
	got, err := c.GetMany(ctx, "HUB", []string{"A"})
	require.NoError(t, err)
	assert.Len(t, got, 1)

	now = now.Add(2 * time.Hour)
	got, err = c.GetMany(ctx, "HUB", []string{"A"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSQLGeocodeCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c := NewSQLGeocodeCache(newTestDB(t), db.SQLite)

	require.NoError(t, c.PutMany(ctx, map[string]domain.Coordinates{
		"1 Main St": {Lon: -112.07, Lat: 33.45},
	}))

	got, err := c.GetMany(ctx, []string{"1 Main St", "2 Oak Ave"})
	require.NoError(t, err)
	assert.Equal(t, map[string]domain.Coordinates{"1 Main St": {Lon: -112.07, Lat: 33.45}}, got)
}

func TestRedisDistanceCache(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t, time.Minute)

	require.NoError(t, c.PutMany(ctx, "HUB", map[string]ports.DistanceResult{
		"A": {DistanceMeters: 1000, DurationSeconds: 300},
		"B": {Unreachable: true},
	}))
	assert.True(t, mr.Exists("itinerary:dist:HUB|A"))
	assert.False(t, mr.Exists("itinerary:dist:HUB|B"))

	got, err := c.GetMany(ctx, "HUB", []string{"A", "B"})
	require.NoError(t, err)
	assert.Equal(t, map[string]ports.DistanceResult{"A": {DistanceMeters: 1000, DurationSeconds: 300}}, got)

	mr.FastForward(2 * time.Minute)
	got, err = c.GetMany(ctx, "HUB", []string{"A"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisDistanceCacheSkipsCorruptEntries(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestRedis(t, 0)

	require.NoError(t, mr.Set("itinerary:dist:HUB|A", "not json"))
	got, err := c.GetMany(ctx, "HUB", []string{"A"})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTieredDistanceCacheBackfillsFasterLayer(t *testing.T) {
	ctx := context.Background()
	fast, _ := newTestRedis(t, time.Minute)
	slow := NewSQLDistanceCache(newTestDB(t), db.SQLite, 0)

	require.NoError(t, slow.PutMany(ctx, "HUB", map[string]ports.DistanceResult{
		"A": {DistanceMeters: 1000, DurationSeconds: 300},
	}))

	tiered := NewTieredDistanceCache(fast, nil, slow)
	got, err := tiered.GetMany(ctx, "HUB", []string{"A", "B"})
	require.NoError(t, err)
	assert.Equal(t, map[string]ports.DistanceResult{"A": {DistanceMeters: 1000, DurationSeconds: 300}}, got)

	fromFast, err := fast.GetMany(ctx, "HUB", []string{"A"})
	require.NoError(t, err)
	assert.Len(t, fromFast, 1)

	require.NoError(t, tiered.PutMany(ctx, "HUB", map[string]ports.DistanceResult{
		"B": {DistanceMeters: 500, DurationSeconds: 60},
	}))
	fromSlow, err := slow.GetMany(ctx, "HUB", []string{"B"})
	require.NoError(t, err)
	assert.Len(t, fromSlow, 1)
}
