package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"itinerary-route-service/internal/platform/db"
	"itinerary-route-service/internal/platform/obs"
	"itinerary-route-service/internal/ports"
)

// SQLDistanceCache is a SQL-backed cache for origin->destination distance results.
// Keys are expected to be normalized by the caller.
type SQLDistanceCache struct {
	DB      *sql.DB
	Dialect db.Dialect
	// MaxAge drops entries older than this on read. Zero keeps them forever.
	MaxAge time.Duration

	now func() time.Time
}

func NewSQLDistanceCache(conn *sql.DB, dialect db.Dialect, maxAge time.Duration) *SQLDistanceCache {
	return &SQLDistanceCache{DB: conn, Dialect: dialect, MaxAge: maxAge, now: time.Now}
}

// Fetch cached distances for one origin and multiple destinations.
func (s *SQLDistanceCache) GetMany(
	ctx context.Context,
	origin string,
	destinations []string,
) (_ map[string]ports.DistanceResult, err error) {
	defer obs.Time(ctx, "distance.cache.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("distance cache: db is nil")
	}

	if origin == "" {
		return nil, errors.New("get distance cache: origin must not be empty")
	}

	uniq := uniqueKeys(destinations)
	if len(uniq) == 0 {
		return map[string]ports.DistanceResult{}, nil
	}

	var (
		q    string
		args []any
	)
	switch s.Dialect {
	case db.Postgres:
		q = `
		SELECT destination, distance_meters, duration_seconds
		FROM distance_cache
		WHERE origin = $1
			AND destination = ANY($2::text[])
			AND updated_at >= $3;
		`
		args = []any{origin, uniq, s.cutoff()}
	default:
		// SQLite cannot bind a slice, so only the placeholder list is interpolated.
		q = fmt.Sprintf(`
		SELECT destination, distance_meters, duration_seconds
		FROM distance_cache
		WHERE origin = ?
			AND destination IN (%s)
			AND updated_at >= ?;
		`, s.Dialect.Placeholders(2, len(uniq)))
		args = make([]any, 0, len(uniq)+2)
		args = append(args, origin)
		for _, d := range uniq {
			args = append(args, d)
		}
		args = append(args, s.cutoff())
	}

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("get distance cache: query distance_cache table: %w", err)
	}
	defer rows.Close()

	out := make(map[string]ports.DistanceResult, len(uniq))
	for rows.Next() {
		var dest string
		var meters, seconds int
		if err := rows.Scan(&dest, &meters, &seconds); err != nil {
			return nil, fmt.Errorf("get distance cache: scan rows: %w", err)
		}
		out[dest] = ports.DistanceResult{
			DistanceMeters:  meters,
			DurationSeconds: seconds,
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get distance cache: row iteration: %w", err)
	}

	return out, nil
}

// Store many cached distance results for a single origin. Unreachable
// results are skipped so a later lookup asks the provider again.
func (s *SQLDistanceCache) PutMany(
	ctx context.Context,
	origin string,
	results map[string]ports.DistanceResult,
) error {
	if s.DB == nil {
		return errors.New("distance cache: db is nil")
	}

	if origin == "" {
		return errors.New("insert distance cache: origin must not be empty")
	}

	if len(results) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert distance cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
	INSERT INTO distance_cache (origin, destination, distance_meters, duration_seconds, updated_at)
	VALUES (%s)
	ON CONFLICT (origin, destination) DO UPDATE
	SET distance_meters = excluded.distance_meters,
		duration_seconds = excluded.duration_seconds,
		updated_at = excluded.updated_at;
	`, s.Dialect.Placeholders(1, 5)))
	if err != nil {
		return fmt.Errorf("insert distance cache: db prepare: %w", err)
	}
	defer stmt.Close()

	stamp := s.clock().Unix()
	for dest, r := range results {
		if strings.TrimSpace(dest) == "" {
			return fmt.Errorf("insert distance cache: empty destination key")
		}
		if r.Unreachable {
			continue
		}

		if _, err := stmt.ExecContext(ctx, origin, dest, r.DistanceMeters, r.DurationSeconds, stamp); err != nil {
			return fmt.Errorf("insert distance cache dest=%q: %w", dest, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert distance cache commit: %w", err)
	}

	return nil
}

func (s *SQLDistanceCache) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

// cutoff is the oldest updated_at still served.
func (s *SQLDistanceCache) cutoff() int64 {
	if s.MaxAge <= 0 {
		return 0
	}
	return s.clock().Add(-s.MaxAge).Unix()
}

// uniqueKeys trims, drops empties and dedupes while keeping order.
func uniqueKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	uniq := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		uniq = append(uniq, k)
	}
	return uniq
}
