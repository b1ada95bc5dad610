package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"meeting-point-service/internal/domain"
	"meeting-point-service/internal/platform/db"
	"meeting-point-service/internal/platform/obs"
	"strings"
	"time"
)

// SQLTravelTimeCache is a SQL-backed cache for origin->destination travel
// durations, keyed by waypoint key and travel mode.
type SQLTravelTimeCache struct {
	DB      *sql.DB
	Dialect db.Dialect
}

func NewSQLTravelTimeCache(conn *sql.DB, dialect db.Dialect) *SQLTravelTimeCache {
	return &SQLTravelTimeCache{DB: conn, Dialect: dialect}
}

// Fetch cached durations for one origin and multiple destinations.
func (s *SQLTravelTimeCache) GetMany(
	ctx context.Context,
	origin string,
	mode domain.TravelMode,
	destinations []string,
) (_ map[string]domain.TravelDuration, err error) {
	defer obs.Time(ctx, "travel_time.cache.GetMany")(&err)

	if s.DB == nil {
		return nil, errors.New("travel time cache: db is nil")
	}

	if origin == "" {
		return nil, errors.New("get travel time cache: origin must not be empty")
	}

	uniq := uniqueKeys(destinations)
	if len(uniq) == 0 {
		return map[string]domain.TravelDuration{}, nil
	}

	p := s.Dialect.Placeholder
	cond, condArgs := memberOf(s.Dialect, "destination_key", 3, uniq)
	q := fmt.Sprintf(`
	SELECT destination_key, duration_seconds
    FROM travel_time_cache
    WHERE origin_key = %s
        AND mode = %s
        AND %s;
	`, p(1), p(2), cond)

	args := append([]any{origin, string(mode)}, condArgs...)

	rows, err := s.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("get travel time cache: query travel_time_cache table: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.TravelDuration, len(uniq))
	for rows.Next() {
		var dest string
		var seconds float64
		if err := rows.Scan(&dest, &seconds); err != nil {
			return nil, fmt.Errorf("get travel time cache: scan rows: %w", err)
		}
		out[dest] = domain.FromSeconds(seconds)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get travel time cache: row iteration: %w", err)
	}

	return out, nil
}

// Store many durations for a single origin. Unreachable durations are skipped:
// a failed lookup may succeed next time.
func (s *SQLTravelTimeCache) PutMany(
	ctx context.Context,
	origin string,
	mode domain.TravelMode,
	results map[string]domain.TravelDuration,
) error {
	if s.DB == nil {
		return errors.New("travel time cache: db is nil")
	}

	if origin == "" {
		return errors.New("insert travel time cache: origin must not be empty")
	}

	if len(results) == 0 {
		return nil
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("insert travel time cache: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	p := s.Dialect.Placeholder
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
	INSERT INTO travel_time_cache (origin_key, destination_key, mode, duration_seconds, updated_at)
    VALUES (%s, %s, %s, %s, %s)
	ON CONFLICT (origin_key, destination_key, mode) DO UPDATE
	SET duration_seconds = EXCLUDED.duration_seconds,
		updated_at = EXCLUDED.updated_at;
	`, p(1), p(2), p(3), p(4), p(5)))
	if err != nil {
		return fmt.Errorf("insert travel time cache: db prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().Unix()
	for dest, d := range results {
		if strings.TrimSpace(dest) == "" {
			return fmt.Errorf("insert travel time cache: empty destination key")
		}
		if d.IsUnreachable() {
			continue
		}

		seconds := d.Duration().Seconds()
		if _, err := stmt.ExecContext(ctx, origin, dest, string(mode), seconds, now); err != nil {
			return fmt.Errorf("insert travel time cache dest=%q: %w", dest, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("insert travel time cache commit: %w", err)
	}

	return nil
}
