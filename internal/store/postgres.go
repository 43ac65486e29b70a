package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/streampulse/analytics/internal/ingest"
	"github.com/streampulse/analytics/internal/stats"
)

// PostgresStore backs both the read API (stats.Repository) and the
// ingestion path (ingest.Recorder) over one connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (p *PostgresStore) TopLinks(ctx context.Context, limit int) ([]stats.TopLink, error) {
	query := `
		SELECT short_code, total_clicks, last_seen
		FROM click_aggregates
		ORDER BY total_clicks DESC
		LIMIT $1
	`

	rows, err := p.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []stats.TopLink

	for rows.Next() {
		var link stats.TopLink
		if err := rows.Scan(&link.ShortCode, &link.TotalClicks, &link.LastSeen); err != nil {
			return nil, err
		}

		links = append(links, link)
	}

	return links, rows.Err()
}

func (p *PostgresStore) TrendingLinks(
	ctx context.Context, cutoff time.Time, limit int,
) ([]stats.TrendingLink, error) {
	query := `
		SELECT short_code, COUNT(*) AS clicks
		FROM click_events
		WHERE occurred_at > $1
		GROUP BY short_code
		ORDER BY clicks DESC
		LIMIT $2
	`

	rows, err := p.pool.Query(ctx, query, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []stats.TrendingLink

	for rows.Next() {
		var link stats.TrendingLink
		if err := rows.Scan(&link.ShortCode, &link.Clicks); err != nil {
			return nil, err
		}

		links = append(links, link)
	}

	return links, rows.Err()
}

func (p *PostgresStore) Aggregate(ctx context.Context, shortCode string) (*stats.Aggregate, error) {
	query := `
		SELECT short_code, total_clicks, last_seen
		FROM click_aggregates
		WHERE short_code = $1
	`

	var agg stats.Aggregate

	err := p.pool.QueryRow(ctx, query, shortCode).Scan(
		&agg.ShortCode,
		&agg.TotalClicks,
		&agg.LastSeen,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, stats.ErrNotFound
		}

		return nil, err
	}

	return &agg, nil
}

func (p *PostgresStore) EventCount(
	ctx context.Context, shortCode string, cutoff time.Time,
) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM click_events
		WHERE short_code = $1 AND occurred_at > $2
	`

	var count int64
	if err := p.pool.QueryRow(ctx, query, shortCode, cutoff).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

func (p *PostgresStore) TopReferrers(
	ctx context.Context, shortCode string, limit int,
) ([]stats.ReferrerCount, error) {
	query := `
		SELECT referrer, COUNT(*) AS clicks
		FROM click_events
		WHERE short_code = $1 AND referrer <> ''
		GROUP BY referrer
		ORDER BY clicks DESC
		LIMIT $2
	`

	rows, err := p.pool.Query(ctx, query, shortCode, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var referrers []stats.ReferrerCount

	for rows.Next() {
		var ref stats.ReferrerCount
		if err := rows.Scan(&ref.Referrer, &ref.Clicks); err != nil {
			return nil, err
		}

		referrers = append(referrers, ref)
	}

	return referrers, rows.Err()
}

// RecordClick appends the event and folds it into the aggregate inside
// one transaction, so the log and the running total cannot drift.
func (p *PostgresStore) RecordClick(ctx context.Context, event *ingest.ClickEvent) error {
	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		insertEvent := `
			INSERT INTO click_events (short_code, user_id, ip, referrer, user_agent, occurred_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`

		_, err := tx.Exec(ctx, insertEvent,
			event.ShortCode,
			nullableInt(event.UserID),
			event.IP,
			event.Referrer,
			event.UserAgent,
			event.Timestamp,
		)
		if err != nil {
			return err
		}

		upsertAggregate := `
			INSERT INTO click_aggregates (short_code, total_clicks, last_seen)
			VALUES ($1, 1, $2)
			ON CONFLICT (short_code)
			DO UPDATE SET
				total_clicks = click_aggregates.total_clicks + 1,
				last_seen    = EXCLUDED.last_seen
		`

		_, err = tx.Exec(ctx, upsertAggregate, event.ShortCode, event.Timestamp)

		return err
	})
}

// EnsureSchema creates the click tables if they do not exist yet.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS click_events (
			id          BIGSERIAL PRIMARY KEY,
			short_code  TEXT        NOT NULL,
			user_id     BIGINT,
			ip          TEXT,
			referrer    TEXT,
			user_agent  TEXT,
			occurred_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS click_aggregates (
			short_code   TEXT PRIMARY KEY,
			total_clicks BIGINT      NOT NULL DEFAULT 0,
			last_seen    TIMESTAMPTZ NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS click_events_code_time_idx
			ON click_events (short_code, occurred_at)`,
	}

	for _, stmt := range statements {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}

// Shutdown closes the underlying connection pool.
func (p *PostgresStore) Shutdown() error {
	p.pool.Close()

	return nil
}

func nullableInt(v int64) *int64 {
	if v == 0 {
		return nil
	}

	return &v
}

// Compile-time checks.
var (
	_ stats.Repository = (*PostgresStore)(nil)
	_ ingest.Recorder  = (*PostgresStore)(nil)
)
