// Package postgres journals fetch records to a PostgreSQL database.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/seclorum/xbsearch/internal/journal"
)

// ensure postgresBackend implements journal.Backend
var _ journal.Backend = (*postgresBackend)(nil)

type postgresBackend struct {
	pool *pgxpool.Pool
}

const schema = `
CREATE TABLE IF NOT EXISTS fetch_records (
	id TEXT PRIMARY KEY,
	word TEXT NOT NULL,
	query TEXT NOT NULL,
	engine TEXT NOT NULL,
	page INTEGER NOT NULL,
	url TEXT NOT NULL,
	status_code INTEGER NOT NULL,
	duration_ms BIGINT NOT NULL,
	domains INTEGER NOT NULL,
	challenged BOOLEAN NOT NULL,
	challenge_src TEXT,
	created_at TIMESTAMPTZ NOT NULL,
	error TEXT
);
`

// New creates a new Postgres-backed journal.Backend.
func New(ctx context.Context, dsn string) (journal.Backend, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres journal: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging postgres journal: %w", err)
	}

	_, err = pool.Exec(ctx, schema)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating journal schema: %w", err)
	}

	return &postgresBackend{pool: pool}, nil
}

func (b *postgresBackend) Save(ctx context.Context, rec *journal.Record) error {
	query := `
	INSERT INTO fetch_records (
		id, word, query, engine, page, url, status_code, duration_ms, domains, challenged, challenge_src, created_at, error
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := b.pool.Exec(ctx, query,
		rec.ID,
		rec.Word,
		rec.Query,
		rec.Engine,
		rec.Page,
		rec.URL,
		rec.StatusCode,
		rec.Duration.Milliseconds(),
		rec.Domains,
		rec.Challenged,
		rec.ChallengeSrc,
		rec.CreatedAt,
		rec.Error,
	)

	if err != nil {
		return fmt.Errorf("inserting journal record: %w", err)
	}

	return nil
}

func (b *postgresBackend) Query(ctx context.Context, filter journal.Filter) ([]*journal.Record, error) {
	query := `SELECT id, word, query, engine, page, url, status_code, duration_ms, domains, challenged, challenge_src, created_at, error FROM fetch_records WHERE 1=1`
	args := []any{}
	paramCount := 1

	if filter.Word != "" {
		query += fmt.Sprintf(` AND word = $%d`, paramCount)
		args = append(args, filter.Word)
		paramCount++
	}
	if filter.Engine != "" {
		query += fmt.Sprintf(` AND engine = $%d`, paramCount)
		args = append(args, filter.Engine)
		paramCount++
	}
	if filter.Challenged != nil {
		query += fmt.Sprintf(` AND challenged = $%d`, paramCount)
		args = append(args, *filter.Challenged)
		paramCount++
	}
	if filter.Since != nil {
		query += fmt.Sprintf(` AND created_at >= $%d`, paramCount)
		args = append(args, *filter.Since)
		paramCount++
	}

	query += ` ORDER BY created_at DESC`

	if filter.Limit > 0 {
		query += fmt.Sprintf(` LIMIT $%d`, paramCount)
		args = append(args, filter.Limit)
		paramCount++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(` OFFSET $%d`, paramCount)
		args = append(args, filter.Offset)
		paramCount++
	}

	rows, err := b.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	defer rows.Close()

	var records []*journal.Record
	for rows.Next() {
		var r journal.Record
		var durationMs int64

		err := rows.Scan(
			&r.ID, &r.Word, &r.Query, &r.Engine, &r.Page, &r.URL, &r.StatusCode,
			&durationMs, &r.Domains, &r.Challenged, &r.ChallengeSrc, &r.CreatedAt, &r.Error,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning journal record: %w", err)
		}

		r.Duration = time.Duration(durationMs) * time.Millisecond
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating journal records: %w", err)
	}

	return records, nil
}

func (b *postgresBackend) Close() error {
	b.pool.Close()
	return nil
}
