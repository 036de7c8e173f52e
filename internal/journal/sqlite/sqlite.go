// Package sqlite journals fetch records to an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/seclorum/xbsearch/internal/journal"
	_ "modernc.org/sqlite"
)

// ensure sqliteBackend implements journal.Backend
var _ journal.Backend = (*sqliteBackend)(nil)

type sqliteBackend struct {
	db *sql.DB
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
	duration_ms INTEGER NOT NULL,
	domains INTEGER NOT NULL,
	challenged BOOLEAN NOT NULL,
	challenge_src TEXT,
	created_at DATETIME NOT NULL,
	error TEXT
);
`

// New creates a new SQLite-backed journal.Backend.
func New(dsn string) (journal.Backend, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite journal: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating journal schema: %w", err)
	}

	return &sqliteBackend{db: db}, nil
}

func (b *sqliteBackend) Save(ctx context.Context, rec *journal.Record) error {
	query := `
	INSERT INTO fetch_records (
		id, word, query, engine, page, url, status_code, duration_ms, domains, challenged, challenge_src, created_at, error
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := b.db.ExecContext(ctx, query,
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

func (b *sqliteBackend) Query(ctx context.Context, filter journal.Filter) ([]*journal.Record, error) {
	query := `SELECT id, word, query, engine, page, url, status_code, duration_ms, domains, challenged, challenge_src, created_at, error FROM fetch_records WHERE 1=1`
	args := []any{}

	if filter.Word != "" {
		query += ` AND word = ?`
		args = append(args, filter.Word)
	}
	if filter.Engine != "" {
		query += ` AND engine = ?`
		args = append(args, filter.Engine)
	}
	if filter.Challenged != nil {
		query += ` AND challenged = ?`
		args = append(args, *filter.Challenged)
	}
	if filter.Since != nil {
		query += ` AND created_at >= ?`
		args = append(args, *filter.Since)
	}

	query += ` ORDER BY created_at DESC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	} else if filter.Offset > 0 {
		// SQLite only accepts OFFSET after a LIMIT; -1 means unbounded.
		query += ` LIMIT -1`
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := b.db.QueryContext(ctx, query, args...)
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

func (b *sqliteBackend) Close() error {
	return b.db.Close()
}
