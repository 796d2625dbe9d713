package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

// SQLite runs queries on a database/sql handle backed by modernc.org/sqlite.
type SQLite struct {
	db      *sql.DB
	timeout time.Duration
}

var _ Querier = (*SQLite)(nil)

// OpenSQLite opens the database file (or ":memory:") named by
// opts.ConnString and pings it.
func OpenSQLite(ctx context.Context, opts Options) (*SQLite, error) {
	db, err := sql.Open("sqlite", opts.ConnString)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}

	// An in-memory database exists per connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	pingCtx, cancel := withTimeout(ctx, opts.QueryTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}

	return &SQLite{db: db, timeout: opts.QueryTimeout}, nil
}

// Exec runs a statement without collecting rows. Used for seeding.
func (s *SQLite) Exec(ctx context.Context, stmt string) error {
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("%w: %w", ErrQuery, err)
	}
	return nil
}

// Query executes query and collects every row.
func (s *SQLite) Query(ctx context.Context, query string) (*Result, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	res := &Result{Columns: cols}

	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrQuery, err)
		}
		for i, v := range vals {
			vals[i] = normalize(v)
		}
		res.Rows = append(res.Rows, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	return res, nil
}

// Close closes the database handle.
func (s *SQLite) Close() error {
	return s.db.Close()
}
