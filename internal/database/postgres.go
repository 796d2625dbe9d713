package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres runs queries on a pgx connection pool.
type Postgres struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

var _ Querier = (*Postgres)(nil)

// OpenPostgres creates the pool and pings the server once so a bad DSN or
// unreachable host fails at startup instead of on the first request.
func OpenPostgres(ctx context.Context, opts Options) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(opts.ConnString)
	if err != nil {
		return nil, fmt.Errorf("%w: parsing connection string: %v", ErrConnection, err)
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}

	pingCtx, cancel := withTimeout(ctx, opts.QueryTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}

	return &Postgres{pool: pool, timeout: opts.QueryTimeout}, nil
}

// Query executes query and collects every row.
func (p *Postgres) Query(ctx context.Context, query string) (*Result, error) {
	ctx, cancel := withTimeout(ctx, p.timeout)
	defer cancel()

	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConnection, err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	return collectPgxRows(rows)
}

// Close releases every pooled connection.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func collectPgxRows(rows pgx.Rows) (*Result, error) {
	defer rows.Close()

	fields := rows.FieldDescriptions()
	res := &Result{Columns: make([]string, len(fields))}
	for i, f := range fields {
		res.Columns[i] = f.Name
	}

	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrQuery, err)
		}
		row := make([]any, len(vals))
		for i, v := range vals {
			row[i] = normalize(v)
		}
		res.Rows = append(res.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	return res, nil
}
