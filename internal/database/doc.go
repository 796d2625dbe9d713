// Package database runs generated SQL against PostgreSQL (pgx pool) or
// SQLite (modernc driver) and returns the rows as plain Go values.
//
// Both backends satisfy Querier. Connection problems are reported as
// ErrConnection, statement problems as ErrQuery.
package database
