package database

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

func openMemory(t *testing.T) *SQLite {
	t.Helper()

	db, err := OpenSQLite(context.Background(), Options{ConnString: ":memory:"})
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	seed := []string{
		`CREATE TABLE trades (pair TEXT, side TEXT, amount REAL, fee INTEGER)`,
		`INSERT INTO trades VALUES ('ETH/USDC', 'buy', 10.5, 1), ('ETH/USDC', 'sell', 2.5, NULL), ('BTC/USDC', 'buy', 1, 2)`,
	}
	for _, s := range seed {
		if err := db.Exec(context.Background(), s); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return db
}

func TestSQLite_Query(t *testing.T) {
	t.Parallel()

	db := openMemory(t)
	res, err := db.Query(context.Background(),
		`SELECT pair, side, amount, fee FROM trades WHERE pair = 'ETH/USDC' ORDER BY side`)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}

	if want := []string{"pair", "side", "amount", "fee"}; !reflect.DeepEqual(res.Columns, want) {
		t.Errorf("Columns = %v, want %v", res.Columns, want)
	}
	want := [][]any{
		{"ETH/USDC", "buy", 10.5, int64(1)},
		{"ETH/USDC", "sell", 2.5, nil},
	}
	if !reflect.DeepEqual(res.Rows, want) {
		t.Errorf("Rows = %#v, want %#v", res.Rows, want)
	}
	if got := FormatTuples(res.Rows); got != "[('ETH/USDC', 'buy', 10.5, 1), ('ETH/USDC', 'sell', 2.5, None)]" {
		t.Errorf("FormatTuples = %s", got)
	}
}

func TestSQLite_QueryNoRows(t *testing.T) {
	t.Parallel()

	db := openMemory(t)
	res, err := db.Query(context.Background(), `SELECT pair FROM trades WHERE amount > 100`)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(res.Rows) != 0 || len(res.Columns) != 1 {
		t.Errorf("res = %+v", res)
	}
}

func TestSQLite_QueryError(t *testing.T) {
	t.Parallel()

	db := openMemory(t)
	_, err := db.Query(context.Background(), `SELECT * FROM missing_table`)
	if !errors.Is(err, ErrQuery) {
		t.Errorf("expected ErrQuery, got %v", err)
	}
}

func TestSQLite_QueryCanceled(t *testing.T) {
	t.Parallel()

	db := openMemory(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := db.Query(ctx, `SELECT 1`); err == nil {
		t.Error("expected error for canceled context")
	}
}

func TestOpen_SQLite(t *testing.T) {
	t.Parallel()

	q, err := Open(context.Background(), Options{Driver: DriverSQLite, ConnString: ":memory:"})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() { _ = q.Close() }()

	res, err := q.Query(context.Background(), `SELECT 1 AS one`)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if !reflect.DeepEqual(res.Rows, [][]any{{int64(1)}}) {
		t.Errorf("Rows = %#v", res.Rows)
	}
}

func TestSQLite_QueryDeadlineKeepsCause(t *testing.T) {
	t.Parallel()

	db := openMemory(t)
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := db.Query(ctx, `SELECT pair FROM trades`)
	if !errors.Is(err, ErrQuery) {
		t.Fatalf("error = %v, want ErrQuery", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want context.DeadlineExceeded in the chain", err)
	}
}
