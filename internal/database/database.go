package database

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors.
var (
	ErrConnection      = errors.New("database connection failed")
	ErrQuery           = errors.New("query execution failed")
	ErrUnknownDriver   = errors.New("unknown database driver")
	ErrEmptyConnString = errors.New("empty connection string")
)

// Driver names accepted by Open.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Querier executes one SQL statement and returns every row.
type Querier interface {
	Query(ctx context.Context, query string) (*Result, error)
	Close() error
}

// Result holds the column names and the rows of a query. Values are
// normalized to nil, bool, int64, float64, string or time.Time.
type Result struct {
	Columns []string
	Rows    [][]any
}

// Options configures Open.
type Options struct {
	Driver       string
	ConnString   string
	MaxConns     int32
	QueryTimeout time.Duration
}

// Open connects to the configured backend and checks the connection.
func Open(ctx context.Context, opts Options) (Querier, error) {
	if opts.ConnString == "" {
		return nil, fmt.Errorf("%w: %w", ErrConnection, ErrEmptyConnString)
	}
	switch opts.Driver {
	case DriverPostgres, "":
		return OpenPostgres(ctx, opts)
	case DriverSQLite:
		return OpenSQLite(ctx, opts)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, opts.Driver)
	}
}

// withTimeout applies d to ctx when d is positive.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// normalize converts driver-specific values into the small set of types
// documented on Result.
func normalize(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case []byte:
		return string(x)
	case [16]byte:
		return uuid.UUID(x).String()
	case int:
		return int64(x)
	case int8:
		return int64(x)
	case int16:
		return int64(x)
	case int32:
		return int64(x)
	case uint8:
		return int64(x)
	case uint16:
		return int64(x)
	case uint32:
		return int64(x)
	case float32:
		return float64(x)
	case bool, int64, float64, string, time.Time:
		return x
	case driver.Valuer:
		inner, err := x.Value()
		if err != nil {
			return fmt.Sprint(v)
		}
		if _, again := inner.(driver.Valuer); again {
			return fmt.Sprint(inner)
		}
		return normalize(inner)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// FormatTuples renders rows as a list of tuples, e.g.
// [(1, 'ETH/USDC', 42.5), (2, None, 3.0)]. This is the text handed to the
// model in the answer stage.
func FormatTuples(rows [][]any) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(')
		for j, v := range row {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString(FormatValue(v))
		}
		if len(row) == 1 {
			b.WriteByte(',')
		}
		b.WriteByte(')')
	}
	b.WriteByte(']')
	return b.String()
}

// FormatValue renders a single value the way FormatTuples does.
func FormatValue(v any) string {
	switch x := normalize(v).(type) {
	case nil:
		return "None"
	case bool:
		if x {
			return "True"
		}
		return "False"
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case time.Time:
		return quote(x.Format(time.DateTime))
	case string:
		return quote(x)
	default:
		return quote(fmt.Sprint(x))
	}
}

// CellText renders a value for a markdown table cell: no quoting, empty
// for NULL.
func CellText(v any) string {
	switch x := normalize(v).(type) {
	case nil:
		return ""
	case time.Time:
		return x.Format(time.DateTime)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "'", `\'`)
	return "'" + s + "'"
}
