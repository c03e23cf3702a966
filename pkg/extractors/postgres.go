package extractors

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	"etl-extract/internal/logging"
	"etl-extract/internal/util"
	"etl-extract/pkg/extract"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var _ extract.Extractor[string] = (*PostgresExtractor)(nil)

// Default bound on one Postgres extraction, connect through last row.
const defaultDbTimeout = 60 * time.Second

// queryer is the part of *pgx.Conn the extractor uses.
type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close(ctx context.Context) error
}

// connectFunc opens a connection. Overridden in tests.
var connectFunc = func(ctx context.Context, connStr string) (queryer, error) {
	return pgx.Connect(ctx, connStr)
}

// PostgresExtractor runs the SQL query given as the source against a
// PostgreSQL database and turns each result row into a Record whose fields
// follow the column order of the result set. SQL NULL becomes Null.
type PostgresExtractor struct {
	connStr string
	timeout time.Duration
}

// Postgres returns an extractor for the database at connStr. Environment
// variables in connStr are expanded at extraction time.
func Postgres(connStr string) *PostgresExtractor {
	return &PostgresExtractor{connStr: connStr, timeout: defaultDbTimeout}
}

// Extract executes query and collects every row.
func (pe *PostgresExtractor) Extract(query string) ([]extract.Record, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &extract.InvalidSourceError{Source: query, Reason: "query is empty"}
	}
	expandedConnStr := util.ExpandEnvUniversal(pe.connStr)
	if strings.TrimSpace(expandedConnStr) == "" {
		return nil, &extract.InvalidSourceError{Source: query, Reason: "database connection string is empty"}
	}
	logging.Logf(logging.Debug, "PostgresExtractor reading data using query: %s", query)

	ctx, cancel := context.WithTimeout(context.Background(), pe.timeout)
	defer cancel()

	conn, err := connectFunc(ctx, expandedConnStr)
	if err != nil {
		masked := util.MaskCredentials(expandedConnStr)
		return nil, extract.NewIOError(query, "connect", fmt.Errorf("database %s: %w", masked, timeoutCause(ctx, err)))
	}
	defer func() {
		if err := conn.Close(context.Background()); err != nil {
			logging.Logf(logging.Warning, "PostgresExtractor failed to close connection: %v", err)
		}
	}()

	rows, err := conn.Query(ctx, query)
	if err != nil {
		return nil, extract.NewIOError(query, "query", timeoutCause(ctx, err))
	}
	defer rows.Close()

	fds := rows.FieldDescriptions()
	names := make([]string, len(fds))
	for i, fd := range fds {
		names[i] = fd.Name
	}

	records := make([]extract.Record, 0)
	if len(names) == 0 {
		// Statements without a result set (e.g. an UPDATE) still have to drain.
		for rows.Next() {
		}
		if err := rows.Err(); err != nil {
			return nil, extract.NewIOError(query, "query", timeoutCause(ctx, err))
		}
		logging.Logf(logging.Debug, "PostgresExtractor query returned no columns")
		return records, nil
	}

	header, err := extract.NewHeader(names)
	if err != nil {
		return nil, extract.NewIOError(query, "header", err)
	}

	values := make([]extract.Value, header.Len())
	for rows.Next() {
		raw, err := rows.Values()
		if err != nil {
			return nil, extract.NewIOError(query, "scan", err)
		}
		for i := range values {
			values[i] = extract.Null()
			if i < len(raw) {
				values[i] = columnValue(raw[i])
			}
		}
		records = append(records, header.Record(values))
	}
	if err := rows.Err(); err != nil {
		return nil, extract.NewIOError(query, "scan", timeoutCause(ctx, err))
	}

	logging.Logf(logging.Debug, "PostgresExtractor loaded %d records", len(records))
	return records, nil
}

// columnValue maps a decoded pgx value onto a Value. pgtype wrappers are
// unwrapped through driver.Valuer first.
func columnValue(v any) extract.Value {
	switch x := v.(type) {
	case [16]byte:
		return extract.Text(uuid.UUID(x).String())
	case driver.Valuer:
		dv, err := x.Value()
		if err != nil {
			return extract.Text(fmt.Sprint(v))
		}
		return extract.ValueOf(dv)
	}
	return extract.ValueOf(v)
}

// timeoutCause prefers the context error when the deadline fired, so callers
// can match context.DeadlineExceeded.
func timeoutCause(ctx context.Context, err error) error {
	if ctx.Err() != nil && !errors.Is(err, ctx.Err()) {
		return fmt.Errorf("%w: %v", ctx.Err(), err)
	}
	return err
}
