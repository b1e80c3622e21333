package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/bawdo/ctesbee/conn"
	"github.com/bawdo/ctesbee/cte"
	"github.com/bawdo/ctesbee/dialect"
	"github.com/bawdo/ctesbee/nodes"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const maxRows = 1000

// dbConn is an open connection for the engine chosen at startup. The engine
// is only known at runtime, so the typed conn.DB sits behind this interface.
type dbConn interface {
	engine() string
	dsn() string
	query(ctx context.Context, n nodes.Node) (string, error)
	cached() int
	close() error
}

type typedConn[B dialect.Backend] struct {
	db     *conn.DB[B]
	rawDSN string
}

func (c *typedConn[B]) engine() string { return c.db.Backend().Name() }
func (c *typedConn[B]) dsn() string    { return c.rawDSN }
func (c *typedConn[B]) cached() int    { return c.db.CachedStatements() }
func (c *typedConn[B]) close() error   { return c.db.Close() }

func (c *typedConn[B]) query(ctx context.Context, n nodes.Node) (string, error) {
	rows, err := conn.Rows(ctx, c.db, cte.Wrap[B, any](n))
	if err != nil {
		return "", err
	}
	defer func() { _ = rows.Close() }()
	return formatRows(rows)
}

func openTyped[B dialect.Backend](ctx context.Context, dsn string, opts []conn.Option) (dbConn, error) {
	db, err := conn.Open[B](ctx, dsn, opts...)
	if err != nil {
		return nil, err
	}
	return &typedConn[B]{db: db, rawDSN: dsn}, nil
}

func connect(ctx context.Context, b dialect.Backend, dsn string, cacheSize int, logger *slog.Logger) (dbConn, error) {
	opts := []conn.Option{conn.WithLogger(logger), conn.WithStatementCache(cacheSize)}
	switch b.(type) {
	case dialect.Postgres:
		return openTyped[dialect.Postgres](ctx, dsn, opts)
	case dialect.SQLite:
		return openTyped[dialect.SQLite](ctx, dsn, opts)
	case dialect.DuckDB:
		return openTyped[dialect.DuckDB](ctx, dsn, opts)
	case dialect.MySQL:
		return openTyped[dialect.MySQL](ctx, dsn, opts)
	}
	return nil, fmt.Errorf("no driver for engine %q", b.Name())
}

func formatRows(rows *sql.Rows) (string, error) {
	columns, err := rows.Columns()
	if err != nil {
		return "", fmt.Errorf("columns: %w", err)
	}

	var data [][]string
	truncated := false
	for rows.Next() {
		if len(data) >= maxRows {
			truncated = true
			break
		}
		vals := make([]*sql.NullString, len(columns))
		ptrs := make([]any, len(columns))
		for i := range vals {
			vals[i] = &sql.NullString{}
			ptrs[i] = vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return "", fmt.Errorf("scan: %w", err)
		}
		row := make([]string, len(columns))
		for i, v := range vals {
			if v.Valid {
				row[i] = v.String
			} else {
				row[i] = "NULL"
			}
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("rows: %w", err)
	}

	result := formatTable(columns, data)
	if truncated {
		result += fmt.Sprintf("(truncated at %d rows)\n", maxRows)
	}
	return result, nil
}

func formatTable(columns []string, rows [][]string) string {
	if len(columns) == 0 {
		return "(0 rows)\n"
	}

	widths := make([]int, len(columns))
	for i, c := range columns {
		widths[i] = len(c)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
	}

	var b strings.Builder
	sep := buildSeparator(widths)
	writeRow := func(cells []string) {
		b.WriteByte('|')
		for i, cell := range cells {
			fmt.Fprintf(&b, " %-*s |", widths[i], cell)
		}
		b.WriteByte('\n')
	}

	b.WriteString(sep)
	writeRow(columns)
	b.WriteString(sep)
	for _, row := range rows {
		writeRow(row)
	}
	b.WriteString(sep)

	if n := len(rows); n == 1 {
		b.WriteString("(1 row)\n")
	} else {
		fmt.Fprintf(&b, "(%d rows)\n", n)
	}
	return b.String()
}

func buildSeparator(widths []int) string {
	var b strings.Builder
	b.WriteByte('+')
	for _, w := range widths {
		b.WriteString(strings.Repeat("-", w+2))
		b.WriteByte('+')
	}
	b.WriteByte('\n')
	return b.String()
}

// sanitizeDSN masks the password in URL and MySQL style DSNs.
func sanitizeDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err == nil && u.Scheme != "" && u.User != nil {
		if _, hasPass := u.User.Password(); hasPass {
			masked := u.Scheme + "://" + u.User.Username() + ":****@" + u.Host + u.Path
			if u.RawQuery != "" {
				masked += "?" + u.RawQuery
			}
			return masked
		}
		return dsn
	}

	// user:pass@tcp(host)/db
	if atIdx := strings.Index(dsn, "@"); atIdx > 0 {
		userPass := dsn[:atIdx]
		if colonIdx := strings.Index(userPass, ":"); colonIdx >= 0 {
			return userPass[:colonIdx+1] + "****" + dsn[atIdx:]
		}
	}
	return dsn
}
