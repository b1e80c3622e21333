// Package conn executes composed queries through database/sql.
//
// A DB[B] is bound to one backend tag, so only queries rendered for B can be
// run on it. Rows are decoded into the query's row type.
package conn

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bawdo/ctesbee/dialect"
	lru "github.com/hashicorp/golang-lru/v2"
)

// ErrClosed is returned by every call on a closed DB.
var ErrClosed = errors.New("conn: database is closed")

// DB is a database handle for backend B.
type DB[B dialect.Backend] struct {
	db     *sql.DB
	logger *slog.Logger

	// stmts caches prepared statements by QueryID; nil when disabled.
	stmts *lru.Cache[uint64, *sql.Stmt]
	// stmtMu is held for reading while a cached statement is fetched and
	// queried, and for writing around anything that can evict (and so
	// close) a statement.
	stmtMu sync.RWMutex

	closed atomic.Bool
}

// Option configures a DB.
type Option func(*options)

type options struct {
	logger    *slog.Logger
	cacheSize int
}

// WithLogger sets the logger for query execution. The default discards.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithStatementCache keeps up to n prepared statements, keyed by QueryID.
// Evicted statements are closed. n <= 0 disables the cache (the default).
func WithStatementCache(n int) Option {
	return func(o *options) {
		o.cacheSize = n
	}
}

// Open opens and pings a database for backend B using B's driver name.
// The driver must be registered by the caller's imports.
func Open[B dialect.Backend](ctx context.Context, dsn string, opts ...Option) (*DB[B], error) {
	var b B
	if any(b) == nil {
		return nil, errors.New("conn: backend type parameter must be a concrete dialect tag")
	}
	db, err := sql.Open(b.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", b.Name(), err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", b.Name(), err)
	}
	return New[B](db, opts...)
}

// New wraps an existing *sql.DB. The DB takes ownership; Close closes it.
func New[B dialect.Backend](db *sql.DB, opts ...Option) (*DB[B], error) {
	o := options{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&o)
	}
	c := &DB[B]{db: db, logger: o.logger}
	if o.cacheSize > 0 {
		cache, err := lru.NewWithEvict(o.cacheSize, func(_ uint64, stmt *sql.Stmt) {
			_ = stmt.Close()
		})
		if err != nil {
			return nil, fmt.Errorf("statement cache: %w", err)
		}
		c.stmts = cache
	}
	return c, nil
}

// SQL returns the underlying *sql.DB.
func (c *DB[B]) SQL() *sql.DB {
	return c.db
}

// Backend returns the backend tag.
func (c *DB[B]) Backend() B {
	var b B
	return b
}

// CachedStatements reports how many prepared statements are cached.
func (c *DB[B]) CachedStatements() int {
	if c.stmts == nil {
		return 0
	}
	return c.stmts.Len()
}

// Close closes all cached statements and the database.
func (c *DB[B]) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	if c.stmts != nil {
		c.stmtMu.Lock()
		c.stmts.Purge()
		c.stmtMu.Unlock()
	}
	return c.db.Close()
}

// query runs sql with args, through a cached statement when the cache is on.
func (c *DB[B]) query(ctx context.Context, id uint64, query string, args []any) (*sql.Rows, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	start := time.Now()
	if c.stmts == nil {
		rows, err := c.db.QueryContext(ctx, query, args...)
		c.log(ctx, query, args, start, false, err)
		return rows, err
	}

	if rows, ok, err := c.queryCached(ctx, id, args); ok {
		c.log(ctx, query, args, start, true, err)
		return rows, err
	}
	rows, cached, err := c.prepareAndQuery(ctx, id, query, args)
	c.log(ctx, query, args, start, cached, err)
	return rows, err
}

// queryCached runs a cached statement, reporting false on a miss. The read
// lock keeps the statement from being evicted before QueryContext returns;
// rows already handed out stay valid after the statement is closed.
func (c *DB[B]) queryCached(ctx context.Context, id uint64, args []any) (*sql.Rows, bool, error) {
	c.stmtMu.RLock()
	defer c.stmtMu.RUnlock()
	stmt, ok := c.stmts.Get(id)
	if !ok {
		return nil, false, nil
	}
	rows, err := stmt.QueryContext(ctx, args...)
	return rows, true, err
}

// prepareAndQuery prepares query on a miss, caches it and runs it, all under
// the write lock because Add may evict another statement.
func (c *DB[B]) prepareAndQuery(ctx context.Context, id uint64, query string, args []any) (*sql.Rows, bool, error) {
	c.stmtMu.Lock()
	defer c.stmtMu.Unlock()
	stmt, cached := c.stmts.Get(id)
	if !cached {
		var err error
		stmt, err = c.db.PrepareContext(ctx, query)
		if err != nil {
			return nil, false, fmt.Errorf("prepare: %w", err)
		}
		c.stmts.Add(id, stmt)
	}
	rows, err := stmt.QueryContext(ctx, args...)
	return rows, cached, err
}

func (c *DB[B]) log(ctx context.Context, query string, args []any, start time.Time, cached bool, err error) {
	attrs := []slog.Attr{
		slog.String("sql", query),
		slog.Int("args", len(args)),
		slog.Duration("elapsed", time.Since(start)),
		slog.Bool("cached", cached),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	c.logger.LogAttrs(ctx, slog.LevelDebug, "query", attrs...)
}
