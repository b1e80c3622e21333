// Package dialect defines the SQL backends a CTE can be rendered for.
//
// Backends are zero-size tag types used as type parameters. The Recursive
// interface is sealed: only tags declared in this package satisfy it, so a
// recursive CTE for any other backend fails to compile. This is a build-time
// guarantee; nothing is checked when a query runs.
//
// Go method promotion leaves one way around the seal. A struct embedding a
// tag, such as
//
//	type custom struct{ dialect.SQLite }
//
// inherits supportsRecursive and therefore satisfies Recursive, and may
// override NewVisitor. Backend types must not embed the tags declared here;
// that is a code-review rule, not something the compiler enforces. A new
// recursive backend belongs in this package.
package dialect

import (
	"github.com/bawdo/ctesbee/nodes"
	"github.com/bawdo/ctesbee/visitors"
)

// Visitor is a dialect visitor that collects bind parameters.
type Visitor interface {
	nodes.Visitor
	nodes.Parameterizer
}

// Backend is a SQL backend a query can be rendered for.
type Backend interface {
	// Name is the short engine name, e.g. "postgres".
	Name() string
	// DriverName is the database/sql driver name registered for the engine.
	DriverName() string
	// NewVisitor returns a fresh visitor; render state is never shared
	// between calls.
	NewVisitor(opts ...visitors.Option) Visitor
}

// Recursive is the closed set of backends that support WITH RECURSIVE.
// Adding a backend means adding a method here, in this package. Embedding a
// tag from this package also satisfies it; see the package documentation.
type Recursive interface {
	Backend
	supportsRecursive()
}

// Postgres is PostgreSQL, driven through pgx.
type Postgres struct{}

func (Postgres) Name() string       { return "postgres" }
func (Postgres) DriverName() string { return "pgx" }
func (Postgres) NewVisitor(opts ...visitors.Option) Visitor {
	return visitors.NewPostgresVisitor(opts...)
}
func (Postgres) supportsRecursive() {}

// SQLite is SQLite, driven through modernc.org/sqlite.
type SQLite struct{}

func (SQLite) Name() string       { return "sqlite" }
func (SQLite) DriverName() string { return "sqlite" }
func (SQLite) NewVisitor(opts ...visitors.Option) Visitor {
	return visitors.NewSQLiteVisitor(opts...)
}
func (SQLite) supportsRecursive() {}

// DuckDB is DuckDB, driven through go-duckdb (cgo).
type DuckDB struct{}

func (DuckDB) Name() string       { return "duckdb" }
func (DuckDB) DriverName() string { return "duckdb" }
func (DuckDB) NewVisitor(opts ...visitors.Option) Visitor {
	return visitors.NewDuckDBVisitor(opts...)
}
func (DuckDB) supportsRecursive() {}

// MySQL is MySQL with the 5.7 grammar, which has no WITH RECURSIVE.
// It renders non-recursive CTEs only.
type MySQL struct{}

func (MySQL) Name() string       { return "mysql" }
func (MySQL) DriverName() string { return "mysql" }
func (MySQL) NewVisitor(opts ...visitors.Option) Visitor {
	return visitors.NewMySQLVisitor(opts...)
}

var (
	_ Recursive = Postgres{}
	_ Recursive = SQLite{}
	_ Recursive = DuckDB{}
	_ Backend   = MySQL{}
)
