// Package ctesbee composes WITH and WITH RECURSIVE queries from typed SQL
// fragments.
//
// This package re-exports the commonly used types and functions from its
// subpackages. Import them directly for everything else:
//   - github.com/bawdo/ctesbee/cte (typed composer)
//   - github.com/bawdo/ctesbee/dialect (backend tags)
//   - github.com/bawdo/ctesbee/conn (execution through database/sql)
//   - github.com/bawdo/ctesbee/nodes, visitors, managers (AST and rendering)
package ctesbee

import (
	"github.com/bawdo/ctesbee/cte"
	"github.com/bawdo/ctesbee/dialect"
	"github.com/bawdo/ctesbee/managers"
	"github.com/bawdo/ctesbee/nodes"
	"github.com/bawdo/ctesbee/visitors"
)

// --- Backends ---

type (
	// Backend is any SQL backend a query can be rendered for.
	Backend = dialect.Backend
	// Recursive is the closed set of backends that support WITH RECURSIVE.
	Recursive = dialect.Recursive

	Postgres = dialect.Postgres
	SQLite   = dialect.SQLite
	DuckDB   = dialect.DuckDB
	MySQL    = dialect.MySQL
)

// --- Composer types ---

// Query is a renderable query for backend DB producing rows of type T.
type Query[DB dialect.Backend, T any] = cte.Query[DB, T]

// Fragment is raw SQL with interleaved binds.
type Fragment[DB dialect.Backend, T any] = cte.Fragment[DB, T]

// Part lifts any node into a Query.
type Part[DB dialect.Backend, T any] = cte.Part[DB, T]

// WithCTE is a composed non-recursive CTE.
type WithCTE[DB dialect.Backend, T any] = cte.WithCTE[DB, T]

// WithRecursiveCTE is a composed recursive CTE.
type WithRecursiveCTE[DB dialect.Recursive, T any] = cte.WithRecursiveCTE[DB, T]

// RecursiveParts groups seed, step and body.
type RecursiveParts[DB dialect.Backend, R, T any] = cte.RecursiveParts[DB, R, T]

// Columns is an optional CTE column list.
type Columns = cte.Columns

// DuplicateColumnError reports a column named twice in a column list.
type DuplicateColumnError = nodes.DuplicateColumnError

// --- Composer functions ---

// Cols builds a column list. No names lets the definition name the columns.
func Cols(names ...string) Columns {
	return cte.Cols(names...)
}

// SQL starts a raw fragment.
func SQL[DB dialect.Backend, T any](raw string) Fragment[DB, T] {
	return cte.SQL[DB, T](raw)
}

// Wrap lifts n into a Query.
func Wrap[DB dialect.Backend, T any](n nodes.Node) Part[DB, T] {
	return cte.Wrap[DB, T](n)
}

// With composes WITH name [(cols)] AS (definition) body.
func With[DB dialect.Backend, D, T any](name string, cols Columns, definition Query[DB, D], body Query[DB, T]) WithCTE[DB, T] {
	return cte.With(name, cols, definition, body)
}

// NewRecursiveParts groups the parts of a recursive CTE.
func NewRecursiveParts[DB dialect.Backend, R, T any](seed, step Query[DB, R], body Query[DB, T]) RecursiveParts[DB, R, T] {
	return cte.NewRecursiveParts(seed, step, body)
}

// WithRecursive composes WITH RECURSIVE name [(cols)] AS (seed UNION ALL step) body.
func WithRecursive[DB dialect.Recursive, R, T any](name string, cols Columns, parts RecursiveParts[DB, R, T]) WithRecursiveCTE[DB, T] {
	return cte.WithRecursive(name, cols, parts)
}

// Debug renders q with its binds for logs.
func Debug[DB dialect.Backend, T any](q Query[DB, T]) string {
	return cte.Debug(q)
}

// --- Structured fragments ---

// NewTable creates a table reference.
func NewTable(name string) *nodes.Table {
	return nodes.NewTable(name)
}

// NewSelect starts a SELECT over from.
func NewSelect(from nodes.Node) *managers.SelectManager {
	return managers.NewSelectManager(from)
}

// Literal creates a literal value node.
func Literal(value any) nodes.Node {
	return nodes.Literal(value)
}

// WithoutParams inlines values instead of binding them.
//
// ⚠️ WARNING: Disables SQL injection protection. Only use for debugging or when
// you're certain all values are trusted.
func WithoutParams() visitors.Option {
	return visitors.WithoutParams()
}
