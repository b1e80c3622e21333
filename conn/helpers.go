package conn

import (
	"github.com/bawdo/ctesbee/cte"
	"github.com/bawdo/ctesbee/dialect"
)

// SQL starts a raw fragment for c's backend.
//
//	conn.SQL[int](db, "SELECT n FROM nums WHERE n > ").Bind(2)
func SQL[T any, B dialect.Backend](_ *DB[B], raw string) cte.Fragment[B, T] {
	return cte.SQL[B, T](raw)
}

// With composes a non-recursive CTE for c's backend.
func With[B dialect.Backend, D, T any](_ *DB[B], name string, cols cte.Columns, definition cte.Query[B, D], body cte.Query[B, T]) cte.WithCTE[B, T] {
	return cte.With(name, cols, definition, body)
}

// WithRecursive composes a recursive CTE for c's backend. It only compiles
// for backends in dialect.Recursive.
func WithRecursive[B dialect.Recursive, R, T any](_ *DB[B], name string, cols cte.Columns, parts cte.RecursiveParts[B, R, T]) cte.WithRecursiveCTE[B, T] {
	return cte.WithRecursive(name, cols, parts)
}
