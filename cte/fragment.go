package cte

import (
	"slices"

	"github.com/bawdo/ctesbee/dialect"
	"github.com/bawdo/ctesbee/nodes"
)

// Part lifts an arbitrary node into a Query. Rendering a Part is identical
// to rendering the node itself: same text, same binds, same QueryID.
type Part[DB dialect.Backend, T any] struct {
	query[DB, T]
}

// Wrap lifts n into a Query for DB with row type T.
func Wrap[DB dialect.Backend, T any](n nodes.Node) Part[DB, T] {
	return Part[DB, T]{query[DB, T]{node: nodes.NewQueryPart(n)}}
}

// Define wraps a non-recursive definition.
func Define[DB dialect.Backend, T any](n nodes.Node) Part[DB, T] { return Wrap[DB, T](n) }

// Seed wraps the seed of a recursive CTE.
func Seed[DB dialect.Backend, T any](n nodes.Node) Part[DB, T] { return Wrap[DB, T](n) }

// Step wraps the step of a recursive CTE.
func Step[DB dialect.Backend, T any](n nodes.Node) Part[DB, T] { return Wrap[DB, T](n) }

// Fragment is raw SQL text interleaved with bind values. It is built with
// SQL and extended with Bind and SQL; each call returns a new Fragment.
//
// SECURITY: text is rendered verbatim. Pass user input through Bind only.
type Fragment[DB dialect.Backend, T any] struct {
	query[DB, T]
	parts []nodes.Node
}

// SQL starts a raw fragment with the given text.
func SQL[DB dialect.Backend, T any](raw string) Fragment[DB, T] {
	return Fragment[DB, T]{}.SQL(raw)
}

// SQL appends raw text.
func (f Fragment[DB, T]) SQL(raw string) Fragment[DB, T] {
	return f.with(nodes.NewSqlLiteral(raw))
}

// Bind appends a bind placeholder for v: $n on Postgres, ? elsewhere.
func (f Fragment[DB, T]) Bind(v any) Fragment[DB, T] {
	return f.with(nodes.NewBindParam(v))
}

func (f Fragment[DB, T]) with(n nodes.Node) Fragment[DB, T] {
	parts := append(slices.Clip(f.parts), n)
	var node nodes.Node = nodes.NewConcat(parts...)
	if len(parts) == 1 {
		node = parts[0]
	}
	return Fragment[DB, T]{query: query[DB, T]{node: node}, parts: parts}
}

var (
	_ Query[dialect.Postgres, int] = Part[dialect.Postgres, int]{}
	_ Query[dialect.Postgres, int] = Fragment[dialect.Postgres, int]{}
)
