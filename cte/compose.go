package cte

import (
	"slices"

	"github.com/bawdo/ctesbee/dialect"
	"github.com/bawdo/ctesbee/nodes"
)

// Columns is the optional column alias list of a CTE. An empty list lets
// the CTE's definition name the columns.
type Columns []string

// Cols builds a column list. Cols() means infer.
func Cols(names ...string) Columns {
	return Columns(slices.Clone(names))
}

// WithCTE is WITH name [(columns)] AS (definition) body. Its rows are the
// body's rows.
type WithCTE[DB dialect.Backend, T any] struct {
	query[DB, T]
}

// Node returns the underlying AST node.
func (c WithCTE[DB, T]) Node() *nodes.WithNode {
	return c.node.(*nodes.WithNode)
}

// With composes a non-recursive CTE. Columns are copied; duplicate names are
// reported when the statement is rendered.
func With[DB dialect.Backend, D, T any](name string, cols Columns, definition Query[DB, D], body Query[DB, T]) WithCTE[DB, T] {
	return WithCTE[DB, T]{query[DB, T]{node: &nodes.WithNode{
		Name:       name,
		Columns:    slices.Clone(cols),
		Definition: definition,
		Body:       body,
	}}}
}

// CTEParts holds the fragments of a non-recursive CTE.
type CTEParts[DB dialect.Backend, D, T any] struct {
	Definition Query[DB, D]
	Body       Query[DB, T]
}

// NewCTEParts pairs a definition with a body.
func NewCTEParts[DB dialect.Backend, D, T any](definition Query[DB, D], body Query[DB, T]) CTEParts[DB, D, T] {
	return CTEParts[DB, D, T]{Definition: definition, Body: body}
}

// WithParts is With taking a CTEParts.
func WithParts[DB dialect.Backend, D, T any](name string, cols Columns, parts CTEParts[DB, D, T]) WithCTE[DB, T] {
	return With(name, cols, parts.Definition, parts.Body)
}

// WithRecursiveCTE is
//
//	WITH RECURSIVE name [(columns)] AS (seed UNION ALL step) body
//
// Its rows are the body's rows. Nothing bounds the number of iterations;
// the step's own predicate must terminate the recursion.
type WithRecursiveCTE[DB dialect.Recursive, T any] struct {
	query[DB, T]
}

// Node returns the underlying AST node.
func (c WithRecursiveCTE[DB, T]) Node() *nodes.RecursiveNode {
	return c.node.(*nodes.RecursiveNode)
}

// RecursiveParts holds the fragments of a recursive CTE. Seed and step
// produce the CTE's own rows R; the body produces T.
type RecursiveParts[DB dialect.Backend, R, T any] struct {
	Seed Query[DB, R]
	Step Query[DB, R]
	Body Query[DB, T]
}

// NewRecursiveParts groups seed, step and body.
func NewRecursiveParts[DB dialect.Backend, R, T any](seed, step Query[DB, R], body Query[DB, T]) RecursiveParts[DB, R, T] {
	return RecursiveParts[DB, R, T]{Seed: seed, Step: step, Body: body}
}

// WithRecursive composes a recursive CTE. DB must be in dialect.Recursive;
// for any other backend the call does not compile.
func WithRecursive[DB dialect.Recursive, R, T any](name string, cols Columns, parts RecursiveParts[DB, R, T]) WithRecursiveCTE[DB, T] {
	return WithRecursiveCTE[DB, T]{query[DB, T]{node: &nodes.RecursiveNode{
		Name:    name,
		Columns: slices.Clone(cols),
		Seed:    parts.Seed,
		Step:    parts.Step,
		Body:    parts.Body,
	}}}
}

var (
	_ Query[dialect.SQLite, int] = WithCTE[dialect.SQLite, int]{}
	_ Query[dialect.SQLite, int] = WithRecursiveCTE[dialect.SQLite, int]{}
)
