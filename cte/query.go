// Package cte composes typed WITH and WITH RECURSIVE statements from
// fragments.
//
// Every fragment is a Query[DB, T]: DB is the backend tag it renders for and
// T is the row type it produces. Composition keeps both, so a composed
// statement decodes into the body's row type and cannot mix backends.
// WithRecursive additionally requires DB to be a dialect.Recursive backend.
//
// All values in this package are immutable. Rendering allocates a fresh
// visitor per call and may run from any number of goroutines.
package cte

import (
	"errors"
	"fmt"

	"github.com/bawdo/ctesbee/dialect"
	"github.com/bawdo/ctesbee/nodes"
	"github.com/cespare/xxhash/v2"
)

// ErrNoBackend is returned when a query is instantiated with an interface
// type instead of a concrete backend tag such as dialect.Postgres.
var ErrNoBackend = errors.New("cte: backend type parameter must be a concrete dialect tag")

// Query is a renderable fragment for backend DB producing rows of type T.
type Query[DB dialect.Backend, T any] interface {
	nodes.Node

	// ToSQL renders the query for DB and returns the SQL text and bind
	// values in placeholder order. A failed render returns "" and nil.
	ToSQL() (string, []any, error)

	// QueryID identifies the rendered SQL text for DB. It does not depend
	// on bind values.
	QueryID() (uint64, error)

	// Backend returns the zero backend tag.
	Backend() DB

	// Row returns the zero row value.
	Row() T
}

// query is the shared implementation embedded by every Query type.
type query[DB dialect.Backend, T any] struct {
	node nodes.Node
}

func (q query[DB, T]) Accept(v nodes.Visitor) (string, error) {
	return nodes.Render(q.node, v)
}

func (q query[DB, T]) ToSQL() (string, []any, error) {
	return render[DB](q.node)
}

func (q query[DB, T]) QueryID() (uint64, error) {
	sql, _, err := render[DB](q.node)
	if err != nil {
		return 0, err
	}
	var db DB
	return queryID(db.Name(), sql), nil
}

func (q query[DB, T]) Backend() DB {
	var db DB
	return db
}

func (q query[DB, T]) Row() T {
	var row T
	return row
}

// render renders n with a new visitor for DB.
func render[DB dialect.Backend](n nodes.Node) (string, []any, error) {
	var db DB
	if any(db) == nil {
		return "", nil, ErrNoBackend
	}
	v := db.NewVisitor()
	sql, err := nodes.Render(n, v)
	if err != nil {
		return "", nil, err
	}
	return sql, v.Params(), nil
}

func queryID(backend, sql string) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(backend)
	_, _ = d.Write([]byte{0})
	_, _ = d.WriteString(sql)
	return d.Sum64()
}

// Debug renders q as "<sql> -- binds: [v1 v2]" for logs and tests.
func Debug[DB dialect.Backend, T any](q Query[DB, T]) string {
	sql, binds, err := q.ToSQL()
	if err != nil {
		return "error: " + err.Error()
	}
	if binds == nil {
		binds = []any{}
	}
	return fmt.Sprintf("%s -- binds: %v", sql, binds)
}
