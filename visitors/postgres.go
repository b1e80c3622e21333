package visitors

import (
	"strconv"

	"github.com/bawdo/ctesbee/internal/quoting"
)

// PostgresVisitor generates PostgreSQL-dialect SQL.
// Identifiers are quoted with double quotes: "table"."column".
// Bind placeholders are numbered: $1, $2, ...
type PostgresVisitor struct {
	*baseVisitor
}

// NewPostgresVisitor creates a PostgresVisitor ready for use.
// Parameterized mode is enabled by default.
func NewPostgresVisitor(opts ...Option) *PostgresVisitor {
	v := &PostgresVisitor{}
	v.baseVisitor = &baseVisitor{
		outer:        v,
		quoteIdent:   quoting.DoubleQuote,
		placeholder:  func(i int) string { return "$" + strconv.Itoa(i) },
		parameterize: true,
	}
	v.applyOptions(opts)
	return v
}
