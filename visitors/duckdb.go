package visitors

import "github.com/bawdo/ctesbee/internal/quoting"

// DuckDBVisitor generates DuckDB-dialect SQL. DuckDB follows the Postgres
// identifier rules but binds with ? through database/sql.
type DuckDBVisitor struct {
	*baseVisitor
}

// NewDuckDBVisitor creates a DuckDBVisitor ready for use.
func NewDuckDBVisitor(opts ...Option) *DuckDBVisitor {
	v := &DuckDBVisitor{}
	v.baseVisitor = &baseVisitor{
		outer:        v,
		quoteIdent:   quoting.DoubleQuote,
		placeholder:  questionMark,
		parameterize: true,
	}
	v.applyOptions(opts)
	return v
}
