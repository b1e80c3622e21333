package visitors

import "github.com/bawdo/ctesbee/internal/quoting"

// SQLiteVisitor generates SQLite-dialect SQL.
// Identifiers are quoted with double quotes: "table"."column".
type SQLiteVisitor struct {
	*baseVisitor
}

// NewSQLiteVisitor creates a SQLiteVisitor ready for use.
// Parameterized mode is enabled by default.
func NewSQLiteVisitor(opts ...Option) *SQLiteVisitor {
	v := &SQLiteVisitor{}
	v.baseVisitor = &baseVisitor{
		outer:        v,
		quoteIdent:   quoting.DoubleQuote,
		placeholder:  questionMark,
		parameterize: true,
	}
	v.applyOptions(opts)
	return v
}

func questionMark(int) string { return "?" }
