// Package quoting provides shared identifier quoting utilities.
package quoting

import "strings"

// Func quotes a single SQL identifier for one backend family.
type Func func(string) string

// DoubleQuote quotes a SQL identifier using double quotes (PostgreSQL, SQLite,
// DuckDB, ANSI SQL). Internal double quotes are escaped by doubling them.
func DoubleQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Backtick quotes a SQL identifier using backticks (MySQL).
// Internal backticks are escaped by doubling them.
func Backtick(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

// List quotes every name with q and joins them with ", ".
func List(q Func, names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = q(n)
	}
	return strings.Join(quoted, ", ")
}

// EscapeString escapes a string literal for SQL by doubling single quotes
// and escaping backslashes (for MySQL compatibility).
//
// SECURITY: only used when bind parameters are disabled for debugging.
// Rendering for execution always parameterises values.
func EscapeString(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "'", "''")
}
