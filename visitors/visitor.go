// Package visitors provides SQL dialect generators that walk the AST.
package visitors

import (
	"fmt"
	"strings"

	"github.com/bawdo/ctesbee/internal/quoting"
	"github.com/bawdo/ctesbee/nodes"
)

// Operator SQL strings for ComparisonOp values.
var comparisonOpSQL = [...]string{
	nodes.OpEq:    "=",
	nodes.OpNotEq: "!=",
	nodes.OpGt:    ">",
	nodes.OpGtEq:  ">=",
	nodes.OpLt:    "<",
	nodes.OpLtEq:  "<=",
}

// Operator SQL strings for InfixOp values.
var infixOpSQL = [...]string{
	nodes.OpPlus:     "+",
	nodes.OpMinus:    "-",
	nodes.OpMultiply: "*",
	nodes.OpDivide:   "/",
	nodes.OpConcat:   "||",
}

// needsParens returns true if the node should be wrapped in parentheses
// when used as an operand of an infix expression.
func needsParens(n nodes.Node) bool {
	_, ok := n.(*nodes.InfixNode)
	return ok
}

// Option configures a visitor at construction time.
type Option func(*baseVisitor)

// WithParams enables parameterized query mode. When enabled, literal values
// are replaced with bind placeholders and collected for separate retrieval.
//
// Parameterized mode is the default for every dialect.
func WithParams() Option {
	return func(b *baseVisitor) {
		b.parameterize = true
	}
}

// WithoutParams disables parameterized query mode.
//
// ⚠️ WARNING: Disables SQL injection protection. Only use for debugging or when
// you're certain all values are trusted.
//
// When disabled, literal and bind values are interpolated directly into the
// SQL string with basic escaping only.
func WithoutParams() Option {
	return func(b *baseVisitor) {
		b.parameterize = false
	}
}

// baseVisitor implements the shared SQL generation logic used by all dialects.
// Dialect-specific visitors embed *baseVisitor and set the outer field to
// themselves, enabling correct virtual dispatch through the Visitor interface.
//
// A visitor holds per-render state (collected params, placeholder counter)
// and must not be shared between goroutines.
type baseVisitor struct {
	// outer is the concrete dialect visitor. All recursive Accept calls
	// go through outer so that dialect overrides are respected.
	outer nodes.Visitor

	// quoteIdent quotes a SQL identifier (table, column or CTE name).
	quoteIdent quoting.Func

	// parameterize enables bind-parameter mode.
	parameterize bool

	// params accumulates bind parameter values during SQL generation.
	params []any

	// paramIndex tracks the next parameter number (1-based).
	paramIndex int

	// placeholder returns the bind placeholder for a given parameter index.
	// PostgreSQL uses $1, $2; MySQL/SQLite/DuckDB use ?.
	placeholder func(int) string
}

// applyOptions applies functional options to the baseVisitor.
func (b *baseVisitor) applyOptions(opts []Option) {
	for _, o := range opts {
		o(b)
	}
}

// Params returns the collected bind parameters from the last SQL generation.
func (b *baseVisitor) Params() []any {
	return b.params
}

// Reset clears collected parameters for reuse.
func (b *baseVisitor) Reset() {
	b.params = nil
	b.paramIndex = 0
}

// QuoteIdent quotes name with the dialect's identifier rule.
func (b *baseVisitor) QuoteIdent(name string) string {
	return b.quoteIdent(name)
}

// accept renders n through the outer visitor.
func (b *baseVisitor) accept(n nodes.Node) (string, error) {
	return nodes.Render(n, b.outer)
}

func (b *baseVisitor) VisitTable(n *nodes.Table) (string, error) {
	return b.quoteIdent(n.Name), nil
}

func (b *baseVisitor) VisitAttribute(n *nodes.Attribute) (string, error) {
	if n.Relation == nil {
		return b.quoteIdent(n.Name), nil
	}
	return b.quoteIdent(n.Relation.Name) + "." + b.quoteIdent(n.Name), nil
}

func (b *baseVisitor) VisitLiteral(n *nodes.LiteralNode) (string, error) {
	return b.literalToSQL(n.Value)
}

// bind emits a placeholder for val and records it, or inlines it when
// parameterization is off.
func (b *baseVisitor) bind(val any) (string, error) {
	if !b.parameterize {
		return inlineLiteral(val)
	}
	b.paramIndex++
	b.params = append(b.params, val)
	return b.placeholder(b.paramIndex), nil
}

func (b *baseVisitor) literalToSQL(val any) (string, error) {
	// nil always renders as NULL keyword, never parameterized.
	if val == nil {
		return "NULL", nil
	}
	return b.bind(val)
}

// inlineLiteral renders val as SQL literal text.
func inlineLiteral(val any) (string, error) {
	switch v := val.(type) {
	case nil:
		return "NULL", nil
	case string:
		return "'" + quoting.EscapeString(v) + "'", nil
	case bool:
		if v {
			return "TRUE", nil
		}
		return "FALSE", nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v), nil
	case float32, float64:
		return fmt.Sprintf("%g", v), nil
	default:
		return "", fmt.Errorf("ctesbee: unsupported literal type %T", v)
	}
}

func (b *baseVisitor) VisitStar(n *nodes.StarNode) (string, error) {
	if n.Table != nil {
		return b.quoteIdent(n.Table.Name) + ".*", nil
	}
	return "*", nil
}

func (b *baseVisitor) VisitSqlLiteral(n *nodes.SqlLiteral) (string, error) {
	return n.Raw, nil
}

func (b *baseVisitor) VisitConcat(n *nodes.ConcatNode) (string, error) {
	var sb strings.Builder
	for _, p := range n.Parts {
		if err := b.write(&sb, p); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

func (b *baseVisitor) VisitBindParam(n *nodes.BindParamNode) (string, error) {
	return b.bind(n.Value)
}

func (b *baseVisitor) VisitComparison(n *nodes.ComparisonNode) (string, error) {
	left, err := b.accept(n.Left)
	if err != nil {
		return "", err
	}
	right, err := b.accept(n.Right)
	if err != nil {
		return "", err
	}
	return left + " " + comparisonOpSQL[n.Op] + " " + right, nil
}

// operand renders one side of an infix expression, parenthesising nested
// infix expressions.
func (b *baseVisitor) operand(n nodes.Node) (string, error) {
	s, err := b.accept(n)
	if err != nil {
		return "", err
	}
	if needsParens(n) {
		s = "(" + s + ")"
	}
	return s, nil
}

func (b *baseVisitor) VisitInfix(n *nodes.InfixNode) (string, error) {
	left, err := b.operand(n.Left)
	if err != nil {
		return "", err
	}
	right, err := b.operand(n.Right)
	if err != nil {
		return "", err
	}
	return left + " " + infixOpSQL[n.Op] + " " + right, nil
}

func (b *baseVisitor) VisitAlias(n *nodes.AliasNode) (string, error) {
	expr, err := b.accept(n.Expr)
	if err != nil {
		return "", err
	}
	return expr + " AS " + b.quoteIdent(n.Name), nil
}

func (b *baseVisitor) VisitOrdering(n *nodes.OrderingNode) (string, error) {
	expr, err := b.accept(n.Expr)
	if err != nil {
		return "", err
	}
	if n.Direction == nodes.Desc {
		return expr + " DESC", nil
	}
	return expr + " ASC", nil
}

func (b *baseVisitor) VisitSelectCore(n *nodes.SelectCore) (string, error) {
	var sb strings.Builder

	sb.WriteString("SELECT ")
	if len(n.Projections) == 0 {
		sb.WriteString("*")
	} else if err := b.writeList(&sb, n.Projections, ", "); err != nil {
		return "", err
	}
	if n.From != nil {
		sb.WriteString(" FROM ")
		if err := b.write(&sb, n.From); err != nil {
			return "", err
		}
	}
	if err := b.writeClause(&sb, " WHERE ", n.Wheres, " AND "); err != nil {
		return "", err
	}
	if err := b.writeClause(&sb, " ORDER BY ", n.Orders, ", "); err != nil {
		return "", err
	}
	if n.Limit != nil {
		sb.WriteString(" LIMIT ")
		if err := b.write(&sb, n.Limit); err != nil {
			return "", err
		}
	}
	return sb.String(), nil
}

func (b *baseVisitor) VisitSetOperation(n *nodes.SetOperationNode) (string, error) {
	var sb strings.Builder
	if err := b.write(&sb, n.Left); err != nil {
		return "", err
	}
	sb.WriteString(" ")
	sb.WriteString(n.Type.String())
	sb.WriteString(" ")
	if err := b.write(&sb, n.Right); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// VisitCTE renders WITH name [(cols)] AS (definition) body.
func (b *baseVisitor) VisitCTE(n *nodes.WithNode) (string, error) {
	var sb strings.Builder
	sb.WriteString("WITH ")
	if err := b.writeCTEHead(&sb, n.Name, n.Columns); err != nil {
		return "", err
	}
	sb.WriteString(" AS (")
	if err := b.write(&sb, n.Definition); err != nil {
		return "", err
	}
	sb.WriteString(") ")
	if err := b.write(&sb, n.Body); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// VisitRecursiveCTE renders WITH RECURSIVE name [(cols)] AS (seed UNION ALL step) body.
func (b *baseVisitor) VisitRecursiveCTE(n *nodes.RecursiveNode) (string, error) {
	var sb strings.Builder
	sb.WriteString("WITH RECURSIVE ")
	if err := b.writeCTEHead(&sb, n.Name, n.Columns); err != nil {
		return "", err
	}
	sb.WriteString(" AS (")
	if err := b.write(&sb, n.Seed); err != nil {
		return "", err
	}
	sb.WriteString(" UNION ALL ")
	if err := b.write(&sb, n.Step); err != nil {
		return "", err
	}
	sb.WriteString(") ")
	if err := b.write(&sb, n.Body); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// writeCTEHead writes the quoted CTE name followed by the column clause.
func (b *baseVisitor) writeCTEHead(sb *strings.Builder, name string, columns []string) error {
	sb.WriteString(b.quoteIdent(name))
	return writeColumns(sb, b.quoteIdent, columns)
}

// writeColumns writes ` ("a", "b")` for a non-empty column list and nothing
// for an empty one. Duplicates fail before anything is written.
func writeColumns(sb *strings.Builder, quote quoting.Func, columns []string) error {
	if len(columns) == 0 {
		return nil
	}
	if err := nodes.ValidateColumns(columns); err != nil {
		return err
	}
	sb.WriteString(" (")
	sb.WriteString(quoting.List(quote, columns))
	sb.WriteString(")")
	return nil
}

// write renders n through the outer visitor into sb.
func (b *baseVisitor) write(sb *strings.Builder, n nodes.Node) error {
	s, err := b.accept(n)
	if err != nil {
		return err
	}
	sb.WriteString(s)
	return nil
}

// writeList writes items separated by sep.
func (b *baseVisitor) writeList(sb *strings.Builder, items []nodes.Node, sep string) error {
	for i, item := range items {
		if i > 0 {
			sb.WriteString(sep)
		}
		if err := b.write(sb, item); err != nil {
			return err
		}
	}
	return nil
}

// writeClause writes "keyword item1 sep item2 sep ..." if items is non-empty.
func (b *baseVisitor) writeClause(sb *strings.Builder, keyword string, items []nodes.Node, sep string) error {
	if len(items) == 0 {
		return nil
	}
	sb.WriteString(keyword)
	return b.writeList(sb, items, sep)
}
