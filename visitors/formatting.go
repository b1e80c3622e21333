package visitors

import (
	"strings"

	"github.com/bawdo/ctesbee/internal/quoting"
	"github.com/bawdo/ctesbee/nodes"
)

// FormattingVisitor wraps any nodes.Visitor (dialect visitor) and produces
// human-readable multi-line SQL. VisitCTE, VisitRecursiveCTE, VisitSelectCore
// and VisitSetOperation are real implementations; everything else delegates
// to the inner visitor so quoting and placeholders stay dialect-correct.
type FormattingVisitor struct {
	inner nodes.Visitor
}

var _ nodes.Visitor = (*FormattingVisitor)(nil)
var _ nodes.Parameterizer = (*FormattingVisitor)(nil)

// identQuoter is satisfied by every dialect visitor in this package.
type identQuoter interface {
	QuoteIdent(name string) string
}

// NewFormattingVisitor constructs a FormattingVisitor wrapping the given
// dialect visitor.
func NewFormattingVisitor(inner nodes.Visitor) *FormattingVisitor {
	if inner == nil {
		panic("ctesbee: FormattingVisitor requires a non-nil inner visitor")
	}
	return &FormattingVisitor{inner: inner}
}

// Params delegates to the inner visitor if it implements nodes.Parameterizer,
// otherwise returns nil.
func (f *FormattingVisitor) Params() []any {
	if p, ok := f.inner.(nodes.Parameterizer); ok {
		return p.Params()
	}
	return nil
}

// Reset delegates to the inner visitor if it implements nodes.Parameterizer.
func (f *FormattingVisitor) Reset() {
	if p, ok := f.inner.(nodes.Parameterizer); ok {
		p.Reset()
	}
}

func (f *FormattingVisitor) quoteIdent(name string) string {
	if q, ok := f.inner.(identQuoter); ok {
		return q.QuoteIdent(name)
	}
	return quoting.DoubleQuote(name)
}

// --- Delegation methods ---

func (f *FormattingVisitor) VisitTable(node *nodes.Table) (string, error) {
	return f.inner.VisitTable(node)
}

func (f *FormattingVisitor) VisitAttribute(node *nodes.Attribute) (string, error) {
	return f.inner.VisitAttribute(node)
}

func (f *FormattingVisitor) VisitLiteral(node *nodes.LiteralNode) (string, error) {
	return f.inner.VisitLiteral(node)
}

func (f *FormattingVisitor) VisitStar(node *nodes.StarNode) (string, error) {
	return f.inner.VisitStar(node)
}

func (f *FormattingVisitor) VisitSqlLiteral(node *nodes.SqlLiteral) (string, error) {
	return f.inner.VisitSqlLiteral(node)
}

func (f *FormattingVisitor) VisitConcat(node *nodes.ConcatNode) (string, error) {
	return f.inner.VisitConcat(node)
}

func (f *FormattingVisitor) VisitBindParam(node *nodes.BindParamNode) (string, error) {
	return f.inner.VisitBindParam(node)
}

func (f *FormattingVisitor) VisitComparison(node *nodes.ComparisonNode) (string, error) {
	return f.inner.VisitComparison(node)
}

func (f *FormattingVisitor) VisitInfix(node *nodes.InfixNode) (string, error) {
	return f.inner.VisitInfix(node)
}

func (f *FormattingVisitor) VisitAlias(node *nodes.AliasNode) (string, error) {
	return f.inner.VisitAlias(node)
}

func (f *FormattingVisitor) VisitOrdering(node *nodes.OrderingNode) (string, error) {
	return f.inner.VisitOrdering(node)
}

// --- Structural overrides ---

// VisitCTE renders the definition indented inside its parentheses and the
// body on the line after the closing parenthesis.
func (f *FormattingVisitor) VisitCTE(n *nodes.WithNode) (string, error) {
	var sb strings.Builder
	sb.WriteString("WITH ")
	if err := f.writeHead(&sb, n.Name, n.Columns); err != nil {
		return "", err
	}
	if err := f.writeIndented(&sb, n.Definition); err != nil {
		return "", err
	}
	if err := f.writeBody(&sb, n.Body); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// VisitRecursiveCTE renders seed and step indented, with UNION ALL on its
// own line between them.
func (f *FormattingVisitor) VisitRecursiveCTE(n *nodes.RecursiveNode) (string, error) {
	var sb strings.Builder
	sb.WriteString("WITH RECURSIVE ")
	if err := f.writeHead(&sb, n.Name, n.Columns); err != nil {
		return "", err
	}
	union := &nodes.SetOperationNode{Left: n.Seed, Right: n.Step, Type: nodes.UnionAll}
	if err := f.writeIndented(&sb, union); err != nil {
		return "", err
	}
	if err := f.writeBody(&sb, n.Body); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (f *FormattingVisitor) writeHead(sb *strings.Builder, name string, columns []string) error {
	sb.WriteString(f.quoteIdent(name))
	if err := writeColumns(sb, f.quoteIdent, columns); err != nil {
		return err
	}
	sb.WriteString(" AS (\n")
	return nil
}

// writeIndented renders n through f and indents every line by two spaces.
func (f *FormattingVisitor) writeIndented(sb *strings.Builder, n nodes.Node) error {
	s, err := nodes.Render(n, f)
	if err != nil {
		return err
	}
	for i, line := range strings.Split(s, "\n") {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("  ")
		sb.WriteString(line)
	}
	sb.WriteString("\n)\n")
	return nil
}

func (f *FormattingVisitor) writeBody(sb *strings.Builder, body nodes.Node) error {
	s, err := nodes.Render(body, f)
	if err != nil {
		return err
	}
	sb.WriteString(s)
	return nil
}

// VisitSelectCore renders a SELECT statement in multi-line formatted style.
// Projections use leading-comma continuation; all major clauses begin on a
// new line. Child expressions are rendered via f.inner (dialect-specific).
func (f *FormattingVisitor) VisitSelectCore(node *nodes.SelectCore) (string, error) {
	var sb strings.Builder

	sb.WriteString("SELECT")
	if len(node.Projections) == 0 {
		sb.WriteString(" *")
	} else {
		sb.WriteString(" ")
		if err := f.writeContinued(&sb, node.Projections, "\n\t,"); err != nil {
			return "", err
		}
	}

	if node.From != nil {
		sb.WriteString("\nFROM ")
		s, err := node.From.Accept(f.inner)
		if err != nil {
			return "", err
		}
		sb.WriteString(s)
	}

	if len(node.Wheres) > 0 {
		sb.WriteString("\nWHERE ")
		if err := f.writeContinued(&sb, node.Wheres, "\n\tAND "); err != nil {
			return "", err
		}
	}

	if len(node.Orders) > 0 {
		sb.WriteString("\nORDER BY ")
		if err := f.writeContinued(&sb, node.Orders, "\n\t,"); err != nil {
			return "", err
		}
	}

	if node.Limit != nil {
		sb.WriteString("\nLIMIT ")
		s, err := node.Limit.Accept(f.inner)
		if err != nil {
			return "", err
		}
		sb.WriteString(s)
	}

	return sb.String(), nil
}

// writeContinued writes items through f.inner, each after the first
// prefixed with sep.
func (f *FormattingVisitor) writeContinued(sb *strings.Builder, items []nodes.Node, sep string) error {
	for i, item := range items {
		if i > 0 {
			sb.WriteString(sep)
		}
		s, err := item.Accept(f.inner)
		if err != nil {
			return err
		}
		sb.WriteString(s)
	}
	return nil
}

// VisitSetOperation renders each leg on its own lines with the operator
// keyword alone between them. Legs are not parenthesised.
func (f *FormattingVisitor) VisitSetOperation(n *nodes.SetOperationNode) (string, error) {
	left, err := nodes.Render(n.Left, f)
	if err != nil {
		return "", err
	}
	right, err := nodes.Render(n.Right, f)
	if err != nil {
		return "", err
	}
	return left + "\n" + n.Type.String() + "\n" + right, nil
}
