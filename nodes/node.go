// Package nodes defines the AST node types that CTE statements are assembled from.
//
// Nodes are immutable once built. Rendering never mutates a node, so one tree
// may be rendered by many visitors at the same time.
package nodes

import "errors"

// ErrNilNode is returned when a render reaches a missing fragment, such as a
// zero-value fragment or a nil part.
var ErrNilNode = errors.New("ctesbee: nil node")

// Render renders n with v. A nil n yields ErrNilNode.
func Render(n Node, v Visitor) (string, error) {
	if n == nil {
		return "", ErrNilNode
	}
	return n.Accept(v)
}

// Node is the interface that all AST nodes implement.
//
// Accept renders the node with the given visitor. An error aborts the whole
// render; callers must discard any partial text.
type Node interface {
	Accept(visitor Visitor) (string, error)
}

// Visitor defines the interface for walking the AST and producing output.
// Concrete visitors (e.g., Postgres, SQLite) implement this interface.
type Visitor interface {
	VisitTable(node *Table) (string, error)
	VisitAttribute(node *Attribute) (string, error)
	VisitLiteral(node *LiteralNode) (string, error)
	VisitStar(node *StarNode) (string, error)
	VisitSqlLiteral(node *SqlLiteral) (string, error)
	VisitConcat(node *ConcatNode) (string, error)
	VisitBindParam(node *BindParamNode) (string, error)
	VisitComparison(node *ComparisonNode) (string, error)
	VisitInfix(node *InfixNode) (string, error)
	VisitAlias(node *AliasNode) (string, error)
	VisitOrdering(node *OrderingNode) (string, error)
	VisitSelectCore(node *SelectCore) (string, error)
	VisitSetOperation(node *SetOperationNode) (string, error)
	VisitCTE(node *WithNode) (string, error)
	VisitRecursiveCTE(node *RecursiveNode) (string, error)
}

// Parameterizer is implemented by visitors that support parameterized queries.
// Callers use type assertion to extract collected parameters after SQL generation.
type Parameterizer interface {
	Params() []any
	Reset()
}

// Literal wraps a raw Go value into a LiteralNode. If val already
// implements Node, it is returned as-is.
func Literal(val any) Node {
	if n, ok := val.(Node); ok {
		return n
	}
	lit := &LiteralNode{Value: val}
	lit.Predications.self = lit
	lit.Arithmetics.self = lit
	return lit
}
