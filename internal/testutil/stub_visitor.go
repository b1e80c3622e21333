// Package testutil provides shared test helpers for the ctesbee project.
package testutil

import (
	"errors"

	"github.com/bawdo/ctesbee/nodes"
)

// StubVisitor implements nodes.Visitor with minimal return values for testing.
// Methods return meaningful short strings to aid in test assertions.
type StubVisitor struct{}

var _ nodes.Visitor = StubVisitor{}

func (sv StubVisitor) VisitTable(n *nodes.Table) (string, error)         { return n.Name, nil }
func (sv StubVisitor) VisitAttribute(n *nodes.Attribute) (string, error) { return n.Name, nil }
func (sv StubVisitor) VisitLiteral(n *nodes.LiteralNode) (string, error) { return "lit", nil }
func (sv StubVisitor) VisitStar(n *nodes.StarNode) (string, error)       { return "*", nil }
func (sv StubVisitor) VisitSqlLiteral(n *nodes.SqlLiteral) (string, error) {
	return n.Raw, nil
}
func (sv StubVisitor) VisitConcat(n *nodes.ConcatNode) (string, error) { return "concat", nil }
func (sv StubVisitor) VisitBindParam(n *nodes.BindParamNode) (string, error) {
	return "bind_param", nil
}
func (sv StubVisitor) VisitComparison(n *nodes.ComparisonNode) (string, error) {
	return "comparison", nil
}
func (sv StubVisitor) VisitInfix(n *nodes.InfixNode) (string, error)         { return "infix", nil }
func (sv StubVisitor) VisitAlias(n *nodes.AliasNode) (string, error)         { return "alias", nil }
func (sv StubVisitor) VisitOrdering(n *nodes.OrderingNode) (string, error)   { return "ordering", nil }
func (sv StubVisitor) VisitSelectCore(n *nodes.SelectCore) (string, error)   { return "select_core", nil }
func (sv StubVisitor) VisitSetOperation(n *nodes.SetOperationNode) (string, error) {
	return "set_op", nil
}
func (sv StubVisitor) VisitCTE(n *nodes.WithNode) (string, error) { return "cte", nil }
func (sv StubVisitor) VisitRecursiveCTE(n *nodes.RecursiveNode) (string, error) {
	return "recursive_cte", nil
}

// ErrFragment is the error returned by FailingNode unless another is set.
var ErrFragment = errors.New("testutil: fragment failed to render")

// FailingNode is a node whose rendering always fails. Err defaults to
// ErrFragment.
type FailingNode struct {
	Err error
}

func (n FailingNode) Accept(nodes.Visitor) (string, error) {
	if n.Err != nil {
		return "", n.Err
	}
	return "", ErrFragment
}
