package nodes

// LiteralNode wraps a raw Go value (string, int, float, bool, etc.) as an AST node.
type LiteralNode struct {
	Predications
	Arithmetics
	Value any
}

func (n *LiteralNode) Accept(v Visitor) (string, error) { return v.VisitLiteral(n) }

// StarNode represents a SQL star (*) or qualified star (table.*).
type StarNode struct {
	Table *Table // nil for unqualified *
}

func (n *StarNode) Accept(v Visitor) (string, error) { return v.VisitStar(n) }

// Star returns an unqualified StarNode representing SQL *.
func Star() *StarNode {
	return &StarNode{}
}

// SqlLiteral represents a raw SQL fragment injected verbatim into the query.
// It is the usual way to hand a pre-built piece of SQL to a CTE.
//
// SECURITY: The Raw field is rendered directly into SQL output without escaping
// or parameterization. Never pass user-controlled input to NewSqlLiteral.
// Combine literals with BindParamNode values in a ConcatNode instead.
type SqlLiteral struct {
	Raw string
}

func (n *SqlLiteral) Accept(v Visitor) (string, error) { return v.VisitSqlLiteral(n) }

// NewSqlLiteral creates a SqlLiteral.
func NewSqlLiteral(raw string) *SqlLiteral {
	return &SqlLiteral{Raw: raw}
}

// ConcatNode renders its parts back to back with nothing in between. Raw SQL
// text interleaved with bind parameters is expressed this way, so every
// placeholder is numbered by the visitor in textual order:
//
//	NewConcat(NewSqlLiteral("SELECT n + 1 FROM t WHERE n < "), NewBindParam(5))
type ConcatNode struct {
	Parts []Node
}

func (n *ConcatNode) Accept(v Visitor) (string, error) { return v.VisitConcat(n) }

// NewConcat creates a ConcatNode over parts.
func NewConcat(parts ...Node) *ConcatNode {
	return &ConcatNode{Parts: parts}
}

// BindParamNode represents an explicit bind parameter placeholder.
// Its Value is always emitted as a bind parameter in parameterized mode,
// or rendered as a literal value in non-parameterized mode.
type BindParamNode struct {
	Value any
}

func (n *BindParamNode) Accept(v Visitor) (string, error) { return v.VisitBindParam(n) }

// NewBindParam creates a BindParamNode.
func NewBindParam(value any) *BindParamNode {
	return &BindParamNode{Value: value}
}
