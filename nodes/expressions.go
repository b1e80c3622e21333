package nodes

// ComparisonOp represents a binary comparison operator.
type ComparisonOp int

const (
	OpEq ComparisonOp = iota
	OpNotEq
	OpGt
	OpGtEq
	OpLt
	OpLtEq
)

// ComparisonNode represents a binary comparison: Left Op Right.
type ComparisonNode struct {
	Left  Node
	Right Node
	Op    ComparisonOp
}

func (n *ComparisonNode) Accept(v Visitor) (string, error) { return v.VisitComparison(n) }

// InfixOp identifies the binary math or concat operator.
type InfixOp int

const (
	OpPlus InfixOp = iota
	OpMinus
	OpMultiply
	OpDivide
	OpConcat
)

// InfixNode represents a binary math or concat expression.
type InfixNode struct {
	Predications
	Arithmetics
	Left  Node
	Right Node
	Op    InfixOp
}

func (n *InfixNode) Accept(v Visitor) (string, error) { return v.VisitInfix(n) }

// NewInfixNode creates an InfixNode with properly initialised embedded structs.
func NewInfixNode(left, right Node, op InfixOp) *InfixNode {
	n := &InfixNode{Left: left, Right: right, Op: op}
	n.Predications.self = n
	n.Arithmetics.self = n
	return n
}

// AliasNode represents a column or expression alias: expr AS "name".
type AliasNode struct {
	Expr Node
	Name string
}

func (n *AliasNode) Accept(v Visitor) (string, error) { return v.VisitAlias(n) }

// NewAliasNode creates an AliasNode.
func NewAliasNode(expr Node, name string) *AliasNode {
	return &AliasNode{Expr: expr, Name: name}
}

// OrderDirection represents ASC or DESC ordering.
type OrderDirection int

const (
	Asc OrderDirection = iota
	Desc
)

// OrderingNode represents an ORDER BY expression with a direction.
type OrderingNode struct {
	Expr      Node
	Direction OrderDirection
}

func (n *OrderingNode) Accept(v Visitor) (string, error) { return v.VisitOrdering(n) }

// Predications provides comparison methods to types that embed it.
// The self field must be set to the embedding node so that comparisons
// reference the correct left-hand side.
type Predications struct {
	self Node
}

func (p Predications) compare(op ComparisonOp, val any) *ComparisonNode {
	return &ComparisonNode{Left: p.self, Right: Literal(val), Op: op}
}

func (p Predications) Eq(val any) *ComparisonNode    { return p.compare(OpEq, val) }
func (p Predications) NotEq(val any) *ComparisonNode { return p.compare(OpNotEq, val) }
func (p Predications) Gt(val any) *ComparisonNode    { return p.compare(OpGt, val) }
func (p Predications) GtEq(val any) *ComparisonNode  { return p.compare(OpGtEq, val) }
func (p Predications) Lt(val any) *ComparisonNode    { return p.compare(OpLt, val) }
func (p Predications) LtEq(val any) *ComparisonNode  { return p.compare(OpLtEq, val) }

// Arithmetics provides math methods to types that embed it.
// The self field must be set to the embedding node.
type Arithmetics struct {
	self Node
}

func (a Arithmetics) newInfix(op InfixOp, val any) *InfixNode {
	return NewInfixNode(a.self, Literal(val), op)
}

func (a Arithmetics) Plus(val any) *InfixNode     { return a.newInfix(OpPlus, val) }
func (a Arithmetics) Minus(val any) *InfixNode    { return a.newInfix(OpMinus, val) }
func (a Arithmetics) Multiply(val any) *InfixNode { return a.newInfix(OpMultiply, val) }
func (a Arithmetics) Divide(val any) *InfixNode   { return a.newInfix(OpDivide, val) }
func (a Arithmetics) Concat(val any) *InfixNode   { return a.newInfix(OpConcat, val) }
