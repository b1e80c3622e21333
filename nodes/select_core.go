package nodes

// SelectCore represents the data container for a SELECT statement used as a
// structured CTE fragment. The fluent API for building it lives in the
// managers package.
type SelectCore struct {
	From        Node   // nil for FROM-less selects such as SELECT 1
	Projections []Node // empty renders as *
	Wheres      []Node // joined with AND
	Orders      []Node // OrderingNode values
	Limit       Node   // nil or LiteralNode
}

func (n *SelectCore) Accept(v Visitor) (string, error) { return v.VisitSelectCore(n) }

// SetOpType represents the type of set operation.
type SetOpType int

const (
	Union SetOpType = iota
	UnionAll
)

// String returns the SQL keyword for this set operation type.
func (t SetOpType) String() string {
	if t == UnionAll {
		return "UNION ALL"
	}
	return "UNION"
}

// SetOperationNode joins two queries with UNION or UNION ALL. Operands are
// rendered bare, without parentheses, so the node is valid inside a CTE
// definition on every supported backend.
type SetOperationNode struct {
	Left  Node
	Right Node
	Type  SetOpType
}

func (n *SetOperationNode) Accept(v Visitor) (string, error) { return v.VisitSetOperation(n) }
