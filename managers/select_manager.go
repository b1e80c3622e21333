// Package managers provides high-level fluent APIs for building SQL ASTs.
//
// A SelectManager is the structured way to build a CTE fragment; raw text
// fragments are nodes.SqlLiteral values.
package managers

import "github.com/bawdo/ctesbee/nodes"

// SelectManager provides a fluent API for building SELECT queries.
// It is mutable while being built. Once handed to a CTE it must not be
// changed again.
type SelectManager struct {
	Core *nodes.SelectCore
}

// NewSelectManager creates a new SelectManager with the given table as FROM.
// If from is nil, the FROM clause is left unset (SELECT 1).
func NewSelectManager(from nodes.Node) *SelectManager {
	return &SelectManager{
		Core: &nodes.SelectCore{From: from},
	}
}

// Select sets the projection list, replacing any existing projections.
// Pass column attributes, stars, literals, or any Node.
func (m *SelectManager) Select(projections ...nodes.Node) *SelectManager {
	m.Core.Projections = projections
	return m
}

// Where appends one or more conditions to the WHERE clause.
// Multiple calls to Where are combined with AND at the visitor level.
func (m *SelectManager) Where(conditions ...nodes.Node) *SelectManager {
	m.Core.Wheres = append(m.Core.Wheres, conditions...)
	return m
}

// From sets or changes the FROM source.
func (m *SelectManager) From(table nodes.Node) *SelectManager {
	m.Core.From = table
	return m
}

// Order appends ORDER BY expressions.
func (m *SelectManager) Order(orderings ...nodes.Node) *SelectManager {
	m.Core.Orders = append(m.Core.Orders, orderings...)
	return m
}

// Limit sets the LIMIT. The count is a literal, so it is bound in
// parameterized mode.
func (m *SelectManager) Limit(n int) *SelectManager {
	m.Core.Limit = nodes.Literal(n)
	return m
}

// Union combines this query with other using UNION.
func (m *SelectManager) Union(other nodes.Node) *nodes.SetOperationNode {
	return &nodes.SetOperationNode{Left: m, Right: other, Type: nodes.Union}
}

// UnionAll combines this query with other using UNION ALL. It is the usual
// way to build a multi-row definition fragment.
func (m *SelectManager) UnionAll(other nodes.Node) *nodes.SetOperationNode {
	return &nodes.SetOperationNode{Left: m, Right: other, Type: nodes.UnionAll}
}

// ToSQL renders the query with v and returns the SQL and collected params.
// A visitor that is not a nodes.Parameterizer yields nil params.
func (m *SelectManager) ToSQL(v nodes.Visitor) (string, []any, error) {
	p, _ := v.(nodes.Parameterizer)
	if p != nil {
		p.Reset()
	}
	sql, err := m.Accept(v)
	if err != nil {
		return "", nil, err
	}
	if p == nil {
		return sql, nil, nil
	}
	return sql, p.Params(), nil
}

// Accept implements nodes.Node so a SelectManager can be embedded directly
// as a CTE fragment.
func (m *SelectManager) Accept(v nodes.Visitor) (string, error) {
	return m.Core.Accept(v)
}
