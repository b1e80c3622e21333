package nodes

import "fmt"

// WithNode represents a complete non-recursive CTE statement:
//
//	WITH name [(columns)] AS (definition) body
type WithNode struct {
	Name       string
	Columns    []string // optional; empty lets the definition name the columns
	Definition Node
	Body       Node
}

func (n *WithNode) Accept(v Visitor) (string, error) { return v.VisitCTE(n) }

// RecursiveNode represents a complete recursive CTE statement:
//
//	WITH RECURSIVE name [(columns)] AS (seed UNION ALL step) body
//
// Termination is governed by the step's own predicate. Nothing here caps the
// number of iterations.
type RecursiveNode struct {
	Name    string
	Columns []string
	Seed    Node
	Step    Node
	Body    Node
}

func (n *RecursiveNode) Accept(v Visitor) (string, error) { return v.VisitRecursiveCTE(n) }

// DuplicateColumnError reports a column alias listed more than once in a
// CTE column list.
type DuplicateColumnError struct {
	Name string
}

func (e *DuplicateColumnError) Error() string {
	return fmt.Sprintf("duplicate column name '%s' in CTE", e.Name)
}

// ValidateColumns checks that names are pairwise distinct. Comparison is
// exact and case-sensitive. The first repeat found scanning left to right is
// reported. An empty list is valid.
func ValidateColumns(names []string) error {
	if len(names) < 2 {
		return nil
	}
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, dup := seen[name]; dup {
			return &DuplicateColumnError{Name: name}
		}
		seen[name] = struct{}{}
	}
	return nil
}

// QueryPart embeds an arbitrary node inside a CTE without changing how it
// renders. Accept hands the visitor straight to Inner, so text and bind order
// are exactly those of Inner.
type QueryPart struct {
	Inner Node
}

// NewQueryPart wraps n.
func NewQueryPart(n Node) *QueryPart {
	return &QueryPart{Inner: n}
}

func (p *QueryPart) Accept(v Visitor) (string, error) { return Render(p.Inner, v) }
