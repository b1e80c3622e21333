package nodes

// Table represents a SQL table reference. A CTE name used inside its own
// step or body is referenced as a Table too.
type Table struct {
	Name string
}

func NewTable(name string) *Table {
	return &Table{Name: name}
}

func (t *Table) Accept(v Visitor) (string, error) { return v.VisitTable(t) }

// Col creates an Attribute (column reference) bound to this table.
func (t *Table) Col(name string) *Attribute {
	return NewAttribute(t, name)
}

// Star creates a qualified star (table.*) for this table.
func (t *Table) Star() *StarNode {
	return &StarNode{Table: t}
}

// Attribute represents a column reference bound to a table.
type Attribute struct {
	Predications
	Arithmetics
	Name     string
	Relation *Table
}

// NewAttribute creates an Attribute with Predications and Arithmetics
// properly initialized to reference the new Attribute as self.
func NewAttribute(relation *Table, name string) *Attribute {
	a := &Attribute{Name: name, Relation: relation}
	a.Predications.self = a
	a.Arithmetics.self = a
	return a
}

func (a *Attribute) Accept(v Visitor) (string, error) { return v.VisitAttribute(a) }

// As aliases the attribute in a projection list: "t"."col" AS "name".
func (a *Attribute) As(name string) *AliasNode {
	return NewAliasNode(a, name)
}

// Asc creates an ascending OrderingNode for this attribute.
func (a *Attribute) Asc() *OrderingNode {
	return &OrderingNode{Expr: a, Direction: Asc}
}

// Desc creates a descending OrderingNode for this attribute.
func (a *Attribute) Desc() *OrderingNode {
	return &OrderingNode{Expr: a, Direction: Desc}
}
