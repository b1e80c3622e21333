package visitors

import (
	"fmt"
	"strings"

	"github.com/bawdo/ctesbee/nodes"
)

// Color constants for DOT node categories.
const (
	colorCTE        = "#FF6961" // red: WITH / WITH RECURSIVE
	colorTable      = "#6CA6CD" // blue: tables, select cores
	colorAttribute  = "#B0D4E8" // light blue: attributes, stars, aliases
	colorComparison = "#FFB347" // orange: comparisons
	colorSetOp      = "#FFEB80" // yellow: UNION / UNION ALL
	colorLiteral    = "#D3D3D3" // grey: literals, raw SQL, binds
	colorOrdering   = "#CDA0E0" // purple: ordering
	colorArithmetic = "#98FB98" // mint green: arithmetic, concat
)

// dotNode represents a single node in the DOT graph.
type dotNode struct {
	id    string
	label string
	color string
}

// dotEdge represents a directed edge between two nodes in the DOT graph.
type dotEdge struct {
	from  string
	to    string
	label string
}

// DotVisitor walks the AST and produces Graphviz DOT output.
// It implements nodes.Visitor; each Visit method returns the DOT node ID.
type DotVisitor struct {
	nextID    int
	nodes     []dotNode
	edges     []dotEdge
	parentID  string
	edgeLabel string
}

var _ nodes.Visitor = (*DotVisitor)(nil)

// NewDotVisitor creates a new DotVisitor ready to walk an AST.
func NewDotVisitor() *DotVisitor {
	return &DotVisitor{}
}

// addNode creates a new DOT node with the given label and color, connects it
// to the current parent and returns its ID.
func (dv *DotVisitor) addNode(label, color string) string {
	id := fmt.Sprintf("n%d", dv.nextID)
	dv.nextID++
	dv.nodes = append(dv.nodes, dotNode{id: id, label: label, color: color})
	if dv.parentID != "" {
		dv.edges = append(dv.edges, dotEdge{from: dv.parentID, to: id, label: dv.edgeLabel})
	}
	return id
}

// visitChild saves and restores the parent context, sets the edge label,
// and calls child.Accept to recursively visit the child node.
func (dv *DotVisitor) visitChild(parentID, label string, child nodes.Node) error {
	savedParent, savedLabel := dv.parentID, dv.edgeLabel
	dv.parentID, dv.edgeLabel = parentID, label
	_, err := nodes.Render(child, dv)
	dv.parentID, dv.edgeLabel = savedParent, savedLabel
	return err
}

// visitChildList visits a slice of nodes as indexed children (e.g. "SELECT[0]", "SELECT[1]").
func (dv *DotVisitor) visitChildList(parentID, prefix string, items []nodes.Node) error {
	for i, item := range items {
		if err := dv.visitChild(parentID, fmt.Sprintf("%s[%d]", prefix, i), item); err != nil {
			return err
		}
	}
	return nil
}

// NodeCount returns the number of nodes accumulated so far.
func (dv *DotVisitor) NodeCount() int {
	return len(dv.nodes)
}

// ToDot generates the complete DOT graph text.
func (dv *DotVisitor) ToDot() string {
	var sb strings.Builder

	sb.WriteString("digraph AST {\n")
	sb.WriteString("  rankdir=TB;\n")
	sb.WriteString("  node [shape=box, style=filled, fontname=\"Helvetica\"];\n")
	sb.WriteString("  edge [fontname=\"Helvetica\", fontsize=10];\n")

	for _, n := range dv.nodes {
		fmt.Fprintf(&sb, "  %s [label=\"%s\", fillcolor=\"%s\"];\n", n.id, escapeLabel(n.label), n.color)
	}
	for _, e := range dv.edges {
		if e.label != "" {
			fmt.Fprintf(&sb, "  %s -> %s [label=\"%s\"];\n", e.from, e.to, e.label)
		} else {
			fmt.Fprintf(&sb, "  %s -> %s;\n", e.from, e.to)
		}
	}

	sb.WriteString("}\n")
	return sb.String()
}

// escapeLabel escapes double quotes in DOT labels.
// Backslash sequences like \n are intentional DOT line breaks and are preserved.
func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "\\\"")
}

// --- Visitor interface implementation ---

func (dv *DotVisitor) VisitTable(n *nodes.Table) (string, error) {
	return dv.addNode("Table\\n"+n.Name, colorTable), nil
}

func (dv *DotVisitor) VisitAttribute(n *nodes.Attribute) (string, error) {
	label := "Attribute\\n"
	if n.Relation != nil {
		label += n.Relation.Name + "."
	}
	return dv.addNode(label+n.Name, colorAttribute), nil
}

func (dv *DotVisitor) VisitLiteral(n *nodes.LiteralNode) (string, error) {
	return dv.addNode(fmt.Sprintf("Literal\\n%v", n.Value), colorLiteral), nil
}

func (dv *DotVisitor) VisitStar(n *nodes.StarNode) (string, error) {
	label := "Star\\n*"
	if n.Table != nil {
		label = "Star\\n" + n.Table.Name + ".*"
	}
	return dv.addNode(label, colorAttribute), nil
}

func (dv *DotVisitor) VisitSqlLiteral(n *nodes.SqlLiteral) (string, error) {
	return dv.addNode("SqlLiteral\\n"+n.Raw, colorLiteral), nil
}

func (dv *DotVisitor) VisitConcat(n *nodes.ConcatNode) (string, error) {
	id := dv.addNode("Concat", colorLiteral)
	return id, dv.visitChildList(id, "PART", n.Parts)
}

func (dv *DotVisitor) VisitBindParam(n *nodes.BindParamNode) (string, error) {
	return dv.addNode(fmt.Sprintf("BindParam\\n%v", n.Value), colorLiteral), nil
}

func (dv *DotVisitor) VisitComparison(n *nodes.ComparisonNode) (string, error) {
	id := dv.addNode("Comparison\\n"+comparisonOpSQL[n.Op], colorComparison)
	if err := dv.visitChild(id, "LEFT", n.Left); err != nil {
		return "", err
	}
	return id, dv.visitChild(id, "RIGHT", n.Right)
}

func (dv *DotVisitor) VisitInfix(n *nodes.InfixNode) (string, error) {
	id := dv.addNode("Infix\\n"+infixOpSQL[n.Op], colorArithmetic)
	if err := dv.visitChild(id, "LEFT", n.Left); err != nil {
		return "", err
	}
	return id, dv.visitChild(id, "RIGHT", n.Right)
}

func (dv *DotVisitor) VisitAlias(n *nodes.AliasNode) (string, error) {
	id := dv.addNode("Alias\\n"+n.Name, colorAttribute)
	return id, dv.visitChild(id, "EXPR", n.Expr)
}

func (dv *DotVisitor) VisitOrdering(n *nodes.OrderingNode) (string, error) {
	dir := "ASC"
	if n.Direction == nodes.Desc {
		dir = "DESC"
	}
	id := dv.addNode("Order\\n"+dir, colorOrdering)
	return id, dv.visitChild(id, "EXPR", n.Expr)
}

func (dv *DotVisitor) VisitSelectCore(n *nodes.SelectCore) (string, error) {
	id := dv.addNode("SelectCore", colorTable)
	if n.From != nil {
		if err := dv.visitChild(id, "FROM", n.From); err != nil {
			return "", err
		}
	}
	if err := dv.visitChildList(id, "SELECT", n.Projections); err != nil {
		return "", err
	}
	if err := dv.visitChildList(id, "WHERE", n.Wheres); err != nil {
		return "", err
	}
	if err := dv.visitChildList(id, "ORDER", n.Orders); err != nil {
		return "", err
	}
	if n.Limit != nil {
		if err := dv.visitChild(id, "LIMIT", n.Limit); err != nil {
			return "", err
		}
	}
	return id, nil
}

func (dv *DotVisitor) VisitSetOperation(n *nodes.SetOperationNode) (string, error) {
	id := dv.addNode(n.Type.String(), colorSetOp)
	if err := dv.visitChild(id, "LEFT", n.Left); err != nil {
		return "", err
	}
	return id, dv.visitChild(id, "RIGHT", n.Right)
}

// cteLabel builds "WITH\nname\n(a, b)". Columns are validated the same way
// the SQL visitors validate them.
func cteLabel(keyword, name string, columns []string) (string, error) {
	if err := nodes.ValidateColumns(columns); err != nil {
		return "", err
	}
	label := keyword + "\\n" + name
	if len(columns) > 0 {
		label += "\\n(" + strings.Join(columns, ", ") + ")"
	}
	return label, nil
}

func (dv *DotVisitor) VisitCTE(n *nodes.WithNode) (string, error) {
	label, err := cteLabel("WITH", n.Name, n.Columns)
	if err != nil {
		return "", err
	}
	id := dv.addNode(label, colorCTE)
	if err := dv.visitChild(id, "DEFINITION", n.Definition); err != nil {
		return "", err
	}
	return id, dv.visitChild(id, "BODY", n.Body)
}

func (dv *DotVisitor) VisitRecursiveCTE(n *nodes.RecursiveNode) (string, error) {
	label, err := cteLabel("WITH RECURSIVE", n.Name, n.Columns)
	if err != nil {
		return "", err
	}
	id := dv.addNode(label, colorCTE)
	if err := dv.visitChild(id, "SEED", n.Seed); err != nil {
		return "", err
	}
	if err := dv.visitChild(id, "STEP", n.Step); err != nil {
		return "", err
	}
	return id, dv.visitChild(id, "BODY", n.Body)
}
