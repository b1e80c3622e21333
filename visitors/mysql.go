package visitors

import (
	"github.com/bawdo/ctesbee/internal/quoting"
	"github.com/bawdo/ctesbee/nodes"
)

// MySQLVisitor generates MySQL-dialect SQL.
// Identifiers are quoted with backticks: `table`.`column`.
type MySQLVisitor struct {
	*baseVisitor
}

// NewMySQLVisitor creates a MySQLVisitor ready for use.
// Parameterized mode is enabled by default for SQL injection protection.
// Pass WithoutParams() to disable (not recommended for production).
func NewMySQLVisitor(opts ...Option) *MySQLVisitor {
	v := &MySQLVisitor{}
	v.baseVisitor = &baseVisitor{
		outer:        v,
		quoteIdent:   quoting.Backtick,
		placeholder:  questionMark,
		parameterize: true,
	}
	v.applyOptions(opts)
	return v
}

// VisitInfix renders string concatenation as CONCAT(a, b); MySQL treats ||
// as logical OR unless PIPES_AS_CONCAT is set.
func (v *MySQLVisitor) VisitInfix(n *nodes.InfixNode) (string, error) {
	if n.Op != nodes.OpConcat {
		return v.baseVisitor.VisitInfix(n)
	}
	left, err := n.Left.Accept(v)
	if err != nil {
		return "", err
	}
	right, err := n.Right.Accept(v)
	if err != nil {
		return "", err
	}
	return "CONCAT(" + left + ", " + right + ")", nil
}
