package plan

import (
	"fmt"

	"minirel/internal/relation"
	"minirel/internal/sql"
)

// WhereConjunction pulls a conjunction of equality predicates out of a
// WHERE expression tree as a column→value mapping.
//
// Accepted shapes: AND nodes (both sides recursed and merged) and "="
// nodes with a column reference on the left and an integer or string
// literal on the right. Anything else is rejected. When the same column
// appears twice, the later equality wins; callers must not depend on it.
func WhereConjunction(expr *sql.Expr) (relation.Row, error) {
	if expr == nil || expr.Type != sql.ExprOperator {
		return nil, fmt.Errorf("Invalid statement")
	}

	switch expr.Op {
	case "AND":
		left, err := WhereConjunction(expr.Left)
		if err != nil {
			return nil, err
		}
		right, err := WhereConjunction(expr.Right)
		if err != nil {
			return nil, err
		}
		for col, v := range right {
			left[col] = v
		}
		return left, nil

	case "=":
		if expr.Left == nil || expr.Left.Type != sql.ExprColumnRef {
			return nil, fmt.Errorf("Invalid statement")
		}
		if expr.Right == nil || expr.Right.Type != sql.ExprLiteral {
			return nil, fmt.Errorf("Invalid statement")
		}
		column := expr.Left.Name
		switch expr.Right.Value.Type {
		case sql.LiteralInt:
			return relation.Row{column: relation.IntValue(int32(expr.Right.Value.I64))}, nil
		case sql.LiteralString:
			return relation.Row{column: relation.TextValue(expr.Right.Value.S)}, nil
		default:
			return nil, fmt.Errorf("Don't know how to handle literal of type %d", expr.Right.Value.Type)
		}

	default:
		return nil, fmt.Errorf("Invalid statement")
	}
}
