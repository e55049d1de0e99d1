package stdtools

import (
	"context"
	"fmt"
	"go/ast"
	"go/constant"
	"go/parser"
	"go/token"
	"strings"

	"github.com/harun/barrot/pkg/toolregistry"
)

// Calculator evaluates arithmetic over numeric literals. Identifiers and
// calls are rejected.
func Calculator() Definition {
	return Definition{
		Name:        "calculator",
		Description: "Perform mathematical computations",
		Category:    toolregistry.CategoryComputation,
		Parameters: []toolregistry.ToolParameter{
			{Name: "expression", Type: "str", Description: "Math expression", Required: true},
		},
		Returns:     "float",
		SafetyLevel: toolregistry.SafetyRequiresReview,
		Executable:  toolregistry.ExecutableFunc(compute),
	}
}

func compute(ctx context.Context, params map[string]any) (any, error) {
	expression, ok := stringParam(params, "expression")
	if !ok {
		return nil, fmt.Errorf("expression must be a string")
	}
	return Evaluate(expression)
}

// unsupportedOperators would otherwise be read as Go comments or pointer
// dereferences, which silently changes the expression.
var unsupportedOperators = []string{"**", "//", "/*"}

// Evaluate parses and evaluates an arithmetic expression
func Evaluate(expression string) (float64, error) {
	for _, op := range unsupportedOperators {
		if strings.Contains(expression, op) {
			return 0, fmt.Errorf("unsupported operator %s", op)
		}
	}

	expr, err := parser.ParseExpr(expression)
	if err != nil {
		return 0, fmt.Errorf("invalid expression: %w", err)
	}

	v, err := eval(expr)
	if err != nil {
		return 0, err
	}

	f, _ := constant.Float64Val(constant.ToFloat(v))
	return f, nil
}

func eval(expr ast.Expr) (constant.Value, error) {
	switch e := expr.(type) {
	case *ast.BasicLit:
		if e.Kind != token.INT && e.Kind != token.FLOAT {
			return nil, fmt.Errorf("unsupported literal %s", e.Value)
		}
		return constant.MakeFromLiteral(e.Value, e.Kind, 0), nil

	case *ast.ParenExpr:
		return eval(e.X)

	case *ast.UnaryExpr:
		x, err := eval(e.X)
		if err != nil {
			return nil, err
		}
		switch e.Op {
		case token.ADD, token.SUB:
			return constant.UnaryOp(e.Op, x, 0), nil
		}
		return nil, fmt.Errorf("unsupported operator %s", e.Op)

	case *ast.BinaryExpr:
		x, err := eval(e.X)
		if err != nil {
			return nil, err
		}
		y, err := eval(e.Y)
		if err != nil {
			return nil, err
		}

		switch e.Op {
		case token.ADD, token.SUB, token.MUL:
			return constant.BinaryOp(x, e.Op, y), nil
		case token.QUO:
			if constant.Sign(y) == 0 {
				return nil, fmt.Errorf("division by zero")
			}
			// QUO on two integers truncates; promote to floats first.
			return constant.BinaryOp(constant.ToFloat(x), token.QUO, constant.ToFloat(y)), nil
		case token.REM:
			if x.Kind() != constant.Int || y.Kind() != constant.Int {
				return nil, fmt.Errorf("modulo requires integers")
			}
			if constant.Sign(y) == 0 {
				return nil, fmt.Errorf("division by zero")
			}
			return constant.BinaryOp(x, token.REM, y), nil
		}
		return nil, fmt.Errorf("unsupported operator %s", e.Op)

	default:
		return nil, fmt.Errorf("unsupported expression %T", expr)
	}
}
