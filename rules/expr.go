package rules

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/reoring/grape"
	"github.com/reoring/grape/i18n"
)

// Expr compiles a boolean expression into a rule. The expression sees
// value (the current field value), root (the whole input) and field (the
// field key), e.g. `value >= root.min_age` or `len(value) <= 3`.
//
// A false result, or an evaluation error such as comparing a string with a
// number, reports message; an empty message uses the "expr" template.
func Expr(expression, message string) (grape.Rule, error) {
	prog, err := expr.Compile(expression, expr.Env(exprEnv(nil)), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("rules: compile %q: %w", expression, err)
	}
	return exprRule(prog, message), nil
}

// MustExpr is Expr that panics on a compile error.
func MustExpr(expression, message string) grape.Rule {
	r, err := Expr(expression, message)
	if err != nil {
		panic(err)
	}
	return r
}

func exprRule(prog *vm.Program, message string) grape.Rule {
	return func(ctx *grape.Context) {
		out, err := expr.Run(prog, exprEnv(ctx))
		if err != nil {
			ctx.Logger().Debug().Err(err).Msg("expression failed")
		}
		if ok, _ := out.(bool); ok && err == nil {
			return
		}
		msg := message
		if msg == "" {
			msg = i18n.T("expr", nil)
		}
		ctx.Report(msg, "expr")
	}
}

func exprEnv(ctx *grape.Context) map[string]any {
	if ctx == nil {
		return map[string]any{"value": nil, "root": nil, "field": ""}
	}
	return map[string]any{
		"value": ctx.Value().Interface(),
		"root":  ctx.Root().Interface(),
		"field": ctx.Name(),
	}
}
