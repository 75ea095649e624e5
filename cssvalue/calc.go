package cssvalue

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"

	"koala/csstok"
)

// EvalCalc evaluates the argument tokens of a calc() function (the
// Function token's value tokens, excluding the enclosing parens) to a
// single pixel value, resolving any length/percentage operands through
// ctx exactly as ParseLength/ResolvePx would. Arithmetic itself is
// delegated to expr-lang, the same expression engine the teacher uses to
// evaluate "${...}" interpolations, since calc()'s grammar (+, -, *, /,
// parens, operator precedence) is a strict subset of what expr already
// compiles and runs.
func EvalCalc(toks []csstok.Token, ctx ResolutionContext) (float64, error) {
	src, err := calcExprSource(toks, ctx)
	if err != nil {
		return 0, err
	}
	out, err := expr.Eval(src, map[string]any{})
	if err != nil {
		return 0, fmt.Errorf("calc: %w", err)
	}
	switch v := out.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("calc: non-numeric result %v", out)
	}
}

// calcExprSource rewrites calc()'s token stream into an expr-lang
// arithmetic expression: every Number/Dimension/Percentage operand is
// resolved to its px value up front (calc() cannot mix units any other
// way once lengths are resolved), and +, -, *, /, and parens pass
// through unchanged.
func calcExprSource(toks []csstok.Token, ctx ResolutionContext) (string, error) {
	var b strings.Builder
	for _, t := range toks {
		switch t.Kind {
		case csstok.Whitespace:
			b.WriteByte(' ')
		case csstok.Number:
			fmt.Fprintf(&b, "%g", t.Num)
		case csstok.Dimension, csstok.Percentage:
			l, ok := ParseLength(t)
			if !ok {
				return "", fmt.Errorf("calc: unsupported unit %q", t.Unit)
			}
			fmt.Fprintf(&b, "%g", l.ResolvePx(ctx))
		case csstok.Delim:
			switch t.Value {
			case "+", "-", "*", "/":
				b.WriteString(t.Value)
			default:
				return "", fmt.Errorf("calc: unsupported operator %q", t.Value)
			}
		case csstok.LeftParen:
			b.WriteByte('(')
		case csstok.RightParen:
			b.WriteByte(')')
		case csstok.EOF:
		default:
			return "", fmt.Errorf("calc: unsupported token kind %d", t.Kind)
		}
	}
	return b.String(), nil
}
