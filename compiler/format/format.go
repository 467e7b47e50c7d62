package format

import (
	"context"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"

	"github.com/Isaac7777-cpu/pku-minic-learning-fork/compiler/ast"
)

// Format appends canonical source text for x.
func Format(ctx context.Context, b []byte, x ast.Node) ([]byte, error) {
	return format(ctx, b, x, 0)
}

func format(ctx context.Context, b []byte, x ast.Node, d int) ([]byte, error) {
	switch x := x.(type) {
	case *ast.CompUnit:
		return formatCompUnit(ctx, b, x, d)
	case *ast.FuncDef:
		return formatFunc(ctx, b, x, d)
	case *ast.Exp:
		return formatExp(ctx, b, x)
	default:
		return nil, errors.New("unsupported type: %T", x)
	}
}

func formatCompUnit(ctx context.Context, b []byte, x *ast.CompUnit, d int) (_ []byte, err error) {
	if x == nil || x.FuncDef == nil {
		return nil, errors.New("empty comp unit")
	}

	b, err = formatFunc(ctx, b, x.FuncDef, d)
	if err != nil {
		return nil, errors.Wrap(err, "func %v", x.FuncDef.Ident)
	}

	return b, nil
}

func formatFunc(ctx context.Context, b []byte, x *ast.FuncDef, d int) (_ []byte, err error) {
	if x == nil || x.Type == nil || x.Block == nil {
		return nil, errors.New("incomplete func")
	}

	b = app(b, d, "%v %v() {\n", x.Type.Name, x.Ident)

	b, err = formatStmt(ctx, b, x.Block.Stmt, d+1)
	if err != nil {
		return nil, errors.Wrap(err, "body")
	}

	b = app(b, d, "}\n")

	return b, nil
}

func formatStmt(ctx context.Context, b []byte, s ast.Stmt, d int) (_ []byte, err error) {
	switch s := s.(type) {
	case *ast.Return:
		if s == nil {
			return nil, errors.New("nil return")
		}

		b = app(b, d, "return ")

		b, err = formatExp(ctx, b, s.Exp)
		if err != nil {
			return nil, errors.Wrap(err, "return")
		}

		b = append(b, ";\n"...)
	default:
		return nil, errors.New("unsupported stmt: %T", s)
	}

	return b, nil
}

func formatExp(ctx context.Context, b []byte, x *ast.Exp) ([]byte, error) {
	if x == nil {
		return nil, errors.New("missing expression")
	}

	return formatUnary(ctx, b, x.Unary)
}

func formatUnary(ctx context.Context, b []byte, x ast.Unary) (_ []byte, err error) {
	switch x := x.(type) {
	case *ast.OpUnary:
		if !x.Op.Valid() {
			return nil, errors.New("unsupported unary op: %q", rune(x.Op))
		}

		b = append(b, byte(x.Op))

		return formatUnary(ctx, b, x.Operand)
	case *ast.PrimaryUnary:
		switch p := x.Primary.(type) {
		case *ast.ParenPrimary:
			b = append(b, '(')

			b, err = formatExp(ctx, b, p.Exp)
			if err != nil {
				return nil, errors.Wrap(err, "paren")
			}

			b = append(b, ')')
		case *ast.NumberPrimary:
			if p.Number == nil {
				return nil, errors.New("missing number")
			}

			// unsigned so that wrapped constants read back the same
			b = hfmt.Appendf(b, "%d", uint32(p.Number.Value))
		default:
			return nil, errors.New("unsupported primary: %T", p)
		}
	default:
		return nil, errors.New("unsupported expr: %T", x)
	}

	return b, nil
}

func app(b []byte, d int, f string, args ...any) []byte {
	const tabs = "\t\t\t\t\t\t\t\t\t\t\t\t\t\t\t"
	b = append(b, tabs[:d]...)
	b = hfmt.Appendf(b, f, args...)
	return b
}
