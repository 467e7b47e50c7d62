package front

import (
	"context"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/Isaac7777-cpu/pku-minic-learning-fork/compiler/ast"
	"github.com/Isaac7777-cpu/pku-minic-learning-fork/compiler/ir"
)

type (
	// Front lowers an ast.CompUnit into an ir.Program.
	Front struct {
		// EntryLabel names the first block of every function.
		EntryLabel string
	}
)

const DefaultEntryLabel = "%entry"

func New() *Front {
	return &Front{
		EntryLabel: DefaultEntryLabel,
	}
}

func Lower(ctx context.Context, root ast.Node) (*ir.Program, error) {
	return New().Lower(ctx, root)
}

func (c *Front) Lower(ctx context.Context, root ast.Node) (p *ir.Program, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "front: lower")
	defer tr.Finish("err", &err)

	cu, ok := root.(*ast.CompUnit)
	if !ok || cu == nil {
		return nil, mismatch(&ast.CompUnit{}, root)
	}

	p, err = c.lowerCompUnit(ctx, cu)
	if err != nil {
		return nil, err
	}

	if tr.If("dump_ir") {
		for _, f := range p.Funcs {
			for _, bb := range f.Blocks {
				for id, x := range bb.Values {
					tr.Printw("value", "func", f.Name, "block", bb.Name, "id", id, "typ", tlog.NextAsType, x, "val", x)
				}

				tr.Printw("insts", "func", f.Name, "block", bb.Name, "insts", bb.Insts)
			}
		}
	}

	return p, nil
}

func (c *Front) lowerCompUnit(ctx context.Context, cu *ast.CompUnit) (_ *ir.Program, err error) {
	if cu.FuncDef == nil {
		return nil, mismatch(&ast.FuncDef{}, nil)
	}

	f, err := c.lowerFunc(ctx, cu.FuncDef)
	if err != nil {
		return nil, errors.Wrap(err, "func %v", cu.FuncDef.Ident)
	}

	return &ir.Program{
		Funcs: []*ir.Function{f},
	}, nil
}

func (c *Front) lowerFunc(ctx context.Context, fd *ast.FuncDef) (_ *ir.Function, err error) {
	if fd.Type == nil {
		return nil, mismatch(&ast.FuncType{}, nil)
	}

	tp, err := c.lowerFuncType(ctx, fd.Type)
	if err != nil {
		return nil, errors.Wrap(err, "type")
	}

	bb, err := c.lowerBlock(ctx, fd.Block, c.EntryLabel)
	if err != nil {
		return nil, errors.Wrap(err, "body")
	}

	return &ir.Function{
		Name:   "@" + fd.Ident,
		Type:   tp,
		Blocks: []*ir.BasicBlock{bb},
	}, nil
}

// int is the only function type the grammar produces.
func (c *Front) lowerFuncType(ctx context.Context, ft *ast.FuncType) (ir.Type, error) {
	if ft.Name != "int" {
		return 0, mismatch(&ast.FuncType{Name: "int"}, ft)
	}

	return ir.I32, nil
}

func (c *Front) lowerBlock(ctx context.Context, blk *ast.Block, name string) (_ *ir.BasicBlock, err error) {
	if blk == nil {
		return nil, mismatch(&ast.Block{}, nil)
	}

	bb := &ir.BasicBlock{Name: name}

	err = c.lowerStmt(ctx, bb, blk.Stmt)
	if err != nil {
		return nil, errors.Wrap(err, "stmt")
	}

	return bb, nil
}

func (c *Front) lowerStmt(ctx context.Context, bb *ir.BasicBlock, s ast.Stmt) (err error) {
	switch s := s.(type) {
	case *ast.Return:
		if s == nil {
			return mismatch(&ast.Return{}, nil)
		}

		v, err := c.lowerExpr(ctx, bb, s.Exp)
		if err != nil {
			return errors.Wrap(err, "return")
		}

		bb.Add(ir.Return{Value: v}, true)

		return nil
	default:
		return mismatch(&ast.Return{}, s)
	}
}

func (c *Front) lowerExpr(ctx context.Context, bb *ir.BasicBlock, e *ast.Exp) (ir.Value, error) {
	if e == nil {
		return ir.Nil, mismatch(&ast.Exp{}, nil)
	}

	return c.lowerUnary(ctx, bb, e.Unary)
}

func (c *Front) lowerUnary(ctx context.Context, bb *ir.BasicBlock, u ast.Unary) (_ ir.Value, err error) {
	switch u := u.(type) {
	case *ast.PrimaryUnary:
		if u == nil {
			return ir.Nil, mismatch(&ast.PrimaryUnary{}, nil)
		}

		return c.lowerPrimary(ctx, bb, u.Primary)
	case *ast.OpUnary:
		if u == nil {
			return ir.Nil, mismatch(&ast.OpUnary{}, nil)
		}

		if !u.Op.Valid() {
			return ir.Nil, mismatch(ast.UnaryOp(0), u.Op)
		}

		x, err := c.lowerUnary(ctx, bb, u.Operand)
		if err != nil {
			return ir.Nil, errors.Wrap(err, "operand of %v", u.Op)
		}

		return c.desugar(bb, u.Op, x), nil
	default:
		return ir.Nil, mismatch((*ast.Unary)(nil), u)
	}
}

// desugar rewrites a unary operator into IR over its lowered operand x.
//
//	+x => x
//	-x => sub 0, x
//	!x => eq x, 0
//	~x => xor x, -1
func (c *Front) desugar(bb *ir.BasicBlock, op ast.UnaryOp, x ir.Value) ir.Value {
	switch op {
	case ast.Minus:
		zero := bb.Add(ir.Integer(0), false)

		return bb.Add(ir.Binary{Op: ir.Sub, L: zero, R: x}, true)
	case ast.Not:
		zero := bb.Add(ir.Integer(0), false)

		return bb.Add(ir.Binary{Op: ir.Eq, L: x, R: zero}, true)
	case ast.Neg:
		ones := bb.Add(ir.Integer(-1), false)

		return bb.Add(ir.Binary{Op: ir.Xor, L: x, R: ones}, true)
	default: // ast.Plus
		return x
	}
}

func (c *Front) lowerPrimary(ctx context.Context, bb *ir.BasicBlock, p ast.Primary) (_ ir.Value, err error) {
	switch p := p.(type) {
	case *ast.ParenPrimary:
		if p == nil {
			return ir.Nil, mismatch(&ast.ParenPrimary{}, nil)
		}

		return c.lowerExpr(ctx, bb, p.Exp)
	case *ast.NumberPrimary:
		if p == nil {
			return ir.Nil, mismatch(&ast.NumberPrimary{}, nil)
		}
		if p.Number == nil {
			return ir.Nil, mismatch(&ast.Number{}, nil)
		}

		return c.lowerNumber(ctx, bb, p.Number), nil
	default:
		return ir.Nil, mismatch((*ast.Primary)(nil), p)
	}
}

func (c *Front) lowerNumber(ctx context.Context, bb *ir.BasicBlock, n *ast.Number) ir.Value {
	return bb.Add(ir.Integer(n.Value), false)
}
