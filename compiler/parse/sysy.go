package parse

import (
	"context"

	"tlog.app/go/errors"

	"github.com/Isaac7777-cpu/pku-minic-learning-fork/compiler/ast"
)

type (
	CompUnit struct{}

	FuncDef struct{}

	FuncType struct{}

	Block struct{}

	Stmt struct{}

	Exp struct{}

	UnaryExp struct{}

	PrimaryExp struct{}

	UnaryOp struct{}
)

func tok(p Parser) Spacer {
	return Spaced(p, Blank)
}

func (CompUnit) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	x, i, err = tok(FuncDef{}).Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	f, err := as[*ast.FuncDef](x)
	if err != nil {
		return nil, i, err
	}

	return &ast.CompUnit{
		Base:    f.Base,
		FuncDef: f,
	}, i, nil
}

func (FuncDef) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	x, i, err = AllOf{
		FuncType{},
		tok(Ident{}),
		tok(Const("(")),
		tok(Const(")")),
		tok(Block{}),
	}.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	l := x.([]ast.Node)

	tp, err := as[*ast.FuncType](l[0])
	if err != nil {
		return nil, i, err
	}

	blk, err := as[*ast.Block](l[4])
	if err != nil {
		return nil, i, err
	}

	return &ast.FuncDef{
		Base:  ast.Base{Pos: tp.Pos, End: i},
		Type:  tp,
		Ident: string(l[1].(Ident)),
		Block: blk,
	}, i, nil
}

func (FuncType) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	x, i, err = Keyword("int").Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	return &ast.FuncType{
		Base: ast.Base{Pos: st, End: i},
		Name: string(x.(Keyword)),
	}, i, nil
}

func (Block) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	x, i, err = AllOf{
		Const("{"),
		tok(Stmt{}),
		tok(Const("}")),
	}.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	l := x.([]ast.Node)

	s, err := as[ast.Stmt](l[1])
	if err != nil {
		return nil, i, err
	}

	return &ast.Block{
		Base: ast.Base{Pos: st, End: i},
		Stmt: s,
	}, i, nil
}

func (Stmt) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	x, i, err = AllOf{
		Keyword("return"),
		tok(Exp{}),
		tok(Const(";")),
	}.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	l := x.([]ast.Node)

	e, err := as[*ast.Exp](l[1])
	if err != nil {
		return nil, i, err
	}

	return &ast.Return{
		Base: ast.Base{Pos: st, End: i},
		Exp:  e,
	}, i, nil
}

func (Exp) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	x, i, err = UnaryExp{}.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	u, err := as[ast.Unary](x)
	if err != nil {
		return nil, i, err
	}

	return &ast.Exp{
		Base:  ast.Base{Pos: st, End: i},
		Unary: u,
	}, i, nil
}

func (UnaryExp) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	x, i, err = PrimaryExp{}.Parse(ctx, b, st)
	if err == nil {
		p, err := as[ast.Primary](x)
		if err != nil {
			return nil, i, err
		}

		return &ast.PrimaryUnary{
			Base:    ast.Base{Pos: st, End: i},
			Primary: p,
		}, i, nil
	}
	if i != st {
		return nil, i, err
	}

	x, i, err = AllOf{
		UnaryOp{},
		tok(UnaryExp{}),
	}.Parse(ctx, b, st)
	if err != nil {
		if i == st {
			return nil, st, errors.New("expected PrimaryExp or UnaryOp")
		}

		return nil, i, err
	}

	l := x.([]ast.Node)

	u, err := as[ast.Unary](l[1])
	if err != nil {
		return nil, i, err
	}

	return &ast.OpUnary{
		Base:    ast.Base{Pos: st, End: i},
		Op:      l[0].(ast.UnaryOp),
		Operand: u,
	}, i, nil
}

func (PrimaryExp) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	if st < len(b) && b[st] == '(' {
		x, i, err = AllOf{
			Const("("),
			tok(Exp{}),
			tok(Const(")")),
		}.Parse(ctx, b, st)
		if err != nil {
			return nil, i, err
		}

		e, err := as[*ast.Exp](x.([]ast.Node)[1])
		if err != nil {
			return nil, i, err
		}

		return &ast.ParenPrimary{
			Base: ast.Base{Pos: st, End: i},
			Exp:  e,
		}, i, nil
	}

	x, i, err = Int{}.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	n := x.(*ast.Number)

	return &ast.NumberPrimary{
		Base:   n.Base,
		Number: n,
	}, i, nil
}

func (UnaryOp) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	if st < len(b) {
		if op := ast.UnaryOp(b[st]); op.Valid() {
			return op, st + 1, nil
		}
	}

	return nil, st, errors.New("UnaryOp expected")
}

func as[T any](x ast.Node) (T, error) {
	r, ok := x.(T)
	if !ok {
		var zero T
		return zero, NewTypeExpectedError((*T)(nil))
	}

	return r, nil
}
