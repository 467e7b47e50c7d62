package front

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Isaac7777-cpu/pku-minic-learning-fork/compiler/ast"
	"github.com/Isaac7777-cpu/pku-minic-learning-fork/compiler/ir"
)

func num(v int32) ast.Unary {
	return &ast.PrimaryUnary{Primary: &ast.NumberPrimary{Number: &ast.Number{Value: v}}}
}

func op(o ast.UnaryOp, x ast.Unary) ast.Unary {
	return &ast.OpUnary{Op: o, Operand: x}
}

func paren(x ast.Unary) ast.Unary {
	return &ast.PrimaryUnary{Primary: &ast.ParenPrimary{Exp: &ast.Exp{Unary: x}}}
}

func unit(x ast.Unary) *ast.CompUnit {
	return &ast.CompUnit{
		FuncDef: &ast.FuncDef{
			Type:  &ast.FuncType{Name: "int"},
			Ident: "main",
			Block: &ast.Block{
				Stmt: &ast.Return{Exp: &ast.Exp{Unary: x}},
			},
		},
	}
}

func lowerText(t *testing.T, x ast.Unary) string {
	t.Helper()

	p, err := Lower(context.Background(), unit(x))
	require.NoError(t, err)

	b, err := p.Dump(nil, ir.NewNames())
	require.NoError(t, err)

	return string(b)
}

func TestLowerDesugar(t *testing.T) {
	for _, tc := range []struct {
		name string
		x    ast.Unary
		body string
	}{
		{"return0", num(0), "\tret 0\n"},
		{"plus", op(ast.Plus, num(3)), "\tret 3\n"},
		{"minus", op(ast.Minus, num(5)), "\t%0 = sub 0 5\n\tret %0\n"},
		{"not", op(ast.Not, num(0)), "\t%0 = eq 0 0\n\tret %0\n"},
		{"neg", op(ast.Neg, num(7)), "\t%0 = xor 7 -1\n\tret %0\n"},
		{"paren", paren(op(ast.Minus, num(1))), "\t%0 = sub 0 1\n\tret %0\n"},
		{"chain", op(ast.Minus, op(ast.Not, op(ast.Neg, op(ast.Plus, num(2))))),
			"\t%0 = xor 2 -1\n\t%1 = eq %0 0\n\t%2 = sub 0 %1\n\tret %2\n"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := lowerText(t, tc.x)

			assert.Equal(t, "fun @main(): i32 {\n%entry:\n"+tc.body+"}\n", got)
		})
	}
}

func TestLowerStructure(t *testing.T) {
	p, err := Lower(context.Background(), unit(op(ast.Minus, num(5))))
	require.NoError(t, err)

	require.Len(t, p.Funcs, 1)
	assert.Empty(t, p.Values)

	f := p.Funcs[0]
	assert.Equal(t, "@main", f.Name)
	assert.Equal(t, ir.I32, f.Type)
	require.Len(t, f.Blocks, 1)

	bb := f.Blocks[0]
	assert.Equal(t, DefaultEntryLabel, bb.Name)

	// 5, 0, sub, ret
	assert.Len(t, bb.Values, 4)
	assert.Equal(t, []ir.Value{2, 3}, bb.Insts)

	for _, id := range bb.Insts {
		_, isInt := bb.Data(id).(ir.Integer)
		assert.False(t, isInt, "integer %d in instruction list", id)
	}
}

func TestLowerMismatch(t *testing.T) {
	ctx := context.Background()

	bad := []ast.Node{
		nil,
		&ast.Exp{},
		(*ast.CompUnit)(nil),
		&ast.CompUnit{},
		&ast.CompUnit{FuncDef: &ast.FuncDef{Ident: "main"}},
		&ast.CompUnit{FuncDef: &ast.FuncDef{Type: &ast.FuncType{Name: "void"}, Ident: "main", Block: &ast.Block{}}},
		&ast.CompUnit{FuncDef: &ast.FuncDef{Type: &ast.FuncType{Name: "int"}, Ident: "main"}},
		&ast.CompUnit{FuncDef: &ast.FuncDef{Type: &ast.FuncType{Name: "int"}, Ident: "main", Block: &ast.Block{}}},
		&ast.CompUnit{FuncDef: &ast.FuncDef{Type: &ast.FuncType{Name: "int"}, Ident: "main", Block: &ast.Block{Stmt: &ast.Return{}}}},
		unit(nil),
		unit(&ast.PrimaryUnary{}),
		unit(&ast.PrimaryUnary{Primary: &ast.NumberPrimary{}}),
		unit(&ast.PrimaryUnary{Primary: &ast.ParenPrimary{}}),
		unit(&ast.OpUnary{Op: '*', Operand: num(1)}),
		unit(op(ast.Minus, nil)),
	}

	for i, x := range bad {
		_, err := Lower(ctx, x)
		require.Error(t, err, "case %d", i)

		var sm *StructuralMismatchError
		assert.ErrorAs(t, err, &sm, "case %d", i)
	}
}

func TestMismatchMessage(t *testing.T) {
	_, err := Lower(context.Background(), unit(&ast.OpUnary{Base: ast.Base{Pos: 19, End: 21}, Op: '*', Operand: num(1)}))
	require.Error(t, err)

	var sm *StructuralMismatchError
	require.ErrorAs(t, err, &sm)

	assert.Equal(t, "unary operator", sm.Want)
	assert.Equal(t, `unary operator '*'`, sm.Got)
	assert.Equal(t, -1, sm.Pos)

	_, err = Lower(context.Background(), &ast.Exp{Base: ast.Base{Pos: 4}})
	require.ErrorAs(t, err, &sm)

	assert.Equal(t, "*ast.CompUnit", sm.Want)
	assert.Equal(t, "*ast.Exp", sm.Got)
	assert.Equal(t, 4, sm.Pos)
	assert.Contains(t, sm.Error(), "at offset 4")
}
