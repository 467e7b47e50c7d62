package back

import (
	"context"
	"strings"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/Isaac7777-cpu/pku-minic-learning-fork/compiler/ir"
	"github.com/Isaac7777-cpu/pku-minic-learning-fork/compiler/raw"
)

type (
	// Compiler emits RISC-V assembly text for a raw program.
	Compiler struct {
		regs  *Regs
		depth int
	}
)

// binops maps operators lowered to a single instruction.
var binops = [...]string{
	ir.Add: "add",
	ir.Sub: "sub",
	ir.Mul: "mul",
	ir.Div: "div",
	ir.Mod: "rem",
	ir.And: "and",
	ir.Or:  "or",
	ir.Xor: "xor",
	ir.Shl: "sll",
	ir.Shr: "srl",
	ir.Sar: "sra",
	ir.Lt:  "slt",
	ir.Gt:  "sgt",
}

func New() *Compiler {
	return &Compiler{}
}

func (c *Compiler) CompileProgram(ctx context.Context, b []byte, p *raw.Program) (_ []byte, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "back: compile program", "funcs", len(p.Funcs))
	defer tr.Finish("err", &err)

	c.regs = NewRegs()
	c.depth = 0

	for _, v := range p.Values {
		b, _, err = c.compileValue(ctx, b, v)
		if err != nil {
			return nil, errors.Wrap(err, "global")
		}
	}

	b = app(b, 1, ".text\n")
	b = app(b, 1, ".globl main\n")

	for _, f := range p.Funcs {
		b, err = c.compileFunc(ctx, b, f)
		if err != nil {
			return nil, errors.Wrap(err, "func %v", f.Name)
		}
	}

	return b, nil
}

func (c *Compiler) compileFunc(ctx context.Context, b []byte, f *raw.Function) (_ []byte, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "back: compile func", "name", f.Name, "blocks", len(f.BBs))
	defer tr.Finish("err", &err)

	// registers are not shared between functions
	c.regs = NewRegs()

	b = hfmt.Appendf(b, "%s:\n", strings.TrimLeft(f.Name, "@%"))

	for _, bb := range f.BBs {
		b, err = c.compileBlock(ctx, b, bb)
		if err != nil {
			return nil, errors.Wrap(err, "block %v", bb.Name)
		}
	}

	return b, nil
}

func (c *Compiler) compileBlock(ctx context.Context, b []byte, bb *raw.BasicBlock) (_ []byte, err error) {
	c.depth++
	defer func() { c.depth-- }()

	for i, v := range bb.Insts {
		b, _, err = c.compileValue(ctx, b, v)
		if err != nil {
			return nil, errors.Wrap(err, "inst %d", i)
		}
	}

	return b, nil
}

// compileValue returns the register holding v, emitting code for it on first visit.
func (c *Compiler) compileValue(ctx context.Context, b []byte, v *raw.Value) (_ []byte, r Reg, err error) {
	if r, ok := c.regs.Lookup(v); ok {
		return b, r, nil
	}

	switch v.Kind {
	case raw.KindReturn:
		b, r, err = c.compileReturn(ctx, b, v)
	case raw.KindInteger:
		b, r, err = c.compileInteger(ctx, b, v)
	case raw.KindBinary:
		b, r, err = c.compileBinary(ctx, b, v)
	default:
		return nil, Reg{}, &UnsupportedInstructionError{Kind: v.Kind, Value: v}
	}

	if err != nil {
		return nil, Reg{}, err
	}

	c.regs.Remember(v, r)

	return b, r, nil
}

func (c *Compiler) compileReturn(ctx context.Context, b []byte, v *raw.Value) (_ []byte, r Reg, err error) {
	if v.Ret != nil {
		b, r, err = c.compileValue(ctx, b, v.Ret)
		if err != nil {
			return nil, Reg{}, errors.Wrap(err, "ret")
		}

		if r != ReturnReg {
			b = c.inst(b, "mv", ReturnReg, r)
		}
	}

	b = c.inst(b, "ret")

	return b, ReturnReg, nil
}

func (c *Compiler) compileInteger(ctx context.Context, b []byte, v *raw.Value) (_ []byte, r Reg, err error) {
	if v.Int == 0 {
		return b, ZeroReg, nil
	}

	r, err = c.acquire(v)
	if err != nil {
		return nil, Reg{}, err
	}

	b = c.inst(b, "li", r, v.Int)

	return b, r, nil
}

func (c *Compiler) compileBinary(ctx context.Context, b []byte, v *raw.Value) (_ []byte, d Reg, err error) {
	b, l, err := c.compileValue(ctx, b, v.L)
	if err != nil {
		return nil, Reg{}, errors.Wrap(err, "%v: lhs", v.Name)
	}

	b, r, err := c.compileValue(ctx, b, v.R)
	if err != nil {
		return nil, Reg{}, errors.Wrap(err, "%v: rhs", v.Name)
	}

	switch v.Op {
	case ir.Eq, ir.NotEq:
		switch {
		case l != ZeroReg:
			d = l
		case r != ZeroReg:
			d = r
		default:
			d, err = c.acquire(v)
			if err != nil {
				return nil, Reg{}, err
			}
		}

		b = c.inst(b, "xor", d, l, r)

		if v.Op == ir.Eq {
			b = c.inst(b, "seqz", d, d)
		} else {
			b = c.inst(b, "snez", d, d)
		}

		return b, d, nil
	case ir.Ge, ir.Le:
		d, err = c.acquire(v)
		if err != nil {
			return nil, Reg{}, err
		}

		if v.Op == ir.Ge {
			b = c.inst(b, "slt", d, l, r)
		} else {
			b = c.inst(b, "sgt", d, l, r)
		}

		b = c.inst(b, "seqz", d, d)

		return b, d, nil
	}

	if int(v.Op) < 0 || int(v.Op) >= len(binops) || binops[v.Op] == "" {
		return nil, Reg{}, &UnsupportedInstructionError{Kind: v.Kind, Value: v}
	}

	d, err = c.acquire(v)
	if err != nil {
		return nil, Reg{}, err
	}

	b = c.inst(b, binops[v.Op], d, l, r)

	return b, d, nil
}

func (c *Compiler) acquire(v *raw.Value) (Reg, error) {
	r, ok := c.regs.Acquire()
	if !ok {
		return Reg{}, &RegisterExhaustedError{Value: v}
	}

	return r, nil
}

func (c *Compiler) inst(b []byte, mn string, ops ...any) []byte {
	if len(ops) == 0 {
		return app(b, c.depth, "%s\n", mn)
	}

	b = app(b, c.depth, "%-5s ", mn)

	for i, op := range ops {
		if i != 0 {
			b = append(b, ", "...)
		}

		switch op := op.(type) {
		case Reg:
			b = append(b, op.String()...)
		default:
			b = hfmt.Appendf(b, "%v", op)
		}
	}

	return append(b, '\n')
}

func app(b []byte, d int, f string, args ...any) []byte {
	const tabs = "\t\t\t\t\t\t\t\t"

	if d > len(tabs) {
		d = len(tabs)
	}

	b = append(b, tabs[:d]...)
	b = hfmt.Appendf(b, f, args...)

	return b
}
