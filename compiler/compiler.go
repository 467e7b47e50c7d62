package compiler

import (
	"context"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/Isaac7777-cpu/pku-minic-learning-fork/compiler/back"
	"github.com/Isaac7777-cpu/pku-minic-learning-fork/compiler/front"
	"github.com/Isaac7777-cpu/pku-minic-learning-fork/compiler/ir"
	"github.com/Isaac7777-cpu/pku-minic-learning-fork/compiler/parse"
	"github.com/Isaac7777-cpu/pku-minic-learning-fork/compiler/raw"
)

type (
	Mode int
)

const (
	ModeKoopa Mode = iota
	ModeRISCV
)

func ParseMode(s string) (Mode, error) {
	switch s {
	case "-koopa", "koopa":
		return ModeKoopa, nil
	case "-riscv", "riscv":
		return ModeRISCV, nil
	default:
		return 0, errors.New("unknown mode: %q", s)
	}
}

func (m Mode) String() string {
	switch m {
	case ModeKoopa:
		return "koopa"
	case ModeRISCV:
		return "riscv"
	default:
		return "mode?"
	}
}

func CompileFile(ctx context.Context, name string, mode Mode) (obj []byte, err error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "size", len(text), "name", name)

	return Compile(ctx, name, text, mode)
}

// Compile translates source text into IR text or assembly depending on mode.
func Compile(ctx context.Context, name string, text []byte, mode Mode) (obj []byte, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "compile", "name", name, "mode", mode)
	defer tr.Finish("err", &err)

	st := parse.New()
	st.AddFile(name, text)

	x, err := st.Parse(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "parse text")
	}

	p, err := front.Lower(ctx, x)
	if err != nil {
		return nil, errors.Wrap(err, "lower")
	}

	irt, err := p.Dump(nil, ir.NewNames())
	if err != nil {
		return nil, errors.Wrap(err, "dump ir")
	}

	if mode == ModeKoopa {
		return irt, nil
	}

	rp, err := raw.Parse(ctx, irt)
	if err != nil {
		return nil, errors.Wrap(err, "parse ir")
	}

	obj, err = back.New().CompileProgram(ctx, nil, rp)
	if err != nil {
		return nil, errors.Wrap(err, "codegen")
	}

	return obj, nil
}
