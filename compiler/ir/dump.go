package ir

import (
	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"
)

type dumper struct {
	*Names

	emitted map[Ref]struct{}
}

// Dump appends the textual IR of the program to b.
// Temporaries are named through n in order of first reference.
func (p *Program) Dump(b []byte, n *Names) (_ []byte, err error) {
	if n == nil {
		n = NewNames()
	}

	d := dumper{
		Names:   n,
		emitted: make(map[Ref]struct{}),
	}

	for i, f := range p.Funcs {
		if i != 0 {
			b = append(b, '\n')
		}

		b, err = d.function(b, f)
		if err != nil {
			return nil, errors.Wrap(err, "func %v", f.Name)
		}
	}

	return b, nil
}

func (d dumper) function(b []byte, f *Function) (_ []byte, err error) {
	b = hfmt.Appendf(b, "fun %s()", f.Name)

	if f.Type != Unit {
		b = hfmt.Appendf(b, ": %s", f.Type.String())
	}

	b = append(b, " {\n"...)

	for i, bb := range f.Blocks {
		if i != 0 {
			b = append(b, '\n')
		}

		b, err = d.block(b, bb)
		if err != nil {
			return nil, errors.Wrap(err, "block %d %v", i, bb.Name)
		}
	}

	b = append(b, "}\n"...)

	return b, nil
}

func (d dumper) block(b []byte, bb *BasicBlock) (_ []byte, err error) {
	if bb.Name != "" {
		b = hfmt.Appendf(b, "%s:\n", bb.Name)
	}

	for _, id := range bb.Insts {
		r := Ref{Block: bb, Value: id}

		if _, ok := d.emitted[r]; ok {
			continue
		}

		d.emitted[r] = struct{}{}

		b, err = d.inst(b, bb, id)
		if err != nil {
			return nil, errors.Wrap(err, "inst %d", id)
		}
	}

	return b, nil
}

func (d dumper) inst(b []byte, bb *BasicBlock, id Value) (_ []byte, err error) {
	switch x := bb.Data(id).(type) {
	case Return:
		b = append(b, "\tret"...)

		if x.Value != Nil {
			b = append(b, ' ')

			b, err = d.operand(b, bb, x.Value)
			if err != nil {
				return nil, errors.Wrap(err, "ret value")
			}
		}
	case Binary:
		b = hfmt.Appendf(b, "\t%s = %s ", d.Name(bb, id), x.Op.String())

		b, err = d.operand(b, bb, x.L)
		if err != nil {
			return nil, errors.Wrap(err, "lhs")
		}

		b = append(b, ' ')

		b, err = d.operand(b, bb, x.R)
		if err != nil {
			return nil, errors.Wrap(err, "rhs")
		}
	default:
		return nil, errors.New("not an instruction: %T", x)
	}

	b = append(b, '\n')

	return b, nil
}

func (d dumper) operand(b []byte, bb *BasicBlock, id Value) ([]byte, error) {
	switch x := bb.Data(id).(type) {
	case Integer:
		return hfmt.Appendf(b, "%d", int32(x)), nil
	case Binary:
		return append(b, d.Name(bb, id)...), nil
	default:
		return nil, errors.New("bad operand %d: %T", id, x)
	}
}
