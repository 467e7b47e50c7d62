package raw

import (
	"bytes"
	"context"
	"strconv"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/Isaac7777-cpu/pku-minic-learning-fork/compiler/ir"
)

type (
	parser struct {
		p  *Program
		f  *Function
		bb *BasicBlock

		syms map[string]*Value

		line int
	}
)

// Parse builds the raw graph from IR text.
func Parse(ctx context.Context, text []byte) (p *Program, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "raw: parse", "size", len(text))
	defer tr.Finish("err", &err)

	r := &parser{
		p: &Program{},
	}

	for len(text) != 0 {
		var l []byte

		l, text, _ = bytes.Cut(text, []byte{'\n'})
		r.line++

		err = r.parseLine(l)
		if err != nil {
			return nil, errors.Wrap(err, "line %d", r.line)
		}
	}

	if r.f != nil {
		return nil, errors.New("function %v: missing closing brace", r.f.Name)
	}

	if tr.If("dump_raw") {
		for _, f := range r.p.Funcs {
			for _, bb := range f.BBs {
				for i, v := range bb.Insts {
					tr.Printw("inst", "func", f.Name, "block", bb.Name, "i", i, "val", v)
				}
			}
		}
	}

	return r.p, nil
}

func (r *parser) parseLine(l []byte) (err error) {
	if i := bytes.Index(l, []byte("//")); i >= 0 {
		l = l[:i]
	}

	l = bytes.TrimSpace(l)

	switch {
	case len(l) == 0:
		return nil
	case bytes.HasPrefix(l, []byte("fun ")):
		return r.parseHeader(l)
	case bytes.Equal(l, []byte("}")):
		if r.f == nil {
			return errors.New("unexpected }")
		}

		r.p.Funcs = append(r.p.Funcs, r.f)
		r.f, r.bb, r.syms = nil, nil, nil

		return nil
	case r.f == nil:
		return errors.New("%q outside of function", l)
	case l[len(l)-1] == ':':
		name := string(bytes.TrimSpace(l[:len(l)-1]))
		if !isSymbol(name) {
			return errors.New("bad label: %q", name)
		}

		r.bb = &BasicBlock{Name: name}
		r.f.BBs = append(r.f.BBs, r.bb)

		return nil
	}

	if r.bb == nil {
		r.bb = &BasicBlock{}
		r.f.BBs = append(r.f.BBs, r.bb)
	}

	v, err := r.parseInst(fields(l))
	if err != nil {
		return err
	}

	v.Line = r.line
	r.bb.Insts = append(r.bb.Insts, v)

	return nil
}

func (r *parser) parseHeader(l []byte) (err error) {
	if r.f != nil {
		return errors.New("function %v: missing closing brace", r.f.Name)
	}

	i := skipSpaces(l, len("fun "))

	st := i
	i = skipSymbol(l, i)

	name := string(l[st:i])
	if !isSymbol(name) || name[0] != '@' {
		return errors.New("bad function name: %q", name)
	}

	i = skipSpaces(l, i)

	if !bytes.HasPrefix(l[i:], []byte("()")) {
		return errors.New("function %v: parameters are not supported", name)
	}

	i = skipSpaces(l, i+2)

	tp := ir.Unit

	if i < len(l) && l[i] == ':' {
		i = skipSpaces(l, i+1)

		st = i
		for i < len(l) && l[i] != ' ' && l[i] != '{' {
			i++
		}

		switch s := string(l[st:i]); s {
		case "i32":
			tp = ir.I32
		default:
			return errors.New("function %v: unsupported type %q", name, s)
		}

		i = skipSpaces(l, i)
	}

	if string(l[i:]) != "{" {
		return errors.New("function %v: { expected", name)
	}

	r.f = &Function{
		Name: name,
		Type: tp,
	}
	r.bb = nil
	r.syms = make(map[string]*Value)

	return nil
}

func (r *parser) parseInst(f []string) (v *Value, err error) {
	if len(f) == 0 {
		return nil, errors.New("empty instruction")
	}

	switch {
	case f[0] == "ret":
		v = &Value{Kind: KindReturn}

		switch len(f) {
		case 1:
		case 2:
			v.Ret, err = r.operand(f[1])
			if err != nil {
				return nil, errors.Wrap(err, "ret")
			}
		default:
			return nil, errors.New("ret: too many operands")
		}

		return v, nil
	case f[0] == "jump":
		if len(f) != 2 || !isSymbol(f[1]) {
			return nil, errors.New("jump: label expected")
		}

		return &Value{Kind: KindJump, Target: f[1]}, nil
	case len(f) >= 2 && f[1] == "=":
	default:
		return nil, errors.New("unknown instruction: %q", f[0])
	}

	name := f[0]

	if !isSymbol(name) {
		return nil, errors.New("bad value name: %q", name)
	}

	if _, ok := r.syms[name]; ok {
		return nil, errors.New("%v: redefined", name)
	}

	if len(f) != 5 {
		return nil, errors.New("%v: binary instruction expects 2 operands", name)
	}

	op, err := ir.ParseBinaryOp(f[2])
	if err != nil {
		return nil, errors.Wrap(err, "%v", name)
	}

	v = &Value{
		Kind: KindBinary,
		Name: name,
		Op:   op,
	}

	v.L, err = r.operand(f[3])
	if err != nil {
		return nil, errors.Wrap(err, "%v: lhs", name)
	}

	v.R, err = r.operand(f[4])
	if err != nil {
		return nil, errors.Wrap(err, "%v: rhs", name)
	}

	r.syms[name] = v

	return v, nil
}

// operand returns a fresh Integer for every literal occurrence.
func (r *parser) operand(s string) (*Value, error) {
	if s[0] == '%' || s[0] == '@' {
		v, ok := r.syms[s]
		if !ok {
			return nil, errors.New("undefined value: %v", s)
		}

		return v, nil
	}

	x, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return nil, errors.New("bad integer: %q", s)
	}

	return &Value{Kind: KindInteger, Int: int32(x), Line: r.line}, nil
}

func fields(l []byte) []string {
	var f []string

	for i := 0; i < len(l); {
		i = skipSep(l, i)
		st := i

		for i < len(l) && l[i] != ' ' && l[i] != '\t' && l[i] != ',' {
			i++
		}

		if i != st {
			f = append(f, string(l[st:i]))
		}
	}

	return f
}

func isSymbol(s string) bool {
	if len(s) < 2 || s[0] != '%' && s[0] != '@' {
		return false
	}

	return skipSymbol([]byte(s), 1) == len(s)
}

func skipSymbol(b []byte, i int) int {
	if i < len(b) && (b[i] == '%' || b[i] == '@') {
		i++
	}

	for i < len(b) && (b[i] == '_' ||
		b[i] >= 'A' && b[i] <= 'Z' ||
		b[i] >= 'a' && b[i] <= 'z' ||
		b[i] >= '0' && b[i] <= '9') {
		i++
	}

	return i
}

func skipSpaces(b []byte, i int) int {
	for i < len(b) && (b[i] == ' ' || b[i] == '\t') {
		i++
	}

	return i
}

func skipSep(b []byte, i int) int {
	for i < len(b) && (b[i] == ' ' || b[i] == '\t' || b[i] == ',') {
		i++
	}

	return i
}
