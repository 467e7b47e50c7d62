// Package sim runs the subset of RISC-V assembly the back end emits.
package sim

import (
	"bytes"
	"context"
	"math"
	"strconv"
	"strings"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"
)

type (
	Machine struct {
		// a0 starts as argc, so code must set it before ret
		regs [32]int64

		code   []inst
		labels map[string]int
	}

	inst struct {
		op   string
		args []string
		line int
	}
)

var regnum = map[string]int{
	"x0": 0, "zero": 0, "ra": 1, "sp": 2,
	"t0": 5, "t1": 6, "t2": 7,
	"a0": 10, "a1": 11, "a2": 12, "a3": 13, "a4": 14, "a5": 15, "a6": 16, "a7": 17,
	"t3": 28, "t4": 29, "t5": 30, "t6": 31,
}

// Run executes asm from the entry label and returns a0 at the first ret.
func Run(ctx context.Context, asm []byte, entry string) (int32, error) {
	m, err := Load(ctx, asm)
	if err != nil {
		return 0, err
	}

	return m.Run(ctx, entry)
}

func Load(ctx context.Context, asm []byte) (m *Machine, err error) {
	m = &Machine{
		labels: make(map[string]int),
	}

	m.regs[regnum["a0"]] = 1

	for line := 1; len(asm) != 0; line++ {
		var l []byte

		l, asm, _ = bytes.Cut(asm, []byte{'\n'})

		if i := bytes.IndexByte(l, '#'); i >= 0 {
			l = l[:i]
		}

		s := strings.TrimSpace(string(l))

		switch {
		case s == "", s[0] == '.':
			continue
		case strings.HasSuffix(s, ":"):
			name := s[:len(s)-1]

			if _, ok := m.labels[name]; ok {
				return nil, errors.New("line %d: label redefined: %v", line, name)
			}

			m.labels[name] = len(m.code)

			continue
		}

		op, rest, _ := strings.Cut(s, " ")

		in := inst{op: op, line: line}

		if rest = strings.TrimSpace(rest); rest != "" {
			for _, a := range strings.Split(rest, ",") {
				in.args = append(in.args, strings.TrimSpace(a))
			}
		}

		m.code = append(m.code, in)
	}

	return m, nil
}

func (m *Machine) Run(ctx context.Context, entry string) (res int32, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "sim: run", "entry", entry, "insts", len(m.code))
	defer tr.Finish("res", &res, "err", &err)

	pc, ok := m.labels[entry]
	if !ok {
		return 0, errors.New("no entry label: %v", entry)
	}

	for ; pc < len(m.code); pc++ {
		in := m.code[pc]

		tr.V("sim_step").Printw("step", "pc", pc, "op", in.op, "args", in.args)

		if in.op == "ret" {
			return int32(m.regs[regnum["a0"]]), nil
		}

		err = m.exec(in)
		if err != nil {
			return 0, errors.Wrap(err, "line %d: %v", in.line, in.op)
		}
	}

	return 0, errors.New("ran past the end of code")
}

func (m *Machine) exec(in inst) (err error) {
	switch in.op {
	case "li":
		if len(in.args) != 2 {
			return errors.New("want 2 operands")
		}

		x, err := strconv.ParseInt(in.args[1], 0, 64)
		if err != nil {
			return errors.Wrap(err, "immediate")
		}

		return m.set(in.args[0], x)
	case "mv", "seqz", "snez":
		if len(in.args) != 2 {
			return errors.New("want 2 operands")
		}

		x, err := m.get(in.args[1])
		if err != nil {
			return err
		}

		switch in.op {
		case "seqz":
			x = b2i(x == 0)
		case "snez":
			x = b2i(x != 0)
		}

		return m.set(in.args[0], x)
	}

	if len(in.args) != 3 {
		return errors.New("want 3 operands")
	}

	x, err := m.get(in.args[1])
	if err != nil {
		return err
	}

	y, err := m.get(in.args[2])
	if err != nil {
		return err
	}

	var z int64

	switch in.op {
	case "add":
		z = x + y
	case "sub":
		z = x - y
	case "mul":
		z = x * y
	case "div":
		switch {
		case y == 0:
			z = -1
		case x == math.MinInt64 && y == -1:
			z = x
		default:
			z = x / y
		}
	case "rem":
		switch {
		case y == 0:
			z = x
		case x == math.MinInt64 && y == -1:
			z = 0
		default:
			z = x % y
		}
	case "and":
		z = x & y
	case "or":
		z = x | y
	case "xor":
		z = x ^ y
	case "sll":
		z = x << (y & 63)
	case "srl":
		z = int64(uint64(x) >> (y & 63))
	case "sra":
		z = x >> (y & 63)
	case "slt":
		z = b2i(x < y)
	case "sgt":
		z = b2i(x > y)
	default:
		return errors.New("unknown instruction")
	}

	return m.set(in.args[0], z)
}

func (m *Machine) get(r string) (int64, error) {
	n, ok := regnum[r]
	if !ok {
		return 0, errors.New("unknown register: %v", r)
	}

	return m.regs[n], nil
}

func (m *Machine) set(r string, x int64) error {
	n, ok := regnum[r]
	if !ok {
		return errors.New("unknown register: %v", r)
	}

	if n != 0 {
		m.regs[n] = x
	}

	return nil
}

func b2i(c bool) int64 {
	if c {
		return 1
	}

	return 0
}
