package ir

import (
	"tlog.app/go/errors"
	"tlog.app/go/tlog/tlwire"
)

type (
	// Value is a handle into the owning BasicBlock's Values arena.
	Value int

	Type int

	BinaryOp int

	// ValueData is one of: Integer, Return, Binary.
	ValueData interface {
		value()
	}

	Integer int32

	Return struct {
		Value Value
	}

	Binary struct {
		Op   BinaryOp
		L, R Value
	}

	BasicBlock struct {
		Name string

		Values []ValueData
		Insts  []Value
	}

	Function struct {
		Name   string
		Type   Type
		Blocks []*BasicBlock
	}

	Program struct {
		Values []ValueData
		Funcs  []*Function
	}
)

const Nil Value = -1

const (
	I32 Type = iota
	Unit
)

const (
	NotEq BinaryOp = iota
	Eq
	Gt
	Lt
	Ge
	Le
	Add
	Sub
	Mul
	Div
	Mod
	And
	Or
	Xor
	Shl
	Shr
	Sar

	numBinaryOps
)

var binaryOpNames = [...]string{
	NotEq: "ne",
	Eq:    "eq",
	Gt:    "gt",
	Lt:    "lt",
	Ge:    "ge",
	Le:    "le",
	Add:   "add",
	Sub:   "sub",
	Mul:   "mul",
	Div:   "div",
	Mod:   "mod",
	And:   "and",
	Or:    "or",
	Xor:   "xor",
	Shl:   "shl",
	Shr:   "shr",
	Sar:   "sar",
}

func (Integer) value() {}
func (Return) value()  {}
func (Binary) value()  {}

// Add puts x into the arena. If inst is set x is also appended to the instruction list.
func (b *BasicBlock) Add(x ValueData, inst bool) Value {
	id := Value(len(b.Values))

	b.Values = append(b.Values, x)

	if inst {
		b.Insts = append(b.Insts, id)
	}

	return id
}

func (b *BasicBlock) Data(v Value) ValueData {
	if v < 0 || int(v) >= len(b.Values) {
		return nil
	}

	return b.Values[v]
}

func (t Type) String() string {
	switch t {
	case I32:
		return "i32"
	case Unit:
		return "unit"
	default:
		return "type?"
	}
}

func (op BinaryOp) Valid() bool {
	return op >= 0 && op < numBinaryOps
}

func (op BinaryOp) String() string {
	if !op.Valid() {
		return "op?"
	}

	return binaryOpNames[op]
}

func ParseBinaryOp(s string) (BinaryOp, error) {
	for op, name := range binaryOpNames {
		if name == s {
			return BinaryOp(op), nil
		}
	}

	return 0, errors.New("unknown binary operator: %q", s)
}

func (op BinaryOp) TlogAppend(b []byte) []byte {
	var e tlwire.LowEncoder

	return e.AppendString(b, op.String())
}
