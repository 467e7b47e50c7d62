// Package raw is the structured form of textual IR which the back end walks.
//
// Every value is a distinct heap node, so pointer identity is value identity.
package raw

import (
	"tlog.app/go/tlog/tlwire"

	"github.com/Isaac7777-cpu/pku-minic-learning-fork/compiler/ir"
)

type (
	Kind int

	Program struct {
		Values []*Value
		Funcs  []*Function
	}

	Function struct {
		Name string
		Type ir.Type
		BBs  []*BasicBlock
	}

	BasicBlock struct {
		Name  string
		Insts []*Value
	}

	Value struct {
		Kind Kind

		// Name is set for named instructions.
		Name string

		// Integer.
		Int int32

		// Binary.
		Op   ir.BinaryOp
		L, R *Value

		// Return; nil for unit returns.
		Ret *Value

		// Jump.
		Target string

		// Line is the source line in IR text.
		Line int
	}
)

const (
	KindInteger Kind = iota
	KindReturn
	KindBinary
	KindJump
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindReturn:
		return "return"
	case KindBinary:
		return "binary"
	case KindJump:
		return "jump"
	default:
		return "kind?"
	}
}

func (v *Value) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	if v == nil {
		return e.AppendNil(b)
	}

	b = e.AppendMap(b, 3)

	b = e.AppendString(b, "kind")
	b = e.AppendString(b, v.Kind.String())
	b = e.AppendString(b, "name")
	b = e.AppendString(b, v.Name)
	b = e.AppendKeyInt(b, "line", v.Line)

	return b
}
