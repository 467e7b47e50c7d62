package ast

type (
	Node interface{}

	Base struct {
		Pos int
		End int
	}

	CompUnit struct {
		Base `tlog:",embed"`

		FuncDef *FuncDef
	}

	FuncDef struct {
		Base `tlog:",embed"`

		Type  *FuncType
		Ident string
		Block *Block
	}

	FuncType struct {
		Base `tlog:",embed"`

		Name string
	}

	Block struct {
		Base `tlog:",embed"`

		Stmt Stmt
	}

	// Stmt is one of: *Return.
	Stmt interface {
		stmt()
	}

	Return struct {
		Base `tlog:",embed"`

		Exp *Exp
	}

	Exp struct {
		Base `tlog:",embed"`

		Unary Unary
	}

	// Unary is one of: *PrimaryUnary, *OpUnary.
	Unary interface {
		unary()
	}

	PrimaryUnary struct {
		Base `tlog:",embed"`

		Primary Primary
	}

	OpUnary struct {
		Base `tlog:",embed"`

		Op      UnaryOp
		Operand Unary
	}

	// Primary is one of: *ParenPrimary, *NumberPrimary.
	Primary interface {
		primary()
	}

	ParenPrimary struct {
		Base `tlog:",embed"`

		Exp *Exp
	}

	NumberPrimary struct {
		Base `tlog:",embed"`

		Number *Number
	}

	Number struct {
		Base `tlog:",embed"`

		Value int32
	}

	UnaryOp byte
)

const (
	Plus  UnaryOp = '+'
	Minus UnaryOp = '-'
	Not   UnaryOp = '!'
	Neg   UnaryOp = '~'
)

func (*Return) stmt() {}

func (*PrimaryUnary) unary() {}
func (*OpUnary) unary()      {}

func (*ParenPrimary) primary()  {}
func (*NumberPrimary) primary() {}

func (op UnaryOp) Valid() bool {
	switch op {
	case Plus, Minus, Not, Neg:
		return true
	}

	return false
}

func (op UnaryOp) String() string {
	return string(rune(op))
}

func (b Base) Position() (pos, end int) {
	return b.Pos, b.End
}
