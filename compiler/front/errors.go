package front

import (
	"fmt"
	"reflect"

	"tlog.app/go/loc"

	"github.com/Isaac7777-cpu/pku-minic-learning-fork/compiler/ast"
)

type (
	// StructuralMismatchError means the AST violates the grammar contract.
	// It is a parser or builder bug, never a user error.
	StructuralMismatchError struct {
		Want string
		Got  string

		// Pos is the source offset of the offending node or -1.
		Pos int

		// At is where the mismatch was detected.
		At loc.PC
	}
)

func mismatch(want, got any) *StructuralMismatchError {
	e := &StructuralMismatchError{
		Want: nodeKind(want),
		Got:  nodeKind(got),
		Pos:  -1,
		At:   loc.Caller(1),
	}

	if p, ok := got.(interface{ Position() (int, int) }); ok && !isNil(got) {
		e.Pos, _ = p.Position()
	}

	return e
}

func (e *StructuralMismatchError) Error() string {
	if e.Pos < 0 {
		return fmt.Sprintf("structural mismatch: want %v, got %v", e.Want, e.Got)
	}

	return fmt.Sprintf("structural mismatch: want %v, got %v at offset %d", e.Want, e.Got, e.Pos)
}

func nodeKind(x any) string {
	switch x := x.(type) {
	case nil:
		return "nil"
	case ast.UnaryOp:
		if x == 0 {
			return "unary operator"
		}

		return fmt.Sprintf("unary operator %q", rune(x))
	case *ast.FuncType:
		if x != nil && x.Name != "" {
			return fmt.Sprintf("function type %q", x.Name)
		}
	}

	t := reflect.TypeOf(x)

	if t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Interface {
		return t.Elem().String()
	}

	if isNil(x) {
		return "nil " + t.String()
	}

	return t.String()
}

func isNil(x any) bool {
	v := reflect.ValueOf(x)

	return v.Kind() == reflect.Ptr && v.IsNil()
}
