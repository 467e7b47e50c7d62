package back

import (
	"fmt"

	"github.com/Isaac7777-cpu/pku-minic-learning-fork/compiler/raw"
)

type (
	// RegisterExhaustedError is returned when a value needs a register
	// and none is free. Values are never spilled.
	RegisterExhaustedError struct {
		Bank  Bank // 0 for the combined scan
		Value *raw.Value
	}

	UnsupportedInstructionError struct {
		Kind  raw.Kind
		Value *raw.Value
	}
)

func (e *RegisterExhaustedError) Error() string {
	where := "any bank"
	if e.Bank != 0 {
		where = "bank " + e.Bank.String()
	}

	if e.Value != nil && e.Value.Line != 0 {
		return fmt.Sprintf("register exhausted: no free register in %v (line %d)", where, e.Value.Line)
	}

	return fmt.Sprintf("register exhausted: no free register in %v", where)
}

func (e *UnsupportedInstructionError) Error() string {
	if e.Value != nil && e.Value.Line != 0 {
		return fmt.Sprintf("unsupported instruction: %v (line %d)", e.Kind, e.Value.Line)
	}

	return fmt.Sprintf("unsupported instruction: %v", e.Kind)
}
