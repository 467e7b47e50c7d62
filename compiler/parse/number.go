package parse

import (
	"context"
	"math"
	"strconv"

	"tlog.app/go/errors"

	"github.com/Isaac7777-cpu/pku-minic-learning-fork/compiler/ast"
)

type (
	// Int parses a decimal, octal (leading 0) or hex (0x) integer constant.
	// Constants up to 0xffffffff are accepted and wrap to int32.
	Int struct{}
)

func (p Int) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	i = st
	base := 10

	switch {
	case i+1 < len(b) && b[i] == '0' && (b[i+1] == 'x' || b[i+1] == 'X'):
		base = 16
		i += 2 // skip base prefix
	case i < len(b) && b[i] == '0':
		base = 8
	}

	dst := i

	for i < len(b) && isDigit(b[i], base) {
		i++
	}

	if i == dst {
		if base == 16 {
			return nil, i, errors.New("hex digits expected")
		}

		return nil, st, errors.New("Int expected")
	}

	v, err := strconv.ParseUint(string(b[dst:i]), base, 64)
	if err != nil || v > math.MaxUint32 {
		return nil, i, errors.New("integer constant out of range: %s", b[st:i])
	}

	return &ast.Number{
		Base: ast.Base{
			Pos: st,
			End: i,
		},
		Value: int32(uint32(v)),
	}, i, nil
}

func isDigit(c byte, base int) bool {
	switch base {
	case 8:
		return c >= '0' && c <= '7'
	case 16:
		return c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F'
	default:
		return c >= '0' && c <= '9'
	}
}
