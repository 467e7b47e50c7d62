package parse

import (
	"bytes"
	"context"

	"tlog.app/go/errors"

	"github.com/Isaac7777-cpu/pku-minic-learning-fork/compiler/ast"
)

type (
	Const []byte

	// Keyword is a Const which must not be followed by an identifier character.
	Keyword []byte

	Ident []byte
)

func (p Const) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	if bytes.HasPrefix(b[st:], p) {
		return Const(b[st : st+len(p)]), st + len(p), nil
	}

	return nil, st, errors.New("%q expected", []byte(p))
}

func (p Keyword) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	i = st + len(p)

	if !bytes.HasPrefix(b[st:], p) || i < len(b) && isIdentChar(b[i]) {
		return nil, st, errors.New("%q expected", []byte(p))
	}

	return Keyword(b[st:i]), i, nil
}

func (p Ident) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	if st == len(b) {
		return nil, st, errors.New("Ident expected")
	}

	i = st

	c := b[i]

	switch {
	case c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_':
		i++
	default:
		return nil, st, errors.New("Ident expected")
	}

	for i < len(b) && isIdentChar(b[i]) {
		i++
	}

	return Ident(b[st:i]), i, nil
}

func isIdentChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}
