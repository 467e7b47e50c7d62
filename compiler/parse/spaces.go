package parse

import (
	"bytes"
	"context"

	"tlog.app/go/errors"

	"github.com/Isaac7777-cpu/pku-minic-learning-fork/compiler/ast"
)

type (
	Skipper interface {
		Skip(b []byte, st int) int
	}

	Spaces uint64

	// Comments skips Spaces together with // line and /* block */ comments.
	Comments Spaces

	Spacer struct {
		Spaces Skipper
		Of     Parser
	}
)

var (
	SpaceAll = NewSpaces(' ', '\t', '\r', '\n')

	Blank = Comments(SpaceAll)
)

func NewSpaces(skip ...byte) (ss Spaces) {
	for _, q := range skip {
		if q >= 64 {
			panic("too high char code")
		}

		ss |= 1 << q
	}

	return
}

func (s Spaces) Skip(b []byte, st int) (i int) {
	i = st

	for i < len(b) && b[i] < 64 && s&(1<<b[i]) != 0 {
		i++
	}

	return
}

// Skip stops at an unterminated block comment so the caller reports it.
func (s Comments) Skip(b []byte, st int) (i int) {
	i = st

	for {
		i = Spaces(s).Skip(b, i)

		switch {
		case bytes.HasPrefix(b[i:], []byte("//")):
			end := bytes.IndexByte(b[i:], '\n')
			if end < 0 {
				return len(b)
			}

			i += end + 1
		case bytes.HasPrefix(b[i:], []byte("/*")):
			end := bytes.Index(b[i+2:], []byte("*/"))
			if end < 0 {
				return i
			}

			i += 2 + end + 2
		default:
			return i
		}
	}
}

func Spaced(p Parser, ss Skipper) Spacer {
	return Spacer{
		Spaces: ss,
		Of:     p,
	}
}

func (p Spacer) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	vst := p.Spaces.Skip(b, st)

	x, i, err = p.Of.Parse(ctx, b, vst)
	if err != nil {
		if i == vst {
			i = st
		}

		err = errors.Wrap(err, "%v", name(p.Of))
	}

	return
}
