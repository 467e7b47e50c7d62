package parse

import (
	"context"
	"fmt"
	"strings"

	"tlog.app/go/errors"

	"github.com/Isaac7777-cpu/pku-minic-learning-fork/compiler/ast"
)

type (
	AllOf []Parser
)

func (p AllOf) Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error) {
	i = st

	res := make([]ast.Node, len(p))

	for j, r := range p {
		x, i, err = r.Parse(ctx, b, i)
		if err != nil {
			return nil, i, errors.Wrap(err, "%v (%d)", name(r), j)
		}

		res[j] = x
	}

	return res, i, nil
}

func name(p Parser) string {
	switch p := p.(type) {
	case Spacer:
		return name(p.Of)
	case Const:
		return fmt.Sprintf("%q", []byte(p))
	case Keyword:
		return fmt.Sprintf("%q", []byte(p))
	}

	return strings.TrimPrefix(fmt.Sprintf("%T", p), "parse.")
}
