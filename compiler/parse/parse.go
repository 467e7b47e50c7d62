package parse

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"reflect"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/Isaac7777-cpu/pku-minic-learning-fork/compiler/ast"
)

type (
	State struct {
		b []byte // all files concatenated

		Grammar Parser

		files []file
	}

	file struct {
		base int
		size int
		name string
	}

	Parser interface {
		Parse(ctx context.Context, b []byte, st int) (x ast.Node, i int, err error)
	}

	TypeExpectedError struct {
		T interface{}
	}

	PartialReadError struct {
		End int
	}
)

func ParseFile(ctx context.Context, name string) (ast.Node, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	s := New()
	s.AddFile(name, data)

	return s.Parse(ctx)
}

func Parse(ctx context.Context, text []byte) (x ast.Node, err error) {
	s := New()

	s.AddFile("", text)

	return s.Parse(ctx)
}

func New() *State {
	return &State{
		Grammar: CompUnit{},
	}
}

func (s *State) Parse(ctx context.Context) (x ast.Node, err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "parse", "size", len(s.b), "files", len(s.files))
	defer tr.Finish("err", &err)

	x, i, err := s.Grammar.Parse(ctx, s.b, 0)
	if err != nil {
		return nil, errors.Wrap(err, "%v", s.Where(i))
	}

	i = Blank.Skip(s.b, i)

	if i != len(s.b) {
		return x, errors.Wrap(PartialReadError{End: i}, "%v", s.Where(i))
	}

	if tr.If("dump_ast") {
		tr.Printw("ast", "typ", tlog.NextAsType, x, "ast", x)
	}

	return x, nil
}

func (s *State) AddFile(name string, text []byte) {
	f := file{
		name: name,
		base: len(s.b),
		size: len(text),
	}

	s.b = append(s.b, text...)

	s.files = append(s.files, f)
}

func (s *State) Text(pos, end int) []byte {
	return s.b[pos:end]
}

// Where formats pos as file:line:col.
func (s *State) Where(pos int) string {
	for _, f := range s.files {
		if pos < f.base || pos > f.base+f.size {
			continue
		}

		text := s.b[f.base:pos]

		line := 1 + bytes.Count(text, []byte{'\n'})
		col := pos - f.base - bytes.LastIndexByte(text, '\n')

		name := f.name
		if name == "" {
			name = "<input>"
		}

		return fmt.Sprintf("%s:%d:%d", name, line, col)
	}

	return fmt.Sprintf("offset %d", pos)
}

func NewTypeExpectedError(t interface{}) TypeExpectedError {
	return TypeExpectedError{
		T: t,
	}
}

func (e TypeExpectedError) Error() string {
	t := reflect.TypeOf(e.T)
	if t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	return fmt.Sprintf("%v expected", t)
}

func (e PartialReadError) Error() string {
	return "partial read"
}
