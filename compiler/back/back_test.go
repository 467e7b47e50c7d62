package back

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Isaac7777-cpu/pku-minic-learning-fork/compiler/ir"
	"github.com/Isaac7777-cpu/pku-minic-learning-fork/compiler/raw"
	"github.com/Isaac7777-cpu/pku-minic-learning-fork/compiler/sim"
)

const preamble = "\t.text\n\t.globl main\n"

func compileText(t *testing.T, text string) ([]byte, error) {
	t.Helper()

	ctx := context.Background()

	p, err := raw.Parse(ctx, []byte(text))
	require.NoError(t, err)

	return New().CompileProgram(ctx, nil, p)
}

func mainIR(body string) string {
	return "fun @main(): i32 {\n%entry:\n" + body + "}\n"
}

func TestCompile(t *testing.T) {
	for _, tc := range []struct {
		name string
		ir   string
		asm  string
	}{
		{"ret0", "\tret 0\n", "\tmv    a0, x0\n\tret\n"},
		{"ret5", "\tret 5\n", "\tli    t0, 5\n\tmv    a0, t0\n\tret\n"},
		{"neg", "\t%0 = sub 0 5\n\tret %0\n",
			"\tli    t0, 5\n\tsub   t1, x0, t0\n\tmv    a0, t1\n\tret\n"},
		{"not", "\t%0 = eq 6 0\n\tret %0\n",
			"\tli    t0, 6\n\txor   t0, t0, x0\n\tseqz  t0, t0\n\tmv    a0, t0\n\tret\n"},
		{"not_zero", "\t%0 = eq 0 0\n\tret %0\n",
			"\txor   t0, x0, x0\n\tseqz  t0, t0\n\tmv    a0, t0\n\tret\n"},
		{"ne_right", "\t%0 = ne 0 3\n\tret %0\n",
			"\tli    t0, 3\n\txor   t0, x0, t0\n\tsnez  t0, t0\n\tmv    a0, t0\n\tret\n"},
		{"bnot", "\t%0 = xor 7 -1\n\tret %0\n",
			"\tli    t0, 7\n\tli    t1, -1\n\txor   t2, t0, t1\n\tmv    a0, t2\n\tret\n"},
		{"ge", "\t%0 = ge 1 2\n\tret %0\n",
			"\tli    t0, 1\n\tli    t1, 2\n\tslt   t2, t0, t1\n\tseqz  t2, t2\n\tmv    a0, t2\n\tret\n"},
		{"mod", "\t%0 = mod 7 2\n\tret %0\n",
			"\tli    t0, 7\n\tli    t1, 2\n\trem   t2, t0, t1\n\tmv    a0, t2\n\tret\n"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			b, err := compileText(t, mainIR(tc.ir))
			require.NoError(t, err)

			assert.Equal(t, preamble+"main:\n"+tc.asm, string(b))
		})
	}
}

func TestReturnZeroSetsA0(t *testing.T) {
	b, err := compileText(t, mainIR("\tret 0\n"))
	require.NoError(t, err)

	res, err := sim.Run(context.Background(), b, "main")
	require.NoError(t, err)

	assert.Equal(t, int32(0), res)
	assert.NotContains(t, string(b), "li")
}

func TestCompileUnitFunc(t *testing.T) {
	b, err := compileText(t, "fun @f() {\n\tret\n}\n")
	require.NoError(t, err)

	assert.Equal(t, preamble+"f:\n\tret\n", string(b))
}

func TestMemoIdempotence(t *testing.T) {
	ctx := context.Background()

	c := New()
	c.regs = NewRegs()

	v := &raw.Value{Kind: raw.KindInteger, Int: 7}

	b, r1, err := c.compileValue(ctx, nil, v)
	require.NoError(t, err)

	b, r2, err := c.compileValue(ctx, b, v)
	require.NoError(t, err)

	assert.Equal(t, r1, r2)
	assert.Equal(t, 1, strings.Count(string(b), "li"))
}

func TestZeroElision(t *testing.T) {
	b, err := compileText(t, mainIR("\t%0 = sub 0 0\n\t%1 = add %0 0\n\tret %1\n"))
	require.NoError(t, err)

	assert.NotContains(t, string(b), "li")
	assert.Contains(t, string(b), "sub   t0, x0, x0")
}

func TestEqReusesLeft(t *testing.T) {
	ctx := context.Background()

	l := &raw.Value{Kind: raw.KindInteger, Int: 1}
	r := &raw.Value{Kind: raw.KindInteger, Int: 2}
	eq := &raw.Value{Kind: raw.KindBinary, Op: ir.Eq, L: l, R: r}

	c := New()
	c.regs = NewRegs()

	_, d, err := c.compileValue(ctx, nil, eq)
	require.NoError(t, err)

	rl, ok := c.regs.Lookup(l)
	require.True(t, ok)

	assert.Equal(t, rl, d)
}

func TestRegisterExhausted(t *testing.T) {
	var body string

	for i := 0; i < 5; i++ {
		body += "\t%" + string(rune('0'+i)) + " = add 1 2\n"
	}

	_, err := compileText(t, mainIR(body+"\tret %4\n"))
	require.Error(t, err)

	var re *RegisterExhaustedError
	require.ErrorAs(t, err, &re)

	assert.Equal(t, "%4", re.Value.Name)
	assert.Equal(t, 7, re.Value.Line)
}

func TestUnsupportedInstruction(t *testing.T) {
	_, err := compileText(t, mainIR("\tjump %next\n%next:\n\tret 0\n"))
	require.Error(t, err)

	var ue *UnsupportedInstructionError
	require.ErrorAs(t, err, &ue)

	assert.Equal(t, raw.KindJump, ue.Kind)
}
