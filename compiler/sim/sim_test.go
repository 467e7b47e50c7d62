package sim

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	ctx := context.Background()

	for _, tc := range []struct {
		name string
		asm  string
		res  int32
	}{
		{"argc", "main:\n\tret\n", 1},
		{"ret0", "\tmv    a0, x0\n\tret\n", 0},
		{"neg", "\tli    t0, 5\n\tsub   t1, x0, t0\n\tmv    a0, t1\n\tret\n", -5},
		{"not", "\tli    t0, 6\n\txor   t0, t0, x0\n\tseqz  t0, t0\n\tmv    a0, t0\n\tret\n", 0},
		{"snez", "\tli    t0, 6\n\tsnez  a0, t0\n\tret\n", 1},
		{"x0_ignores_writes", "\tli    x0, 6\n\tmv    a0, x0\n\tret\n", 0},
		{"div0", "\tli    t0, 7\n\tdiv   a0, t0, x0\n\tret\n", -1},
		{"rem0", "\tli    t0, 7\n\trem   a0, t0, x0\n\tret\n", 7},
		{"wrap", "\tli    t0, -2147483648\n\tsub   a0, x0, t0\n\tret\n", -2147483648},
		{"srl", "\tli    t0, -1\n\tli    t1, 60\n\tsrl   a0, t0, t1\n\tret\n", 15},
		{"sgt", "\tli    t0, 3\n\tsgt   a0, t0, x0\n\tret\n", 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			asm := tc.asm
			if asm[0] == '\t' {
				asm = "\t.text\n\t.globl main\nmain:\n" + asm
			}

			res, err := Run(ctx, []byte(asm), "main")
			require.NoError(t, err)

			assert.Equal(t, tc.res, res)
		})
	}
}

func TestRunErrors(t *testing.T) {
	ctx := context.Background()

	for _, tc := range []struct {
		name string
		asm  string
		err  string
	}{
		{"no_entry", "f:\n\tret\n", "no entry label"},
		{"past_end", "main:\n\tli    t0, 1\n", "ran past the end"},
		{"unknown_op", "main:\n\tjal   t0, t1, t2\n\tret\n", "unknown instruction"},
		{"unknown_reg", "main:\n\tli    s11, 1\n\tret\n", "unknown register"},
		{"arity", "main:\n\tadd   t0, t1\n\tret\n", "want 3 operands"},
		{"redefined", "main:\nmain:\n\tret\n", "label redefined"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Run(ctx, []byte(tc.asm), "main")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.err)
		})
	}
}
