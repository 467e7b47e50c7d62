package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModeArgs(t *testing.T) {
	for _, tc := range []struct {
		in, out []string
	}{
		{[]string{"minic", "-koopa", "p.c", "-o", "p.koopa"}, []string{"minic", "koopa", "p.c", "-o", "p.koopa"}},
		{[]string{"minic", "-riscv", "p.c", "-o", "p.S"}, []string{"minic", "riscv", "p.c", "-o", "p.S"}},
		{[]string{"minic", "koopa", "p.c"}, []string{"minic", "koopa", "p.c"}},
		{[]string{"minic", "parse", "p.c"}, []string{"minic", "parse", "p.c"}},
		{[]string{"minic", "-v", "parse"}, []string{"minic", "-v", "parse"}},
		{[]string{"minic"}, []string{"minic"}},
	} {
		assert.Equal(t, tc.out, modeArgs(tc.in), "%q", tc.in)
	}
}

func TestRewatch(t *testing.T) {
	ctx := context.Background()

	w, err := fsnotify.NewWatcher()
	require.NoError(t, err)

	defer func() {
		assert.NoError(t, w.Close())
	}()

	name := filepath.Join(t.TempDir(), "main.c")

	err = rewatch(ctx, w, name)
	assert.Error(t, err, "missing file")

	err = os.WriteFile(name, []byte("int main() { return 0; }\n"), 0o644)
	require.NoError(t, err)

	err = rewatch(ctx, w, name)
	assert.NoError(t, err)
}
