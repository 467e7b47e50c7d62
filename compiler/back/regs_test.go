package back

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegsAcquireOrder(t *testing.T) {
	r := NewRegs()

	var got []string

	for {
		reg, ok := r.Acquire()
		if !ok {
			break
		}

		got = append(got, reg.String())
	}

	assert.Equal(t, []string{
		"t0", "t1", "t2", "t3", "t4", "t5", "t6",
		"a1", "a2", "a3", "a4", "a5", "a6", "a7",
	}, got)

	assert.True(t, r.IsFree(ReturnReg))

	reg, ok := r.AcquireFrom(BankA)
	require.True(t, ok)
	assert.Equal(t, ReturnReg, reg)

	_, ok = r.AcquireFrom(BankA)
	assert.False(t, ok)
}

func TestRegsRelease(t *testing.T) {
	r := NewRegs()

	for i := 0; i < 5; i++ {
		_, ok := r.AcquireFrom(BankT)
		require.True(t, ok)
	}

	t3 := Reg{Bank: BankT, Index: 3}

	assert.False(t, r.IsFree(t3))

	r.Release(t3)
	assert.True(t, r.IsFree(t3))

	reg, ok := r.Acquire()
	require.True(t, ok)
	assert.Equal(t, t3, reg)

	reg, ok = r.Acquire()
	require.True(t, ok)
	assert.Equal(t, Reg{Bank: BankT, Index: 5}, reg)
}

func TestRegsZero(t *testing.T) {
	r := NewRegs()

	assert.False(t, r.IsFree(ZeroReg))
	assert.Equal(t, "x0", ZeroReg.String())
	assert.Equal(t, "a0", ReturnReg.String())

	_, ok := r.AcquireFrom(BankX)
	assert.False(t, ok)
}
