package back

import (
	"fmt"

	"nikand.dev/go/heap"
	"tlog.app/go/tlog"
	"tlog.app/go/tlog/tlwire"

	"github.com/Isaac7777-cpu/pku-minic-learning-fork/compiler/raw"
	"github.com/Isaac7777-cpu/pku-minic-learning-fork/compiler/set"
)

type (
	Bank byte

	Reg struct {
		Bank  Bank
		Index int
	}

	// Regs hands out registers and remembers which value lives where.
	Regs struct {
		t, a bank

		memo map[*raw.Value]Reg
	}

	bank struct {
		Bank Bank
		Size int

		used set.Bitmap
		free heap.Heap[int]
	}
)

const (
	BankT Bank = 't'
	BankA Bank = 'a'
	BankX Bank = 'x'
)

const (
	numT = 7
	numA = 8
)

var (
	ZeroReg   = Reg{Bank: BankX, Index: 0}
	ReturnReg = Reg{Bank: BankA, Index: 0}
)

func NewRegs() *Regs {
	r := &Regs{
		memo: make(map[*raw.Value]Reg),
	}

	r.t.init(BankT, numT)
	r.a.init(BankA, numA)

	return r
}

// Acquire takes a free temporary, then an argument register.
// a0 is never returned here.
func (r *Regs) Acquire() (Reg, bool) {
	if reg, ok := r.t.acquire(); ok {
		return reg, true
	}

	reg, ok := r.a.acquire()
	if ok && reg == ReturnReg {
		r.a.release(reg.Index)
		return Reg{}, false
	}

	return reg, ok
}

// AcquireFrom takes a free register from one bank.
// For the argument bank a0 is tried last.
func (r *Regs) AcquireFrom(b Bank) (Reg, bool) {
	switch b {
	case BankT:
		return r.t.acquire()
	case BankA:
		return r.a.acquire()
	}

	return Reg{}, false
}

func (r *Regs) IsFree(reg Reg) bool {
	switch reg.Bank {
	case BankT:
		return r.t.isFree(reg.Index)
	case BankA:
		return r.a.isFree(reg.Index)
	}

	return false
}

func (r *Regs) Release(reg Reg) {
	switch reg.Bank {
	case BankT:
		r.t.release(reg.Index)
	case BankA:
		r.a.release(reg.Index)
	}
}

func (r *Regs) Lookup(v *raw.Value) (Reg, bool) {
	reg, ok := r.memo[v]
	return reg, ok
}

func (r *Regs) Remember(v *raw.Value, reg Reg) {
	tlog.V("regs").Printw("remember", "val", v, "reg", reg, "t_used", r.t.used, "a_used", r.a.used)

	r.memo[v] = reg
}

func (b *bank) init(bank Bank, size int) {
	b.Bank = bank
	b.Size = size
	b.used = set.MakeBitmap(size)
	b.free = heap.Heap[int]{Less: b.less}

	for i := 0; i < size; i++ {
		b.free.Push(i)
	}
}

// less orders the free pool by scan rank.
// Index 0 of the argument bank goes last.
func (b *bank) less(d []int, i, j int) bool {
	return b.rank(d[i]) < b.rank(d[j])
}

func (b *bank) rank(i int) int {
	if b.Bank == BankA && i == 0 {
		return b.Size
	}

	return i
}

func (b *bank) acquire() (Reg, bool) {
	if b.free.Len() == 0 {
		return Reg{}, false
	}

	i := b.free.Pop()
	b.used.Set(i)

	return Reg{Bank: b.Bank, Index: i}, true
}

func (b *bank) isFree(i int) bool {
	return i >= 0 && i < b.Size && !b.used.IsSet(i)
}

func (b *bank) release(i int) {
	if i < 0 || i >= b.Size || !b.used.IsSet(i) {
		return
	}

	b.used.Clear(i)
	b.free.Push(i)
}

func (b Bank) String() string {
	return string(rune(b))
}

func (r Reg) String() string {
	return fmt.Sprintf("%c%d", r.Bank, r.Index)
}

func (r Reg) TlogAppend(b []byte) []byte {
	var e tlwire.LowEncoder

	return e.AppendString(b, r.String())
}
