// Package set keeps small sets of register indexes.
package set

import (
	"math/bits"

	"tlog.app/go/tlog/tlwire"
)

type (
	// Bitmap is a set of non-negative ints.
	// The zero value is an empty set ready to use.
	Bitmap struct {
		b  []uint64
		b0 [1]uint64
	}
)

func MakeBitmap(n int) Bitmap {
	var s Bitmap

	s.grow((n - 1) / 64)

	return s
}

func (s *Bitmap) Set(i int) {
	w, j := i/64, i%64

	s.grow(w)

	s.b[w] |= 1 << j
}

func (s *Bitmap) Clear(i int) {
	w, j := i/64, i%64

	if w >= len(s.b) {
		return
	}

	s.b[w] &^= 1 << j
}

func (s *Bitmap) IsSet(i int) bool {
	w, j := i/64, i%64

	if i < 0 || w >= len(s.b) {
		return false
	}

	return s.b[w]&(1<<j) != 0
}

func (s *Bitmap) Range(f func(i int) bool) {
	for w, x := range s.b {
		for x != 0 {
			j := bits.TrailingZeros64(x)
			x &^= 1 << j

			if !f(w*64 + j) {
				return
			}
		}
	}
}

func (s Bitmap) TlogAppend(b []byte) []byte {
	var e tlwire.LowEncoder

	if s.b == nil {
		return e.AppendNil(b)
	}

	b = e.AppendTag(b, tlwire.Array, -1)

	s.Range(func(i int) bool {
		b = e.AppendInt(b, i)

		return true
	})

	return e.AppendBreak(b)
}

func (s *Bitmap) grow(w int) {
	if s.b == nil {
		s.b = s.b0[:]
	}

	for w >= len(s.b) {
		s.b = append(s.b, 0)
	}
}
