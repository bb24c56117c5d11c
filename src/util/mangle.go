// mangle.go generates unique, deterministic C identifiers for user-defined
// functions so that distinct overloads of the same source name never
// collide in the emitted C file. The source compiler this spec was
// distilled from seeds Python's random module with 9 and samples
// range(1000, 9999) once, without replacement, handing out names as
// `<name>_<popped int>`. Go's math/rand cannot reproduce Python's Mersenne
// Twister stream bit-for-bit, so this reimplements the same *contract* —
// a seeded, no-replacement draw over the same numeric range, stable across
// runs of this binary — rather than byte-identical output. See
// SPEC_FULL.md §11.1 and DESIGN.md for why this is the one component
// built directly on the standard library instead of a pack dependency.

package util

import (
	"fmt"
	"math/rand"
)

const (
	mangleRangeLo = 1000
	mangleRangeHi = 9999
)

// Mangler hands out unique C-safe suffixes for overloaded source names.
// It is not safe for concurrent use; callers serialize access (the symbol
// table already does, since declarations happen on a single compiler
// goroutine).
type Mangler struct {
	pool []int
	next int
}

// NewMangler builds a Mangler seeded with seed, pre-computing a shuffled,
// without-replacement permutation of [mangleRangeLo, mangleRangeHi).
func NewMangler(seed int64) *Mangler {
	r := rand.New(rand.NewSource(seed))
	pool := make([]int, mangleRangeHi-mangleRangeLo)
	for i := range pool {
		pool[i] = mangleRangeLo + i
	}
	r.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return &Mangler{pool: pool}
}

// Mangle returns a fresh, never-repeated C identifier derived from name.
// It panics if the pool of 8999 draws is exhausted, mirroring the
// original's unchecked `pop()` on an empty sample.
func (m *Mangler) Mangle(name string) string {
	if m.next >= len(m.pool) {
		panic("mangle: exhausted name pool")
	}
	suffix := m.pool[m.next]
	m.next++
	return fmt.Sprintf("%s_%d", name, suffix)
}
