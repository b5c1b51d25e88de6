// Package random supplies the reproducible randomness used by shuffles and
// random card selection.
package random

import (
	"crypto/rand"
	"encoding/binary"
	mathrand "math/rand/v2"
)

// Source produces uniformly distributed integers.
type Source interface {
	// Intn returns a value in [0, n). Panics if n <= 0.
	Intn(n int) int
}

type pcgSource struct {
	rng *mathrand.Rand
}

// NewSeeded returns a deterministic Source. Two sources built from the same
// seed produce the same sequence.
func NewSeeded(seed uint64) Source {
	return &pcgSource{rng: mathrand.New(mathrand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (p *pcgSource) Intn(n int) int {
	if n <= 0 {
		panic("random: Intn called with n <= 0")
	}
	return p.rng.IntN(n)
}

// NewSeed draws a fresh seed from crypto/rand. Matches record the seed they
// were started with so recordings can be replayed.
func NewSeed() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic("random: crypto/rand failure: " + err.Error())
	}
	return binary.LittleEndian.Uint64(buf[:])
}

// Shuffle permutes n elements in place with a Fisher-Yates shuffle.
func Shuffle(src Source, n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		swap(i, j)
	}
}

// Sample picks k distinct indices from [0, n) uniformly at random. The
// indices are returned in selection order. k is clamped to [0, n].
func Sample(src Source, n, k int) []int {
	if k > n {
		k = n
	}
	if k <= 0 {
		return nil
	}
	pool := make([]int, n)
	for i := range pool {
		pool[i] = i
	}
	for i := 0; i < k; i++ {
		j := i + src.Intn(n-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}
