package imagecompletion

import "math/rand/v2"

// Rand is the random source used for sampling and for pivot selection in
// ProjectOntoSimplex. *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	Float64() float64
	IntN(n int) int
}

// NewRand returns a PCG-backed source. A zero seed draws the seed from the
// runtime generator, so results are not reproducible.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

func orDefault(rng Rand) Rand {
	if rng == nil {
		return NewRand(0)
	}
	return rng
}
