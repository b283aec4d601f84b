package core

import "math/rand/v2"

// RNG is a thin convenience wrapper around math/rand/v2 for deterministic seeding.
type RNG struct {
	r *rand.Rand
}

// NewRNG creates a deterministic RNG using the provided seed.
func NewRNG(seed int64) *RNG {
	return &RNG{r: rand.New(rand.NewPCG(uint64(seed), 0))}
}

// FillBinary fills the buffer with 0/1 values.
func (r *RNG) FillBinary(buf []uint8) {
	for i := range buf {
		buf[i] = uint8(r.r.IntN(2))
	}
}
