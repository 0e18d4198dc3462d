package randomizer

import (
	"hash/fnv"
	"math/rand"

	"divnest/ports"
)

// SeededRNG hands out deterministic random streams. Two streams derived from
// the same inputs are identical, which keeps permutation trials reproducible
// and lets workers own independent generators.
type SeededRNG struct{}

// NewSeededRNG creates the default RNG adapter.
func NewSeededRNG() ports.RNGPort {
	return &SeededRNG{}
}

// SeededStream creates a generator for a named operation by folding the name
// into the seed.
func (r *SeededRNG) SeededStream(name string, seed int64) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(name))
	return rand.New(rand.NewSource(seed ^ int64(h.Sum64())))
}

// TrialStream derives the generator for one repetition. The golden-ratio
// multiplier spreads consecutive trial indices across the seed space so
// neighboring trials do not share low-bit patterns.
func (r *SeededRNG) TrialStream(baseSeed int64, trial int) *rand.Rand {
	const mix = int64(-7046029254386353131) // 0x9E3779B97F4A7C15 as int64
	return rand.New(rand.NewSource(baseSeed ^ (mix * int64(trial+1))))
}
