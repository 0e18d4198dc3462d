package ports

import (
	"math/rand"
)

// RNGPort provides seeded random number generation for deterministic
// permutation trials. Streams derived from the same base seed and trial index
// are identical regardless of worker scheduling, so a parallel run reproduces
// the sequential one exactly.
type RNGPort interface {
	// SeededStream creates a deterministic generator for a named operation.
	SeededStream(name string, seed int64) *rand.Rand

	// TrialStream derives an independent generator for one repetition.
	TrialStream(baseSeed int64, trial int) *rand.Rand
}
