package ports

import (
	"divnest/domain/community"
	"divnest/domain/diversity"
)

// StatisticProvider computes the diversity decomposition of a (possibly
// permuted) abundance table. The output follows the Decomposition row
// contract: one labeled row per hierarchy transition plus the pooled
// inter-site and gamma rows; the engine reads rows only through the keyed
// accessors, never by position.
type StatisticProvider interface {
	Compute(tab *community.AbundanceTable, dis *community.DissimilarityMatrix, str *community.StructureTable, opts diversity.Options) (*diversity.Decomposition, error)
}

// StructureValidator checks that a grouping table is a strict nested
// coarsening. A violation is fatal and reported before any permutation work.
type StructureValidator interface {
	CheckNested(str *community.StructureTable) error
}
