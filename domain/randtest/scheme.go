package randtest

import (
	"math/rand"

	"divnest/domain/community"
	"divnest/domain/core"
)

// Scheme produces one valid realization of the null hypothesis under test:
// either a permuted abundance table or a permuted structure table. The inputs
// are never mutated; every trial owns the returned copies. The returned table
// may be the original pointer when the scheme only permutes structure.
type Scheme interface {
	Name() string
	GenerateTrial(rng *rand.Rand, tab *community.AbundanceTable, str *community.StructureTable) (*community.AbundanceTable, *community.StructureTable)
}

// SelectScheme dispatches the requested permutation level to one of the five
// constrained randomization schemes. It fails before any repetition runs when
// the level is outside [1, L+1], with L the number of structure columns.
func SelectScheme(level int, str *community.StructureTable) (Scheme, error) {
	ncol := 0
	if str != nil {
		ncol = str.NLevels()
	}
	if level < 1 || level > ncol+1 {
		return nil, core.NewLevelError(level, ncol)
	}
	switch {
	case str == nil:
		return FreePermutation{}, nil
	case level == 1:
		return WithinGroupPermutation{}, nil
	case level == 2 && ncol == 1:
		return WholeStructurePermutation{}, nil
	case level == 2:
		return LabelSwapNear{}, nil
	default:
		return LabelSwapGeneral{Level: level}, nil
	}
}

// FreePermutation shuffles each species column independently across sites.
// It destroys both spatial and cross-species covariance, the null of no
// structure at all. Used when no structure table is supplied.
type FreePermutation struct{}

func (FreePermutation) Name() string { return "free" }

func (FreePermutation) GenerateTrial(rng *rand.Rand, tab *community.AbundanceTable, str *community.StructureTable) (*community.AbundanceTable, *community.StructureTable) {
	out := tab.Clone()
	n := out.NSites()
	for j := 0; j < out.NSpecies(); j++ {
		perm := rng.Perm(n)
		for i := 0; i < n; i++ {
			out.Counts[i][j] = tab.Counts[perm[i]][j]
		}
	}
	return out, str
}

// WithinGroupPermutation relocates whole site profiles within their level-1
// group: all species columns move jointly, so each site keeps its multivariate
// profile and only its position inside the group changes. Singleton groups are
// left as they are.
type WithinGroupPermutation struct{}

func (WithinGroupPermutation) Name() string { return "within-group" }

func (WithinGroupPermutation) GenerateTrial(rng *rand.Rand, tab *community.AbundanceTable, str *community.StructureTable) (*community.AbundanceTable, *community.StructureTable) {
	out := tab.Clone()
	order, rows := str.Groups(0)
	for _, g := range order {
		idx := rows[g]
		if len(idx) < 2 {
			continue
		}
		perm := rng.Perm(len(idx))
		for k, i := range idx {
			copy(out.Counts[i], tab.Counts[idx[perm[k]]])
		}
	}
	return out, str
}

// WholeStructurePermutation shuffles the single structure column across all
// sites, leaving the abundance table untouched. It tests whether grouping
// itself matters, independent of which sites it designates.
type WholeStructurePermutation struct{}

func (WholeStructurePermutation) Name() string { return "whole-structure" }

func (WholeStructurePermutation) GenerateTrial(rng *rand.Rand, tab *community.AbundanceTable, str *community.StructureTable) (*community.AbundanceTable, *community.StructureTable) {
	out := str.Clone()
	perm := rng.Perm(str.NSites())
	for i := range out.Assignments {
		out.Assignments[i][0] = str.Assignments[perm[i]][0]
	}
	return tab, out
}

// LabelSwapNear tests level 2 when more than one structure column is present:
// within each level-2 partition, the level-1 labels are permuted across sites,
// holding every coarser assignment fixed. Group sizes and nesting are
// preserved because labels only move inside their parent partition.
type LabelSwapNear struct{}

func (LabelSwapNear) Name() string { return "label-swap-near" }

func (LabelSwapNear) GenerateTrial(rng *rand.Rand, tab *community.AbundanceTable, str *community.StructureTable) (*community.AbundanceTable, *community.StructureTable) {
	out := str.Clone()
	order, rows := str.Groups(1)
	for _, g := range order {
		idx := rows[g]
		if len(idx) < 2 {
			continue
		}
		perm := rng.Perm(len(idx))
		for k, i := range idx {
			out.Assignments[i][0] = str.Assignments[idx[perm[k]]][0]
		}
	}
	return tab, out
}

// LabelSwapGeneral tests an intermediate level above 2: structure rows are
// deduplicated into level-(level-2) units, each unit's level-(level-1) label
// is permuted within its level-`level` partition, and the permuted label is
// broadcast back onto every row of the unit. Coarser levels stay fixed; this
// is the restricted permutation design for nested hierarchies.
type LabelSwapGeneral struct {
	Level int
}

func (s LabelSwapGeneral) Name() string { return "label-swap-general" }

// unit is one deduplicated child group with the rows that carry it.
type unit struct {
	label core.GroupID // assignment at the permuted column
	rows  []int
}

func (s LabelSwapGeneral) GenerateTrial(rng *rand.Rand, tab *community.AbundanceTable, str *community.StructureTable) (*community.AbundanceTable, *community.StructureTable) {
	out := str.Clone()
	unitCol := s.Level - 3   // column of the deduplicated units
	labelCol := s.Level - 2  // column whose labels are permuted
	partCol := s.Level - 1   // column defining the partitions, absent at the top level

	// Deduplicate rows into units, keyed by the unit column, and bucket the
	// units per partition in first-occurrence order.
	unitIndex := make(map[core.GroupID]int)
	var units []*unit
	partOrder := make([]core.GroupID, 0)
	partUnits := make(map[core.GroupID][]int)
	for i, row := range str.Assignments {
		g := row[unitCol]
		ui, ok := unitIndex[g]
		if !ok {
			ui = len(units)
			unitIndex[g] = ui
			units = append(units, &unit{label: row[labelCol]})
			part := core.GroupID("")
			if partCol < str.NLevels() {
				part = row[partCol]
			}
			if _, seen := partUnits[part]; !seen {
				partOrder = append(partOrder, part)
			}
			partUnits[part] = append(partUnits[part], ui)
		}
		units[ui].rows = append(units[ui].rows, i)
	}

	for _, part := range partOrder {
		members := partUnits[part]
		if len(members) < 2 {
			continue
		}
		perm := rng.Perm(len(members))
		labels := make([]core.GroupID, len(members))
		for k := range members {
			labels[k] = units[members[perm[k]]].label
		}
		for k, ui := range members {
			for _, i := range units[ui].rows {
				out.Assignments[i][labelCol] = labels[k]
			}
		}
	}
	return tab, out
}
