package community

import (
	"divnest/domain/core"
)

// StructureTable assigns every site to one group per hierarchy level. Column k
// groups sites at level k+1; columns must form a strict nested coarsening
// (every group at one level maps to exactly one group at the next).
type StructureTable struct {
	Sites       []core.SiteID
	Levels      []string          // column names, finest first
	Assignments [][]core.GroupID  // rows=sites, cols=levels
}

// NewStructureTable validates the row shape of a grouping table.
func NewStructureTable(sites []core.SiteID, levels []string, assignments [][]core.GroupID) (*StructureTable, error) {
	if len(assignments) != len(sites) {
		return nil, core.NewRowCountError(len(assignments), len(sites))
	}
	for _, row := range assignments {
		if len(row) != len(levels) {
			return nil, core.ErrInvalidStructure
		}
	}
	return &StructureTable{Sites: sites, Levels: levels, Assignments: assignments}, nil
}

// NLevels returns the number of hierarchy columns.
func (s *StructureTable) NLevels() int { return len(s.Levels) }

// NSites returns the number of rows.
func (s *StructureTable) NSites() int { return len(s.Sites) }

// Column returns the group assignment at level k (0-based column index).
func (s *StructureTable) Column(k int) []core.GroupID {
	col := make([]core.GroupID, s.NSites())
	for i, row := range s.Assignments {
		col[i] = row[k]
	}
	return col
}

// Clone deep-copies the table so each trial owns private data.
func (s *StructureTable) Clone() *StructureTable {
	assignments := make([][]core.GroupID, len(s.Assignments))
	for i, row := range s.Assignments {
		assignments[i] = append([]core.GroupID(nil), row...)
	}
	return &StructureTable{
		Sites:       append([]core.SiteID(nil), s.Sites...),
		Levels:      append([]string(nil), s.Levels...),
		Assignments: assignments,
	}
}

// Realign filters the table to the given row indices, in order. Used after
// empty sites are dropped from the abundance table.
func (s *StructureTable) Realign(keep []int) *StructureTable {
	sites := make([]core.SiteID, len(keep))
	assignments := make([][]core.GroupID, len(keep))
	for k, i := range keep {
		sites[k] = s.Sites[i]
		assignments[k] = append([]core.GroupID(nil), s.Assignments[i]...)
	}
	return &StructureTable{Sites: sites, Levels: append([]string(nil), s.Levels...), Assignments: assignments}
}

// CheckNested verifies strict nesting: every group at level k maps to exactly
// one group at level k+1 across all rows.
func (s *StructureTable) CheckNested() error {
	for k := 0; k+1 < s.NLevels(); k++ {
		parent := make(map[core.GroupID]core.GroupID)
		for _, row := range s.Assignments {
			child, p := row[k], row[k+1]
			if seen, ok := parent[child]; ok {
				if seen != p {
					return core.NewNestingError(k+1, child.String(), []string{seen.String(), p.String()})
				}
				continue
			}
			parent[child] = p
		}
	}
	return nil
}

// Groups partitions row indices by the group at level k, preserving
// first-occurrence order so randomized trials stay reproducible.
func (s *StructureTable) Groups(k int) ([]core.GroupID, map[core.GroupID][]int) {
	order := make([]core.GroupID, 0)
	rows := make(map[core.GroupID][]int)
	for i, row := range s.Assignments {
		g := row[k]
		if _, ok := rows[g]; !ok {
			order = append(order, g)
		}
		rows[g] = append(rows[g], i)
	}
	return order, rows
}

// Aligned reports whether the structure's site labels match the table's in
// order. A disagreement with equal counts is a warning, not an error; callers
// proceed assuming positional alignment.
func (s *StructureTable) Aligned(t *AbundanceTable) bool {
	if s.NSites() != t.NSites() {
		return false
	}
	for i, id := range s.Sites {
		if id != t.Sites[i] {
			return false
		}
	}
	return true
}

// NestingValidator is the default hierarchy consistency checker.
type NestingValidator struct{}

// CheckNested implements the structure-validator port.
func (NestingValidator) CheckNested(s *StructureTable) error {
	return s.CheckNested()
}
