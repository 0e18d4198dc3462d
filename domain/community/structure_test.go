package community

import (
	"testing"

	"divnest/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStructure(t *testing.T, rows [][]string) *StructureTable {
	t.Helper()
	sites := make([]core.SiteID, len(rows))
	assignments := make([][]core.GroupID, len(rows))
	for i, row := range rows {
		sites[i] = core.SiteID(rune('a' + i))
		groups := make([]core.GroupID, len(row))
		for j, g := range row {
			groups[j] = core.GroupID(g)
		}
		assignments[i] = groups
	}
	levels := make([]string, len(rows[0]))
	for j := range levels {
		levels[j] = "level" + string(rune('1'+j))
	}
	str, err := NewStructureTable(sites, levels, assignments)
	require.NoError(t, err)
	return str
}

func TestNewStructureTable_RowCountMismatch(t *testing.T) {
	_, err := NewStructureTable(
		[]core.SiteID{"s1", "s2"},
		[]string{"group"},
		[][]core.GroupID{{"A"}},
	)
	assert.ErrorIs(t, err, core.ErrRowCountMismatch)
}

func TestCheckNested_AcceptsStrictNesting(t *testing.T) {
	str := newStructure(t, [][]string{
		{"A", "X"}, {"A", "X"}, {"B", "X"}, {"C", "Y"}, {"C", "Y"},
	})
	assert.NoError(t, str.CheckNested())
}

func TestCheckNested_RejectsSplitGroup(t *testing.T) {
	// Group A appears under both X and Y.
	str := newStructure(t, [][]string{
		{"A", "X"}, {"A", "Y"}, {"B", "X"},
	})
	assert.ErrorIs(t, str.CheckNested(), core.ErrInconsistentHierarchy)
}

func TestCheckNested_SingleColumnAlwaysNested(t *testing.T) {
	str := newStructure(t, [][]string{{"A"}, {"B"}, {"A"}})
	assert.NoError(t, str.CheckNested())
}

func TestRealign_KeepsOrder(t *testing.T) {
	str := newStructure(t, [][]string{
		{"A", "X"}, {"B", "X"}, {"C", "Y"}, {"D", "Y"},
	})
	out := str.Realign([]int{0, 2})
	require.Equal(t, 2, out.NSites())
	assert.Equal(t, core.GroupID("C"), out.Assignments[1][0])
	assert.Equal(t, str.Levels, out.Levels)
}

func TestGroups_FirstOccurrenceOrder(t *testing.T) {
	str := newStructure(t, [][]string{
		{"B", "X"}, {"A", "X"}, {"B", "X"}, {"A", "X"},
	})
	order, rows := str.Groups(0)
	assert.Equal(t, []core.GroupID{"B", "A"}, order)
	assert.Equal(t, []int{0, 2}, rows["B"])
	assert.Equal(t, []int{1, 3}, rows["A"])
}

func TestAligned(t *testing.T) {
	str := newStructure(t, [][]string{{"A"}, {"B"}})
	tab, err := NewAbundanceTable(
		[]core.SiteID{"a", "b"},
		[]core.SpeciesID{"sp1"},
		[][]float64{{1}, {2}},
	)
	require.NoError(t, err)
	assert.True(t, str.Aligned(tab))

	swapped, err := NewAbundanceTable(
		[]core.SiteID{"b", "a"},
		[]core.SpeciesID{"sp1"},
		[][]float64{{1}, {2}},
	)
	require.NoError(t, err)
	assert.False(t, str.Aligned(swapped))
}

func TestClone_StructureIsIndependent(t *testing.T) {
	str := newStructure(t, [][]string{{"A"}, {"B"}})
	clone := str.Clone()
	clone.Assignments[0][0] = "Z"
	assert.Equal(t, core.GroupID("A"), str.Assignments[0][0])
}
