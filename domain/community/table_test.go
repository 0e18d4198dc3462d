package community

import (
	"testing"

	"divnest/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTable(t *testing.T, counts [][]float64) *AbundanceTable {
	t.Helper()
	sites := make([]core.SiteID, len(counts))
	for i := range counts {
		sites[i] = core.SiteID(rune('a' + i))
	}
	species := make([]core.SpeciesID, len(counts[0]))
	for j := range counts[0] {
		species[j] = core.SpeciesID(rune('A' + j))
	}
	tab, err := NewAbundanceTable(sites, species, counts)
	require.NoError(t, err)
	return tab
}

func TestNewAbundanceTable_RejectsNegatives(t *testing.T) {
	_, err := NewAbundanceTable(
		[]core.SiteID{"s1"},
		[]core.SpeciesID{"sp1", "sp2"},
		[][]float64{{1, -2}},
	)
	assert.ErrorIs(t, err, core.ErrNegativeAbundance)
}

func TestNewAbundanceTable_RejectsRaggedRows(t *testing.T) {
	_, err := NewAbundanceTable(
		[]core.SiteID{"s1", "s2"},
		[]core.SpeciesID{"sp1", "sp2"},
		[][]float64{{1, 2}, {3}},
	)
	assert.Error(t, err)
}

func TestDropEmptySites_FiltersAtTolerance(t *testing.T) {
	tab := newTable(t, [][]float64{
		{1, 2, 3},
		{0, 0, 0},
		{0, 1e-9, 0},
		{4, 0, 0},
	})

	filtered, keep, err := tab.DropEmptySites(1e-8)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 3}, keep)
	assert.Equal(t, 2, filtered.NSites())
	assert.Equal(t, core.SiteID("d"), filtered.Sites[1])
}

func TestDropEmptySites_ExactTolIsDropped(t *testing.T) {
	tab := newTable(t, [][]float64{
		{2, 0},
		{1, 0},
	})
	_, keep, err := tab.DropEmptySites(1)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, keep)
}

func TestDropEmptySites_AllEmptyFails(t *testing.T) {
	tab := newTable(t, [][]float64{{0, 0}})
	_, _, err := tab.DropEmptySites(1e-8)
	assert.ErrorIs(t, err, core.ErrEmptyTable)
}

func TestDropEmptySites_NoFilterReturnsSameTable(t *testing.T) {
	tab := newTable(t, [][]float64{{1, 1}, {2, 2}})
	filtered, keep, err := tab.DropEmptySites(1e-8)
	require.NoError(t, err)
	assert.Same(t, tab, filtered)
	assert.Equal(t, []int{0, 1}, keep)
}

func TestClone_IsIndependent(t *testing.T) {
	tab := newTable(t, [][]float64{{1, 2}, {3, 4}})
	clone := tab.Clone()
	clone.Counts[0][0] = 99
	assert.Equal(t, 1.0, tab.Counts[0][0])
}

func TestRowTotals(t *testing.T) {
	tab := newTable(t, [][]float64{{1, 2}, {0.5, 0}})
	assert.Equal(t, 3.0, tab.RowTotal(0))
	assert.Equal(t, 0.5, tab.MinRowTotal())
	assert.Equal(t, 3.5, tab.Total())
}

func TestPooledProfile(t *testing.T) {
	tab := newTable(t, [][]float64{{1, 2}, {3, 4}, {5, 6}})
	assert.Equal(t, []float64{4, 6}, tab.PooledProfile([]int{0, 1}))
}
