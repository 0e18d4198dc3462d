package community

import (
	"fmt"

	"divnest/domain/core"
)

// AbundanceTable is the canonical sites-by-species data object for all
// diversity computation. Rows are sites, columns are species, entries are
// non-negative abundances. Row order is semantically meaningful and must stay
// aligned with the structure table.
type AbundanceTable struct {
	Sites   []core.SiteID
	Species []core.SpeciesID
	Counts  [][]float64 // rows=sites, cols=species
}

// NewAbundanceTable validates and wraps raw abundance data.
func NewAbundanceTable(sites []core.SiteID, species []core.SpeciesID, counts [][]float64) (*AbundanceTable, error) {
	if len(counts) != len(sites) {
		return nil, fmt.Errorf("abundance table has %d rows for %d sites", len(counts), len(sites))
	}
	for i, row := range counts {
		if len(row) != len(species) {
			return nil, fmt.Errorf("row %d has %d entries for %d species", i, len(row), len(species))
		}
		for j, v := range row {
			if v < 0 {
				return nil, fmt.Errorf("%w: site %s, species %s", core.ErrNegativeAbundance, sites[i], species[j])
			}
		}
	}
	return &AbundanceTable{Sites: sites, Species: species, Counts: counts}, nil
}

// NSites returns the number of rows.
func (t *AbundanceTable) NSites() int { return len(t.Sites) }

// NSpecies returns the number of columns.
func (t *AbundanceTable) NSpecies() int { return len(t.Species) }

// RowTotal returns the total abundance of site i.
func (t *AbundanceTable) RowTotal(i int) float64 {
	var sum float64
	for _, v := range t.Counts[i] {
		sum += v
	}
	return sum
}

// MinRowTotal returns the smallest site total, used to detect degenerate
// permutation outcomes.
func (t *AbundanceTable) MinRowTotal() float64 {
	min := t.RowTotal(0)
	for i := 1; i < t.NSites(); i++ {
		if s := t.RowTotal(i); s < min {
			min = s
		}
	}
	return min
}

// Total returns the grand total abundance.
func (t *AbundanceTable) Total() float64 {
	var sum float64
	for i := range t.Counts {
		sum += t.RowTotal(i)
	}
	return sum
}

// Clone deep-copies the table so each trial owns private data.
func (t *AbundanceTable) Clone() *AbundanceTable {
	counts := make([][]float64, len(t.Counts))
	for i, row := range t.Counts {
		counts[i] = append([]float64(nil), row...)
	}
	return &AbundanceTable{
		Sites:   append([]core.SiteID(nil), t.Sites...),
		Species: append([]core.SpeciesID(nil), t.Species...),
		Counts:  counts,
	}
}

// DropEmptySites removes rows whose total abundance does not exceed tol and returns
// the filtered table plus the kept row indices, so the structure table can be
// realigned. A site with no individuals carries no information and would break
// rescaling downstream.
func (t *AbundanceTable) DropEmptySites(tol float64) (*AbundanceTable, []int, error) {
	keep := make([]int, 0, t.NSites())
	for i := range t.Counts {
		if t.RowTotal(i) > tol {
			keep = append(keep, i)
		}
	}
	if len(keep) == 0 {
		return nil, nil, core.ErrEmptyTable
	}
	if len(keep) == t.NSites() {
		return t, keep, nil
	}
	sites := make([]core.SiteID, len(keep))
	counts := make([][]float64, len(keep))
	for k, i := range keep {
		sites[k] = t.Sites[i]
		counts[k] = append([]float64(nil), t.Counts[i]...)
	}
	return &AbundanceTable{Sites: sites, Species: t.Species, Counts: counts}, keep, nil
}

// PooledProfile sums the given rows into one abundance profile.
func (t *AbundanceTable) PooledProfile(rows []int) []float64 {
	profile := make([]float64, t.NSpecies())
	for _, i := range rows {
		for j, v := range t.Counts[i] {
			profile[j] += v
		}
	}
	return profile
}
