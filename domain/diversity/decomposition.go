package diversity

import (
	"fmt"
)

// Row is one labeled entry of a diversity decomposition.
type Row struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Decomposition is the provider's output: one labeled row per hierarchy
// transition plus the pooled inter-site and gamma rows.
//
// Row contract, for L structure columns (L may be 0):
//   - interLevel[j-1], j = 1..L+1: equivalent diversity among level-(j-1)
//     units within level-j groups, finest transition first. Level 0 units are
//     the sites themselves; level L+1 is the single top partition. The
//     rescaling option chosen at compute time applies to these rows.
//   - interSites: equivalent diversity among sites ignoring structure. This is
//     the row under test when no structure is supplied.
//   - gamma: equivalent diversity of the pooled table.
//
// Consumers never index rows by position; they go through InterLevel and
// InterSites, keyed by the level under test.
type Decomposition struct {
	interLevel []float64
	interSites float64
	gamma      float64
	labels     []string
}

// NewDecomposition assembles a decomposition from per-transition values,
// labeled finest first.
func NewDecomposition(interLevel []float64, labels []string, interSites, gamma float64) *Decomposition {
	return &Decomposition{
		interLevel: interLevel,
		interSites: interSites,
		gamma:      gamma,
		labels:     labels,
	}
}

// NLevels returns the number of hierarchy transitions carried.
func (d *Decomposition) NLevels() int { return len(d.interLevel) }

// InterLevel returns the statistic under test for the given permutation level
// (1 = finest transition). It replaces positional row arithmetic with a lookup
// keyed by level.
func (d *Decomposition) InterLevel(level int) (float64, error) {
	if level < 1 || level > len(d.interLevel) {
		return 0, fmt.Errorf("decomposition has no row for level %d (have %d)", level, len(d.interLevel))
	}
	return d.interLevel[level-1], nil
}

// InterSites returns the unstructured among-site equivalent diversity, the
// statistic under test when structure is absent.
func (d *Decomposition) InterSites() float64 { return d.interSites }

// Gamma returns the pooled equivalent diversity.
func (d *Decomposition) Gamma() float64 { return d.gamma }

// Rows lists every labeled row, finest transition first, then the pooled
// inter-site and gamma rows. Intended for reporting, not for indexing.
func (d *Decomposition) Rows() []Row {
	rows := make([]Row, 0, len(d.interLevel)+2)
	for i, v := range d.interLevel {
		rows = append(rows, Row{Label: d.labels[i], Value: v})
	}
	rows = append(rows, Row{Label: "inter-sites", Value: d.interSites})
	rows = append(rows, Row{Label: "gamma", Value: d.gamma})
	return rows
}
