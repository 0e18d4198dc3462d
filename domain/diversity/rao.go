package diversity

import (
	"fmt"
	"math"

	"divnest/domain/community"
	"divnest/domain/core"

	"gonum.org/v1/gonum/mat"
)

// RaoProvider computes equivalent diversities from Rao's quadratic entropy and
// decomposes them across a nested hierarchy. It is the default statistic
// behind the permutation test.
type RaoProvider struct{}

// NewRaoProvider creates the default diversity statistic provider.
func NewRaoProvider() *RaoProvider {
	return &RaoProvider{}
}

// Compute decomposes the table's equivalent diversity across the hierarchy.
// See the Decomposition row contract for the output layout. The dissimilarity
// and structure may be nil; structure rows must align positionally with the
// table.
func (p *RaoProvider) Compute(tab *community.AbundanceTable, dis *community.DissimilarityMatrix, str *community.StructureTable, opts Options) (*Decomposition, error) {
	opts = opts.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if dis != nil {
		if dis.Dim() != tab.NSpecies() {
			return nil, fmt.Errorf("%w: %d species, %d-dim dissimilarity", core.ErrSpeciesMismatch, tab.NSpecies(), dis.Dim())
		}
		if opts.Formula == FormulaEDI {
			dis = dis.Transform(func(d float64) float64 { return d * d / 2 })
		}
	}
	if str != nil && str.NSites() != tab.NSites() {
		return nil, core.NewRowCountError(str.NSites(), tab.NSites())
	}

	tab, keep, err := tab.DropEmptySites(opts.Tol)
	if err != nil {
		return nil, err
	}
	if str != nil && len(keep) != str.NSites() {
		str = str.Realign(keep)
	}

	eq := newEqCalculator(dis, tab.NSpecies())
	total := tab.Total()

	// Site-scale equivalent diversity, abundance weighted.
	siteRows := make([][]int, tab.NSites())
	for i := range siteRows {
		siteRows[i] = []int{i}
	}
	dSites := pooledMean(tab, eq, siteRows, total, opts.MeanType)

	gamma := eq.equivalent(tab.PooledProfile(allRows(tab.NSites())))

	if str == nil {
		return NewDecomposition(nil, nil, gamma/dSites, gamma), nil
	}

	L := str.NLevels()

	// Equivalent diversity at each grouping scale, finest first.
	scale := make([]float64, L+1)
	scale[0] = dSites
	for k := 1; k <= L; k++ {
		order, rows := str.Groups(k - 1)
		groupRows := make([][]int, 0, len(order))
		for _, g := range order {
			groupRows = append(groupRows, rows[g])
		}
		scale[k] = pooledMean(tab, eq, groupRows, total, opts.MeanType)
	}

	// Per-transition rows: effective number of level-(j-1) units per level-j
	// group, as the ratio of consecutive scales. Gamma closes the top.
	interLevel := make([]float64, L+1)
	labels := make([]string, L+1)
	for j := 1; j <= L+1; j++ {
		upper := gamma
		if j <= L {
			upper = scale[j]
		}
		interLevel[j-1] = upper / scale[j-1]
		labels[j-1] = transitionLabel(str, j)
	}

	if opts.Option != OptionEq {
		for j := 1; j <= L+1; j++ {
			g := unitsPerPartition(str, j)
			interLevel[j-1] = rescale(interLevel[j-1], g, opts.Option)
		}
	}

	return NewDecomposition(interLevel, labels, gamma/dSites, gamma), nil
}

// eqCalculator turns an abundance profile into an equivalent number through
// Rao's quadratic entropy.
type eqCalculator struct {
	dis *mat.SymDense
}

func newEqCalculator(dis *community.DissimilarityMatrix, nSpecies int) *eqCalculator {
	if dis == nil {
		return &eqCalculator{}
	}
	d := mat.NewSymDense(nSpecies, nil)
	for i := 0; i < nSpecies; i++ {
		for j := i + 1; j < nSpecies; j++ {
			d.SetSym(i, j, dis.At(i, j))
		}
	}
	return &eqCalculator{dis: d}
}

// equivalent computes 1/(1-Q) with Q the quadratic entropy of the normalized
// profile. With no dissimilarity Q reduces to Gini-Simpson.
func (c *eqCalculator) equivalent(profile []float64) float64 {
	var total float64
	for _, v := range profile {
		total += v
	}
	if total <= 0 {
		return math.NaN()
	}
	p := make([]float64, len(profile))
	for i, v := range profile {
		p[i] = v / total
	}
	var q float64
	if c.dis == nil {
		sumSq := 0.0
		for _, v := range p {
			sumSq += v * v
		}
		q = 1 - sumSq
	} else {
		v := mat.NewVecDense(len(p), p)
		q = mat.Inner(v, c.dis, v)
	}
	if q >= 1 {
		return math.Inf(1)
	}
	return 1 / (1 - q)
}

// pooledMean averages the equivalent diversities of pooled row groups,
// weighted by group abundance, with the configured mean type.
func pooledMean(tab *community.AbundanceTable, eq *eqCalculator, groups [][]int, total float64, mean MeanType) float64 {
	var num, den float64
	for _, rows := range groups {
		profile := tab.PooledProfile(rows)
		var w float64
		for _, v := range profile {
			w += v
		}
		w /= total
		x := eq.equivalent(profile)
		switch mean {
		case MeanHarmonic:
			num += w
			den += w / x
		default:
			num += w * x
			den += w
		}
	}
	return num / den
}

// unitsPerPartition returns the largest number of level-(j-1) units contained
// in one level-j partition, the ceiling used by the normed rescalings.
func unitsPerPartition(str *community.StructureTable, j int) int {
	L := str.NLevels()
	// Count distinct finer units per coarser partition.
	counts := make(map[core.GroupID]map[core.GroupID]bool)
	for i := 0; i < str.NSites(); i++ {
		part := core.GroupID("")
		if j <= L {
			part = str.Assignments[i][j-1]
		}
		var unit core.GroupID
		if j == 1 {
			unit = core.GroupID(str.Sites[i])
		} else {
			unit = str.Assignments[i][j-2]
		}
		if counts[part] == nil {
			counts[part] = make(map[core.GroupID]bool)
		}
		counts[part][unit] = true
	}
	max := 0
	for _, units := range counts {
		if len(units) > max {
			max = len(units)
		}
	}
	return max
}

// rescale maps a per-transition equivalent number onto [0, 1].
func rescale(v float64, g int, option Option) float64 {
	if g <= 1 {
		return 0
	}
	gf := float64(g)
	switch option {
	case OptionNormed2:
		return (1 - 1/v) / (1 - 1/gf)
	default: // normed1
		return (v - 1) / (gf - 1)
	}
}

func transitionLabel(str *community.StructureTable, j int) string {
	L := str.NLevels()
	switch {
	case j == 1 && L >= 1:
		return "inter-sites within " + str.Levels[0]
	case j <= L:
		return "inter-" + str.Levels[j-2] + " within " + str.Levels[j-1]
	default:
		return "inter-" + str.Levels[L-1]
	}
}

func allRows(n int) []int {
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return rows
}
