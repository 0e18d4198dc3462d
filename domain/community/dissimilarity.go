package community

import (
	"fmt"

	"divnest/domain/core"

	"gonum.org/v1/gonum/mat"
)

// DissimilarityMatrix is a symmetric species-by-species dissimilarity, passed
// through to the diversity statistic. A nil matrix means every pair of
// distinct species is maximally dissimilar (Gini-Simpson weighting).
type DissimilarityMatrix struct {
	Species []core.SpeciesID
	dist    *mat.SymDense
}

// NewDissimilarityMatrix validates and wraps a symmetric dissimilarity.
// Entries must be non-negative with a zero diagonal.
func NewDissimilarityMatrix(species []core.SpeciesID, dist *mat.SymDense) (*DissimilarityMatrix, error) {
	n := len(species)
	if dist.SymmetricDim() != n {
		return nil, fmt.Errorf("%w: %d species, %d-dim matrix", core.ErrSpeciesMismatch, n, dist.SymmetricDim())
	}
	for i := 0; i < n; i++ {
		if dist.At(i, i) != 0 {
			return nil, fmt.Errorf("%w: nonzero diagonal at %s", core.ErrInvalidDissimilarity, species[i])
		}
		for j := i + 1; j < n; j++ {
			if dist.At(i, j) < 0 {
				return nil, fmt.Errorf("%w: negative entry at (%s, %s)", core.ErrInvalidDissimilarity, species[i], species[j])
			}
		}
	}
	return &DissimilarityMatrix{Species: species, dist: dist}, nil
}

// Dim returns the number of species.
func (d *DissimilarityMatrix) Dim() int { return len(d.Species) }

// At returns the dissimilarity between species i and j.
func (d *DissimilarityMatrix) At(i, j int) float64 { return d.dist.At(i, j) }

// Transform returns a new matrix with f applied to every off-diagonal entry.
// Used for the EDI formula, which works on squared half dissimilarities.
func (d *DissimilarityMatrix) Transform(f func(float64) float64) *DissimilarityMatrix {
	n := d.Dim()
	out := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			out.SetSym(i, j, f(d.dist.At(i, j)))
		}
	}
	return &DissimilarityMatrix{Species: append([]core.SpeciesID(nil), d.Species...), dist: out}
}
