package diversity

import (
	"fmt"

	"divnest/domain/core"
)

// Formula selects how the species dissimilarity enters the statistic.
type Formula string

const (
	// FormulaQE uses the dissimilarities as given (Rao quadratic entropy).
	FormulaQE Formula = "QE"
	// FormulaEDI treats dissimilarities as Euclidean and works on d^2/2.
	FormulaEDI Formula = "EDI"
)

// Option selects the rescaling applied to the per-level diversity rows.
type Option string

const (
	OptionEq      Option = "eq"
	OptionNormed1 Option = "normed1"
	OptionNormed2 Option = "normed2"
)

// MeanType selects how group diversities are averaged within a level.
type MeanType string

const (
	MeanArithmetic MeanType = "arithmetic"
	MeanHarmonic   MeanType = "harmonic"
)

// Options carries the statistic configuration passed through to the provider.
type Options struct {
	Formula  Formula  `json:"formula"`
	Option   Option   `json:"option"`
	MeanType MeanType `json:"mean_type"`
	Tol      float64  `json:"tol"`
}

// DefaultTol is the minimum site abundance below which a site is considered
// empty, both at input filtering and per-trial degeneracy checks.
const DefaultTol = 1e-8

// Validate rejects unknown enum values before any computation starts.
func (o Options) Validate() error {
	switch o.Formula {
	case FormulaQE, FormulaEDI:
	default:
		return fmt.Errorf("%w: %q", core.ErrUnknownFormula, o.Formula)
	}
	switch o.Option {
	case OptionEq, OptionNormed1, OptionNormed2:
	default:
		return fmt.Errorf("%w: %q", core.ErrUnknownOption, o.Option)
	}
	switch o.MeanType {
	case MeanArithmetic, MeanHarmonic:
	default:
		return fmt.Errorf("%w: %q", core.ErrUnknownMeanType, o.MeanType)
	}
	return nil
}

// WithDefaults fills unset fields with the conventional defaults.
func (o Options) WithDefaults() Options {
	if o.Formula == "" {
		o.Formula = FormulaQE
	}
	if o.Option == "" {
		o.Option = OptionEq
	}
	if o.MeanType == "" {
		o.MeanType = MeanArithmetic
	}
	if o.Tol == 0 {
		o.Tol = DefaultTol
	}
	return o
}
