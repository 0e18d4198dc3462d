package randtest

import (
	"fmt"

	"divnest/domain/core"

	"github.com/montanaflynn/stats"
)

// Alternative is the direction of the alternative hypothesis.
type Alternative string

const (
	AlternativeGreater  Alternative = "greater"
	AlternativeLess     Alternative = "less"
	AlternativeTwoSided Alternative = "two-sided"
)

// Validate rejects unknown alternatives before any repetitions run.
func (a Alternative) Validate() error {
	switch a {
	case AlternativeGreater, AlternativeLess, AlternativeTwoSided:
		return nil
	default:
		return fmt.Errorf("%w: %q", core.ErrUnknownAlternative, a)
	}
}

// NullSummary describes the simulated null sample for reporting.
type NullSummary struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
}

// TestResult is the immutable outcome of one permutation test: the observed
// statistic, the valid simulated values, and the Monte-Carlo rank p-value.
// The simulated sample may be shorter than the requested repetitions when
// degenerate trials were discarded.
type TestResult struct {
	ID          core.TestID    `json:"id"`
	Call        string         `json:"call"`
	Observed    float64        `json:"observed"`
	Simulated   []float64      `json:"simulated"`
	Alternative Alternative    `json:"alternative"`
	PValue      float64        `json:"p_value"`
	Requested   int            `json:"requested"`
	Degenerate  int            `json:"degenerate"`
	Summary     NullSummary    `json:"summary"`
	CreatedAt   core.Timestamp `json:"created_at"`
}

// NewTestResult builds a result from the observed statistic and the valid
// simulated sample. The p-value follows the standard Monte-Carlo rank
// estimate; two-sided is twice the smaller one-sided estimate, capped at 1.
func NewTestResult(call string, observed float64, simulated []float64, alt Alternative, requested int) (*TestResult, error) {
	if err := alt.Validate(); err != nil {
		return nil, err
	}
	if len(simulated) == 0 {
		return nil, fmt.Errorf("no valid simulated values out of %d repetitions", requested)
	}
	r := &TestResult{
		ID:          core.NewTestID(),
		Call:        call,
		Observed:    observed,
		Simulated:   append([]float64(nil), simulated...),
		Alternative: alt,
		PValue:      pValue(observed, simulated, alt),
		Requested:   requested,
		Degenerate:  requested - len(simulated),
		CreatedAt:   core.Now(),
	}
	r.Summary = summarize(r.Simulated)
	return r, nil
}

func pValue(observed float64, simulated []float64, alt Alternative) float64 {
	n := float64(len(simulated))
	var ge, le float64
	for _, v := range simulated {
		if v >= observed {
			ge++
		}
		if v <= observed {
			le++
		}
	}
	greater := (1 + ge) / (1 + n)
	less := (1 + le) / (1 + n)
	switch alt {
	case AlternativeGreater:
		return greater
	case AlternativeLess:
		return less
	default:
		p := 2 * greater
		if less < greater {
			p = 2 * less
		}
		if p > 1 {
			p = 1
		}
		return p
	}
}

func summarize(sample []float64) NullSummary {
	mean, _ := stats.Mean(sample)
	sd, _ := stats.StandardDeviation(sample)
	min, _ := stats.Min(sample)
	max, _ := stats.Max(sample)
	median, _ := stats.Median(sample)
	return NullSummary{Mean: mean, StdDev: sd, Min: min, Max: max, Median: median}
}
