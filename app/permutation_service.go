package app

import (
	"context"
	"fmt"
	"log"
	"runtime"

	"divnest/domain/community"
	"divnest/domain/core"
	"divnest/domain/diversity"
	"divnest/domain/randtest"
	"divnest/ports"

	"golang.org/x/sync/errgroup"
)

// PermutationService drives the Monte-Carlo permutation test: it validates
// inputs, selects the constrained randomization scheme for the requested
// level, builds the null distribution, and assembles the test result.
type PermutationService struct {
	provider  ports.StatisticProvider
	validator ports.StructureValidator
	rng       ports.RNGPort
	results   ports.ResultRepository // optional
	workers   int
}

// TestRequest defines the inputs for one permutation test.
type TestRequest struct {
	Table         *community.AbundanceTable
	Dissimilarity *community.DissimilarityMatrix
	Structure     *community.StructureTable
	Level         int
	Repetitions   int
	Alternative   randtest.Alternative
	Seed          int64
	Options       diversity.Options
}

// NewPermutationService wires the test engine. The repository may be nil;
// results are then returned but not persisted. workers <= 0 uses one worker
// per CPU.
func NewPermutationService(provider ports.StatisticProvider, validator ports.StructureValidator, rng ports.RNGPort, results ports.ResultRepository, workers int) *PermutationService {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &PermutationService{
		provider:  provider,
		validator: validator,
		rng:       rng,
		results:   results,
		workers:   workers,
	}
}

// RunTest executes the permutation test described by req. All fatal input
// errors surface before the first repetition; degenerate trials are excluded
// from the null sample without being retried or replaced, so the simulated
// sample may be shorter than the requested repetition count.
func (s *PermutationService) RunTest(ctx context.Context, req TestRequest) (*randtest.TestResult, error) {
	if req.Table == nil || req.Table.NSites() == 0 {
		return nil, core.ErrEmptyTable
	}
	if req.Repetitions < 1 {
		return nil, fmt.Errorf("%w: %d", core.ErrInvalidRepetitions, req.Repetitions)
	}
	if req.Alternative == "" {
		req.Alternative = randtest.AlternativeGreater
	}
	if err := req.Alternative.Validate(); err != nil {
		return nil, err
	}
	opts := req.Options.WithDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if req.Structure != nil {
		if req.Structure.NSites() != req.Table.NSites() {
			return nil, core.NewRowCountError(req.Structure.NSites(), req.Table.NSites())
		}
		if err := s.validator.CheckNested(req.Structure); err != nil {
			return nil, err
		}
	}

	// Scheme selection happens before any statistic is computed, so an
	// invalid level never reaches the provider.
	scheme, err := randtest.SelectScheme(req.Level, req.Structure)
	if err != nil {
		return nil, err
	}

	tab, keep, err := req.Table.DropEmptySites(opts.Tol)
	if err != nil {
		return nil, err
	}
	str := req.Structure
	if str != nil {
		if len(keep) != str.NSites() {
			str = str.Realign(keep)
		}
		if !str.Aligned(tab) {
			log.Printf("[PermutationService] warning: structure and table row labels disagree, assuming positional alignment")
		}
	}

	observed, err := s.statistic(tab, req.Dissimilarity, str, req.Level, opts)
	if err != nil {
		return nil, err
	}

	values := make([]float64, req.Repetitions)
	valid := make([]bool, req.Repetitions)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i := 0; i < req.Repetitions; i++ {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			rng := s.rng.TrialStream(req.Seed, i)
			ptab, pstr := scheme.GenerateTrial(rng, tab, str)
			if ptab.MinRowTotal() <= opts.Tol {
				// Degenerate trial: excluded, not retried.
				return nil
			}
			v, err := s.statistic(ptab, req.Dissimilarity, pstr, req.Level, opts)
			if err != nil {
				return err
			}
			values[i] = v
			valid[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Compact in trial order; the null sample is an unordered multiset, but a
	// stable order keeps fixed-seed runs byte-identical.
	simulated := make([]float64, 0, req.Repetitions)
	for i, ok := range valid {
		if ok {
			simulated = append(simulated, values[i])
		}
	}

	call := fmt.Sprintf("runTest(scheme=%s, level=%d, nrep=%d, formula=%s, option=%s, mean=%s, alternative=%s, seed=%d)",
		scheme.Name(), req.Level, req.Repetitions, opts.Formula, opts.Option, opts.MeanType, req.Alternative, req.Seed)
	result, err := randtest.NewTestResult(call, observed, simulated, req.Alternative, req.Repetitions)
	if err != nil {
		return nil, err
	}

	if s.results != nil {
		if err := s.results.SaveResult(ctx, result); err != nil {
			log.Printf("[PermutationService] failed to persist result %s: %v", result.ID, err)
		}
	}
	return result, nil
}

// statistic runs the provider and extracts the row under test for the
// requested level. Without a structure the inter-site row is the target.
func (s *PermutationService) statistic(tab *community.AbundanceTable, dis *community.DissimilarityMatrix, str *community.StructureTable, level int, opts diversity.Options) (float64, error) {
	dec, err := s.provider.Compute(tab, dis, str, opts)
	if err != nil {
		return 0, err
	}
	if str == nil {
		return dec.InterSites(), nil
	}
	return dec.InterLevel(level)
}
