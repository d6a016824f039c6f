package primebench

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"
)

// SweepConfig drives a full (T, σ) grid evaluation.
type SweepConfig struct {
	// TValues and SigmaValues define the grid; both ordered, both
	// required.
	TValues     []float64
	SigmaValues []float64

	// Quadrature applies to every grid point.
	Quadrature Quadrature

	// PrimeBound overrides the sieve bound. Zero derives it from
	// max(T)·mult, the maximum truncation bound across the grid.
	PrimeBound uint64

	// Workers caps parallel evaluations; zero means GOMAXPROCS.
	Workers int

	// Budget is the wall-clock limit for the whole sweep; zero means
	// none. A breach fails the sweep with ErrResourceExceeded.
	Budget time.Duration
}

// DefaultSweepConfig returns the reference grid: T on a half-decade
// ladder, σ spanning the conjecture's weight range.
func DefaultSweepConfig() SweepConfig {
	return SweepConfig{
		TValues:     []float64{100, 316, 1000, 3162, 10000},
		SigmaValues: []float64{0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8},
		Quadrature:  DefaultQuadrature(),
	}
}

// SweepEntry is one grid point's result.
type SweepEntry struct {
	T      float64
	Sigma  float64
	Result IntegrationResult
}

// SweepTable maps the completed grid to its results. Entries are
// grid-ordered (σ-major, T-minor) regardless of worker scheduling;
// the table is read-only after construction.
type SweepTable struct {
	TValues     []float64
	SigmaValues []float64
	Entries     []SweepEntry

	index map[[2]float64]int
}

func newSweepTable(tValues, sigmaValues []float64, entries []SweepEntry) *SweepTable {
	tb := &SweepTable{
		TValues:     tValues,
		SigmaValues: sigmaValues,
		Entries:     entries,
		index:       make(map[[2]float64]int, len(entries)),
	}
	for i, e := range entries {
		tb.index[[2]float64{e.T, e.Sigma}] = i
	}
	return tb
}

// Lookup returns the result for a (T, σ) pair.
func (tb *SweepTable) Lookup(T, sigma float64) (IntegrationResult, bool) {
	i, ok := tb.index[[2]float64{T, sigma}]
	if !ok {
		return IntegrationResult{}, false
	}
	return tb.Entries[i].Result, true
}

// Row returns the entries for one σ in T order.
func (tb *SweepTable) Row(sigma float64) []SweepEntry {
	for si, s := range tb.SigmaValues {
		if s == sigma {
			n := len(tb.TValues)
			return tb.Entries[si*n : (si+1)*n]
		}
	}
	return nil
}

// RunSweep evaluates I(T, σ) for every grid pair and assembles the
// table.
//
// The prime bound is sized once, up front, from the largest truncation
// bound the grid needs; a single read-only ψ table is shared by all
// workers. Each worker writes its own preassigned slot, so the merge
// is deterministic and lock-free and the assembled table is identical
// for any worker count. Any failed evaluation aborts the whole sweep;
// a partial table would corrupt downstream fits.
//
// The budget deadline is checked before each evaluation starts, after
// it returns, and once more after the pool drains, so a breach
// surfaces even when every task started before the deadline fired.
func RunSweep(ctx context.Context, cfg SweepConfig, cache *PrimeCache) (*SweepTable, error) {
	if len(cfg.TValues) == 0 || len(cfg.SigmaValues) == 0 {
		return nil, fmt.Errorf("empty sweep grid: %w", ErrInvalidBound)
	}
	q := cfg.Quadrature.withDefaults()

	maxT := cfg.TValues[0]
	for _, t := range cfg.TValues {
		maxT = math.Max(maxT, t)
	}
	required := uint64(math.Ceil(q.TruncationMultiplier * maxT))

	bound := cfg.PrimeBound
	if bound == 0 {
		bound = required
	}
	if bound < required {
		return nil, fmt.Errorf(
			"prime bound %d below required truncation bound %d (max T %g × %g): %w",
			bound, required, maxT, q.TruncationMultiplier, ErrInsufficientPrimeRange)
	}

	ps, err := cache.Get(bound)
	if err != nil {
		return nil, err
	}
	psi := NewPsiTable(ps)

	sweepCtx := ctx
	if cfg.Budget > 0 {
		var cancel context.CancelFunc
		sweepCtx, cancel = context.WithTimeout(ctx, cfg.Budget)
		defer cancel()
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(sweepCtx)
	g.SetLimit(workers)

	entries := make([]SweepEntry, len(cfg.SigmaValues)*len(cfg.TValues))
	for si, sigma := range cfg.SigmaValues {
		for ti, t := range cfg.TValues {
			sigma, t := sigma, t
			slot := si*len(cfg.TValues) + ti
			g.Go(func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				res, err := Integrate(psi, t, sigma, q)
				if err != nil {
					return err
				}
				if err := gctx.Err(); err != nil {
					return err
				}
				entries[slot] = SweepEntry{T: t, Sigma: sigma, Result: res}
				return nil
			})
		}
	}

	budgetErr := func(err error) error {
		if errors.Is(err, context.DeadlineExceeded) && cfg.Budget > 0 {
			return fmt.Errorf("sweep exceeded wall-clock budget %s: %w", cfg.Budget, ErrResourceExceeded)
		}
		return err
	}

	if err := g.Wait(); err != nil {
		return nil, budgetErr(err)
	}
	// errgroup cancels gctx when Wait returns, so the deadline is read
	// off the budget context itself.
	if err := sweepCtx.Err(); err != nil {
		return nil, budgetErr(err)
	}

	tValues := append([]float64(nil), cfg.TValues...)
	sigmaValues := append([]float64(nil), cfg.SigmaValues...)
	return newSweepTable(tValues, sigmaValues, entries), nil
}
