package primebench

import (
	"fmt"
	"math"
	"sort"
)

// PsiEvaluator evaluates the second Chebyshev function
//
//	ψ(x) = Σ_{p^k ≤ x} ln p
//
// and its fluctuation Δ(x) = ψ(x) − x. Implementations are read-only
// after construction and safe for concurrent use.
type PsiEvaluator interface {
	Psi(x float64) (float64, error)
	Delta(x float64) (float64, error)

	// Bound reports the largest x the evaluator covers. Queries beyond
	// it fail with ErrRangeExceeded.
	Bound() float64
}

// PsiTable is ψ(x) as an exact step function: every prime power
// p^k ≤ bound is a breakpoint carrying a jump of ln p, and evaluation
// is a binary search into the cumulative sums. ψ is right-continuous
// and piecewise constant between consecutive breakpoints.
type PsiTable struct {
	breakpoints []float64 // prime powers, strictly increasing
	cumulative  []float64 // cumulative[i] = ψ(breakpoints[i])
	bound       float64
}

// NewPsiTable precomputes the prime-power breakpoint table for the
// given set. Each prime p contributes one breakpoint per power
// p, p², p³, ... up to the set's bound.
func NewPsiTable(ps PrimeSet) *PsiTable {
	type jump struct {
		at   float64
		logp float64
	}

	jumps := make([]jump, 0, len(ps.Primes)*5/4)
	for _, p := range ps.Primes {
		lp := math.Log(float64(p))
		for pk := p; ; {
			jumps = append(jumps, jump{at: float64(pk), logp: lp})
			if pk > ps.Bound/p { // next power would overflow the bound
				break
			}
			pk *= p
		}
	}

	sort.Slice(jumps, func(i, j int) bool { return jumps[i].at < jumps[j].at })

	t := &PsiTable{
		breakpoints: make([]float64, len(jumps)),
		cumulative:  make([]float64, len(jumps)),
		bound:       float64(ps.Bound),
	}
	sum := 0.0
	for i, j := range jumps {
		sum += j.logp
		t.breakpoints[i] = j.at
		t.cumulative[i] = sum
	}
	return t
}

// Psi returns ψ(x). Fails with ErrRangeExceeded when x is beyond the
// table bound.
func (t *PsiTable) Psi(x float64) (float64, error) {
	if x > t.bound {
		return 0, fmt.Errorf("ψ(%g) with table bound %g: %w", x, t.bound, ErrRangeExceeded)
	}

	// Count of breakpoints ≤ x; ψ is right-continuous so x exactly on
	// a breakpoint includes its jump.
	idx := sort.SearchFloat64s(t.breakpoints, x)
	if idx < len(t.breakpoints) && t.breakpoints[idx] == x {
		idx++
	}
	if idx == 0 {
		return 0, nil
	}
	return t.cumulative[idx-1], nil
}

// Delta returns Δ(x) = ψ(x) − x.
func (t *PsiTable) Delta(x float64) (float64, error) {
	psi, err := t.Psi(x)
	if err != nil {
		return 0, err
	}
	return psi - x, nil
}

// Bound reports the largest x the table covers.
func (t *PsiTable) Bound() float64 {
	return t.bound
}

// Breakpoints returns the number of prime-power jumps in the table.
func (t *PsiTable) Breakpoints() int {
	return len(t.breakpoints)
}

// segmentBoundaries returns the breakpoints strictly inside (lo, hi).
// The quadrature aligns its grid on them: ψ is constant between
// consecutive boundaries, so each cell is a smooth integrand piece.
func (t *PsiTable) segmentBoundaries(lo, hi float64) []float64 {
	first := sort.SearchFloat64s(t.breakpoints, lo)
	if first < len(t.breakpoints) && t.breakpoints[first] == lo {
		first++
	}
	last := sort.SearchFloat64s(t.breakpoints, hi)
	if first >= last {
		return nil
	}
	return t.breakpoints[first:last]
}
