package primebench

import (
	"fmt"
	"math"
	"math/cmplx"
)

// The first nontrivial zeta zero ordinates γ_n (zeros ρ = 1/2 + iγ on
// the critical line). High-precision values; ordinates beyond these
// are generated from the asymptotic spacing formula.
var knownZeroOrdinates = []float64{
	14.134725141734693,
	21.022039638771554,
	25.010857580145686,
	30.424876125859516,
	32.93506158773919,
	37.58617815882567,
	40.91871901214749,
	43.32707328091499,
	48.00515088116616,
	49.773832477672314,
}

// −ζ′(0)/ζ(0) contribution of the trivial part of the explicit
// formula, as carried by the truncated expansion.
const zetaConstantTerm = 0.0461914179

// ZeroExpansion approximates ψ(x) through the truncated explicit
// formula
//
//	ψ(x) ≈ x − 2·Re Σ_{γ ≤ Γmax} x^ρ/ρ − ζ′(0)/ζ(0),  ρ = 1/2 + iγ
//
// using the first zeta zeros. Below directCut it delegates to an exact
// prime-power table; above it the expansion applies, with no upper
// bound on x. The approximation carries an O(√x) error from the
// truncated zero sum; use it for cross-checks and for probing beyond
// sieve-practical bounds, not inside the quadrature.
type ZeroExpansion struct {
	ordinates []float64
	direct    *PsiTable
	directCut float64
}

// NewZeroExpansion builds an expansion over the first count zero
// ordinates (the first ten exact, the rest from the asymptotic spacing
// γ_n ≈ 2πn / ln(n/2π)). count below ten is raised to ten.
func NewZeroExpansion(count int) (*ZeroExpansion, error) {
	if count < len(knownZeroOrdinates) {
		count = len(knownZeroOrdinates)
	}

	ordinates := make([]float64, 0, count)
	ordinates = append(ordinates, knownZeroOrdinates...)
	for n := len(knownZeroOrdinates) + 1; n <= count; n++ {
		nf := float64(n)
		ordinates = append(ordinates, 2*math.Pi*nf/math.Log(nf/(2*math.Pi)))
	}

	const cut = 1000
	ps, err := Sieve(cut)
	if err != nil {
		return nil, err
	}

	return &ZeroExpansion{
		ordinates: ordinates,
		direct:    NewPsiTable(ps),
		directCut: cut,
	}, nil
}

// Psi returns the explicit-formula approximation of ψ(x).
func (z *ZeroExpansion) Psi(x float64) (float64, error) {
	if x < 2 {
		return 0, nil
	}
	if x <= z.directCut {
		return z.direct.Psi(x)
	}

	// Cap the ordinate range at min(x, directCut), matching the
	// truncation height to the query scale.
	limit := math.Min(x, z.directCut)
	logx := math.Log(x)

	var sum complex128
	for _, g := range z.ordinates {
		if g > limit {
			break
		}
		rho := complex(0.5, g)
		sum += cmplx.Exp(rho*complex(logx, 0)) / rho
	}

	// The conjugate zero −γ contributes the complex conjugate term, so
	// the pair sums to twice the real part.
	return x - 2*real(sum) - zetaConstantTerm, nil
}

// Delta returns ψ(x) − x under the expansion.
func (z *ZeroExpansion) Delta(x float64) (float64, error) {
	psi, err := z.Psi(x)
	if err != nil {
		return 0, err
	}
	return psi - x, nil
}

// Bound is unbounded: the expansion covers all x.
func (z *ZeroExpansion) Bound() float64 {
	return math.Inf(1)
}

// Ordinates reports how many zero ordinates the expansion carries.
func (z *ZeroExpansion) Ordinates() int {
	return len(z.ordinates)
}

var _ PsiEvaluator = (*ZeroExpansion)(nil)

// String identifies the expansion in logs and errors.
func (z *ZeroExpansion) String() string {
	return fmt.Sprintf("zero expansion (%d ordinates, direct below %g)", len(z.ordinates), z.directCut)
}
