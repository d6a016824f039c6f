// The integral evaluator computes the weighted mean-square-error
// functional
//
//	I(T, σ) = ∫₀^∞ Δ(x)² · x^(−1−σ) · e^(−(x/T)²) dx
//
// with a deterministic fixed-grid rule. Two properties drive the
// design:
//
//   - Near x → 0 the weight x^(−1−σ) grows while Δ(x) = −x shrinks,
//     leaving an integrable x^(1−σ) profile that still needs dense
//     sampling. The rule therefore works in u = ln x, where a uniform
//     grid is logarithmically spaced in x.
//
//   - ψ(x) is piecewise constant, so the integrand is smooth only
//     between prime-power breakpoints. When the evaluator exposes its
//     breakpoints the grid is aligned on them and each cell integrates
//     a smooth piece; discontinuities never fall inside a cell.
//
// Each smooth piece is integrated with composite Simpson cells. The
// fourth-order rule matters: the integrand's curvature in u grows like
// x^(2−σ) toward the upper cutoff, so a second-order rule would need a
// node count growing with a power of T to hold a fixed relative
// tolerance, while Simpson holds it across the default grid at a fixed
// resolution.
//
// The Gaussian damping makes contributions beyond mult·T negligible;
// that truncation bound must be covered by the prime table, otherwise
// the evaluation fails (escalation, never silent truncation). The
// reported error estimate is the raw half-resolution difference, a
// conservative Richardson figure, plus analytic bounds for the
// discarded head and tail.
package primebench

import (
	"fmt"
	"math"
)

// Quadrature configures the integration rule.
type Quadrature struct {
	// TruncationMultiplier sets the upper cutoff at mult·T. Beyond
	// ≈5·T the Gaussian weight is below e^(−25).
	TruncationMultiplier float64

	// Nodes is the target number of grid cells across [LowerCutoff,
	// mult·T] in log space. Breakpoint alignment may add cells.
	Nodes int

	// RelTolerance bounds the acceptable error estimate relative to
	// the computed value; above it the evaluation fails with
	// ErrNumericInstability.
	RelTolerance float64

	// LowerCutoff starts the grid at this x. The dropped head
	// ∫₀^cutoff is bounded analytically and added to the estimate.
	LowerCutoff float64
}

// DefaultQuadrature returns the documented defaults. The node count is
// sized so every point of DefaultSweepConfig's grid, up to T = 10⁴,
// meets the default tolerance.
func DefaultQuadrature() Quadrature {
	return Quadrature{
		TruncationMultiplier: 5.0,
		Nodes:                16384,
		RelTolerance:         1e-3,
		LowerCutoff:          1e-6,
	}
}

func (q Quadrature) withDefaults() Quadrature {
	d := DefaultQuadrature()
	if q.TruncationMultiplier <= 0 {
		q.TruncationMultiplier = d.TruncationMultiplier
	}
	if q.Nodes <= 0 {
		q.Nodes = d.Nodes
	}
	if q.Nodes < 16 {
		q.Nodes = 16
	}
	if q.RelTolerance <= 0 {
		q.RelTolerance = d.RelTolerance
	}
	if q.LowerCutoff <= 0 {
		q.LowerCutoff = d.LowerCutoff
	}
	return q
}

// IntegrationResult is the computed I(T, σ) with its bookkeeping.
// Value is finite and non-negative by construction: the integrand is a
// squared quantity under positive weights and the rule uses positive
// cell weights only.
type IntegrationResult struct {
	T     float64
	Sigma float64
	Value float64

	// ErrEstimate is the conservative discretization estimate:
	// |I_n − I_{n/2}| plus the analytic head and tail bounds.
	ErrEstimate float64

	// Upper is the truncation bound mult·T actually used.
	Upper float64

	// Nodes is the grid resolution the result was computed at.
	Nodes int
}

// stepEvaluator is implemented by evaluators whose ψ is an explicit
// step function; the grid aligns on their breakpoints.
type stepEvaluator interface {
	segmentBoundaries(lo, hi float64) []float64
}

// Integrate computes I(T, σ) against the given ψ evaluator.
//
// Fails with ErrInvalidBound for T ≤ 0 or σ outside (0, 1), with
// ErrInsufficientPrimeRange when mult·T exceeds the evaluator bound,
// and with ErrNumericInstability when the error estimate exceeds
// RelTolerance·value.
func Integrate(psi PsiEvaluator, T, sigma float64, q Quadrature) (IntegrationResult, error) {
	q = q.withDefaults()

	if T <= 0 {
		return IntegrationResult{}, fmt.Errorf("T = %g: %w", T, ErrInvalidBound)
	}
	if sigma <= 0 || sigma >= 1 {
		return IntegrationResult{}, fmt.Errorf("σ = %g outside (0, 1), weight exponent degenerate: %w", sigma, ErrInvalidBound)
	}

	upper := q.TruncationMultiplier * T
	if upper > psi.Bound() {
		return IntegrationResult{}, fmt.Errorf(
			"I(T=%g, σ=%g) needs truncation bound %g but ψ is enumerated to %g: %w",
			T, sigma, upper, psi.Bound(), ErrInsufficientPrimeRange)
	}

	full, err := integrateGrid(psi, T, sigma, q.LowerCutoff, upper, q.Nodes)
	if err != nil {
		return IntegrationResult{}, err
	}
	half, err := integrateGrid(psi, T, sigma, q.LowerCutoff, upper, q.Nodes/2)
	if err != nil {
		return IntegrationResult{}, err
	}

	estimate := math.Abs(full-half) + headBound(q.LowerCutoff, sigma) + tailBound(psi, T, sigma, upper)

	res := IntegrationResult{
		T:           T,
		Sigma:       sigma,
		Value:       full,
		ErrEstimate: estimate,
		Upper:       upper,
		Nodes:       q.Nodes,
	}

	if math.IsNaN(full) || math.IsInf(full, 0) {
		return res, fmt.Errorf("I(T=%g, σ=%g) is not finite: %w", T, sigma, ErrNumericInstability)
	}
	// Absolute floor keeps near-zero values from tripping on rounding.
	if estimate > q.RelTolerance*full+1e-15 {
		return res, fmt.Errorf(
			"I(T=%g, σ=%g): error estimate %.3e exceeds tolerance %.1e·%.6e: %w",
			T, sigma, estimate, q.RelTolerance, full, ErrNumericInstability)
	}

	return res, nil
}

// integrateGrid runs the composite Simpson rule in u = ln x over
// [lo, hi] at the given resolution.
func integrateGrid(psi PsiEvaluator, T, sigma, lo, hi float64, nodes int) (float64, error) {
	if nodes < 8 {
		nodes = 8
	}
	du := (math.Log(hi) - math.Log(lo)) / float64(nodes)

	st, stepwise := psi.(stepEvaluator)
	if !stepwise {
		return smoothQuad(psi, T, sigma, lo, hi, nodes)
	}

	// Segment the range on breakpoints; ψ is constant on each
	// [s, e) piece, so one ψ lookup serves the whole cell.
	inner := st.segmentBoundaries(lo, hi)
	total := 0.0
	s := lo
	for i := 0; i <= len(inner); i++ {
		e := hi
		if i < len(inner) {
			e = inner[i]
		}
		if e <= s {
			continue
		}
		psiVal, err := psi.Psi(s)
		if err != nil {
			return 0, err
		}
		total += segmentQuad(psiVal, T, sigma, s, e, du)
		s = e
	}
	return total, nil
}

// segmentQuad integrates one smooth piece [s, e) on which ψ ≡ psiVal,
// with composite Simpson cells of log width ≤ du. In u = ln x the
// integrand is
//
//	g(u) = (psiVal − e^u)² · e^(−σu) · e^(−(e^u/T)²)
func segmentQuad(psiVal, T, sigma, s, e, du float64) float64 {
	us, ue := math.Log(s), math.Log(e)
	m := int((ue-us)/du) + 1
	if m%2 == 1 {
		m++ // Simpson needs an even cell count
	}
	h := (ue - us) / float64(m)

	g := func(u float64) float64 {
		x := math.Exp(u)
		d := psiVal - x
		r := x / T
		return d * d * math.Exp(-sigma*u) * math.Exp(-r*r)
	}

	sum := g(us) + g(ue)
	for k := 1; k < m; k++ {
		w := 2.0
		if k%2 == 1 {
			w = 4.0
		}
		sum += w * g(us+float64(k)*h)
	}
	return sum * h / 3
}

// smoothQuad is the fallback for evaluators without explicit
// breakpoints (the zero expansion is smooth): a plain uniform
// Simpson grid in u = ln x with per-node Δ evaluation.
func smoothQuad(psi PsiEvaluator, T, sigma, lo, hi float64, nodes int) (float64, error) {
	if nodes%2 == 1 {
		nodes++
	}
	us, ue := math.Log(lo), math.Log(hi)
	h := (ue - us) / float64(nodes)

	g := func(u float64) (float64, error) {
		x := math.Exp(u)
		d, err := psi.Delta(x)
		if err != nil {
			return 0, err
		}
		r := x / T
		return d * d * math.Exp(-sigma*u) * math.Exp(-r*r), nil
	}

	first, err := g(us)
	if err != nil {
		return 0, err
	}
	last, err := g(ue)
	if err != nil {
		return 0, err
	}
	sum := first + last
	for k := 1; k < nodes; k++ {
		v, err := g(us + float64(k)*h)
		if err != nil {
			return 0, err
		}
		w := 2.0
		if k%2 == 1 {
			w = 4.0
		}
		sum += w * v
	}
	return sum * h / 3, nil
}

// headBound bounds the dropped ∫₀^cutoff. Below x = 2, ψ(x) = 0 and
// Δ(x) = −x, so the integrand is x^(1−σ) (the Gaussian weight ≤ 1):
//
//	∫₀^a x^(1−σ) dx = a^(2−σ)/(2−σ)
func headBound(cutoff, sigma float64) float64 {
	return math.Pow(cutoff, 2-sigma) / (2 - sigma)
}

// tailBound bounds the dropped ∫_upper^∞ by freezing the slowly
// varying factor at the cutoff and using the Gaussian tail bound
// ∫_u^∞ e^(−(x/T)²) dx ≤ (T²/2u)·e^(−(u/T)²).
func tailBound(psi PsiEvaluator, T, sigma, upper float64) float64 {
	d, err := psi.Delta(upper)
	if err != nil {
		return 0
	}
	r := upper / T
	return d * d * math.Pow(upper, -1-sigma) * (T * T / (2 * upper)) * math.Exp(-r*r)
}
