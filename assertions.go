package primebench

import (
	"math"
	"testing"
)

// AssertionConfig contains tolerances for the engine's testable
// properties.
type AssertionConfig struct {
	// FloatTolerance for reference-value comparisons.
	FloatTolerance float64

	// TruncationFactor multiplies the prime bound in the
	// truncation-sufficiency check.
	TruncationFactor float64

	// TruncationTolerance bounds the relative change allowed when the
	// prime bound grows beyond the truncation requirement.
	TruncationTolerance float64
}

// DefaultAssertionConfig returns conservative tolerances.
func DefaultAssertionConfig() AssertionConfig {
	return AssertionConfig{
		FloatTolerance:      1e-9,
		TruncationFactor:    2.0,
		TruncationTolerance: 1e-9,
	}
}

// AssertPsiMonotone verifies ψ(x) is non-decreasing over the sample
// points.
//
// Mathematical property:
//
//	x₁ ≤ x₂ ⇒ ψ(x₁) ≤ ψ(x₂)
func AssertPsiMonotone(t *testing.T, psi PsiEvaluator, xs []float64) {
	t.Helper()

	prev := math.Inf(-1)
	for _, x := range xs {
		v, err := psi.Psi(x)
		if err != nil {
			t.Fatalf("ψ(%g) failed: %v", x, err)
		}
		if v < prev {
			t.Errorf("ψ not monotone: ψ(%g) = %.12f dropped below %.12f", x, v, prev)
		}
		prev = v
	}

	t.Logf("✓ ψ monotone non-decreasing over %d sample points", len(xs))
}

// AssertNonNegative verifies every table value is finite and ≥ 0.
//
// Mathematical property: the integrand is Δ(x)² under positive
// weights, so I(T, σ) ≥ 0 for every valid pair.
func AssertNonNegative(t *testing.T, tb *SweepTable) {
	t.Helper()

	for _, e := range tb.Entries {
		v := e.Result.Value
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			t.Errorf("I(T=%g, σ=%g) = %g violates non-negativity", e.T, e.Sigma, v)
		}
	}

	t.Logf("✓ all %d sweep entries finite and non-negative", len(tb.Entries))
}

// AssertSigmaMonotone verifies I(T, σ) is non-increasing in σ for each
// fixed T: heavier weight decay at large x reduces the contribution.
func AssertSigmaMonotone(t *testing.T, tb *SweepTable) {
	t.Helper()

	for _, T := range tb.TValues {
		prev := math.Inf(1)
		for _, sigma := range tb.SigmaValues {
			res, ok := tb.Lookup(T, sigma)
			if !ok {
				t.Fatalf("missing entry (T=%g, σ=%g)", T, sigma)
			}
			if res.Value > prev {
				t.Errorf("I(T=%g) not non-increasing in σ: I(σ=%g) = %.6e > %.6e",
					T, sigma, res.Value, prev)
			}
			prev = res.Value
		}
	}

	t.Logf("✓ I(T, σ) non-increasing in σ across %d T values", len(tb.TValues))
}

// AssertConvergence verifies doubling the quadrature resolution moves
// I(T, σ) by less than the reported error estimate.
func AssertConvergence(t *testing.T, psi PsiEvaluator, T, sigma float64, q Quadrature) {
	t.Helper()

	base, err := Integrate(psi, T, sigma, q)
	if err != nil {
		t.Fatalf("I(T=%g, σ=%g) failed: %v", T, sigma, err)
	}

	fine := q
	fine.Nodes = base.Nodes * 2
	refined, err := Integrate(psi, T, sigma, fine)
	if err != nil {
		t.Fatalf("refined I(T=%g, σ=%g) failed: %v", T, sigma, err)
	}

	change := math.Abs(refined.Value - base.Value)
	if change > base.ErrEstimate {
		t.Errorf("convergence violated at (T=%g, σ=%g): doubling nodes moved I by %.3e, estimate was %.3e",
			T, sigma, change, base.ErrEstimate)
	}

	t.Logf("✓ convergence at (T=%g, σ=%g): change %.3e ≤ estimate %.3e",
		T, sigma, change, base.ErrEstimate)
}

// AssertTruncationSufficiency verifies that enlarging the prime bound
// beyond the truncation requirement leaves I(T, σ) unchanged within
// tolerance: the Gaussian damping really has extinguished the tail.
func AssertTruncationSufficiency(t *testing.T, T, sigma float64, q Quadrature, cfg AssertionConfig) {
	t.Helper()

	q = q.withDefaults()
	required := uint64(math.Ceil(q.TruncationMultiplier * T))

	ps, err := Sieve(required)
	if err != nil {
		t.Fatalf("sieve(%d) failed: %v", required, err)
	}
	base, err := Integrate(NewPsiTable(ps), T, sigma, q)
	if err != nil {
		t.Fatalf("I(T=%g, σ=%g) at bound %d failed: %v", T, sigma, required, err)
	}

	enlarged := uint64(float64(required) * cfg.TruncationFactor)
	ps2, err := Sieve(enlarged)
	if err != nil {
		t.Fatalf("sieve(%d) failed: %v", enlarged, err)
	}
	wide, err := Integrate(NewPsiTable(ps2), T, sigma, q)
	if err != nil {
		t.Fatalf("I(T=%g, σ=%g) at bound %d failed: %v", T, sigma, enlarged, err)
	}

	rel := math.Abs(wide.Value-base.Value) / base.Value
	if rel > cfg.TruncationTolerance {
		t.Errorf("truncation insufficient at (T=%g, σ=%g): bound %d→%d changed I by %.3e (limit %.1e)",
			T, sigma, required, enlarged, rel, cfg.TruncationTolerance)
	}

	t.Logf("✓ truncation sufficient at (T=%g, σ=%g): bound %d→%d changed I by %.3e",
		T, sigma, required, enlarged, rel)
}

// PrintSweep outputs the assembled table to the test log.
func PrintSweep(t *testing.T, tb *SweepTable) {
	t.Helper()

	t.Logf("\n=== Sweep Table ===")
	t.Logf("  %-10s %-8s %-14s %-12s", "T", "σ", "I(T, σ)", "estimate")
	for _, e := range tb.Entries {
		t.Logf("  %-10g %-8g %-14.6e %-12.3e", e.T, e.Sigma, e.Result.Value, e.Result.ErrEstimate)
	}
}

// PrintAnalysis outputs the scaling fit and residuals to the test log.
func PrintAnalysis(t *testing.T, an Analysis) {
	t.Logf("\n=== Scaling Fit ===")
	t.Logf("Fitted amplitude A = %.6e in C(σ) ≈ A·Γ((1−σ)/2)", an.Amplitude)
	t.Logf("  %-6s %-12s %-14s %-10s %-10s %-8s", "σ", "C(σ)", "A·Γ((1−σ)/2)", "residual", "exponent", "R²")
	for _, f := range an.Fits {
		t.Logf("  %-6g %-12.4e %-14.4e %-10.4f %-10.4f %-8.4f",
			f.Sigma, f.C, f.CTheory, f.Residual, f.Exponent, f.RSquared)
	}
}
