package primebench

import (
	"context"
	"errors"
	"math"
	"testing"
)

// syntheticTable builds a grid-ordered table directly from a value
// function, bypassing the quadrature.
func syntheticTable(tValues, sigmaValues []float64, value func(T, sigma float64) float64) *SweepTable {
	entries := make([]SweepEntry, 0, len(tValues)*len(sigmaValues))
	for _, sigma := range sigmaValues {
		for _, T := range tValues {
			entries = append(entries, SweepEntry{
				T:     T,
				Sigma: sigma,
				Result: IntegrationResult{
					T:     T,
					Sigma: sigma,
					Value: value(T, sigma),
				},
			})
		}
	}
	return newSweepTable(tValues, sigmaValues, entries)
}

func TestFitScalingRecoversExactLaw(t *testing.T) {
	const amplitude = 2.5

	tb := syntheticTable(
		[]float64{100, 1000, 10000},
		[]float64{0.3, 0.5, 0.7},
		func(T, sigma float64) float64 {
			return amplitude * math.Gamma((1-sigma)/2) * math.Pow(T, 1-2*sigma)
		},
	)

	an, err := FitScaling(tb)
	if err != nil {
		t.Fatalf("FitScaling failed: %v", err)
	}

	if math.Abs(an.Amplitude-amplitude) > 1e-9 {
		t.Errorf("amplitude = %.12f, want %.12f", an.Amplitude, amplitude)
	}
	for _, f := range an.Fits {
		wantC := amplitude * math.Gamma((1-f.Sigma)/2)
		if math.Abs(f.C-wantC)/wantC > 1e-9 {
			t.Errorf("C(%g) = %.12e, want %.12e", f.Sigma, f.C, wantC)
		}
		if math.Abs(f.Exponent-f.ExponentTheory) > 1e-9 {
			t.Errorf("exponent(%g) = %.12f, want %.12f", f.Sigma, f.Exponent, f.ExponentTheory)
		}
		if f.RSquared < 1-1e-9 {
			t.Errorf("R²(%g) = %.12f, want 1", f.Sigma, f.RSquared)
		}
		if f.Residual > 1e-9 {
			t.Errorf("residual(%g) = %.3e, want ≈ 0 for an exact law", f.Sigma, f.Residual)
		}
	}

	PrintAnalysis(t, an)
}

func TestFitScalingPerturbedLaw(t *testing.T) {
	// A mild multiplicative wobble must leave the amplitude within a
	// few percent and keep residuals bounded.
	const amplitude = 1.0

	tb := syntheticTable(
		[]float64{100, 316, 1000, 3162, 10000},
		[]float64{0.4, 0.5, 0.6},
		func(T, sigma float64) float64 {
			wobble := 1 + 0.02*math.Sin(3*math.Log(T))
			return amplitude * math.Gamma((1-sigma)/2) * math.Pow(T, 1-2*sigma) * wobble
		},
	)

	an, err := FitScaling(tb)
	if err != nil {
		t.Fatalf("FitScaling failed: %v", err)
	}

	if math.Abs(an.Amplitude-amplitude) > 0.05 {
		t.Errorf("amplitude = %.4f, want within 5%% of %.1f", an.Amplitude, amplitude)
	}
	for _, f := range an.Fits {
		if f.Residual > 0.05 {
			t.Errorf("residual(%g) = %.4f, want < 0.05 under a 2%% wobble", f.Sigma, f.Residual)
		}
	}
}

func TestFitScalingRejectsNonPositive(t *testing.T) {
	tb := syntheticTable(
		[]float64{100, 1000},
		[]float64{0.5},
		func(T, sigma float64) float64 {
			if T == 1000 {
				return 0
			}
			return 1
		},
	)

	_, err := FitScaling(tb)
	if !errors.Is(err, ErrNumericInstability) {
		t.Errorf("err = %v, want ErrNumericInstability", err)
	}
}

func TestFitScalingNeedsTwoTValues(t *testing.T) {
	tb := syntheticTable([]float64{100}, []float64{0.5}, func(T, sigma float64) float64 { return 1 })

	_, err := FitScaling(tb)
	if !errors.Is(err, ErrInvalidBound) {
		t.Errorf("err = %v, want ErrInvalidBound", err)
	}
}

func TestLinearFitExactLine(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 5}
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = 2*x + 1
	}

	slope, intercept, r2 := linearFit(xs, ys)
	if math.Abs(slope-2) > 1e-12 || math.Abs(intercept-1) > 1e-12 {
		t.Errorf("fit = (%.12f, %.12f), want (2, 1)", slope, intercept)
	}
	if math.Abs(r2-1) > 1e-12 {
		t.Errorf("R² = %.12f, want 1", r2)
	}
}

func TestLinearFitDegenerate(t *testing.T) {
	slope, _, r2 := linearFit([]float64{3, 3, 3}, []float64{1, 2, 3})
	if slope != 0 || r2 != 0 {
		t.Errorf("degenerate fit = (slope %.3f, R² %.3f), want zeros", slope, r2)
	}
}

// End-to-end: a real sweep at σ = 1/2 over a modest T ladder; C(1/2)
// must be positive and land within 10% of A·Γ(1/4) for the fitted A.
func TestFitScalingEndToEndGamma(t *testing.T) {
	cfg := SweepConfig{
		TValues:     []float64{50, 100, 200},
		SigmaValues: []float64{0.5},
		Quadrature:  DefaultQuadrature(),
		PrimeBound:  100_000,
	}

	table, err := RunSweep(context.Background(), cfg, NewPrimeCache())
	if err != nil {
		t.Fatalf("RunSweep failed: %v", err)
	}

	an, err := FitScaling(table)
	if err != nil {
		t.Fatalf("FitScaling failed: %v", err)
	}

	fit, ok := an.FitFor(0.5)
	if !ok {
		t.Fatal("no fit for σ = 1/2")
	}
	if fit.C <= 0 {
		t.Fatalf("C(1/2) = %g, want > 0", fit.C)
	}
	if an.Amplitude <= 0 {
		t.Fatalf("fitted amplitude = %g, want > 0", an.Amplitude)
	}
	if fit.Residual > 0.10 {
		t.Errorf("C(1/2) off A·Γ(1/4) by %.1f%%, want ≤ 10%%", 100*fit.Residual)
	}

	t.Logf("✓ C(1/2) = %.6e, A·Γ(1/4) = %.6e, residual %.2e",
		fit.C, fit.CTheory, fit.Residual)
}
