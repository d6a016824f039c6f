// Scaling-law analysis: estimate the asymptotic coefficient C(σ) of
//
//	I(T, σ) ≈ C(σ) · T^(1−2σ)    (T large)
//
// and compare it against the theoretical shape A·Γ((1−σ)/2). Two fits
// run per σ:
//
//   - Fixed-slope fit: the exponent is pinned to the conjectured
//     1−2σ and only the amplitude is estimated, as the geometric mean
//     of I(T, σ)/T^(1−2σ) over the grid.
//
//   - Free-slope fit: an ordinary least-squares line through
//     (ln T, ln I) with R², so the empirical exponent can be checked
//     against 1−2σ independently.
//
// The amplitude A is then fitted once across the whole σ grid against
// Γ((1−σ)/2), and per-σ relative residuals are reported. The analysis
// quantifies evidence; it never decides the conjecture.
package primebench

import (
	"fmt"
	"math"
)

// FitResult is the per-σ outcome of the scaling-law fit.
type FitResult struct {
	Sigma float64

	// C is the fixed-slope amplitude estimate of C(σ).
	C float64

	// Exponent and RSquared come from the free-slope fit of
	// ln I against ln T; ExponentTheory is the conjectured 1−2σ.
	Exponent       float64
	ExponentTheory float64
	RSquared       float64

	// CTheory is A·Γ((1−σ)/2) with the grid-fitted amplitude A, and
	// Residual the relative error |C − CTheory| / CTheory.
	CTheory  float64
	Residual float64
}

// Analysis is the complete scaling-law fit over a sweep.
type Analysis struct {
	// Amplitude is the fitted A in C(σ) ≈ A·Γ((1−σ)/2).
	Amplitude float64

	Fits []FitResult
}

// FitScaling runs the scaling-law analysis over a completed table.
// Needs at least two T values per σ; fails with ErrNumericInstability
// when a table value is non-positive (its logarithm is undefined).
func FitScaling(tb *SweepTable) (Analysis, error) {
	if len(tb.TValues) < 2 {
		return Analysis{}, fmt.Errorf("scaling fit needs ≥ 2 T values, got %d: %w", len(tb.TValues), ErrInvalidBound)
	}

	fits := make([]FitResult, 0, len(tb.SigmaValues))
	for _, sigma := range tb.SigmaValues {
		row := tb.Row(sigma)

		logT := make([]float64, len(row))
		logI := make([]float64, len(row))
		for i, e := range row {
			if e.Result.Value <= 0 {
				return Analysis{}, fmt.Errorf(
					"I(T=%g, σ=%g) = %g is not positive, log-log fit undefined: %w",
					e.T, e.Sigma, e.Result.Value, ErrNumericInstability)
			}
			logT[i] = math.Log(e.T)
			logI[i] = math.Log(e.Result.Value)
		}

		theory := 1 - 2*sigma

		// Fixed-slope amplitude: mean of ln I − (1−2σ)·ln T.
		intercept := 0.0
		for i := range logT {
			intercept += logI[i] - theory*logT[i]
		}
		intercept /= float64(len(logT))

		slope, _, r2 := linearFit(logT, logI)

		fits = append(fits, FitResult{
			Sigma:          sigma,
			C:              math.Exp(intercept),
			Exponent:       slope,
			ExponentTheory: theory,
			RSquared:       r2,
		})
	}

	// Fit the shared amplitude A against Γ((1−σ)/2) by least squares:
	// A = Σ C_i·G_i / Σ G_i², G_i = Γ((1−σ_i)/2).
	var num, den float64
	for _, f := range fits {
		g := math.Gamma((1 - f.Sigma) / 2)
		num += f.C * g
		den += g * g
	}
	amplitude := num / den

	for i := range fits {
		g := math.Gamma((1 - fits[i].Sigma) / 2)
		fits[i].CTheory = amplitude * g
		fits[i].Residual = math.Abs(fits[i].C-fits[i].CTheory) / fits[i].CTheory
	}

	return Analysis{Amplitude: amplitude, Fits: fits}, nil
}

// FitFor returns the per-σ fit, if present.
func (a Analysis) FitFor(sigma float64) (FitResult, bool) {
	for _, f := range a.Fits {
		if f.Sigma == sigma {
			return f, true
		}
	}
	return FitResult{}, false
}

// linearFit solves ordinary least squares y = intercept + slope·x and
// reports R². Normal equations solved directly; two points give an
// exact line (R² = 1).
func linearFit(xs, ys []float64) (slope, intercept, rSquared float64) {
	n := float64(len(xs))
	if len(xs) < 2 || len(xs) != len(ys) {
		return 0, 0, 0
	}

	var sumX, sumY, sumXX, sumXY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXX += xs[i] * xs[i]
		sumXY += xs[i] * ys[i]
	}

	det := n*sumXX - sumX*sumX
	if math.Abs(det) < 1e-12 {
		return 0, sumY / n, 0
	}
	slope = (n*sumXY - sumX*sumY) / det
	intercept = (sumY - slope*sumX) / n

	meanY := sumY / n
	var ssRes, ssTot float64
	for i := range xs {
		predicted := intercept + slope*xs[i]
		ssRes += (ys[i] - predicted) * (ys[i] - predicted)
		ssTot += (ys[i] - meanY) * (ys[i] - meanY)
	}
	if ssTot == 0 {
		rSquared = 1
	} else {
		rSquared = 1 - ssRes/ssTot
	}
	return slope, intercept, rSquared
}
