// Oscillation extraction: at σ = 1/2 the conjectured exponent 1−2σ
// vanishes, so I(T, 1/2) should flatten to C(1/2) with a bounded
// residual. The residual series
//
//	osc(T, 1/2) = I(T, 1/2) − C(1/2)·T^0
//
// is extracted after the scaling fit, and its growth order estimated
// by regressing ln|osc| against both ln T and ln ln T. A ln ln T
// slope near 1 with the ln T slope near 0 is the signature of an
// O(ln T)-compatible residual. Raw slopes and R² are reported; no
// verdict is rendered.
package primebench

import (
	"fmt"
	"math"
)

// OscillationResult is the extracted residual series at σ = 1/2 with
// its growth-order regressions.
type OscillationResult struct {
	Sigma   float64
	TValues []float64

	// Osc is I(T, 1/2) minus the fitted trend; RelOsc the magnitude
	// relative to the trend.
	Osc    []float64
	RelOsc []float64

	// Regression of ln|osc| on ln T.
	LogTSlope float64
	LogTR2    float64

	// Regression of ln|osc| on ln ln T (needs T > e).
	LogLogTSlope float64
	LogLogTR2    float64
}

// ExtractOscillation removes the fitted leading-order trend from the
// σ = 1/2 row and estimates the residual's growth order. The table
// grid must contain σ = 1/2 and at least three T values above e so
// both regressions are defined.
func ExtractOscillation(tb *SweepTable, an Analysis) (OscillationResult, error) {
	const sigma = 0.5

	fit, ok := an.FitFor(sigma)
	if !ok {
		return OscillationResult{}, fmt.Errorf("σ = 1/2 not in sweep grid: %w", ErrInvalidBound)
	}
	row := tb.Row(sigma)
	if row == nil {
		return OscillationResult{}, fmt.Errorf("σ = 1/2 not in sweep table: %w", ErrInvalidBound)
	}

	out := OscillationResult{
		Sigma:   sigma,
		TValues: make([]float64, len(row)),
		Osc:     make([]float64, len(row)),
		RelOsc:  make([]float64, len(row)),
	}

	var logT, logLogT, logAbsOsc, logAbsOscLL []float64
	for i, e := range row {
		trend := fit.C * math.Pow(e.T, fit.ExponentTheory)
		osc := e.Result.Value - trend

		out.TValues[i] = e.T
		out.Osc[i] = osc
		out.RelOsc[i] = math.Abs(osc) / trend

		if math.Abs(osc) <= 1e-12*trend {
			continue // cancellation at rounding level carries no growth information
		}
		lnOsc := math.Log(math.Abs(osc))
		if e.T > 1 {
			logT = append(logT, math.Log(e.T))
			logAbsOsc = append(logAbsOsc, lnOsc)
		}
		if e.T > math.E {
			logLogT = append(logLogT, math.Log(math.Log(e.T)))
			logAbsOscLL = append(logAbsOscLL, lnOsc)
		}
	}

	if len(logLogT) < 3 {
		return out, fmt.Errorf(
			"growth-order regression needs ≥ 3 usable T values above e, got %d: %w",
			len(logLogT), ErrInvalidBound)
	}

	out.LogTSlope, _, out.LogTR2 = linearFit(logT, logAbsOsc)
	out.LogLogTSlope, _, out.LogLogTR2 = linearFit(logLogT, logAbsOscLL)

	return out, nil
}
