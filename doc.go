// Package primebench numerically probes the stationarity of
// prime-counting fluctuations.
//
// # Overview
//
// The engine evaluates the weighted mean-square-error functional
//
//	I(T, σ) = ∫₀^∞ Δ(x)² · x^(−1−σ) · e^(−(x/T)²) dx
//
// where Δ(x) = ψ(x) − x and ψ is the second Chebyshev function
//
//	ψ(x) = Σ_{p^k ≤ x} ln p
//
// and compares the scaling of I(T, σ) in T against the closed-form
// prediction C(σ) ≈ A·Γ((1−σ)/2). The fits report residuals only:
// numerical evidence, never a verdict on the conjecture.
//
// # Architecture
//
// Data flows strictly upward:
//
//   - primes.go      - prime enumeration (sieve, bound-keyed cache)
//   - psi.go         - ψ(x) as a prime-power breakpoint table
//   - zeros.go       - explicit-formula ψ approximation (zeta zeros)
//   - integral.go    - deterministic quadrature for one (T, σ)
//   - sweep.go       - parallel grid orchestration → SweepTable
//   - fit.go         - C(σ) scaling fit and Γ-ratio residuals
//   - oscillation.go - osc(T, 1/2) extraction and growth order
//   - store.go       - SQLite/CSV output for plot consumers
//   - assertions.go  - test helpers for the engine's properties
//
// # Quick Start
//
// Sweep a grid and fit the scaling law:
//
//	cfg := primebench.DefaultSweepConfig()
//	table, err := primebench.RunSweep(ctx, cfg, primebench.NewPrimeCache())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	analysis, err := primebench.FitScaling(table)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, f := range analysis.Fits {
//	    fmt.Printf("σ=%.2f  C=%.4e  A·Γ((1−σ)/2)=%.4e  residual=%.2f%%\n",
//	        f.Sigma, f.C, f.CTheory, 100*f.Residual)
//	}
//
// Evaluate a single point against an exact ψ table:
//
//	primes, _ := primebench.Sieve(100_000)
//	psi := primebench.NewPsiTable(primes)
//	res, err := primebench.Integrate(psi, 200, 0.5, primebench.DefaultQuadrature())
//
// # Determinism
//
// Every evaluation uses a fixed-grid rule with a documented error
// estimate; sweeps produce identical tables for any worker count. The
// scientific conclusions depend on within-tolerance reproducibility,
// so nothing in the pipeline is stochastic.
//
// # Errors
//
// All failures wrap one of the sentinel kinds in errors.go:
// ErrInvalidBound, ErrRangeExceeded, ErrInsufficientPrimeRange,
// ErrResourceExceeded, ErrNumericInstability. A failed grid point
// aborts its whole sweep; a partial, unlabeled table would corrupt
// the downstream fits.
//
// # Testing
//
// Use the assertion helpers to validate engine properties:
//
//	func TestMyGrid(t *testing.T) {
//	    table, _ := primebench.RunSweep(ctx, cfg, cache)
//
//	    primebench.AssertNonNegative(t, table)
//	    primebench.AssertSigmaMonotone(t, table)
//	}
package primebench
