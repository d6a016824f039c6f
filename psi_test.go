package primebench

import (
	"errors"
	"math"
	"testing"
)

func newTestTable(t *testing.T, bound uint64) *PsiTable {
	t.Helper()
	ps, err := Sieve(bound)
	if err != nil {
		t.Fatalf("Sieve(%d) failed: %v", bound, err)
	}
	return NewPsiTable(ps)
}

func TestPsiZeroBelowFirstPrime(t *testing.T) {
	table := newTestTable(t, 100)

	for _, x := range []float64{0.1, 1, 1.5, 1.999999} {
		v, err := table.Psi(x)
		if err != nil {
			t.Fatalf("ψ(%g) failed: %v", x, err)
		}
		if v != 0 {
			t.Errorf("ψ(%g) = %g, want 0 (no prime powers in (0, x])", x, v)
		}
	}
}

// ψ(10) sums ln p over the prime powers 2, 3, 4, 5, 7, 8, 9:
// every power p^k ≤ 10 contributes, 4 = 2² included.
func TestPsiKnownValueAt10(t *testing.T) {
	table := newTestTable(t, 100)

	reference := math.Log(2) + math.Log(3) + math.Log(2) + math.Log(5) +
		math.Log(7) + math.Log(2) + math.Log(3)

	v, err := table.Psi(10)
	if err != nil {
		t.Fatalf("ψ(10) failed: %v", err)
	}
	if math.Abs(v-reference) > 1e-12 {
		t.Errorf("ψ(10) = %.12f, want %.12f", v, reference)
	}

	t.Logf("✓ ψ(10) = %.10f = 3ln2 + 2ln3 + ln5 + ln7", v)
}

func TestPsiRightContinuousJumps(t *testing.T) {
	table := newTestTable(t, 100)

	// The jump at a breakpoint is included at the breakpoint itself.
	at2, _ := table.Psi(2)
	if math.Abs(at2-math.Log(2)) > 1e-12 {
		t.Errorf("ψ(2) = %g, want ln 2 (right-continuity)", at2)
	}

	// 8 = 2³ jumps by ln 2, 9 = 3² by ln 3.
	for _, tc := range []struct {
		at   float64
		logp float64
	}{
		{8, math.Log(2)},
		{9, math.Log(3)},
		{11, math.Log(11)},
	} {
		before, _ := table.Psi(tc.at - 1e-9)
		after, _ := table.Psi(tc.at)
		jump := after - before
		if math.Abs(jump-tc.logp) > 1e-9 {
			t.Errorf("jump at %g = %.9f, want %.9f", tc.at, jump, tc.logp)
		}
	}
}

func TestDeltaNearPrimes(t *testing.T) {
	table := newTestTable(t, 100)

	// Just below the first prime, Δ(x) = −x exactly.
	x := 2 - 1e-9
	d, err := table.Delta(x)
	if err != nil {
		t.Fatalf("Δ(%g) failed: %v", x, err)
	}
	if math.Abs(d+x) > 1e-12 {
		t.Errorf("Δ(2⁻) = %g, want %g", d, -x)
	}

	// Across the breakpoint Δ jumps upward by ln 2.
	dAt, _ := table.Delta(2)
	if dAt < d {
		t.Errorf("Δ did not jump upward across 2: %g → %g", d, dAt)
	}
}

func TestPsiMonotoneSamples(t *testing.T) {
	table := newTestTable(t, 1000)

	xs := make([]float64, 0, 2000)
	for x := 0.5; x <= 1000; x += 0.5 {
		xs = append(xs, x)
	}
	AssertPsiMonotone(t, table, xs)
}

func TestPsiRangeExceeded(t *testing.T) {
	table := newTestTable(t, 100)

	_, err := table.Psi(100.5)
	if !errors.Is(err, ErrRangeExceeded) {
		t.Errorf("ψ beyond bound: err = %v, want ErrRangeExceeded", err)
	}

	// The bound itself is still covered.
	if _, err := table.Psi(100); err != nil {
		t.Errorf("ψ(bound) failed: %v", err)
	}
}

func TestSegmentBoundaries(t *testing.T) {
	table := newTestTable(t, 100)

	got := table.segmentBoundaries(1e-6, 10)
	want := []float64{2, 3, 4, 5, 7, 8, 9}
	if len(got) != len(want) {
		t.Fatalf("segments in (0, 10) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("segment[%d] = %g, want %g", i, got[i], want[i])
		}
	}

	// Endpoints are excluded on both sides.
	inner := table.segmentBoundaries(2, 9)
	want = []float64{3, 4, 5, 7, 8}
	if len(inner) != len(want) {
		t.Fatalf("segments in (2, 9) = %v, want %v", inner, want)
	}
}

func TestPsiBreakpointCount(t *testing.T) {
	table := newTestTable(t, 100)

	// 25 primes ≤ 100, plus higher powers: 4,8,16,32,64, 9,27,81, 25, 49.
	want := 25 + 5 + 3 + 1 + 1
	if table.Breakpoints() != want {
		t.Errorf("breakpoints = %d, want %d", table.Breakpoints(), want)
	}
}
