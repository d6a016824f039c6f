package primebench

import (
	"fmt"
	"math"
	"sync"
)

// PrimeSet is the complete, gap-free, strictly increasing set of
// primes ≤ Bound. Immutable once built; shared freely across
// goroutines.
type PrimeSet struct {
	Primes []uint64
	Bound  uint64
}

// Sieve enumerates every prime ≤ n with a sieve of Eratosthenes.
//
// The enumeration is deterministic and exact: no probabilistic
// primality shortcuts, so prime-power breakpoints downstream are never
// misclassified. Fails with ErrInvalidBound for n ≤ 1.
func Sieve(n uint64) (PrimeSet, error) {
	if n <= 1 {
		return PrimeSet{}, fmt.Errorf("sieve bound %d: %w", n, ErrInvalidBound)
	}

	composite := make([]bool, n+1)
	limit := uint64(math.Sqrt(float64(n)))
	for i := uint64(2); i <= limit; i++ {
		if composite[i] {
			continue
		}
		for j := i * i; j <= n; j += i {
			composite[j] = true
		}
	}

	// π(n) ≈ n/ln n; over-allocate slightly to avoid regrowth.
	capacity := int(float64(n)/math.Log(float64(n))*1.2) + 8
	primes := make([]uint64, 0, capacity)
	for i := uint64(2); i <= n; i++ {
		if !composite[i] {
			primes = append(primes, i)
		}
	}

	return PrimeSet{Primes: primes, Bound: n}, nil
}

// PrimeCache memoizes sieve runs by bound so sweep iterations sharing
// an upper bound do not re-enumerate. It is an explicitly passed
// handle, not a package singleton; a nil *PrimeCache is valid and
// simply sieves every time.
type PrimeCache struct {
	mu   sync.Mutex
	sets map[uint64]PrimeSet
}

// NewPrimeCache returns an empty cache.
func NewPrimeCache() *PrimeCache {
	return &PrimeCache{sets: make(map[uint64]PrimeSet)}
}

// Get returns the prime set for bound n, sieving on first use.
func (c *PrimeCache) Get(n uint64) (PrimeSet, error) {
	if c == nil {
		return Sieve(n)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if ps, ok := c.sets[n]; ok {
		return ps, nil
	}
	ps, err := Sieve(n)
	if err != nil {
		return PrimeSet{}, err
	}
	c.sets[n] = ps
	return ps, nil
}
