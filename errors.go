package primebench

import "errors"

// Error kinds surfaced by the engine. Callers discriminate with
// errors.Is; every returned error wraps exactly one of these.
var (
	// ErrInvalidBound reports a non-positive or nonsensical parameter:
	// a prime bound ≤ 1, T ≤ 0, or σ outside (0, 1) where the weight
	// exponent −1−σ degenerates.
	ErrInvalidBound = errors.New("invalid bound")

	// ErrRangeExceeded reports a ψ(x) query beyond the enumerated
	// prime-power table.
	ErrRangeExceeded = errors.New("query beyond enumerated range")

	// ErrInsufficientPrimeRange reports that the truncation bound
	// required by an integral exceeds the available prime data. The
	// caller must regenerate the table with a larger bound; the
	// evaluator never truncates silently.
	ErrInsufficientPrimeRange = errors.New("insufficient prime range")

	// ErrResourceExceeded reports a breached wall-clock budget.
	ErrResourceExceeded = errors.New("resource budget exceeded")

	// ErrNumericInstability reports a quadrature error estimate above
	// the configured tolerance. Recoverable by re-running with higher
	// resolution or a different bound, not by retrying as-is.
	ErrNumericInstability = errors.New("numeric instability")
)
