package derange

import (
	"github.com/matzehuels/krampus/pkg/errors"
)

// DefaultMaxAttempts bounds the number of full shuffles [Generate] performs.
// The expected count is about e, so hitting this limit means the random source
// is broken rather than unlucky.
const DefaultMaxAttempts = 10_000

// Rand is the random source used to draw a derangement.
// IntN must return a uniformly distributed value in [0, n).
type Rand interface {
	IntN(n int) int
}

// Generate returns a uniformly drawn derangement of [0, n), interpreted as
// to = perm[from].
//
// It fails with INVALID_SIZE when n < 2, since no derangement exists for a
// single element. It fails with ATTEMPTS_EXHAUSTED if [DefaultMaxAttempts]
// shuffles were discarded in a row.
func Generate(rng Rand, n int) ([]int, error) {
	perm, _, err := GenerateN(rng, n, DefaultMaxAttempts)
	return perm, err
}

// GenerateN is [Generate] with an explicit attempt limit. It also reports how
// many full shuffles were made, counting the successful one.
// A maxAttempts of zero or less selects [DefaultMaxAttempts].
func GenerateN(rng Rand, n, maxAttempts int) (perm []int, attempts int, err error) {
	if n < 2 {
		return nil, 0, errors.New(errors.ErrCodeInvalidSize,
			"a derangement needs at least 2 elements, got %d", n)
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	perm = make([]int, n)
	for attempts = 1; attempts <= maxAttempts; attempts++ {
		if shuffle(rng, perm) {
			return perm, attempts, nil
		}
	}
	return nil, maxAttempts, errors.Wrap(errors.ErrCodeAttemptsExhausted,
		&errors.ExhaustedError{Size: n, Attempts: maxAttempts},
		"could not draw a derangement of %d elements", n)
}

// shuffle runs one attempt in place and reports whether perm now holds a
// derangement.
func shuffle(rng Rand, perm []int) bool {
	for i := range perm {
		perm[i] = i
	}
	for i := len(perm) - 1; i >= 0; i-- {
		p := rng.IntN(i + 1)
		if perm[p] == i {
			return false
		}
		perm[i], perm[p] = perm[p], perm[i]
	}
	return perm[0] != 0
}

// IsDerangement reports whether perm is a permutation of [0, len(perm)) with
// no fixed point.
func IsDerangement(perm []int) bool {
	seen := make([]bool, len(perm))
	for i, v := range perm {
		if v < 0 || v >= len(perm) || seen[v] || v == i {
			return false
		}
		seen[v] = true
	}
	return true
}
