// Package themes splits a shuffled theme list into one chunk per giver.
package themes

import (
	"slices"

	"github.com/matzehuels/krampus/pkg/errors"
)

// Shuffler shuffles n elements through swap. *math/rand/v2.Rand satisfies it.
type Shuffler interface {
	Shuffle(n int, swap func(i, j int))
}

// Shuffle returns a shuffled copy of themes. The input is left untouched.
func Shuffle(rng Shuffler, themes []string) []string {
	out := slices.Clone(themes)
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// PerParticipant returns how many themes each of n givers receives.
//
// The default is total / n. A positive override selects a smaller count and
// fails with THEME_SHORTAGE when it exceeds the default. An override of zero
// means "use the default".
func PerParticipant(total, n, override int) (int, error) {
	if n < 1 {
		return 0, errors.New(errors.ErrCodeInvalidSize, "cannot split themes between %d participants", n)
	}
	if override < 0 {
		return 0, errors.New(errors.ErrCodeInvalidInput, "themes per participant must not be negative, got %d", override)
	}

	limit := total / n
	if override == 0 {
		return limit, nil
	}
	if override > limit {
		return 0, errors.New(errors.ErrCodeThemeShortage,
			"not enough themes: %d per participant requested, %d themes for %d participants allow at most %d",
			override, total, n, limit)
	}
	return override, nil
}

// Partition cuts themes into n contiguous chunks of k, in giver order.
// Themes past n*k are left unused. The caller must ensure n*k <= len(themes),
// which [PerParticipant] guarantees.
func Partition(themes []string, n, k int) [][]string {
	chunks := make([][]string, n)
	for i := range chunks {
		chunks[i] = themes[i*k : (i+1)*k : (i+1)*k]
	}
	return chunks
}
