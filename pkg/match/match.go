package match

import (
	"context"
	"time"

	"github.com/matzehuels/krampus/pkg/derange"
	"github.com/matzehuels/krampus/pkg/errors"
	"github.com/matzehuels/krampus/pkg/observability"
	"github.com/matzehuels/krampus/pkg/roster"
)

// DefaultMaxAttempts is the default number of derangements drawn before the
// exclusions are declared unsatisfiable.
const DefaultMaxAttempts = 5000

// Pair is one giver → receiver link of an accepted draw.
type Pair struct {
	From roster.Participant `json:"from"`
	To   roster.Participant `json:"to"`
}

// Match is what a single giver is told: who to give to and which themes to
// use.
type Match struct {
	From   roster.Participant `json:"from"`
	To     roster.Participant `json:"to"`
	Themes []string           `json:"themes"`
}

// Assignment holds one Match per participant, in roster order.
type Assignment []Match

// Stats describes the work done by a successful or failed draw.
type Stats struct {
	Draws    int           // Derangements drawn, including the accepted one
	Shuffles int           // Full shuffles made by the derangement generator
	Duration time.Duration // Wall time spent drawing
}

// Matcher draws exclusion-respecting assignments.
// The zero value is ready to use.
type Matcher struct {
	// MaxAttempts bounds the number of derangements drawn.
	// Zero or less selects DefaultMaxAttempts.
	MaxAttempts int

	// Hooks receives draw events. Nil selects observability.Match().
	Hooks observability.MatchHooks
}

// Match draws pairs for participants using rng.
//
// It fails with INVALID_SIZE for fewer than two participants and with
// CONSTRAINT_UNSATISFIABLE when MaxAttempts draws in a row were rejected. A
// cancelled ctx stops the draw before the next attempt with ctx.Err(). The
// returned Stats are filled in every case.
func (m *Matcher) Match(ctx context.Context, rng derange.Rand, participants []roster.Participant) ([]Pair, Stats, error) {
	start := time.Now()
	hooks := m.hooks()
	n := len(participants)
	limit := m.MaxAttempts
	if limit <= 0 {
		limit = DefaultMaxAttempts
	}

	var stats Stats
	for stats.Draws < limit {
		if err := ctx.Err(); err != nil {
			stats.Duration = time.Since(start)
			return nil, stats, err
		}
		perm, shuffles, err := derange.GenerateN(rng, n, 0)
		stats.Shuffles += shuffles
		if err != nil {
			stats.Duration = time.Since(start)
			return nil, stats, err
		}
		stats.Draws++

		pairs := pairsOf(participants, perm)
		if valid(pairs) {
			stats.Duration = time.Since(start)
			hooks.OnMatched(ctx, n, stats.Draws, stats.Shuffles, stats.Duration)
			return pairs, stats, nil
		}
		hooks.OnRejected(ctx, n, stats.Draws)
	}

	stats.Duration = time.Since(start)
	hooks.OnExhausted(ctx, n, stats.Draws)
	return nil, stats, errors.Wrap(errors.ErrCodeConstraintUnsatisfiable,
		&errors.ExhaustedError{Size: n, Attempts: stats.Draws},
		"no assignment of %d participants satisfies the exclusions; check the except column", n)
}

func (m *Matcher) hooks() observability.MatchHooks {
	if m.Hooks != nil {
		return m.Hooks
	}
	return observability.Match()
}

func pairsOf(participants []roster.Participant, perm []int) []Pair {
	pairs := make([]Pair, len(perm))
	for from, to := range perm {
		pairs[from] = Pair{From: participants[from], To: participants[to]}
	}
	return pairs
}

func valid(pairs []Pair) bool {
	for _, p := range pairs {
		if Violates(p.From, p.To) {
			return false
		}
	}
	return true
}

// Violates reports whether from giving to to breaks an exclusion, in either
// direction.
func Violates(from, to roster.Participant) bool {
	return from.Excludes(to) || to.Excludes(from)
}

// Assign zips pairs with theme chunks by position: giver i gets chunks[i].
// It fails with INTERNAL_ERROR if there are fewer chunks than pairs.
func Assign(pairs []Pair, chunks [][]string) (Assignment, error) {
	if len(chunks) < len(pairs) {
		return nil, errors.New(errors.ErrCodeInternal,
			"%d theme chunks for %d givers", len(chunks), len(pairs))
	}
	a := make(Assignment, len(pairs))
	for i, p := range pairs {
		a[i] = Match{From: p.From, To: p.To, Themes: chunks[i]}
	}
	return a, nil
}
