// Package derange draws random derangements: permutations of [0, n) in which
// no index maps to itself.
//
// # Algorithm
//
// [Generate] runs a Fisher–Yates shuffle from the top index down and abandons
// the whole draw as soon as a fixed point becomes unavoidable: at step i, if
// the element about to be placed at position i is i itself, the attempt is
// discarded and a fresh one starts from the identity. A final check on
// position 0 catches the last possible fixed point.
//
// Every Fisher–Yates choice sequence is equally likely and maps to exactly one
// permutation, and an attempt is only discarded when it would end with a fixed
// point. Accepted draws are therefore spread evenly over all derangements.
// The expected number of attempts tends to e (about 2.718) as n grows, so the
// amortized cost stays O(n).
//
// Draws are never repaired in place. Repairing a fixed point after the fact
// (swapping it with a neighbour, say) produces a different distribution.
//
// # Randomness
//
// The caller owns the random source and passes it in. Any value with an
// IntN method works, including *math/rand/v2.Rand:
//
//	rng := rand.New(rand.NewPCG(seed, seed^0x6b72616d707573))
//	perm, err := derange.Generate(rng, len(participants))
//
// The same seed always yields the same sequence of derangements.
package derange
