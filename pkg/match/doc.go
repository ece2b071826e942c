// Package match turns a roster into giver → receiver pairs.
//
// [Matcher.Match] draws a derangement with [derange.GenerateN] and accepts it
// only if no pair joins two participants where either one excludes the
// other. A rejected draw is thrown away whole and a new one is drawn; pairs
// are never patched individually. The number of draws is bounded by
// [Matcher.MaxAttempts], after which Match fails with
// CONSTRAINT_UNSATISFIABLE instead of looping forever.
//
// [Assign] then attaches one theme chunk to each giver, by position, to form
// the final [Assignment].
package match
