// Package pkg holds the krampus libraries.
//
// # Overview
//
// Krampus runs a secret santa exchange: every participant gives one gift to
// one other participant, nobody draws themselves, and a participant may name
// one person they must not draw. Every giver also gets their own share of a
// shuffled theme list.
//
//  1. [roster] - participants and theme files
//  2. [derange] - uniform random derangements by rejection sampling
//  3. [match] - draws that respect the exclusions, and theme assignment
//  4. [themes] - theme shuffling and partitioning
//  5. [notify] - message rendering from templates
//  6. [mail] - delivery over SMTP, to files or to the console
//  7. [pipeline] - load → draw → render → deliver
//
// Supporting packages: [config] (TOML config file), [render] (exclusion
// graph), [observability] (hooks), [errors] (coded errors) and [buildinfo].
//
// # Data Flow
//
//	participants.csv, themes.txt
//	         ↓
//	    [roster] load and validate
//	         ↓
//	    [themes] shuffle, cut into chunks of k
//	         ↓
//	    [match] derangement drawn until no exclusion is hit
//	         ↓
//	    [notify] one message per giver
//	         ↓
//	    [mail] SMTP / .eml files / console
//
// # Quick Start
//
//	rng := pipeline.NewRand(seed)
//	var m match.Matcher
//	pairs, stats, err := m.Match(ctx, rng, participants)
//	if err != nil {
//	    return err
//	}
//	assignment, err := match.Assign(pairs, themes.Partition(shuffled, len(pairs), k))
//
// Or run everything through a [pipeline.Runner]:
//
//	result, err := pipeline.NewRunner(logger).Execute(ctx, opts, transport)
package pkg
