// Package roster loads the inputs of a draw: the participant list and the
// theme list.
//
// # Participants
//
// Participants are read from CSV with a header row. The name and email
// columns are required, except is optional and may be left out of individual
// rows:
//
//	name,email,except
//	# comment lines start with '#'
//	Alice,alice@example.com,Bob
//	Bob,bob@example.com,Alice
//	Carol,carol@example.com
//
// A participant's except names another participant who must not be paired
// with them, as giver or as receiver.
//
// # Themes
//
// Themes are read one per line. Surrounding whitespace is trimmed and blank
// lines are skipped.
package roster
