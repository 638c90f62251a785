// Package ident extracts canonical item identifiers from filenames.
// Every set and mapping in the batch pipeline is keyed by these identifiers,
// so extraction must be deterministic and side-effect free.
package ident

import "regexp"

var pattern = regexp.MustCompile(`\d{4}-\d{3}`)

// Extract returns the first identifier of the form NNNN-NNN found anywhere
// in filename. The second return value reports whether a match was found.
func Extract(filename string) (string, bool) {
	match := pattern.FindString(filename)
	if match == "" {
		return "", false
	}
	return match, true
}
