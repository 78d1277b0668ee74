package vision

import "regexp"

// platePattern is the current UK registration format: two letters, two
// digits, a space, three letters. Matching is case-sensitive and whole-token.
var platePattern = regexp.MustCompile(`\b[A-Z]{2}[0-9]{2} [A-Z]{3}\b`)

// ValidatePlates filters raw recognized text down to the strings matching the
// plate grammar, preserving order of appearance.
func ValidatePlates(raw string) []string {
	return platePattern.FindAllString(raw, -1)
}

// ResolveConsensus reduces the validated candidates collected across all
// images of one listing to a single trusted plate. A plate is only trusted
// when it is read from at least two images and no other candidate ties its
// count: OCR on cropped, re-photographed plates is noisy and a single misread
// must not feed the history lookup. The result depends only on the multiset
// of candidates, never on their order.
func ResolveConsensus(candidates []string) (string, bool) {
	if len(candidates) < 2 {
		return "", false
	}

	tally := make(map[string]int)
	for _, c := range candidates {
		tally[c]++
	}

	best, bestCount, ties := "", 0, 0
	for plate, count := range tally {
		switch {
		case count > bestCount:
			best, bestCount, ties = plate, count, 1
		case count == bestCount:
			ties++
		}
	}

	if bestCount < 2 || ties > 1 {
		return "", false
	}
	return best, true
}
