// Package duration parses time constraints out of free-text queries.
package duration

import (
	"regexp"
	"strconv"
	"strings"
)

// boundPattern matches an upper-bound phrase followed by a number of minutes.
// Alternatives are ordered so the longest phrase wins at a given position.
var boundPattern = regexp.MustCompile(`(?:under|less than|below|max(?:imum)?(?: duration of)?|upto|up to)\s*(\d+)`)

// ExtractMax returns the first upper-bound duration, in minutes, phrased in text.
// Lower bounds and ranges are not recognized.
func ExtractMax(text string) (int, bool) {
	m := boundPattern.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return 0, false
	}
	minutes, err := strconv.Atoi(m[1])
	if err != nil {
		// Only possible on overflow
		return 0, false
	}
	return minutes, true
}
