// Package version compares dotted-numeric version strings to decide
// update eligibility.
package version

import (
	"strconv"
	"strings"
)

// IsNewer reports whether candidate is strictly newer than current.
//
// Both strings are truncated at the first '-', discarding pre-release
// and build metadata. The remainder splits on '.' and compares
// component-wise as integers, left to right, padding the shorter side
// with zeros. Non-numeric components count as 0. Equal versions are not
// newer. The comparison never fails: anything unparseable compares as
// zero, so "assume no update" is the outcome for garbage input.
func IsNewer(current, candidate string) bool {
	cur := numericParts(current)
	cand := numericParts(candidate)

	n := len(cur)
	if len(cand) > n {
		n = len(cand)
	}
	for i := 0; i < n; i++ {
		a := partAt(cur, i)
		b := partAt(cand, i)
		if b > a {
			return true
		}
		if b < a {
			return false
		}
	}
	return false
}

func numericParts(v string) []int {
	base, _, _ := strings.Cut(v, "-")
	fields := strings.Split(base, ".")
	parts := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			n = 0
		}
		parts[i] = n
	}
	return parts
}

func partAt(parts []int, i int) int {
	if i < len(parts) {
		return parts[i]
	}
	return 0
}
