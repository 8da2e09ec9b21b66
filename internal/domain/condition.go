package domain

import "slices"

// IsConditionAcceptable applies the condition-code rules to a stringified
// provider id:
//
//  1. a code listed in exceptions is always acceptable;
//  2. otherwise the unacceptable entries sharing the code's first character
//     form its family; a "<first>xx" entry rejects the whole family, and
//     without one only an exact match is rejected;
//  3. a code whose first character matches no unacceptable entry is acceptable.
//
// An empty code belongs to no family and is acceptable.
func IsConditionAcceptable(code string, unacceptable, exceptions []string) bool {
	if slices.Contains(exceptions, code) {
		return true
	}
	if code == "" {
		return true
	}

	first := code[0]
	var family []string
	for _, u := range unacceptable {
		if u != "" && u[0] == first {
			family = append(family, u)
		}
	}
	if len(family) == 0 {
		return true
	}
	if slices.Contains(family, string(first)+"xx") {
		return false
	}
	return !slices.Contains(family, code)
}
