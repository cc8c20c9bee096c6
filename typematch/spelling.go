package typematch

import "strings"

// Type arguments of a generic instantiation are not reachable through the
// reflect API; the only record of them is the instantiated type name, such
// as "Box[int]" or "Pair[int,example.com/pkg.User]". The helpers below take
// those spellings apart so argument positions can be compared pairwise.

// splitInstance splits an instantiated type name into its base name and
// spelled arguments. ok is false when name does not spell an instantiation.
func splitInstance(name string) (base string, args []string, ok bool) {
	open := strings.IndexByte(name, '[')
	if open <= 0 || !strings.HasSuffix(name, "]") {
		return name, nil, false
	}
	return name[:open], splitArgs(name[open+1 : len(name)-1]), true
}

// splitArgs splits a spelled argument list on top-level commas.
func splitArgs(list string) []string {
	var args []string
	depth := 0
	start := 0
	for i := 0; i < len(list); i++ {
		switch list[i] {
		case '[', '(', '{':
			depth++
		case ']', ')', '}':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(list[start:i]))
				start = i + 1
			}
		}
	}
	return append(args, strings.TrimSpace(list[start:]))
}

// matchSpelledArgs matches two spelled argument lists pairwise. An arity
// mismatch fails the whole list.
func matchSpelledArgs(xs, ys []string) bool {
	if len(xs) != len(ys) {
		return false
	}
	for i := range xs {
		if !matchSpelled(xs[i], ys[i]) {
			return false
		}
	}
	return true
}

// matchSpelled matches one spelled type argument against another. Equal
// spellings match, the Wildcard spelling matches anything, and pointer,
// slice, array, map, and instantiation spellings are taken apart and matched
// recursively. Spellings that cannot be taken apart must be identical.
func matchSpelled(x, y string) bool {
	if x == y {
		return true
	}
	if isWildcardSpelling(x) || isWildcardSpelling(y) {
		return true
	}
	if strings.HasPrefix(x, "*") && strings.HasPrefix(y, "*") {
		return matchSpelled(x[1:], y[1:])
	}
	if xe, xp, ok := splitBracketPrefix(x); ok {
		ye, yp, yok := splitBracketPrefix(y)
		return yok && xp == yp && matchSpelled(xe, ye)
	}
	if xk, xv, ok := splitMap(x); ok {
		yk, yv, yok := splitMap(y)
		return yok && matchSpelled(xk, yk) && matchSpelled(xv, yv)
	}
	xBase, xArgs, xok := splitInstance(x)
	yBase, yArgs, yok := splitInstance(y)
	if xok && yok && xBase == yBase {
		return matchSpelledArgs(xArgs, yArgs)
	}
	return false
}

func isWildcardSpelling(s string) bool {
	return s == wildcardFull || s == wildcardShort
}

// spellingHasWildcard reports whether a spelled argument mentions the
// Wildcard type at any depth.
func spellingHasWildcard(s string) bool {
	if isWildcardSpelling(s) {
		return true
	}
	if strings.HasPrefix(s, "*") {
		return spellingHasWildcard(s[1:])
	}
	if elem, _, ok := splitBracketPrefix(s); ok {
		return spellingHasWildcard(elem)
	}
	if key, val, ok := splitMap(s); ok {
		return spellingHasWildcard(key) || spellingHasWildcard(val)
	}
	if _, args, ok := splitInstance(s); ok {
		for _, arg := range args {
			if spellingHasWildcard(arg) {
				return true
			}
		}
	}
	return false
}

// splitBracketPrefix strips a leading "[]" or "[N]" slice or array marker,
// returning the element spelling and the marker itself.
func splitBracketPrefix(s string) (elem, prefix string, ok bool) {
	if !strings.HasPrefix(s, "[") {
		return "", "", false
	}
	end := strings.IndexByte(s, ']')
	if end < 0 {
		return "", "", false
	}
	for i := 1; i < end; i++ {
		if s[i] < '0' || s[i] > '9' {
			return "", "", false
		}
	}
	return s[end+1:], s[:end+1], true
}

// splitMap takes apart a "map[K]V" spelling. The key may itself contain
// brackets, so the closing bracket is found by depth.
func splitMap(s string) (key, val string, ok bool) {
	const prefix = "map["
	if !strings.HasPrefix(s, prefix) {
		return "", "", false
	}
	depth := 0
	for i := len(prefix); i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			if depth == 0 {
				return s[len(prefix):i], s[i+1:], true
			}
			depth--
		}
	}
	return "", "", false
}
