package preprocess

import (
	"strings"
)

const setcpsCall = "setcps("

// scaleTempo rewrites every setcps(<expr>) to setcps((<expr>) * speed).
// The expression is kept verbatim; calls with a blank or unbalanced
// argument are left alone and scanning continues after them.
func scaleTempo(script string, speed float64) (string, int) {
	if !strings.Contains(script, setcpsCall) {
		return script, 0
	}

	factor := formatNumber(speed)
	var sb strings.Builder
	sb.Grow(len(script) + 16)

	count := 0
	rest := script
	for {
		idx := strings.Index(rest, setcpsCall)
		if idx < 0 {
			sb.WriteString(rest)
			break
		}

		argStart := idx + len(setcpsCall)
		argEnd := matchingParen(rest, argStart)
		if argEnd < 0 {
			// unclosed, e.g. half typed: skip it and keep looking
			sb.WriteString(rest[:argStart])
			rest = rest[argStart:]
			continue
		}

		expr := rest[argStart:argEnd]
		sb.WriteString(rest[:argStart])
		if strings.TrimSpace(expr) == "" {
			sb.WriteString(expr)
		} else {
			sb.WriteString("(" + expr + ") * " + factor)
			count++
		}
		sb.WriteByte(')')
		rest = rest[argEnd+1:]
	}

	return sb.String(), count
}

// matchingParen returns the index of the ')' closing a call whose argument
// list starts at start, or -1 when the parens never balance.
func matchingParen(s string, start int) int {
	depth := 1
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
