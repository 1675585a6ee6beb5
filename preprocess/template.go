package preprocess

import (
	"sort"
	"strings"
)

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// substituteTemplates replaces every configured placeholder token with its
// value in one left-to-right scan. Replacement text is copied straight to
// the output and never re-scanned, so values that look like placeholders
// stay literal. When tokens overlap, the longest one wins. Line breaks in
// values are flattened to spaces so the script keeps its line count.
func substituteTemplates(script string, values map[string]string) (string, int) {
	tokens := make([]string, 0, len(values))
	replacements := make(map[string]string, len(values))
	for token, value := range values {
		if token != "" && !strings.ContainsAny(token, "\r\n") && strings.Contains(script, token) {
			tokens = append(tokens, token)
			replacements[token] = lineBreaks.Replace(value)
		}
	}
	if len(tokens) == 0 {
		return script, 0
	}
	sort.Slice(tokens, func(i, j int) bool {
		if len(tokens[i]) != len(tokens[j]) {
			return len(tokens[i]) > len(tokens[j])
		}
		return tokens[i] < tokens[j]
	})

	var sb strings.Builder
	sb.Grow(len(script))

	count := 0
	for i := 0; i < len(script); {
		matched := false
		for _, token := range tokens {
			if strings.HasPrefix(script[i:], token) {
				sb.WriteString(replacements[token])
				i += len(token)
				count++
				matched = true
				break
			}
		}
		if !matched {
			sb.WriteByte(script[i])
			i++
		}
	}

	return sb.String(), count
}
