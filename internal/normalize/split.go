package normalize

import (
	"regexp"
	"strings"
)

// listDelimiter matches both the Latin comma and the Arabic comma (U+060C).
var listDelimiter = regexp.MustCompile(`[,،]`)

// Split breaks a multi-value cell such as "Egypt، Lebanon, Sudan" into trimmed,
// non-empty tokens in their original order.
func Split(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := listDelimiter.Split(raw, -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SplitLower is Split with every token lower-cased.
func SplitLower(raw string) []string {
	tokens := Split(raw)
	for i, t := range tokens {
		tokens[i] = strings.ToLower(t)
	}
	return tokens
}
