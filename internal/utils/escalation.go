package utils

import (
	"regexp"
	"strings"
)

var nonWord = regexp.MustCompile(`[^a-z0-9\s]+`)

// MatchEscalationKeyword reports whether the message contains one of
// the business's configured escalation keywords. Matching is
// case-insensitive and punctuation-insensitive; multi-word keywords
// must appear as a contiguous phrase.
func MatchEscalationKeyword(message string, keywords []string) (string, bool) {
	if message == "" || len(keywords) == 0 {
		return "", false
	}

	normalized := " " + normalizeText(message) + " "
	for _, kw := range keywords {
		k := normalizeText(kw)
		if k == "" {
			continue
		}
		if strings.Contains(normalized, " "+k+" ") {
			return kw, true
		}
	}
	return "", false
}

func normalizeText(s string) string {
	s = strings.ToLower(s)
	s = nonWord.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}
