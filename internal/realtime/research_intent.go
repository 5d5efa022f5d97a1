package realtime

import (
	"regexp"
	"strings"
)

var researchIntentPhrases = []string{
	"look up",
	"search the web",
	"search online",
	"search for",
	"find spec",
	"find specs",
	"find pinout",
	"find data sheet",
	"find datasheet",
	"check the datasheet",
	"read the datasheet",
	"what does the datasheet say",
}

var researchIntentRegexes = []*regexp.Regexp{
	regexp.MustCompile(`\b(can you|please|could you)?\s*(search|look up|look for|find)\b.*\b(online|web|internet)\b`),
	regexp.MustCompile(`\b(datasheet|data\s*sheet|specs?|pinout|manual)\b`),
}

// HasResearchIntent reports whether text appears to request a web-style
// lookup, gating the research short-circuit in §4.L.
func HasResearchIntent(text string) bool {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return false
	}
	for _, phrase := range researchIntentPhrases {
		if strings.Contains(normalized, phrase) {
			return true
		}
	}
	for _, re := range researchIntentRegexes {
		if re.MatchString(normalized) {
			return true
		}
	}
	return false
}
