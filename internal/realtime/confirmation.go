package realtime

import "strings"

var approvalPhrases = []string{"yes", "yep", "yeah", "go ahead", "do it", "approve", "approved", "confirm", "confirmed", "sure"}
var denialPhrases = []string{"no", "nope", "cancel", "don't", "do not", "stop", "deny", "denied"}

// isApproval reports whether text reads as the user approving a pending
// confirmation request.
func isApproval(text string) bool {
	return matchesAny(text, approvalPhrases)
}

// isDenial reports whether text reads as the user declining a pending
// confirmation request.
func isDenial(text string) bool {
	return matchesAny(text, denialPhrases)
}

func matchesAny(text string, phrases []string) bool {
	normalized := strings.ToLower(strings.TrimSpace(text))
	for _, p := range phrases {
		if normalized == p || strings.HasPrefix(normalized, p+" ") || strings.HasPrefix(normalized, p+",") {
			return true
		}
	}
	return false
}
