package research

import (
	"regexp"
	"strings"
)

var htmlTagPattern = regexp.MustCompile(`<[^>]+>`)

// injectionMarkers mirrors OpenAIResearchService's INJECTION_MARKERS: any
// fetched document is untrusted data, never instructions, and these
// phrases flag an attempt to smuggle instructions through it.
var injectionMarkers = []string{
	"ignore previous instructions",
	"ignore all previous instructions",
	"system prompt",
	"developer message",
	"jailbreak",
	"do not follow",
	"exfiltrate",
	"reveal secrets",
	"override safety",
	"<script",
}

func stripHTML(text string) string {
	return strings.TrimSpace(htmlTagPattern.ReplaceAllString(text, ""))
}

func clip(text string, limit int) string {
	if len(text) <= limit {
		return text
	}
	return text[:limit] + "…"
}

// sanitizeSources caps the source list and scrubs HTML/length from each
// entry, matching _sanitize_sources.
func sanitizeSources(sources []Source, max int) []Source {
	if max <= 0 || max > len(sources) {
		max = len(sources)
	}
	out := make([]Source, 0, max)
	for _, s := range sources[:max] {
		title := clip(stripHTML(s.Title), 180)
		url := clip(strings.TrimSpace(s.URL), 360)
		if title != "" || url != "" {
			out = append(out, Source{Title: title, URL: url})
		}
	}
	return out
}

// sanitizeNotes strips HTML, clips length, and caps count, matching
// _sanitize_notes.
func sanitizeNotes(notes []string) []string {
	out := make([]string, 0, len(notes))
	for _, n := range notes {
		trimmed := strings.TrimSpace(n)
		if trimmed == "" {
			continue
		}
		out = append(out, clip(stripHTML(trimmed), 220))
		if len(out) == 8 {
			break
		}
	}
	return out
}

// detectPromptInjection flags any injection marker found in fetched
// markdown, matching _detect_prompt_injection.
func detectPromptInjection(markdown string) []string {
	lowered := strings.ToLower(markdown)
	var hits []string
	for _, marker := range injectionMarkers {
		if strings.Contains(lowered, marker) {
			hits = append(hits, "prompt_injection_detected:"+marker)
			if len(hits) == 4 {
				break
			}
		}
	}
	return hits
}
