package research

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"theo/internal/budget"
)

// SearchResult is what a SearchProvider returns for the first "find the
// best source" step, matching the parsed JSON from _search_candidates.
type SearchResult struct {
	BestURL       string
	Sources       []Source
	SearchSummary string
	SafetyNotes   []string
}

// SearchProvider performs the web-search half of the two-step librarian
// flow. The real implementation is an external collaborator per §1.
type SearchProvider interface {
	Search(ctx context.Context, req Request) (SearchResult, error)
}

// ExtractResult is what an ExtractProvider returns after reading a
// fetched document, matching the parsed JSON from _extract_from_markdown.
type ExtractResult struct {
	Status        string
	AnswerSummary string
	ExtractedFacts []string
	SafetyNotes   []string
}

// ExtractProvider turns fetched markdown into a structured answer. The
// real implementation is an external collaborator per §1.
type ExtractProvider interface {
	Extract(ctx context.Context, req Request, sourceURL, markdown string) (ExtractResult, error)
}

// MarkdownFetcher retrieves a page's content as markdown (the Firecrawl
// ingestion step). The real HTTP call is an external collaborator.
type MarkdownFetcher interface {
	// Enabled reports whether credentials are configured; mirrors
	// FirecrawlClient.enabled.
	Enabled() bool
	FetchMarkdown(ctx context.Context, url string) (string, error)
}

// HTTPConfig tunes an HTTPService, matching OpenAIResearchService's
// constructor knobs relevant to this port (the model/prompt-shaping
// knobs stay inside the injected SearchProvider/ExtractProvider).
type HTTPConfig struct {
	MaxFacts         int
	MaxSources       int
	FirecrawlEnabled bool
	AllowlistMode    AllowlistMode
	AllowlistDomains []string
	RequestTimeout   time.Duration
}

// DefaultHTTPConfig matches the source's defaults (max_facts=8,
// max_sources=6, 30s timeout, public allowlist).
func DefaultHTTPConfig() HTTPConfig {
	return HTTPConfig{
		MaxFacts:       8,
		MaxSources:     6,
		AllowlistMode:  AllowlistPublic,
		RequestTimeout: 30 * time.Second,
	}
}

// HTTPService is the two-step librarian flow: search, optionally fetch
// and extract from a datasheet-like URL, gated by a daily budget and
// deduplicated across concurrent identical prompts, matching
// OpenAIResearchService.request_research.
type HTTPService struct {
	search  SearchProvider
	extract ExtractProvider
	fetch   MarkdownFetcher
	budget  budget.Limiter
	cfg     HTTPConfig

	allowedDomains map[string]struct{}
	group          singleflight.Group
}

// NewHTTPService wires the providers and daily budget together.
func NewHTTPService(search SearchProvider, extract ExtractProvider, fetch MarkdownFetcher, dailyBudget budget.Limiter, cfg HTTPConfig) *HTTPService {
	if cfg.MaxFacts <= 0 {
		cfg.MaxFacts = 8
	}
	if cfg.MaxSources <= 0 {
		cfg.MaxSources = 6
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	domains := make(map[string]struct{}, len(cfg.AllowlistDomains))
	for _, d := range cfg.AllowlistDomains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			domains[d] = struct{}{}
		}
	}
	return &HTTPService{search: search, extract: extract, fetch: fetch, budget: dailyBudget, cfg: cfg, allowedDomains: domains}
}

// Request runs the librarian flow, deduplicating concurrent calls that
// share the exact same prompt so a burst of identical tool calls costs
// one budget unit and one upstream round trip.
func (s *HTTPService) Request(ctx context.Context, req Request) (Packet, error) {
	reqCtx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	result, err, _ := s.group.Do(req.Prompt, func() (any, error) {
		return s.request(reqCtx, req), nil
	})
	if err != nil {
		return errorPacket("internal_error"), nil
	}
	return result.(Packet), nil
}

func (s *HTTPService) request(ctx context.Context, req Request) Packet {
	now := time.Now()
	if !s.budget.TryRecord(now) && !overBudgetApproved(req) {
		return Packet{
			Schema:        Schema,
			Status:        "error",
			AnswerSummary: "I'm at today's research budget limit. If you want, say: 'approve over-budget research' and I'll run one extra search.",
			SafetyNotes:   []string{"budget_exceeded", "awaiting_over_budget_approval"},
			Metadata:      map[string]any{"provider": "openai_responses_web_search"},
		}
	}

	searchResult, err := s.search.Search(ctx, req)
	if err != nil {
		return errorPacket("search_failed")
	}

	sources := sanitizeSources(searchResult.Sources, s.cfg.MaxSources)
	notes := sanitizeNotes(searchResult.SafetyNotes)
	bestURL := strings.TrimSpace(searchResult.BestURL)

	if bestURL == "" {
		notes = append(notes, "No likely datasheet URL found from web_search.")
		return sourcesOnlyPacket(searchResult.SearchSummary, sources, notes)
	}

	if !s.cfg.FirecrawlEnabled || s.fetch == nil || !s.fetch.Enabled() {
		notes = append(notes, "firecrawl_disabled")
		return sourcesOnlyPacket(searchResult.SearchSummary, sources, notes)
	}
	if !looksLikeDatasheet(bestURL) {
		notes = append(notes, "candidate_url_not_datasheet_like")
		return sourcesOnlyPacket(searchResult.SearchSummary, sources, notes)
	}
	allowed, reason := isURLAllowed(bestURL, s.cfg.AllowlistMode, s.allowedDomains)
	if !allowed {
		notes = append(notes, "blocked_by_domain_policy:"+reason)
		return sourcesOnlyPacket(searchResult.SearchSummary, sources, notes)
	}

	markdown, err := s.fetch.FetchMarkdown(ctx, bestURL)
	if err != nil {
		notes = append(notes, "firecrawl_failed")
		return sourcesOnlyPacket(searchResult.SearchSummary, sources, notes)
	}

	injectionNotes := detectPromptInjection(markdown)
	extracted, err := s.extract.Extract(ctx, req, bestURL, markdown)
	if err != nil {
		return errorPacket("extract_failed")
	}

	facts := extracted.ExtractedFacts
	if len(facts) > s.cfg.MaxFacts {
		facts = facts[:s.cfg.MaxFacts]
	}
	status := extracted.Status
	if status != "ok" && status != "error" && status != "disabled" {
		status = "error"
	}
	summary := stripHTML(extracted.AnswerSummary)
	allNotes := sanitizeNotes(append(append(notes, injectionNotes...), extracted.SafetyNotes...))
	if summary == "" {
		summary = "Research completed with limited detail."
		allNotes = append(allNotes, "Model returned empty answer_summary.")
	}

	return Packet{
		Schema:        Schema,
		Status:        status,
		AnswerSummary: clip(summary, 900),
		ExtractedFacts: facts,
		Sources:       sources,
		SafetyNotes:   allNotes,
		Metadata:      map[string]any{"provider": "openai_responses_web_search"},
	}
}

func sourcesOnlyPacket(summary string, sources []Source, notes []string) Packet {
	if strings.TrimSpace(summary) == "" {
		summary = "Found candidate sources only."
	}
	return Packet{
		Schema:        Schema,
		Status:        "ok",
		AnswerSummary: clip(stripHTML(summary), 900),
		Sources:       sources,
		SafetyNotes:   sanitizeNotes(notes),
		Metadata:      map[string]any{"provider": "openai_responses_web_search"},
	}
}

// overBudgetApproved matches _over_budget_approved's truthy-string check
// on the request context's explicit approval flag.
func overBudgetApproved(req Request) bool {
	value, ok := req.Context["over_budget_approved"]
	if !ok {
		return false
	}
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "approved", "approve":
			return true
		}
	}
	return false
}
