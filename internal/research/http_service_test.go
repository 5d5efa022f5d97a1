package research

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"theo/internal/budget"
)

type fakeSearch struct {
	calls  int32
	result SearchResult
	err    error
}

func (f *fakeSearch) Search(context.Context, Request) (SearchResult, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.result, f.err
}

type fakeExtract struct {
	result ExtractResult
	err    error
}

func (f *fakeExtract) Extract(context.Context, Request, string, string) (ExtractResult, error) {
	return f.result, f.err
}

type fakeFetcher struct {
	enabled  bool
	markdown string
	err      error
}

func (f *fakeFetcher) Enabled() bool { return f.enabled }
func (f *fakeFetcher) FetchMarkdown(context.Context, string) (string, error) {
	return f.markdown, f.err
}

func TestNullServiceReturnsDisabledPacket(t *testing.T) {
	svc := NewNullService()
	packet, err := svc.Request(context.Background(), Request{Prompt: "hello", Context: map[string]any{"a": 1}})
	require.NoError(t, err)
	assert.Equal(t, "disabled", packet.Status)
	assert.Equal(t, []string{"research_disabled"}, packet.SafetyNotes)
}

func TestHTTPServiceSourcesOnlyWhenFirecrawlDisabled(t *testing.T) {
	search := &fakeSearch{result: SearchResult{BestURL: "https://vendor.example.com/part.pdf", SearchSummary: "found it"}}
	svc := NewHTTPService(search, &fakeExtract{}, nil, budget.New(10, time.Hour, "research-test"), DefaultHTTPConfig())

	packet, err := svc.Request(context.Background(), Request{Prompt: "lookup part"})
	require.NoError(t, err)
	assert.Equal(t, "ok", packet.Status)
	assert.Contains(t, packet.SafetyNotes, "firecrawl_disabled")
}

func TestHTTPServiceExtractsWhenFirecrawlEnabled(t *testing.T) {
	cfg := DefaultHTTPConfig()
	cfg.FirecrawlEnabled = true
	search := &fakeSearch{result: SearchResult{BestURL: "https://vendor.example.com/part-datasheet.pdf"}}
	extract := &fakeExtract{result: ExtractResult{Status: "ok", AnswerSummary: "the part handles 5V", ExtractedFacts: []string{"5V supply"}}}
	fetch := &fakeFetcher{enabled: true, markdown: "spec sheet contents"}

	svc := NewHTTPService(search, extract, fetch, budget.New(10, time.Hour, "research-test"), cfg)
	packet, err := svc.Request(context.Background(), Request{Prompt: "lookup part"})
	require.NoError(t, err)
	assert.Equal(t, "ok", packet.Status)
	assert.Equal(t, []string{"5V supply"}, packet.ExtractedFacts)
}

func TestHTTPServiceBlocksPrivateURLs(t *testing.T) {
	cfg := DefaultHTTPConfig()
	cfg.FirecrawlEnabled = true
	search := &fakeSearch{result: SearchResult{BestURL: "https://192.168.1.5/internal-datasheet.pdf"}}
	svc := NewHTTPService(search, &fakeExtract{}, &fakeFetcher{enabled: true}, budget.New(10, time.Hour, "research-test"), cfg)

	packet, err := svc.Request(context.Background(), Request{Prompt: "lookup part"})
	require.NoError(t, err)
	found := false
	for _, n := range packet.SafetyNotes {
		if n == "blocked_by_domain_policy:private_ip_blocked" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestHTTPServiceBudgetExhaustedWithoutApproval(t *testing.T) {
	search := &fakeSearch{result: SearchResult{}}
	svc := NewHTTPService(search, &fakeExtract{}, nil, budget.New(0, time.Hour, "research-test"), DefaultHTTPConfig())

	packet, err := svc.Request(context.Background(), Request{Prompt: "lookup part"})
	require.NoError(t, err)
	assert.Equal(t, "error", packet.Status)
	assert.Contains(t, packet.SafetyNotes, "budget_exceeded")
}

func TestHTTPServiceBudgetApprovalBypasses(t *testing.T) {
	search := &fakeSearch{result: SearchResult{SearchSummary: "ok"}}
	svc := NewHTTPService(search, &fakeExtract{}, nil, budget.New(0, time.Hour, "research-test"), DefaultHTTPConfig())

	packet, err := svc.Request(context.Background(), Request{Prompt: "lookup part", Context: map[string]any{"over_budget_approved": true}})
	require.NoError(t, err)
	assert.Equal(t, "ok", packet.Status)
}

func TestHTTPServiceDedupesConcurrentIdenticalPrompts(t *testing.T) {
	search := &fakeSearch{result: SearchResult{SearchSummary: "dedup test"}}
	svc := NewHTTPService(search, &fakeExtract{}, nil, budget.New(10, time.Hour, "research-test"), DefaultHTTPConfig())

	done := make(chan struct{})
	for i := 0; i < 5; i++ {
		go func() {
			_, _ = svc.Request(context.Background(), Request{Prompt: "same query"})
			done <- struct{}{}
		}()
	}
	for i := 0; i < 5; i++ {
		<-done
	}
	assert.LessOrEqual(t, int(atomic.LoadInt32(&search.calls)), 5)
}

func TestHTTPServiceSearchFailureReturnsSafeErrorPacket(t *testing.T) {
	svc := NewHTTPService(&fakeSearch{err: errors.New("boom")}, &fakeExtract{}, nil, budget.New(10, time.Hour, "research-test"), DefaultHTTPConfig())
	packet, err := svc.Request(context.Background(), Request{Prompt: "q"})
	require.NoError(t, err)
	assert.Equal(t, "error", packet.Status)
}
