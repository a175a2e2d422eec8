package products

import (
	"context"
	"sync"

	"github.com/sells-group/brand-profiler/pkg/llm"
	"github.com/sells-group/brand-profiler/pkg/wikidata"
	"github.com/sells-group/brand-profiler/pkg/wikipedia"
)

// fakeLLM is a scripted completion client that records every request.
type fakeLLM struct {
	mu       sync.Mutex
	handler  func(req llm.CompletionRequest) (*llm.CompletionResponse, error)
	requests []llm.CompletionRequest
}

func (f *fakeLLM) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	return f.handler(req)
}

func (f *fakeLLM) recorded() []llm.CompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]llm.CompletionRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

func textResponse(content string) *llm.CompletionResponse {
	return &llm.CompletionResponse{
		Choices: []llm.Choice{{Message: llm.Message{Role: "assistant", Content: content}}},
	}
}

// fakeWikipedia serves canned text.
type fakeWikipedia struct {
	summary  *wikipedia.Summary
	fullText string
}

func (f *fakeWikipedia) FetchSummary(_ context.Context, _ string) *wikipedia.Summary {
	return f.summary
}

func (f *fakeWikipedia) FetchFullText(_ context.Context, _ string, maxChars int) string {
	if len(f.fullText) > maxChars {
		return f.fullText[:maxChars]
	}
	return f.fullText
}

// fakeWikidata serves canned entity lookups and query rows.
type fakeWikidata struct {
	entityID string
	bindings []wikidata.Binding
	queryErr error
	queries  []string
}

func (f *fakeWikidata) FindEntityID(_ context.Context, _ string) string {
	return f.entityID
}

func (f *fakeWikidata) Query(_ context.Context, sparql string) ([]wikidata.Binding, error) {
	f.queries = append(f.queries, sparql)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.bindings, nil
}
