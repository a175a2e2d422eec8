package profile

import (
	"context"
	"sync"

	"github.com/sells-group/brand-profiler/internal/model"
	"github.com/sells-group/brand-profiler/pkg/llm"
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

// textResponse wraps content in the chat-completions choice shape.
func textResponse(content string) *llm.CompletionResponse {
	return &llm.CompletionResponse{
		Choices: []llm.Choice{{Message: llm.Message{Role: "assistant", Content: content}}},
	}
}

// fakeWikipedia serves canned summaries.
type fakeWikipedia struct {
	summary  *wikipedia.Summary
	fullText string
}

func (f *fakeWikipedia) FetchSummary(_ context.Context, _ string) *wikipedia.Summary {
	return f.summary
}

func (f *fakeWikipedia) FetchFullText(_ context.Context, _ string, _ int) string {
	return f.fullText
}

// fakeExtractor records which tier was selected.
type fakeExtractor struct {
	sitemapCalls []string
	extractCalls []string
	result       *model.ExtractionResult
}

func (f *fakeExtractor) ExtractFromSitemap(_ context.Context, sitemapURL, _ string) *model.ExtractionResult {
	f.sitemapCalls = append(f.sitemapCalls, sitemapURL)
	return f.extractionResult()
}

func (f *fakeExtractor) Extract(_ context.Context, brandName, _ string) *model.ExtractionResult {
	f.extractCalls = append(f.extractCalls, brandName)
	return f.extractionResult()
}

func (f *fakeExtractor) extractionResult() *model.ExtractionResult {
	if f.result != nil {
		return f.result
	}
	return model.EmptyExtractionResult(model.ProductSourceNone)
}
