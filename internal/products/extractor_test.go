package products

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/brand-profiler/internal/model"
	"github.com/sells-group/brand-profiler/pkg/llm"
	"github.com/sells-group/brand-profiler/pkg/wikidata"
)

func graphBinding(uri, label, typeLabel string) wikidata.Binding {
	return wikidata.Binding{"item": uri, "itemLabel": label, "typeLabel": typeLabel}
}

func TestExtract_GraphTierSufficient(t *testing.T) {
	t.Parallel()
	fake := &fakeLLM{handler: func(llm.CompletionRequest) (*llm.CompletionResponse, error) {
		t.Error("model must not be called when the graph tier is sufficient")
		return nil, nil
	}}
	wd := &fakeWikidata{entityID: "Q42", bindings: []wikidata.Binding{
		graphBinding("http://www.wikidata.org/entity/Q1001", "ThinkPad", "laptop"),
		graphBinding("http://www.wikidata.org/entity/Q1002", "Yoga", "laptop"),
		graphBinding("http://www.wikidata.org/entity/Q1003", "Legion", "laptop"),
	}}
	e := New(fake, &fakeWikipedia{}, wd)

	result := e.Extract(context.Background(), "Lenovo", "Lenovo is a manufacturer.")

	assert.Equal(t, model.ProductSourceWikidata, result.Metadata.Source)
	require.Len(t, result.Products, 3)
	assert.Equal(t, "Q1001", result.Products[0].WikidataID)
	assert.Equal(t, model.ProductStatusCurrent, result.Products[0].Status)
	assert.Equal(t, 3, result.Metadata.Counts["products"])
}

func TestExtract_GraphDiscardsOpaqueAndDuplicateLabels(t *testing.T) {
	t.Parallel()
	wd := &fakeWikidata{entityID: "Q42", bindings: []wikidata.Binding{
		graphBinding("http://www.wikidata.org/entity/Q1001", "ThinkPad", "laptop"),
		graphBinding("http://www.wikidata.org/entity/Q1001", "thinkpad", "laptop"),
		graphBinding("http://www.wikidata.org/entity/Q1002", "Q1002", ""),
		graphBinding("http://www.wikidata.org/entity/Q1003", "", ""),
		graphBinding("http://www.wikidata.org/entity/Q1004", "Yoga", "laptop"),
		graphBinding("http://www.wikidata.org/entity/Q1005", "Legion", "laptop"),
	}}
	e := New(noCallLLM(t), &fakeWikipedia{}, wd)

	result := e.Extract(context.Background(), "Lenovo", "summary")

	require.Len(t, result.Products, 3)
	assert.Equal(t, "ThinkPad", result.Products[0].Name)
}

func TestExtract_GraphClassifiesDiscontinued(t *testing.T) {
	t.Parallel()
	discontinued := graphBinding("http://www.wikidata.org/entity/Q2001", "Aptiva", "computer")
	discontinued["inception"] = "1994-01-01T00:00:00Z"
	discontinued["discontinued"] = "2001-05-01T00:00:00Z"
	wd := &fakeWikidata{entityID: "Q42", bindings: []wikidata.Binding{
		graphBinding("http://www.wikidata.org/entity/Q1001", "ThinkPad", "laptop"),
		graphBinding("http://www.wikidata.org/entity/Q1002", "Yoga", "laptop"),
		graphBinding("http://www.wikidata.org/entity/Q1003", "Legion", "laptop"),
		discontinued,
	}}
	e := New(noCallLLM(t), &fakeWikipedia{}, wd)

	result := e.Extract(context.Background(), "IBM", "")

	require.Len(t, result.Discontinued, 1)
	entry := result.Discontinued[0]
	assert.Equal(t, "Aptiva", entry.Name)
	assert.Equal(t, model.ProductStatusDiscontinued, entry.Status)
	require.NotNil(t, entry.InceptionYear)
	assert.Equal(t, 1994, *entry.InceptionYear)
	assert.Len(t, result.Products, 3)
}

func TestExtract_SparseGraphMergesWikipedia(t *testing.T) {
	t.Parallel()
	fake := &fakeLLM{handler: func(llm.CompletionRequest) (*llm.CompletionResponse, error) {
		return textResponse(`{
			"products": [{"name": "thinkpad"}, {"name": "Yoga", "category": "laptop"}],
			"services": ["TruScale"],
			"sub_brands": ["Legion"],
			"discontinued": []
		}`), nil
	}}
	wd := &fakeWikidata{entityID: "Q42", bindings: []wikidata.Binding{
		graphBinding("http://www.wikidata.org/entity/Q1001", "ThinkPad", "laptop"),
	}}
	e := New(fake, &fakeWikipedia{}, wd)

	result := e.Extract(context.Background(), "Lenovo", "Lenovo makes laptops.")

	assert.Equal(t, model.ProductSourceHybrid, result.Metadata.Source)
	require.Len(t, result.Products, 2)
	// Graph entry survives with its original casing and id.
	assert.Equal(t, "ThinkPad", result.Products[0].Name)
	assert.Equal(t, "Q1001", result.Products[0].WikidataID)
	assert.Equal(t, "Yoga", result.Products[1].Name)
	require.Len(t, result.Services, 1)
	assert.Equal(t, []string{"Legion"}, result.SubBrands)
}

func TestExtract_NoEntityFallsBackToWikipedia(t *testing.T) {
	t.Parallel()
	fake := &fakeLLM{handler: func(llm.CompletionRequest) (*llm.CompletionResponse, error) {
		return textResponse(`{"products": [{"name": "Widget"}]}`), nil
	}}
	e := New(fake, &fakeWikipedia{}, &fakeWikidata{})

	result := e.Extract(context.Background(), "Acme", "Acme makes widgets.")

	assert.Equal(t, model.ProductSourceWikipedia, result.Metadata.Source)
	require.Len(t, result.Products, 1)
	assert.Len(t, fake.recorded(), 1)
}

func TestExtract_NothingAnywhere(t *testing.T) {
	t.Parallel()
	e := New(noCallLLM(t), &fakeWikipedia{}, &fakeWikidata{})

	result := e.Extract(context.Background(), "Obscure Brand", "")

	assert.Equal(t, model.ProductSourceNone, result.Metadata.Source)
	assert.NotNil(t, result.Products)
	assert.Empty(t, result.Products)
	assert.Equal(t, 0, result.Metadata.Counts["products"])
}

func TestExtract_QueryFailureFallsBackToWikipedia(t *testing.T) {
	t.Parallel()
	fake := &fakeLLM{handler: func(llm.CompletionRequest) (*llm.CompletionResponse, error) {
		return textResponse(`{"products": [{"name": "Widget"}]}`), nil
	}}
	wd := &fakeWikidata{entityID: "Q42", queryErr: eris.New("sparql endpoint down")}
	e := New(fake, &fakeWikipedia{}, wd)

	result := e.Extract(context.Background(), "Acme", "Acme makes widgets.")

	assert.Equal(t, model.ProductSourceWikipedia, result.Metadata.Source)
	require.Len(t, result.Products, 1)
}

func TestExtract_FetchesFullTextWhenNoSummary(t *testing.T) {
	t.Parallel()
	fake := &fakeLLM{handler: func(req llm.CompletionRequest) (*llm.CompletionResponse, error) {
		assert.Contains(t, req.Prompt, "Acme's long article text")
		return textResponse(`{"products": [{"name": "Widget"}]}`), nil
	}}
	wiki := &fakeWikipedia{fullText: "Acme's long article text"}
	e := New(fake, wiki, &fakeWikidata{})

	result := e.Extract(context.Background(), "Acme", "")

	assert.Equal(t, model.ProductSourceWikipedia, result.Metadata.Source)
	assert.Len(t, fake.recorded(), 1)
}

// noCallLLM fails the test if any completion is requested.
func noCallLLM(t *testing.T) *fakeLLM {
	t.Helper()
	return &fakeLLM{handler: func(llm.CompletionRequest) (*llm.CompletionResponse, error) {
		t.Error("unexpected model call")
		return textResponse("{}"), nil
	}}
}
