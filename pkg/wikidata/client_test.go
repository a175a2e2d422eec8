package wikidata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindEntityID_PrefersOrganizationHit(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "wbsearchentities", r.URL.Query().Get("action"))
		assert.Equal(t, "Apple", r.URL.Query().Get("search"))
		_, _ = w.Write([]byte(`{
			"search": [
				{"id": "Q89", "label": "apple", "description": "fruit of the apple tree"},
				{"id": "Q312", "label": "Apple Inc.", "description": "American technology company"},
				{"id": "Q213710", "label": "Apple Records", "description": "British record label company"}
			]
		}`))
	}))
	defer srv.Close()

	c := NewClient(WithAPIBaseURL(srv.URL))

	// First organization-like hit wins, not the first hit overall.
	assert.Equal(t, "Q312", c.FindEntityID(context.Background(), "Apple"))
}

func TestFindEntityID_FirstHitWhenNoOrganization(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
			"search": [
				{"id": "Q89", "label": "apple", "description": "fruit"},
				{"id": "Q90", "label": "apple pie", "description": "dessert"}
			]
		}`))
	}))
	defer srv.Close()

	c := NewClient(WithAPIBaseURL(srv.URL))

	assert.Equal(t, "Q89", c.FindEntityID(context.Background(), "apple"))
}

func TestFindEntityID_EmptyResults(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"search": []}`))
	}))
	defer srv.Close()

	c := NewClient(WithAPIBaseURL(srv.URL))

	assert.Equal(t, "", c.FindEntityID(context.Background(), "zxqvnothing"))
	assert.Equal(t, "", c.FindEntityID(context.Background(), "   "))
}

func TestFindEntityID_TransportFailureReturnsEmpty(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(WithAPIBaseURL(srv.URL))

	assert.Equal(t, "", c.FindEntityID(context.Background(), "Apple"))
}

func TestQuery(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sparql", r.URL.Path)
		assert.Contains(t, r.URL.Query().Get("query"), "SELECT")
		_, _ = w.Write([]byte(`{
			"results": {"bindings": [
				{"item": {"type": "uri", "value": "http://www.wikidata.org/entity/Q1001"}, "itemLabel": {"type": "literal", "value": "ThinkPad"}},
				{"item": {"type": "uri", "value": "http://www.wikidata.org/entity/Q1002"}, "itemLabel": {"type": "literal", "value": "Yoga"}}
			]}
		}`))
	}))
	defer srv.Close()

	c := NewClient(WithSPARQLBaseURL(srv.URL))

	bindings, err := c.Query(context.Background(), "SELECT ?item ?itemLabel WHERE { }")

	require.NoError(t, err)
	require.Len(t, bindings, 2)
	assert.Equal(t, "http://www.wikidata.org/entity/Q1001", bindings[0]["item"])
	assert.Equal(t, "ThinkPad", bindings[0]["itemLabel"])
	assert.Equal(t, "Yoga", bindings[1]["itemLabel"])
}

func TestQuery_ErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte("rate limited"))
	}))
	defer srv.Close()

	c := NewClient(WithSPARQLBaseURL(srv.URL))

	_, err := c.Query(context.Background(), "SELECT ?item WHERE { }")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
