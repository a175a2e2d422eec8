// Package wikidata provides entity search and SPARQL query access to the
// Wikidata knowledge graph.
package wikidata

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultAPIBaseURL    = "https://www.wikidata.org"
	defaultSPARQLBaseURL = "https://query.wikidata.org"
	defaultUserAgent     = "brand-profiler/1.0 (https://github.com/sells-group/brand-profiler)"
)

// organizationTerms mark a search-hit description as organization-like.
// Order-sensitive first-match disambiguation: the first hit whose
// description contains any of these wins, else the first hit overall.
var organizationTerms = []string{
	"company", "corporation", "business", "enterprise", "manufacturer",
	"brand", "organization", "organisation", "conglomerate", "retailer",
}

// Client accesses the Wikidata API and query service.
type Client interface {
	// FindEntityID resolves a name to an entity id via fuzzy search,
	// preferring hits with organization-like descriptions. Returns "" when
	// nothing matches or the lookup fails; it never returns an error.
	FindEntityID(ctx context.Context, name string) string
	// Query runs a SPARQL query and returns the result bindings, one map of
	// variable name to plain value per row.
	Query(ctx context.Context, sparql string) ([]Binding, error)
}

// Binding is one SPARQL result row, flattened to variable → value.
type Binding map[string]string

// Option configures the client.
type Option func(*httpClient)

// WithAPIBaseURL overrides the entity-search base URL (for testing).
func WithAPIBaseURL(u string) Option {
	return func(c *httpClient) {
		c.apiBaseURL = u
	}
}

// WithSPARQLBaseURL overrides the query-service base URL (for testing).
func WithSPARQLBaseURL(u string) Option {
	return func(c *httpClient) {
		c.sparqlBaseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	apiBaseURL    string
	sparqlBaseURL string
	http          *http.Client
	limiter       *rate.Limiter
}

// NewClient creates a Wikidata client with polite rate limiting.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		apiBaseURL:    defaultAPIBaseURL,
		sparqlBaseURL: defaultSPARQLBaseURL,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(2), 2),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// searchResponse is the wbsearchentities payload.
type searchResponse struct {
	Search []searchHit `json:"search"`
}

type searchHit struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

func (c *httpClient) FindEntityID(ctx context.Context, name string) string {
	if strings.TrimSpace(name) == "" {
		return ""
	}

	params := url.Values{}
	params.Set("action", "wbsearchentities")
	params.Set("search", name)
	params.Set("language", "en")
	params.Set("type", "item")
	params.Set("limit", "10")
	params.Set("format", "json")

	body, err := c.get(ctx, c.apiBaseURL+"/w/api.php?"+params.Encode())
	if err != nil {
		zap.L().Debug("wikidata: entity search failed", zap.String("name", name), zap.Error(err))
		return ""
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		zap.L().Debug("wikidata: decode entity search", zap.String("name", name), zap.Error(err))
		return ""
	}
	if len(resp.Search) == 0 {
		return ""
	}

	for _, hit := range resp.Search {
		desc := strings.ToLower(hit.Description)
		for _, term := range organizationTerms {
			if strings.Contains(desc, term) {
				return hit.ID
			}
		}
	}
	return resp.Search[0].ID
}

// sparqlResponse is the query-service JSON results payload.
type sparqlResponse struct {
	Results struct {
		Bindings []map[string]struct {
			Value string `json:"value"`
		} `json:"bindings"`
	} `json:"results"`
}

func (c *httpClient) Query(ctx context.Context, sparql string) ([]Binding, error) {
	params := url.Values{}
	params.Set("query", sparql)
	params.Set("format", "json")

	body, err := c.get(ctx, c.sparqlBaseURL+"/sparql?"+params.Encode())
	if err != nil {
		return nil, eris.Wrap(err, "wikidata: sparql query")
	}

	var resp sparqlResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, eris.Wrap(err, "wikidata: decode sparql results")
	}

	bindings := make([]Binding, 0, len(resp.Results.Bindings))
	for _, row := range resp.Results.Bindings {
		b := make(Binding, len(row))
		for name, cell := range row {
			b[name] = cell.Value
		}
		bindings = append(bindings, b)
	}
	return bindings, nil
}

func (c *httpClient) get(ctx context.Context, endpoint string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "wikidata: rate limit wait")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, eris.Wrap(err, "wikidata: create request")
	}
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "wikidata: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8*1024*1024))
	if err != nil {
		return nil, eris.Wrap(err, "wikidata: read body")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, eris.Errorf("wikidata: unexpected status %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
