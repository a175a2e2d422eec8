// Package wikipedia provides the encyclopedic knowledge-source adapter.
//
// Every operation swallows transport and decoding errors internally and
// returns a zero value; the adapter never raises to its caller. Failures are
// logged at debug level only, since absent encyclopedia data is an expected
// condition for most brands.
package wikipedia

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL   = "https://en.wikipedia.org"
	defaultUserAgent = "brand-profiler/1.0 (https://github.com/sells-group/brand-profiler)"
)

// Client looks up encyclopedic content for a name.
type Client interface {
	// FetchSummary returns the lead summary for the best-matching article,
	// or nil when no article is found or the lookup fails.
	FetchSummary(ctx context.Context, query string) *Summary
	// FetchFullText returns the plain text of the best-matching article
	// truncated to maxChars, or "" on failure.
	FetchFullText(ctx context.Context, query string, maxChars int) string
}

// Summary is the lead section of an article plus its identifiers.
type Summary struct {
	Title      string
	Summary    string
	PageID     int64
	WikidataID string
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates a Wikipedia adapter. Requests are rate-limited to stay
// within the API etiquette for anonymous clients.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 20 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(rate.Limit(5), 5),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// summaryResponse is the REST page-summary payload.
type summaryResponse struct {
	Title   string `json:"title"`
	Extract string `json:"extract"`
	PageID  int64  `json:"pageid"`
	// wikibase_item lives under the REST summary's title metadata.
	WikibaseItem string `json:"wikibase_item"`
}

func (c *httpClient) FetchSummary(ctx context.Context, query string) *Summary {
	if query == "" {
		return nil
	}

	endpoint := c.baseURL + "/api/rest_v1/page/summary/" + url.PathEscape(query)
	body, ok := c.get(ctx, endpoint)
	if !ok {
		return nil
	}

	var resp summaryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		zap.L().Debug("wikipedia: decode summary", zap.String("query", query), zap.Error(err))
		return nil
	}
	if resp.Extract == "" {
		return nil
	}

	return &Summary{
		Title:      resp.Title,
		Summary:    resp.Extract,
		PageID:     resp.PageID,
		WikidataID: resp.WikibaseItem,
	}
}

// extractsResponse is the action API prop=extracts payload.
type extractsResponse struct {
	Query struct {
		Pages map[string]struct {
			PageID  int64  `json:"pageid"`
			Title   string `json:"title"`
			Extract string `json:"extract"`
		} `json:"pages"`
	} `json:"query"`
}

func (c *httpClient) FetchFullText(ctx context.Context, query string, maxChars int) string {
	if query == "" || maxChars <= 0 {
		return ""
	}

	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "extracts")
	params.Set("explaintext", "1")
	params.Set("redirects", "1")
	params.Set("format", "json")
	params.Set("titles", query)

	body, ok := c.get(ctx, c.baseURL+"/w/api.php?"+params.Encode())
	if !ok {
		return ""
	}

	var resp extractsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		zap.L().Debug("wikipedia: decode extracts", zap.String("query", query), zap.Error(err))
		return ""
	}

	for _, page := range resp.Query.Pages {
		if page.Extract == "" {
			continue
		}
		text := page.Extract
		if len(text) > maxChars {
			text = text[:maxChars]
		}
		return text
	}
	return ""
}

// get performs a rate-limited GET, returning (body, true) on a 2xx response
// and (nil, false) on any failure.
func (c *httpClient) get(ctx context.Context, endpoint string) ([]byte, bool) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		zap.L().Debug("wikipedia: create request", zap.Error(err))
		return nil, false
	}
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		zap.L().Debug("wikipedia: request failed", zap.String("url", endpoint), zap.Error(err))
		return nil, false
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		zap.L().Debug("wikipedia: unexpected status", zap.String("url", endpoint), zap.Int("status", resp.StatusCode))
		return nil, false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		zap.L().Debug("wikipedia: read body", zap.Error(err))
		return nil, false
	}
	return body, true
}
