package products

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/brand-profiler/internal/llmjson"
	"github.com/sells-group/brand-profiler/internal/model"
	"github.com/sells-group/brand-profiler/internal/prompt"
	"github.com/sells-group/brand-profiler/pkg/llm"
)

const (
	// maxSitemapCandidates caps the filtered URL set.
	maxSitemapCandidates = 300
	// maxSitemapPromptURLs caps how many candidates reach the model.
	maxSitemapPromptURLs = 200
	// maxSitemapBytes bounds the fetched document size.
	maxSitemapBytes = 8 * 1024 * 1024
)

// locRe extracts location entries from a sitemap document. Pattern-based
// rather than an XML decode: real-world sitemaps are frequently malformed
// but still carry usable <loc> entries.
var locRe = regexp.MustCompile(`(?is)<loc>\s*(.*?)\s*</loc>`)

// productPathSegments mark a URL path as product-like.
var productPathSegments = []string{
	"/product", "/products", "/item", "/items", "/shop", "/store",
	"/collection", "/collections", "/catalog", "/catalogue",
	"/service", "/services", "/solution", "/solutions", "/plans", "/p/",
}

// excludedPathSegments mark a URL path as definitely not product-like.
var excludedPathSegments = []string{
	"/blog", "/news", "/press", "/about", "/career", "/job",
	"/privacy", "/terms", "/legal", "/policy", "/policies",
	"/support", "/help", "/faq", "/contact", "/login", "/signin",
	"/signup", "/register", "/cart", "/checkout", "/account",
	"/search", "/sitemap", "/tag/", "/author", "/wp-content",
}

// slugRe matches a generic hyphenated trailing slug ("some-product-name"),
// catching product pages that live outside the conventional path segments.
var slugRe = regexp.MustCompile(`/[a-z0-9]+(?:-[a-z0-9]+){1,}/?$`)

// ExtractFromSitemap fetches a sitemap, filters product-like URLs, and asks
// the model to deduce the catalogue they imply. Each failure state returns
// an empty result tagged with its own metadata source.
func (e *extractor) ExtractFromSitemap(ctx context.Context, sitemapURL, brandName string) *model.ExtractionResult {
	log := zap.L().With(zap.String("brand", brandName), zap.String("sitemap", sitemapURL))

	body, err := e.fetchSitemap(ctx, sitemapURL)
	if err != nil {
		log.Warn("products: sitemap fetch failed", zap.Error(err))
		result := model.EmptyExtractionResult(model.ProductSourceSitemapFailed)
		result.Metadata.Error = err.Error()
		return result
	}

	locations := extractLocations(body)
	if len(locations) == 0 {
		log.Info("products: sitemap has no location entries")
		return model.EmptyExtractionResult(model.ProductSourceSitemapEmpty)
	}

	candidates := filterProductURLs(locations)
	if len(candidates) == 0 {
		log.Info("products: no product-like urls in sitemap", zap.Int("locations", len(locations)))
		return model.EmptyExtractionResult(model.ProductSourceSitemapNoMatch)
	}
	if len(candidates) > maxSitemapPromptURLs {
		candidates = candidates[:maxSitemapPromptURLs]
	}

	req := llm.CompletionRequest{
		Prompt: prompt.Build("sitemap_products", map[string]any{
			"brand_name": brandName,
			"url_lines":  strings.Join(candidates, "\n"),
		}),
		Temperature:    llm.Temp(0.3),
		ResponseFormat: llm.FormatJSON,
	}

	resp, err := e.llm.Complete(ctx, req)
	if err != nil {
		log.Warn("products: sitemap model call failed", zap.Error(err))
		result := model.EmptyExtractionResult(model.ProductSourceSitemapLLMError)
		result.Metadata.Error = err.Error()
		return result
	}

	var payload catalogPayload
	if err := llmjson.Unmarshal(resp.Content(), &payload); err != nil {
		log.Warn("products: unparseable sitemap extraction", zap.Error(err))
		result := model.EmptyExtractionResult(model.ProductSourceSitemapLLMError)
		result.Metadata.Error = err.Error()
		return result
	}

	result := payload.toResult(model.ProductSourceSitemap)
	log.Info("products: sitemap extraction complete",
		zap.Int("candidates", len(candidates)),
		zap.Int("products", len(result.Products)),
	)
	return result
}

// fetchSitemap retrieves the sitemap document, treating any non-2xx status
// as a failure.
func (e *extractor) fetchSitemap(ctx context.Context, sitemapURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sitemapURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "brand-profiler/1.0")

	resp, err := e.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", httpStatusError(resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSitemapBytes))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

type httpStatusError int

func (e httpStatusError) Error() string {
	return "unexpected status " + http.StatusText(int(e))
}

// extractLocations pulls all <loc> entries from a sitemap document.
func extractLocations(body string) []string {
	matches := locRe.FindAllStringSubmatch(body, -1)
	locations := make([]string, 0, len(matches))
	for _, m := range matches {
		loc := strings.TrimSpace(m[1])
		if loc != "" {
			locations = append(locations, loc)
		}
	}
	return locations
}

// filterProductURLs keeps URLs whose path looks product-like: a positive
// segment match or a generic trailing slug, and no excluded segment. The
// result is capped at maxSitemapCandidates.
func filterProductURLs(locations []string) []string {
	var candidates []string
	for _, loc := range locations {
		if len(candidates) >= maxSitemapCandidates {
			break
		}
		parsed, err := url.Parse(loc)
		if err != nil {
			continue
		}
		path := strings.ToLower(parsed.Path)
		if path == "" || path == "/" {
			continue
		}
		if containsAny(path, excludedPathSegments) {
			continue
		}
		if containsAny(path, productPathSegments) || slugRe.MatchString(path) {
			candidates = append(candidates, loc)
		}
	}
	return candidates
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
