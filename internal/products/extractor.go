// Package products implements the three-tier product-extraction pipeline:
// sitemap-driven deduction, Wikidata graph query, and Wikipedia text
// extraction, fused via case-insensitive merge with provenance tracking.
//
// Every entry point is total: network and model failures are caught locally
// and a fully-shaped ExtractionResult is always returned.
package products

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/brand-profiler/internal/llmjson"
	"github.com/sells-group/brand-profiler/internal/model"
	"github.com/sells-group/brand-profiler/internal/prompt"
	"github.com/sells-group/brand-profiler/pkg/llm"
	"github.com/sells-group/brand-profiler/pkg/wikidata"
	"github.com/sells-group/brand-profiler/pkg/wikipedia"
)

// minGraphProducts is the quality threshold for the graph tier: below this
// count the encyclopedia tier augments the result.
const minGraphProducts = 3

// wikipediaCharBudget truncates fetched article text before the model call.
const wikipediaCharBudget = 10000

// Extractor produces a product/service/sub-brand catalogue for a brand.
type Extractor interface {
	// ExtractFromSitemap runs the sitemap tier.
	ExtractFromSitemap(ctx context.Context, sitemapURL, brandName string) *model.ExtractionResult
	// Extract runs the knowledge-graph tier with encyclopedia augmentation.
	Extract(ctx context.Context, brandName, wikipediaSummary string) *model.ExtractionResult
}

// New creates an Extractor wired to the given collaborators.
func New(llmClient llm.Client, wikiClient wikipedia.Client, wdClient wikidata.Client) Extractor {
	return &extractor{
		llm:      llmClient,
		wiki:     wikiClient,
		wikidata: wdClient,
		http: &http.Client{
			Timeout: 30 * time.Second,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type extractor struct {
	llm      llm.Client
	wiki     wikipedia.Client
	wikidata wikidata.Client
	http     *http.Client
}

// productQuery unions the four relationship patterns that tie an entity to
// its catalogue: things it manufactures, things it develops, its declared
// products/materials, and businesses it owns as subsidiaries.
const productQuery = `SELECT DISTINCT ?item ?itemLabel ?typeLabel ?inception ?discontinued WHERE {
  { ?item wdt:P176 wd:%[1]s . }
  UNION { ?item wdt:P178 wd:%[1]s . }
  UNION { wd:%[1]s wdt:P1056 ?item . }
  UNION { ?item wdt:P31/wdt:P279* wd:Q4830453 . ?item wdt:P749 wd:%[1]s . }
  OPTIONAL { ?item wdt:P31 ?type . }
  OPTIONAL { ?item wdt:P571 ?inception . }
  OPTIONAL { ?item wdt:P2669 ?discontinued . }
  SERVICE wikibase:label { bd:serviceParam wikibase:language "en" . }
}
LIMIT 200`

// opaqueLabelRe matches labels that are bare entity ids rather than names.
var opaqueLabelRe = regexp.MustCompile(`^Q\d+$`)

// Extract resolves the brand to a Wikidata entity, queries its catalogue,
// and augments from Wikipedia when the graph yields fewer than
// minGraphProducts products.
func (e *extractor) Extract(ctx context.Context, brandName, wikipediaSummary string) *model.ExtractionResult {
	log := zap.L().With(zap.String("brand", brandName))

	graph := e.extractFromGraph(ctx, brandName)

	if len(graph.Products) >= minGraphProducts {
		graph.Metadata.Source = model.ProductSourceWikidata
		graph.CountEntries()
		log.Info("products: graph tier sufficient", zap.Int("products", len(graph.Products)))
		return graph
	}

	wiki := e.extractFromWikipedia(ctx, brandName, wikipediaSummary)

	merged := Merge(graph, wiki)
	switch {
	case graphContributed(graph) && wikiContributed(wiki):
		merged.Metadata.Source = model.ProductSourceHybrid
	case graphContributed(graph):
		merged.Metadata.Source = model.ProductSourceWikidata
	case wikiContributed(wiki):
		merged.Metadata.Source = model.ProductSourceWikipedia
	default:
		merged.Metadata.Source = model.ProductSourceNone
	}
	merged.CountEntries()

	log.Info("products: extraction complete",
		zap.String("source", merged.Metadata.Source),
		zap.Int("products", len(merged.Products)),
		zap.Int("services", len(merged.Services)),
	)
	return merged
}

// extractFromGraph runs the entity resolution and SPARQL steps. Failures
// return an empty well-shaped result.
func (e *extractor) extractFromGraph(ctx context.Context, brandName string) *model.ExtractionResult {
	result := model.EmptyExtractionResult(model.ProductSourceNone)

	entityID := e.wikidata.FindEntityID(ctx, brandName)
	if entityID == "" {
		result.Metadata.Notes = "no knowledge-graph entity resolved"
		return result
	}

	bindings, err := e.wikidata.Query(ctx, fmt.Sprintf(productQuery, entityID))
	if err != nil {
		zap.L().Warn("products: graph query failed", zap.String("entity", entityID), zap.Error(err))
		result.Metadata.Error = err.Error()
		return result
	}

	seen := make(map[string]bool, len(bindings))
	for _, b := range bindings {
		label := strings.TrimSpace(b["itemLabel"])
		if label == "" || opaqueLabelRe.MatchString(label) {
			continue
		}
		key := strings.ToLower(label)
		if seen[key] {
			continue
		}
		seen[key] = true

		entry := model.ProductCatalogEntry{
			Name:          label,
			Category:      b["typeLabel"],
			Status:        model.ProductStatusCurrent,
			WikidataID:    entityIDFromURI(b["item"]),
			InceptionYear: parseYear(b["inception"]),
		}
		if parseYear(b["discontinued"]) != nil {
			entry.Status = model.ProductStatusDiscontinued
			result.Discontinued = append(result.Discontinued, entry)
			continue
		}
		result.Products = append(result.Products, entry)
	}

	result.Metadata.Source = model.ProductSourceWikidata
	result.CountEntries()
	return result
}

// extractFromWikipedia runs the encyclopedia tier: summary text (or a fresh
// fetch truncated to the char budget) through the model. Failures return an
// empty well-shaped result.
func (e *extractor) extractFromWikipedia(ctx context.Context, brandName, summary string) *model.ExtractionResult {
	result := model.EmptyExtractionResult(model.ProductSourceNone)

	text := summary
	if text == "" {
		text = e.wiki.FetchFullText(ctx, brandName, wikipediaCharBudget)
	}
	if text == "" {
		result.Metadata.Notes = "no encyclopedia text available"
		return result
	}
	if len(text) > wikipediaCharBudget {
		text = text[:wikipediaCharBudget]
	}

	req := llm.CompletionRequest{
		Prompt: prompt.Build("wikipedia_products", map[string]any{
			"brand_name":   brandName,
			"article_text": text,
		}),
		Temperature:    llm.Temp(0.3),
		ResponseFormat: llm.FormatJSON,
	}

	resp, err := e.llm.Complete(ctx, req)
	if err != nil {
		zap.L().Warn("products: wikipedia model call failed", zap.String("brand", brandName), zap.Error(err))
		result.Metadata.Error = err.Error()
		return result
	}

	var payload catalogPayload
	if err := llmjson.Unmarshal(resp.Content(), &payload); err != nil {
		zap.L().Warn("products: unparseable wikipedia extraction", zap.String("brand", brandName), zap.Error(err))
		result.Metadata.Error = err.Error()
		return result
	}

	return payload.toResult(model.ProductSourceWikipedia)
}

// catalogPayload is the model response shape shared by the sitemap and
// encyclopedia tiers. Entries arrive as strings or objects; the model types
// normalize both.
type catalogPayload struct {
	Products     []model.ProductCatalogEntry `json:"products"`
	Services     []model.ProductCatalogEntry `json:"services"`
	SubBrands    []model.ProductCatalogEntry `json:"sub_brands"`
	Discontinued []model.ProductCatalogEntry `json:"discontinued"`
}

func (p catalogPayload) toResult(source string) *model.ExtractionResult {
	result := model.EmptyExtractionResult(source)
	result.Products = dedupeEntries(p.Products)
	result.Services = dedupeEntries(p.Services)
	result.Discontinued = dedupeEntries(p.Discontinued)
	for i := range result.Discontinued {
		result.Discontinued[i].Status = model.ProductStatusDiscontinued
	}
	for _, sb := range dedupeEntries(p.SubBrands) {
		result.SubBrands = append(result.SubBrands, sb.Name)
	}
	result.CountEntries()
	return result
}

func graphContributed(r *model.ExtractionResult) bool {
	return len(r.Products) > 0 || len(r.Discontinued) > 0
}

func wikiContributed(r *model.ExtractionResult) bool {
	return len(r.Products) > 0 || len(r.Services) > 0 ||
		len(r.SubBrands) > 0 || len(r.Discontinued) > 0
}

// entityIDFromURI strips the entity URI prefix: ".../entity/Q42" → "Q42".
func entityIDFromURI(uri string) string {
	if idx := strings.LastIndex(uri, "/"); idx >= 0 {
		return uri[idx+1:]
	}
	return uri
}
