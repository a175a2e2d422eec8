// Package profile implements the brand enrichment pipeline: base profile,
// region and regional-context inference, competitor and persona inference,
// and product extraction, assembled into one BrandProfile per run.
package profile

import (
	"context"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/brand-profiler/internal/llmjson"
	"github.com/sells-group/brand-profiler/internal/model"
	"github.com/sells-group/brand-profiler/internal/products"
	"github.com/sells-group/brand-profiler/internal/prompt"
	"github.com/sells-group/brand-profiler/pkg/llm"
	"github.com/sells-group/brand-profiler/pkg/wikipedia"
)

// Pipeline orchestrates the enrichment stages for a single brand.
type Pipeline struct {
	llm       llm.Client
	wiki      wikipedia.Client
	extractor products.Extractor
}

// New creates a Pipeline with all dependencies.
func New(llmClient llm.Client, wikiClient wikipedia.Client, extractor products.Extractor) *Pipeline {
	return &Pipeline{
		llm:       llmClient,
		wiki:      wikiClient,
		extractor: extractor,
	}
}

// Request describes one enrichment run.
type Request struct {
	// BaseURL is the brand's web address. Required.
	BaseURL string
	// Enhance enables the enrichment stages; false returns the base
	// profile unchanged.
	Enhance bool
	// Competitors, when non-empty, replaces competitor inference with the
	// caller-supplied list (tagged source "llmo").
	Competitors []string
	// SitemapURL, when set, selects the sitemap product-extraction tier.
	SitemapURL string
	// TargetAudience overrides the audience derived from the base profile.
	TargetAudience string
}

// Run executes the full enrichment pipeline. The only fatal conditions are
// an invalid BaseURL and an unparseable base profile; every downstream stage
// recovers into a deterministic fallback, so a valid request always yields a
// complete profile.
func (p *Pipeline) Run(ctx context.Context, req Request) (*model.BrandProfile, error) {
	if err := validateBaseURL(req.BaseURL); err != nil {
		return nil, err
	}

	log := zap.L().With(
		zap.String("run_id", uuid.NewString()),
		zap.String("url", req.BaseURL),
	)
	log.Info("pipeline: starting enrichment")

	base, err := p.fetchBaseProfile(ctx, req.BaseURL)
	if err != nil {
		return nil, err
	}

	result := &model.BrandProfile{Base: base}
	if !req.Enhance {
		log.Info("pipeline: enhancement disabled, returning base profile")
		return result, nil
	}

	brandName := deriveBrandName(base, req.BaseURL)
	industry := deriveIndustry(base)
	targetAudience := req.TargetAudience
	if targetAudience == "" {
		targetAudience = deriveTargetAudience(base)
	}
	log = log.With(zap.String("brand", brandName), zap.String("industry", industry))

	// Region inference and the encyclopedia summary are independent of each
	// other; everything downstream consumes one or both.
	var region model.RegionInference
	var summary *wikipedia.Summary

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		region = p.InferRegion(gCtx, req.BaseURL)
		return nil
	})
	g.Go(func() error {
		summary = p.wiki.FetchSummary(gCtx, brandName)
		return nil
	})
	_ = g.Wait()

	log.Info("pipeline: region inferred",
		zap.String("country", region.CountryCode),
		zap.String("confidence", region.Confidence),
	)
	result.Region = &region

	regional := p.InferRegionalContext(ctx, RegionalContextInput{
		CountryCode:    region.CountryCode,
		Industry:       industry,
		BrandName:      brandName,
		TargetAudience: targetAudience,
	})
	result.RegionalContext = &regional

	summaryText := ""
	if summary != nil {
		summaryText = summary.Summary
	}

	if len(req.Competitors) > 0 {
		result.Competitors = suppliedCompetitors(req.Competitors)
		result.CompetitorsSource = model.CompetitorSourceLLMO
		log.Info("pipeline: using caller-supplied competitors", zap.Int("count", len(result.Competitors)))
	} else {
		cr := p.InferCompetitors(ctx, CompetitorInput{
			BrandName:        brandName,
			Industry:         industry,
			WikipediaSummary: summaryText,
			CountryCode:      region.CountryCode,
		})
		result.Competitors = cr.Competitors
		result.CompetitorsSource = cr.Source
		result.MarketContext = cr.MarketContext
		log.Info("pipeline: competitors inferred",
			zap.Int("count", len(cr.Competitors)),
			zap.String("source", cr.Source),
		)
	}

	pr := p.InferPersonas(ctx, PersonaInput{
		BrandName:      brandName,
		Industry:       industry,
		TargetAudience: targetAudience,
		Competitors:    result.Competitors,
		CountryCode:    region.CountryCode,
	})
	result.Personas = pr.Personas
	result.PersonasSource = pr.Source
	log.Info("pipeline: personas inferred",
		zap.Int("count", len(pr.Personas)),
		zap.String("source", pr.Source),
	)

	if req.SitemapURL != "" {
		result.Products = p.extractor.ExtractFromSitemap(ctx, req.SitemapURL, brandName)
	} else {
		result.Products = p.extractor.Extract(ctx, brandName, summaryText)
	}
	log.Info("pipeline: enrichment complete",
		zap.String("products_source", result.Products.Metadata.Source),
		zap.Int("products", len(result.Products.Products)),
	)

	return result, nil
}

// fetchBaseProfile issues the one fatal model call of the pipeline.
func (p *Pipeline) fetchBaseProfile(ctx context.Context, baseURL string) (map[string]any, error) {
	resp, err := p.llm.Complete(ctx, llm.CompletionRequest{
		Prompt:         prompt.Build("base_profile", map[string]any{"url": baseURL}),
		SystemPrompt:   prompt.Read("base_profile_system"),
		Temperature:    llm.Temp(0.7),
		ResponseFormat: llm.FormatJSON,
	})
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: base profile call")
	}

	var base map[string]any
	if err := llmjson.Unmarshal(resp.Content(), &base); err != nil {
		return nil, eris.Wrap(ErrBadModelOutput, err.Error())
	}
	return base, nil
}

// suppliedCompetitors normalizes caller-supplied competitor names into
// canonical records tagged "llmo".
func suppliedCompetitors(names []string) []model.Competitor {
	out := make([]model.Competitor, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		out = append(out, model.Competitor{
			Name:    name,
			Aliases: []string{},
			URLs:    []string{},
			Source:  model.CompetitorSourceLLMO,
		})
	}
	return out
}

// validateBaseURL rejects missing or malformed site addresses.
func validateBaseURL(rawURL string) error {
	if strings.TrimSpace(rawURL) == "" {
		return eris.Wrap(ErrInvalidInput, "missing site address")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return eris.Wrap(ErrInvalidInput, "unparseable site address: "+rawURL)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return eris.Wrap(ErrInvalidInput, "site address must be an absolute http(s) URL: "+rawURL)
	}
	return nil
}
