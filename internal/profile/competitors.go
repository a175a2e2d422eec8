package profile

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/brand-profiler/internal/llmjson"
	"github.com/sells-group/brand-profiler/internal/model"
	"github.com/sells-group/brand-profiler/internal/prompt"
	"github.com/sells-group/brand-profiler/pkg/llm"
)

// maxRenderedCompetitors caps competitor bullet lists in outbound prompts.
const maxRenderedCompetitors = 8

// noCompetitorsSentinel is rendered for empty competitor lists.
const noCompetitorsSentinel = "No competitors identified"

// CompetitorInput carries the seeds for competitor inference.
type CompetitorInput struct {
	BrandName        string
	Industry         string
	WikipediaSummary string
	CountryCode      string
}

// CompetitorResult is the competitor stage output.
type CompetitorResult struct {
	Competitors   []model.Competitor
	MarketContext string
	Source        string
}

// competitorPayload is the raw model response shape.
type competitorPayload struct {
	Competitors   []model.Competitor `json:"competitors"`
	MarketContext string             `json:"market_context"`
}

// InferCompetitors infers a competitor list. Up to three attempts; on
// exhaustion returns an empty list tagged fallback_empty with an explanatory
// market context. Total over its input domain.
func (p *Pipeline) InferCompetitors(ctx context.Context, in CompetitorInput) CompetitorResult {
	countryLine := ""
	if in.CountryCode != "" {
		countryLine = "Market: " + in.CountryCode
	}

	req := llm.CompletionRequest{
		Prompt: prompt.Build("competitors", map[string]any{
			"brand_name":   in.BrandName,
			"industry":     in.Industry,
			"country_line": countryLine,
			"background":   in.WikipediaSummary,
		}),
		Temperature:    llm.Temp(0.5),
		ResponseFormat: llm.FormatJSON,
	}

	for attempt := 1; attempt <= inferenceAttempts; attempt++ {
		resp, err := p.llm.Complete(ctx, req)
		if err != nil {
			zap.L().Warn("competitors: inference call failed",
				zap.String("brand", in.BrandName),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			continue
		}

		var payload competitorPayload
		if err := llmjson.Unmarshal(resp.Content(), &payload); err != nil {
			zap.L().Warn("competitors: unparseable inference output",
				zap.String("brand", in.BrandName),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			continue
		}

		return CompetitorResult{
			Competitors:   normalizeCompetitors(payload.Competitors, model.CompetitorSourceInferred),
			MarketContext: payload.MarketContext,
			Source:        model.CompetitorSourceInferred,
		}
	}

	return CompetitorResult{
		Competitors:   []model.Competitor{},
		MarketContext: "Competitor inference unavailable for " + in.BrandName + "; no competitors identified.",
		Source:        model.CompetitorSourceFallback,
	}
}

// normalizeCompetitors discards empty names, fills nil slices, and stamps
// every entry with the given provenance tag.
func normalizeCompetitors(raw []model.Competitor, source string) []model.Competitor {
	out := make([]model.Competitor, 0, len(raw))
	for _, c := range raw {
		if strings.TrimSpace(c.Name) == "" {
			continue
		}
		if c.Aliases == nil {
			c.Aliases = []string{}
		}
		if c.URLs == nil {
			c.URLs = []string{}
		}
		c.Source = source
		out = append(out, c)
	}
	return out
}

// RenderCompetitors formats up to eight competitors as bulleted lines for an
// outbound prompt. Pure.
func RenderCompetitors(competitors []model.Competitor) string {
	if len(competitors) == 0 {
		return noCompetitorsSentinel
	}

	var b strings.Builder
	for i, c := range competitors {
		if i >= maxRenderedCompetitors {
			break
		}
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- " + c.Name)
		if c.WhyCompetitor != "" {
			b.WriteString(": " + c.WhyCompetitor)
		}
	}
	return b.String()
}
