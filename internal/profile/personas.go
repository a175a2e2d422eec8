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

// maxRenderedPersonas caps persona lists in outbound prompts.
const maxRenderedPersonas = 5

// noPersonasSentinel is rendered for empty persona lists.
const noPersonasSentinel = "General consumers researching options"

// PersonaInput carries the seeds for persona inference.
type PersonaInput struct {
	BrandName      string
	Industry       string
	TargetAudience string
	Competitors    []model.Competitor
	CountryCode    string
}

// PersonaResult is the persona stage output.
type PersonaResult struct {
	Personas []model.Persona
	Source   string
}

type personaPayload struct {
	Personas []model.Persona `json:"personas"`
}

// InferPersonas infers customer personas. Single attempt, no retry: any
// failure returns exactly one generic fallback persona. Total over its
// input domain.
func (p *Pipeline) InferPersonas(ctx context.Context, in PersonaInput) PersonaResult {
	countryLine := ""
	if in.CountryCode != "" {
		countryLine = "Market: " + in.CountryCode
	}

	req := llm.CompletionRequest{
		Prompt: prompt.Build("personas", map[string]any{
			"brand_name":       in.BrandName,
			"industry":         in.Industry,
			"target_audience":  in.TargetAudience,
			"country_line":     countryLine,
			"competitor_lines": RenderCompetitors(in.Competitors),
		}),
		Temperature:    llm.Temp(0.6),
		ResponseFormat: llm.FormatJSON,
	}

	resp, err := p.llm.Complete(ctx, req)
	if err != nil {
		zap.L().Warn("personas: inference call failed", zap.String("brand", in.BrandName), zap.Error(err))
		return personaFallback()
	}

	var payload personaPayload
	if err := llmjson.Unmarshal(resp.Content(), &payload); err != nil {
		zap.L().Warn("personas: unparseable inference output", zap.String("brand", in.BrandName), zap.Error(err))
		return personaFallback()
	}

	personas := make([]model.Persona, 0, len(payload.Personas))
	for _, persona := range payload.Personas {
		if strings.TrimSpace(persona.Name) == "" {
			continue
		}
		persona.Source = model.PersonaSourceInferred
		personas = append(personas, persona)
	}
	if len(personas) == 0 {
		return personaFallback()
	}

	return PersonaResult{Personas: personas, Source: model.PersonaSourceInferred}
}

// personaFallback is the deterministic single-persona result for failed
// inference.
func personaFallback() PersonaResult {
	return PersonaResult{
		Personas: []model.Persona{{
			Name:           "General Consumer",
			Role:           "Prospective customer evaluating options",
			Needs:          "Clear information on offerings, pricing, and trustworthiness",
			UnbrandedAngle: "Searches by product category and problem, not by brand name",
			Source:         model.PersonaSourceFallback,
		}},
		Source: model.PersonaSourceFallback,
	}
}

// RenderPersonas formats up to five personas as bulleted lines for an
// outbound prompt. Pure.
func RenderPersonas(personas []model.Persona) string {
	if len(personas) == 0 {
		return noPersonasSentinel
	}

	var b strings.Builder
	for i, persona := range personas {
		if i >= maxRenderedPersonas {
			break
		}
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- " + persona.Name)
		if persona.Role != "" {
			b.WriteString(" (" + persona.Role + ")")
		}
		if persona.Needs != "" {
			b.WriteString(": " + persona.Needs)
		}
	}
	return b.String()
}
