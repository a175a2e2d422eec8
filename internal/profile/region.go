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

// fallbackCountryCode is the market assumed when region inference fails or
// returns a malformed code.
const fallbackCountryCode = "US"

// regionTemperature keeps region detection close to deterministic.
const regionTemperature = 0.2

// InferRegion infers the primary market country from a URL. One model call;
// any call or parse failure yields the deterministic US fallback. Total over
// its input domain.
func (p *Pipeline) InferRegion(ctx context.Context, rawURL string) model.RegionInference {
	req := llm.CompletionRequest{
		Prompt:         prompt.Build("region_inference", map[string]any{"url": rawURL}),
		Temperature:    llm.Temp(regionTemperature),
		ResponseFormat: llm.FormatJSON,
	}

	resp, err := p.llm.Complete(ctx, req)
	if err != nil {
		zap.L().Warn("region: inference call failed", zap.String("url", rawURL), zap.Error(err))
		return regionFallback("model call failed: " + err.Error())
	}

	var inferred model.RegionInference
	if err := llmjson.Unmarshal(resp.Content(), &inferred); err != nil {
		zap.L().Warn("region: unparseable inference output", zap.String("url", rawURL), zap.Error(err))
		return regionFallback("unparseable model output: " + err.Error())
	}

	inferred.CountryCode = strings.ToUpper(strings.TrimSpace(inferred.CountryCode))
	if len(inferred.CountryCode) != 2 {
		inferred.CountryCode = fallbackCountryCode
	}
	if inferred.Confidence == "" {
		inferred.Confidence = model.ConfidenceMedium
	}
	if inferred.DetectionMethod == "" {
		inferred.DetectionMethod = "unknown"
	}

	return inferred
}

// regionFallback is the deterministic result for failed region inference.
func regionFallback(reason string) model.RegionInference {
	return model.RegionInference{
		CountryCode:     fallbackCountryCode,
		Confidence:      model.ConfidenceLow,
		DetectionMethod: "fallback",
		Reasoning:       reason,
	}
}
