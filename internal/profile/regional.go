package profile

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"

	"github.com/sells-group/brand-profiler/internal/llmjson"
	"github.com/sells-group/brand-profiler/internal/model"
	"github.com/sells-group/brand-profiler/internal/prompt"
	"github.com/sells-group/brand-profiler/pkg/llm"
)

// inferenceAttempts bounds the retry loops on downstream stages: one initial
// attempt plus two retries, no delay. The failures being retried are
// parse/formatting failures, not rate-limit backpressure.
const inferenceAttempts = 3

// Fallback defaults for markets absent from the static tables.
var (
	defaultLanguages = []string{"en-US"}
)

const defaultCurrency = "EUR"

// countryLanguages maps a market code to its customary language tags.
// Read-only; never mutated at runtime.
var countryLanguages = map[string][]string{
	"US": {"en-US"},
	"GB": {"en-GB"},
	"IE": {"en-IE"},
	"CA": {"en-CA", "fr-CA"},
	"AU": {"en-AU"},
	"NZ": {"en-NZ"},
	"DE": {"de-DE"},
	"AT": {"de-AT"},
	"CH": {"de-CH", "fr-CH", "it-CH"},
	"FR": {"fr-FR"},
	"BE": {"nl-BE", "fr-BE"},
	"NL": {"nl-NL"},
	"IT": {"it-IT"},
	"ES": {"es-ES"},
	"PT": {"pt-PT"},
	"BR": {"pt-BR"},
	"MX": {"es-MX"},
	"AR": {"es-AR"},
	"SE": {"sv-SE"},
	"NO": {"nb-NO"},
	"DK": {"da-DK"},
	"FI": {"fi-FI"},
	"PL": {"pl-PL"},
	"CZ": {"cs-CZ"},
	"JP": {"ja-JP"},
	"KR": {"ko-KR"},
	"CN": {"zh-CN"},
	"TW": {"zh-TW"},
	"IN": {"en-IN", "hi-IN"},
	"SG": {"en-SG"},
	"ZA": {"en-ZA"},
}

// countryCurrencies maps a market code to its ISO 4217 currency.
// Read-only; never mutated at runtime.
var countryCurrencies = map[string]string{
	"US": "USD",
	"GB": "GBP",
	"IE": "EUR",
	"CA": "CAD",
	"AU": "AUD",
	"NZ": "NZD",
	"DE": "EUR",
	"AT": "EUR",
	"CH": "CHF",
	"FR": "EUR",
	"BE": "EUR",
	"NL": "EUR",
	"IT": "EUR",
	"ES": "EUR",
	"PT": "EUR",
	"BR": "BRL",
	"MX": "MXN",
	"AR": "ARS",
	"SE": "SEK",
	"NO": "NOK",
	"DK": "DKK",
	"FI": "EUR",
	"PL": "PLN",
	"CZ": "CZK",
	"JP": "JPY",
	"KR": "KRW",
	"CN": "CNY",
	"TW": "TWD",
	"IN": "INR",
	"SG": "SGD",
	"ZA": "ZAR",
}

// languagesForCountry returns the table languages for a market, or the
// en-US default for unmapped markets.
func languagesForCountry(countryCode string) []string {
	if langs, ok := countryLanguages[countryCode]; ok {
		out := make([]string, len(langs))
		copy(out, langs)
		return out
	}
	out := make([]string, len(defaultLanguages))
	copy(out, defaultLanguages)
	return out
}

// currencyForCountry returns the table currency for a market, or EUR for
// unmapped markets.
func currencyForCountry(countryCode string) string {
	if cur, ok := countryCurrencies[countryCode]; ok {
		return cur
	}
	return defaultCurrency
}

// CanonicalBusinessModel maps any business-model string onto one of the
// three canonical labels. Case-insensitive token match: both "b2b" and
// "b2c" → "B2B & B2C"; "b2b" alone → "B2B"; anything else, including
// empty input, → "B2C".
func CanonicalBusinessModel(raw string) string {
	lower := strings.ToLower(raw)
	hasB2B := strings.Contains(lower, "b2b")
	hasB2C := strings.Contains(lower, "b2c")
	switch {
	case hasB2B && hasB2C:
		return model.BusinessModelBoth
	case hasB2B:
		return model.BusinessModelB2B
	default:
		return model.BusinessModelB2C
	}
}

// RegionalContextInput carries the seeds for regional context inference.
type RegionalContextInput struct {
	CountryCode    string
	Industry       string
	BrandName      string
	TargetAudience string
}

// InferRegionalContext infers languages, currency, regulatory notes,
// terminology, and business model for a market. Up to three attempts on
// parse failure; exhaustion returns the static-table fallback. Total over
// its input domain.
func (p *Pipeline) InferRegionalContext(ctx context.Context, in RegionalContextInput) model.RegionalContext {
	countryCode := strings.ToUpper(strings.TrimSpace(in.CountryCode))
	if countryCode == "" {
		countryCode = fallbackCountryCode
	}

	req := llm.CompletionRequest{
		Prompt: prompt.Build("regional_context", map[string]any{
			"country_code":    countryCode,
			"brand_name":      in.BrandName,
			"industry":        in.Industry,
			"target_audience": in.TargetAudience,
		}),
		Temperature:    llm.Temp(0.4),
		ResponseFormat: llm.FormatJSON,
	}

	for attempt := 1; attempt <= inferenceAttempts; attempt++ {
		resp, err := p.llm.Complete(ctx, req)
		if err != nil {
			zap.L().Warn("regional: inference call failed",
				zap.String("country", countryCode),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			continue
		}

		var rc model.RegionalContext
		if err := llmjson.Unmarshal(resp.Content(), &rc); err != nil {
			zap.L().Warn("regional: unparseable inference output",
				zap.String("country", countryCode),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			continue
		}

		return sanitizeRegionalContext(rc, countryCode)
	}

	zap.L().Info("regional: falling back to static tables", zap.String("country", countryCode))
	return regionalContextFallback(countryCode)
}

// sanitizeRegionalContext defaults each field the model omitted or
// malformed, using the same static tables as the full fallback.
func sanitizeRegionalContext(rc model.RegionalContext, countryCode string) model.RegionalContext {
	rc.Languages = validLanguageTags(rc.Languages)
	if len(rc.Languages) == 0 {
		rc.Languages = languagesForCountry(countryCode)
	}
	if rc.PrimaryLanguage == "" || !validLanguageTag(rc.PrimaryLanguage) {
		rc.PrimaryLanguage = rc.Languages[0]
	}
	if !validCurrencyCode(rc.Currency) {
		rc.Currency = currencyForCountry(countryCode)
	}
	if rc.KeyTerminology == nil {
		rc.KeyTerminology = map[string][]string{}
	}
	rc.BusinessModel = CanonicalBusinessModel(rc.BusinessModel)
	return rc
}

// regionalContextFallback is the deterministic static-table result.
func regionalContextFallback(countryCode string) model.RegionalContext {
	langs := languagesForCountry(countryCode)
	return model.RegionalContext{
		Languages:       langs,
		PrimaryLanguage: langs[0],
		KeyTerminology:  map[string][]string{},
		Currency:        currencyForCountry(countryCode),
		BusinessModel:   model.BusinessModelB2C,
	}
}

// validLanguageTags drops tags that do not parse as BCP 47.
func validLanguageTags(tags []string) []string {
	var out []string
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if validLanguageTag(t) {
			out = append(out, t)
		}
	}
	return out
}

func validLanguageTag(tag string) bool {
	if tag == "" {
		return false
	}
	_, err := language.Parse(tag)
	return err == nil
}

// validCurrencyCode reports whether code is a well-formed ISO 4217 unit.
func validCurrencyCode(code string) bool {
	if len(code) != 3 {
		return false
	}
	_, err := currency.ParseISO(code)
	return err == nil
}
