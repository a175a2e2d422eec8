package profile

import (
	"net/url"
	"strings"
)

// Seed value fallbacks used when the base profile omits a field.
const (
	fallbackBrandName = "Unknown Brand"
	fallbackIndustry  = "General business"
)

// genericLabels are domain labels that never carry a brand name.
var genericLabels = map[string]bool{
	"www":   true,
	"m":     true,
	"en":    true,
	"shop":  true,
	"store": true,
}

// deriveBrandName resolves the brand name from the base profile with the
// chain: main.brand_name → competitive.brand_name → domain label →
// "Unknown Brand".
func deriveBrandName(base map[string]any, baseURL string) string {
	if v := lookupString(base, "main", "brand_name"); v != "" {
		return v
	}
	if v := lookupString(base, "competitive", "brand_name"); v != "" {
		return v
	}
	if v := brandNameFromDomain(baseURL); v != "" {
		return v
	}
	return fallbackBrandName
}

// deriveIndustry resolves the industry with the chain:
// competitive.industry → main.industry → "General business".
func deriveIndustry(base map[string]any) string {
	if v := lookupString(base, "competitive", "industry"); v != "" {
		return v
	}
	if v := lookupString(base, "main", "industry"); v != "" {
		return v
	}
	return fallbackIndustry
}

// deriveTargetAudience resolves the target audience, defaulting to "".
func deriveTargetAudience(base map[string]any) string {
	return lookupString(base, "main", "target_audience")
}

// lookupString walks nested maps along path and returns the trimmed string
// value at the leaf, or "" when any step is missing or the wrong type.
func lookupString(base map[string]any, path ...string) string {
	cur := base
	for i, key := range path {
		if cur == nil {
			return ""
		}
		if i == len(path)-1 {
			s, _ := cur[key].(string)
			return strings.TrimSpace(s)
		}
		next, ok := cur[key].(map[string]any)
		if !ok {
			return ""
		}
		cur = next
	}
	return ""
}

// brandNameFromDomain turns the first non-generic domain label into a
// human-readable name: "acme-tools.co.uk" → "Acme Tools".
func brandNameFromDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	host := u.Host
	if idx := strings.Index(host, ":"); idx > 0 {
		host = host[:idx]
	}

	for _, label := range strings.Split(host, ".") {
		if label == "" || genericLabels[strings.ToLower(label)] {
			continue
		}
		return titleCaseLabel(label)
	}
	return ""
}

// titleCaseLabel converts "acme-tools" to "Acme Tools".
func titleCaseLabel(label string) string {
	words := strings.FieldsFunc(label, func(r rune) bool {
		return r == '-' || r == '_'
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
