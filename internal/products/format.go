package products

import (
	"sort"
	"strings"

	"github.com/sells-group/brand-profiler/internal/model"
)

const (
	// noCatalogSentinel is rendered when the extraction found nothing.
	noCatalogSentinel = "No product catalogue available."

	maxNamesPerCategory  = 5
	maxRenderedServices  = 10
	maxRenderedSubBrands = 10
)

// FormatProductsForPrompt renders an extraction result as a compact text
// block for outbound prompts: products grouped by category (default
// "Other"), capped names per category, then services and sub-brands. Pure.
func FormatProductsForPrompt(extraction *model.ExtractionResult) string {
	if extraction == nil ||
		(len(extraction.Products) == 0 && len(extraction.Services) == 0 && len(extraction.SubBrands) == 0) {
		return noCatalogSentinel
	}

	var b strings.Builder

	byCategory := make(map[string][]string)
	var order []string
	for _, p := range extraction.Products {
		cat := p.Category
		if cat == "" {
			cat = "Other"
		}
		if _, ok := byCategory[cat]; !ok {
			order = append(order, cat)
		}
		byCategory[cat] = append(byCategory[cat], p.Name)
	}
	sort.Strings(order)

	for _, cat := range order {
		names := byCategory[cat]
		b.WriteString(cat + ": ")
		if len(names) > maxNamesPerCategory {
			b.WriteString(strings.Join(names[:maxNamesPerCategory], ", "))
			b.WriteString(", ...")
		} else {
			b.WriteString(strings.Join(names, ", "))
		}
		b.WriteString("\n")
	}

	if len(extraction.Services) > 0 {
		names := entryNames(extraction.Services, maxRenderedServices)
		b.WriteString("Services: " + strings.Join(names, ", ") + "\n")
	}

	if len(extraction.SubBrands) > 0 {
		subBrands := extraction.SubBrands
		if len(subBrands) > maxRenderedSubBrands {
			subBrands = subBrands[:maxRenderedSubBrands]
		}
		b.WriteString("Sub-brands: " + strings.Join(subBrands, ", ") + "\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func entryNames(entries []model.ProductCatalogEntry, limit int) []string {
	names := make([]string, 0, limit)
	for _, e := range entries {
		if len(names) >= limit {
			break
		}
		names = append(names, e.Name)
	}
	return names
}
