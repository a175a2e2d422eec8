package products

import (
	"strings"

	"github.com/sells-group/brand-profiler/internal/model"
)

// dedupeEntries removes case-insensitive duplicate names, preserving the
// first-seen entry (and its original casing), and discards entries with
// empty names.
func dedupeEntries(entries []model.ProductCatalogEntry) []model.ProductCatalogEntry {
	out := make([]model.ProductCatalogEntry, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		entry.Name = name
		out = append(out, entry)
	}
	return out
}

// Merge fuses an encyclopedia-tier result into a graph-tier result. Graph
// entries are authoritative and never removed; an encyclopedia entry is
// added to products/services/discontinued only when its lower-cased name is
// absent from the corresponding graph list. Sub-brands merge by set
// membership. Pure: neither input is mutated.
func Merge(graph, wiki *model.ExtractionResult) *model.ExtractionResult {
	merged := model.EmptyExtractionResult(graph.Metadata.Source)
	merged.Metadata.Notes = graph.Metadata.Notes

	merged.Products = mergeEntryLists(graph.Products, wiki.Products)
	merged.Services = mergeEntryLists(graph.Services, wiki.Services)
	merged.Discontinued = mergeEntryLists(graph.Discontinued, wiki.Discontinued)

	seen := make(map[string]bool, len(graph.SubBrands))
	for _, sb := range graph.SubBrands {
		key := strings.ToLower(strings.TrimSpace(sb))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		merged.SubBrands = append(merged.SubBrands, sb)
	}
	for _, sb := range wiki.SubBrands {
		key := strings.ToLower(strings.TrimSpace(sb))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		merged.SubBrands = append(merged.SubBrands, sb)
	}

	merged.CountEntries()
	return merged
}

// mergeEntryLists appends additions whose lower-cased names are not already
// present in base. Base entries always survive.
func mergeEntryLists(base, additions []model.ProductCatalogEntry) []model.ProductCatalogEntry {
	out := make([]model.ProductCatalogEntry, 0, len(base)+len(additions))
	index := make(map[string]bool, len(base))

	for _, entry := range base {
		out = append(out, entry)
		index[strings.ToLower(entry.Name)] = true
	}
	for _, entry := range additions {
		key := strings.ToLower(strings.TrimSpace(entry.Name))
		if key == "" || index[key] {
			continue
		}
		index[key] = true
		out = append(out, entry)
	}
	return out
}
