package products

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/brand-profiler/internal/model"
)

func TestDedupeEntries(t *testing.T) {
	t.Parallel()

	t.Run("case-insensitive, first casing wins", func(t *testing.T) {
		t.Parallel()
		out := dedupeEntries([]model.ProductCatalogEntry{
			{Name: "Widget", Category: "Tools"},
			{Name: "widget"},
			{Name: "WIDGET"},
			{Name: "Gadget"},
		})

		require.Len(t, out, 2)
		assert.Equal(t, "Widget", out[0].Name)
		assert.Equal(t, "Tools", out[0].Category)
		assert.Equal(t, "Gadget", out[1].Name)
	})

	t.Run("discards empty names", func(t *testing.T) {
		t.Parallel()
		out := dedupeEntries([]model.ProductCatalogEntry{
			{Name: ""},
			{Name: "   "},
			{Name: " Widget "},
		})

		require.Len(t, out, 1)
		assert.Equal(t, "Widget", out[0].Name)
	})
}

func TestMerge(t *testing.T) {
	t.Parallel()

	graph := model.EmptyExtractionResult(model.ProductSourceWikidata)
	graph.Products = []model.ProductCatalogEntry{
		{Name: "ThinkPad", Category: "laptop", WikidataID: "Q433224"},
	}
	graph.SubBrands = []string{"Motorola"}

	wiki := model.EmptyExtractionResult(model.ProductSourceWikipedia)
	wiki.Products = []model.ProductCatalogEntry{
		{Name: "thinkpad", Category: "laptop computer"}, // duplicate, different casing
		{Name: "Yoga", Category: "laptop"},
	}
	wiki.Services = []model.ProductCatalogEntry{{Name: "TruScale"}}
	wiki.SubBrands = []string{"motorola", "Legion"}

	merged := Merge(graph, wiki)

	// Graph entries are authoritative: the wiki duplicate never overrides.
	require.Len(t, merged.Products, 2)
	assert.Equal(t, "ThinkPad", merged.Products[0].Name)
	assert.Equal(t, "Q433224", merged.Products[0].WikidataID)
	assert.Equal(t, "Yoga", merged.Products[1].Name)

	require.Len(t, merged.Services, 1)
	assert.Equal(t, []string{"Motorola", "Legion"}, merged.SubBrands)
	assert.Equal(t, 2, merged.Metadata.Counts["products"])

	// Inputs survive untouched.
	assert.Len(t, graph.Products, 1)
	assert.Len(t, wiki.Products, 2)
	assert.Equal(t, []string{"Motorola"}, graph.SubBrands)
}

func TestMergeEntryLists_EmptyAdditionsKeepBase(t *testing.T) {
	t.Parallel()
	base := []model.ProductCatalogEntry{{Name: "Widget"}}

	out := mergeEntryLists(base, nil)

	require.Len(t, out, 1)
	assert.Equal(t, "Widget", out[0].Name)
}
