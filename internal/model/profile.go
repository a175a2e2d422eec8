// Package model defines the brand profile data model shared across the
// enrichment pipeline.
package model

import (
	"encoding/json"
	"strings"
)

// Confidence is a coarse self-reported certainty level, not a probability.
type Confidence = string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Canonical business model labels. Every RegionalContext carries exactly one.
const (
	BusinessModelB2B  = "B2B"
	BusinessModelB2C  = "B2C"
	BusinessModelBoth = "B2B & B2C"
)

// Provenance tags for competitor lists.
const (
	CompetitorSourceLLMO     = "llmo"     // supplied by the caller
	CompetitorSourceInferred = "llm_inferred"
	CompetitorSourceFallback = "fallback_empty"
)

// Provenance tags for persona lists.
const (
	PersonaSourceInferred = "llm_inferred"
	PersonaSourceFallback = "fallback"
)

// Provenance tags for product extraction results.
const (
	ProductSourceWikidata        = "wikidata"
	ProductSourceWikipedia       = "wikipedia_llm"
	ProductSourceHybrid          = "hybrid"
	ProductSourceNone            = "none"
	ProductSourceSitemap         = "sitemap"
	ProductSourceSitemapFailed   = "sitemap_failed"
	ProductSourceSitemapEmpty    = "sitemap_empty"
	ProductSourceSitemapNoMatch  = "sitemap_no_products"
	ProductSourceSitemapLLMError = "sitemap_llm_failed"
)

// BrandProfile is the aggregate output of one enrichment run. It is
// constructed fresh per run and never mutated after assembly; persistence is
// the caller's concern.
type BrandProfile struct {
	// Base is the opaque base profile produced by the first model call
	// (voice, tone, positioning). The pipeline reads a handful of seed
	// fields out of it but never reshapes it.
	Base map[string]any `json:"base_profile"`

	RegionalContext   *RegionalContext  `json:"regional_context,omitempty"`
	Region            *RegionInference  `json:"region,omitempty"`
	Competitors       []Competitor      `json:"competitors,omitempty"`
	CompetitorsSource string            `json:"competitors_source,omitempty"`
	MarketContext     string            `json:"market_context,omitempty"`
	Personas          []Persona         `json:"personas,omitempty"`
	PersonasSource    string            `json:"personas_source,omitempty"`
	Products          *ExtractionResult `json:"products,omitempty"`
}

// RegionInference is the result of inferring a market from a URL.
type RegionInference struct {
	CountryCode     string     `json:"country_code"`
	Confidence      Confidence `json:"confidence"`
	DetectionMethod string     `json:"detection_method"`
	Reasoning       string     `json:"reasoning"`
}

// RegionalContext describes market-specific context for a brand.
type RegionalContext struct {
	Languages         []string            `json:"languages"`
	PrimaryLanguage   string              `json:"primary_language"`
	RegulatoryContext string              `json:"regulatory_context"`
	KeyTerminology    map[string][]string `json:"key_terminology"`
	MarketSpecifics   string              `json:"market_specifics"`
	Currency          string              `json:"currency"`
	BusinessModel     string              `json:"business_model"`
}

// Competitor is a single competitor record.
type Competitor struct {
	Name          string   `json:"name"`
	Aliases       []string `json:"aliases"`
	URLs          []string `json:"urls"`
	WhyCompetitor string   `json:"why_competitor"`
	Source        string   `json:"source"`
}

// UnmarshalJSON accepts either a bare string ("Acme") or a full object.
// Model output mixes both shapes; normalizing here keeps downstream code on
// one canonical record.
func (c *Competitor) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*c = Competitor{Name: strings.TrimSpace(name)}
		return nil
	}

	type alias Competitor
	var obj alias
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	obj.Name = strings.TrimSpace(obj.Name)
	*c = Competitor(obj)
	return nil
}

// Persona is a customer persona record.
type Persona struct {
	Name           string `json:"name"`
	Role           string `json:"role"`
	Needs          string `json:"needs"`
	UnbrandedAngle string `json:"unbranded_angle"`
	Source         string `json:"source"`
}

// Product catalogue entry statuses.
const (
	ProductStatusCurrent      = "current"
	ProductStatusDiscontinued = "discontinued"
)

// ProductCatalogEntry is a single product or service in the catalogue.
type ProductCatalogEntry struct {
	Name          string   `json:"name"`
	Category      string   `json:"category,omitempty"`
	Variants      []string `json:"variants,omitempty"`
	Status        string   `json:"status,omitempty"`
	WikidataID    string   `json:"wikidata_id,omitempty"`
	InceptionYear *int     `json:"inception_year,omitempty"`
}

// UnmarshalJSON accepts either a bare string or a full object, mirroring
// Competitor.
func (p *ProductCatalogEntry) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*p = ProductCatalogEntry{Name: strings.TrimSpace(name)}
		return nil
	}

	type alias ProductCatalogEntry
	var obj alias
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	obj.Name = strings.TrimSpace(obj.Name)
	*p = ProductCatalogEntry(obj)
	return nil
}

// ExtractionMetadata records which strategy produced an extraction result.
type ExtractionMetadata struct {
	Source     string         `json:"source"`
	Counts     map[string]int `json:"counts"`
	Confidence Confidence     `json:"confidence,omitempty"`
	Notes      string         `json:"notes,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// ExtractionResult is the product catalogue produced by one extraction tier
// (or a merge of tiers). Every tier returns this same shape, including on
// failure.
type ExtractionResult struct {
	Products     []ProductCatalogEntry `json:"products"`
	Services     []ProductCatalogEntry `json:"services"`
	SubBrands    []string              `json:"sub_brands"`
	Discontinued []ProductCatalogEntry `json:"discontinued"`
	Metadata     ExtractionMetadata    `json:"metadata"`
}

// EmptyExtractionResult returns a fully-shaped empty result tagged with the
// given source. Failure paths use this so no consumer ever sees nil slices
// absent from the JSON output.
func EmptyExtractionResult(source string) *ExtractionResult {
	return &ExtractionResult{
		Products:     []ProductCatalogEntry{},
		Services:     []ProductCatalogEntry{},
		SubBrands:    []string{},
		Discontinued: []ProductCatalogEntry{},
		Metadata: ExtractionMetadata{
			Source: source,
			Counts: map[string]int{"products": 0, "services": 0, "sub_brands": 0, "discontinued": 0},
		},
	}
}

// CountEntries fills Metadata.Counts from the current list lengths.
func (r *ExtractionResult) CountEntries() {
	if r.Metadata.Counts == nil {
		r.Metadata.Counts = make(map[string]int, 4)
	}
	r.Metadata.Counts["products"] = len(r.Products)
	r.Metadata.Counts["services"] = len(r.Services)
	r.Metadata.Counts["sub_brands"] = len(r.SubBrands)
	r.Metadata.Counts["discontinued"] = len(r.Discontinued)
}
