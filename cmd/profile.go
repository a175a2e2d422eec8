package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/brand-profiler/internal/products"
	"github.com/sells-group/brand-profiler/internal/profile"
	"github.com/sells-group/brand-profiler/internal/store"
	"github.com/sells-group/brand-profiler/pkg/llm"
	"github.com/sells-group/brand-profiler/pkg/wikidata"
	"github.com/sells-group/brand-profiler/pkg/wikipedia"
)

var (
	flagSitemap     string
	flagCompetitors []string
	flagAudience    string
	flagNoEnhance   bool
)

var profileCmd = &cobra.Command{
	Use:   "profile <url>",
	Short: "Enrich a brand profile from its web address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		llmClient, err := newLLMClient()
		if err != nil {
			return err
		}

		wikiClient := wikipedia.NewClient(wikipedia.WithBaseURL(cfg.Wikipedia.BaseURL))
		wdClient := wikidata.NewClient(
			wikidata.WithAPIBaseURL(cfg.Wikidata.APIBaseURL),
			wikidata.WithSPARQLBaseURL(cfg.Wikidata.SPARQLBaseURL),
		)
		extractor := products.New(llmClient, wikiClient, wdClient)
		pipeline := profile.New(llmClient, wikiClient, extractor)

		result, err := pipeline.Run(cmd.Context(), profile.Request{
			BaseURL:        args[0],
			Enhance:        cfg.Pipeline.Enhance && !flagNoEnhance,
			Competitors:    flagCompetitors,
			SitemapURL:     flagSitemap,
			TargetAudience: flagAudience,
		})
		if err != nil {
			zap.L().Error("profile: enrichment failed", zap.Error(err))
			return err
		}

		out := &store.JSONWriter{W: os.Stdout}
		return out.SaveProfile(cmd.Context(), args[0], result)
	},
}

// newLLMClient builds the configured completion backend.
func newLLMClient() (llm.Client, error) {
	switch cfg.LLM.Provider {
	case "anthropic":
		var opts []llm.AnthropicOption
		if cfg.LLM.Model != "" {
			opts = append(opts, llm.WithAnthropicModel(cfg.LLM.Model))
		}
		if cfg.LLM.BaseURL != "" {
			opts = append(opts, llm.WithAnthropicBaseURL(cfg.LLM.BaseURL))
		}
		return llm.NewAnthropicClient(cfg.LLM.Key, opts...), nil
	case "openai":
		var opts []llm.OpenAIOption
		if cfg.LLM.Model != "" {
			opts = append(opts, llm.WithModel(cfg.LLM.Model))
		}
		if cfg.LLM.BaseURL != "" {
			opts = append(opts, llm.WithBaseURL(cfg.LLM.BaseURL))
		}
		return llm.NewOpenAIClient(cfg.LLM.Key, opts...), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}

func init() {
	profileCmd.Flags().StringVar(&flagSitemap, "sitemap", "", "sitemap URL for the sitemap product-extraction tier")
	profileCmd.Flags().StringSliceVar(&flagCompetitors, "competitors", nil, "caller-supplied competitor names (skips competitor inference)")
	profileCmd.Flags().StringVar(&flagAudience, "audience", "", "target audience override")
	profileCmd.Flags().BoolVar(&flagNoEnhance, "no-enhance", false, "return the base profile without enrichment")
	rootCmd.AddCommand(profileCmd)
}
