package store

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/brand-profiler/internal/model"
)

func TestJSONWriter_SaveProfile(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	s := &JSONWriter{W: &buf}

	profile := &model.BrandProfile{
		Base:              map[string]any{"main": map[string]any{"brand_name": "Acme"}},
		CompetitorsSource: model.CompetitorSourceInferred,
	}

	require.NoError(t, s.SaveProfile(context.Background(), "https://acme.example", profile))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Contains(t, decoded, "base_profile")
	assert.Equal(t, "llm_inferred", decoded["competitors_source"])
}
