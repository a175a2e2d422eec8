// Package store defines the profile persistence collaborator. Durable
// storage, diffing against prior profiles, and notification belong to the
// surrounding framework; the pipeline only hands a finished profile to a
// Store.
package store

import (
	"context"
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"

	"github.com/sells-group/brand-profiler/internal/model"
)

// Store persists finished brand profiles.
type Store interface {
	SaveProfile(ctx context.Context, baseURL string, profile *model.BrandProfile) error
}

// JSONWriter is a Store that writes each profile as indented JSON to a
// writer. The CLI uses it to print to stdout.
type JSONWriter struct {
	W io.Writer
}

// SaveProfile writes the profile as indented JSON.
func (s *JSONWriter) SaveProfile(_ context.Context, _ string, profile *model.BrandProfile) error {
	enc := json.NewEncoder(s.W)
	enc.SetIndent("", "  ")
	if err := enc.Encode(profile); err != nil {
		return eris.Wrap(err, "store: encode profile")
	}
	return nil
}
