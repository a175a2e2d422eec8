package profile

import "github.com/rotisserie/eris"

// The pipeline has exactly two fatal error classes; everything downstream of
// the base profile recovers locally into deterministic fallbacks.
var (
	// ErrInvalidInput marks an invalid or missing site address.
	ErrInvalidInput = eris.New("invalid input")

	// ErrBadModelOutput marks an unparseable base-profile response.
	ErrBadModelOutput = eris.New("unparseable model output")
)
