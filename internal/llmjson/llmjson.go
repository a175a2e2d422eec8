// Package llmjson decodes JSON emitted by text-completion models, which
// routinely arrives wrapped in markdown fences, prefixed with prose, or
// mildly malformed (trailing commas, single quotes).
package llmjson

import (
	"encoding/json"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/rotisserie/eris"
)

// Clean strips markdown code fences and any prose surrounding the outermost
// JSON value from model output.
func Clean(text string) string {
	s := strings.TrimSpace(text)

	// Fenced block: keep only the fence body.
	if idx := strings.Index(s, "```"); idx >= 0 {
		s = s[idx+3:]
		s = strings.TrimPrefix(s, "json")
		if end := strings.Index(s, "```"); end >= 0 {
			s = s[:end]
		}
		s = strings.TrimSpace(s)
	}

	// Trim prose around the outermost object or array.
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	var end int
	if s[start] == '{' {
		end = strings.LastIndex(s, "}")
	} else {
		end = strings.LastIndex(s, "]")
	}
	if end > start {
		s = s[start : end+1]
	}
	return s
}

// Unmarshal cleans text and decodes it into v. When plain decoding fails it
// runs the payload through jsonrepair once and retries.
func Unmarshal(text string, v any) error {
	cleaned := Clean(text)
	if cleaned == "" {
		return eris.New("llmjson: no JSON payload in model output")
	}

	if err := json.Unmarshal([]byte(cleaned), v); err == nil {
		return nil
	}

	repaired, err := jsonrepair.JSONRepair(cleaned)
	if err != nil {
		return eris.Wrap(err, "llmjson: repair")
	}
	if err := json.Unmarshal([]byte(repaired), v); err != nil {
		return eris.Wrap(err, "llmjson: unmarshal repaired")
	}
	return nil
}
