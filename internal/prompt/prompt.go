// Package prompt stores the pipeline's prompt templates and renders them
// with named placeholders.
package prompt

import (
	_ "embed"
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var templatesYAML []byte

// templates maps logical names to template text, loaded once at init.
var templates map[string]string

func init() {
	if err := yaml.Unmarshal(templatesYAML, &templates); err != nil {
		panic(fmt.Sprintf("prompt: bad embedded templates: %v", err))
	}
}

// Read returns the template registered under the logical name, or "" when no
// such template exists.
func Read(logicalName string) string {
	return templates[logicalName]
}

// placeholderRe matches {{name}} placeholders, optional inner whitespace.
var placeholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

// Render substitutes named {{placeholders}} in template with string-coerced
// values from vars. Unknown keys render as the empty string.
func Render(template string, vars map[string]any) string {
	return placeholderRe.ReplaceAllStringFunc(template, func(match string) string {
		key := placeholderRe.FindStringSubmatch(match)[1]
		val, ok := vars[key]
		if !ok || val == nil {
			return ""
		}
		return fmt.Sprintf("%v", val)
	})
}

// Build reads a template by logical name and renders it in one step.
func Build(logicalName string, vars map[string]any) string {
	return Render(Read(logicalName), vars)
}
