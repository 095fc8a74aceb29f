// Package prompt implements the template engine used for capability and
// reasoning prompts. Templates use {{name}} placeholders; how unresolved
// placeholders are handled is an explicit, testable policy instead of a
// silent default.
package prompt

import (
	"fmt"
	"regexp"
)

// MissingPolicy decides what happens when a template references a variable
// that is absent from the substitution map.
type MissingPolicy int

const (
	// MissingBlank renders unresolved placeholders as the empty string.
	// This is the default behavior of the pipeline.
	MissingBlank MissingPolicy = iota
	// MissingError fails the render on the first unresolved placeholder.
	MissingError
)

var placeholderRe = regexp.MustCompile(`\{\{\s*([A-Za-z_][A-Za-z0-9_]*)\s*\}\}`)

// Template is a parsed prompt template with a fixed missing-variable policy.
type Template struct {
	text   string
	policy MissingPolicy
}

// Options configure a Template.
type Options struct {
	Policy MissingPolicy
}

// New creates a Template for the given text. The default policy renders
// unresolved variables blank.
func New(text string, optFns ...func(o *Options)) *Template {
	opts := Options{Policy: MissingBlank}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Template{text: text, policy: opts.Policy}
}

// WithPolicy overrides the missing-variable policy.
func WithPolicy(p MissingPolicy) func(o *Options) {
	return func(o *Options) { o.Policy = p }
}

// Render substitutes vars into the template according to the policy.
func (t *Template) Render(vars map[string]string) (string, error) {
	var missing string
	out := placeholderRe.ReplaceAllStringFunc(t.text, func(match string) string {
		name := placeholderRe.FindStringSubmatch(match)[1]
		if v, ok := vars[name]; ok {
			return v
		}
		if missing == "" {
			missing = name
		}
		return ""
	})

	if missing != "" && t.policy == MissingError {
		return "", fmt.Errorf("unresolved template variable: %s", missing)
	}
	return out, nil
}

// Vars returns the distinct placeholder names referenced by the template in
// order of first appearance.
func (t *Template) Vars() []string {
	seen := map[string]bool{}
	var names []string
	for _, m := range placeholderRe.FindAllStringSubmatch(t.text, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}
	return names
}

// Render is a convenience helper using the default blank policy, for call
// sites that cannot fail.
func Render(text string, vars map[string]string) string {
	out, _ := New(text).Render(vars)
	return out
}
