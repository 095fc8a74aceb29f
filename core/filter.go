package core

import (
	"regexp"
	"strings"
)

// OutputFilter narrows a result string through a regular expression. With at
// least one capture group, all matched groups are joined with ", "; without
// groups, whole matches are joined. A nil filter is the identity.
type OutputFilter struct {
	re *regexp.Regexp
}

// NewOutputFilter compiles the expression into a filter.
func NewOutputFilter(expr string) (*OutputFilter, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &OutputFilter{re: re}, nil
}

// MustOutputFilter compiles the expression, panicking on error. Intended for
// static configuration and tests.
func MustOutputFilter(expr string) *OutputFilter {
	f, err := NewOutputFilter(expr)
	if err != nil {
		panic(err)
	}
	return f
}

// Pattern returns the source expression, or "" for a nil filter.
func (f *OutputFilter) Pattern() string {
	if f == nil {
		return ""
	}
	return f.re.String()
}

// Apply filters the text. Safe to call on a nil receiver.
func (f *OutputFilter) Apply(text string) string {
	if f == nil {
		return text
	}

	if f.re.NumSubexp() > 0 {
		var groups []string
		for _, match := range f.re.FindAllStringSubmatch(text, -1) {
			groups = append(groups, match[1:]...)
		}
		return strings.Join(groups, ", ")
	}

	return strings.Join(f.re.FindAllString(text, -1), ", ")
}
