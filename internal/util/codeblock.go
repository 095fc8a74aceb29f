package util

import (
	"regexp"
	"strings"
)

// fenceRe matches a fenced code block with an optional language tag. The (?s)
// flag lets the body span newlines; the lazy quantifier stops at the first
// closing fence.
var fenceRe = regexp.MustCompile("(?s)```[a-zA-Z0-9_-]*[ \t]*\r?\n?(.*?)```")

// ExtractFencedCode returns the body of the first fenced code block in text.
// The second return value reports whether a block was found.
func ExtractFencedCode(text string) (string, bool) {
	m := fenceRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// ExtractCodeOrAll returns the first fenced code block, or the whole trimmed
// text when no fence is present. Model output is not guaranteed to fence its
// code.
func ExtractCodeOrAll(text string) string {
	if code, ok := ExtractFencedCode(text); ok {
		return code
	}
	return strings.TrimSpace(text)
}
