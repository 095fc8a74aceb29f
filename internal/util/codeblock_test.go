package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractFencedCode(t *testing.T) {
	text := "Here you go:\n```python\nprint(42)\n```\ndone"
	code, ok := ExtractFencedCode(text)
	assert.True(t, ok)
	assert.Equal(t, "print(42)", code)
}

func TestExtractFencedCode_FirstOfMany(t *testing.T) {
	text := "```json\n{\"a\":1}\n```\nand\n```\nsecond\n```"
	code, ok := ExtractFencedCode(text)
	assert.True(t, ok)
	assert.Equal(t, "{\"a\":1}", code)
}

func TestExtractFencedCode_NoFence(t *testing.T) {
	_, ok := ExtractFencedCode("plain text only")
	assert.False(t, ok)
}

func TestExtractCodeOrAll(t *testing.T) {
	assert.Equal(t, "print(1)", ExtractCodeOrAll("```\nprint(1)\n```"))
	assert.Equal(t, "print(2)", ExtractCodeOrAll("  print(2)  "))
}
