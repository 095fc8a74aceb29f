package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplate_Render(t *testing.T) {
	tmpl := New("Echo: {{userMessage}}")
	out, err := tmpl.Render(map[string]string{"userMessage": "hello"})
	require.NoError(t, err)
	assert.Equal(t, "Echo: hello", out)
}

func TestTemplate_MissingBlank(t *testing.T) {
	tmpl := New("a={{a}} b={{b}}")
	out, err := tmpl.Render(map[string]string{"a": "1"})
	require.NoError(t, err)
	assert.Equal(t, "a=1 b=", out)
}

func TestTemplate_MissingError(t *testing.T) {
	tmpl := New("a={{a}} b={{b}}", WithPolicy(MissingError))
	_, err := tmpl.Render(map[string]string{"a": "1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b")
}

func TestTemplate_WhitespaceInPlaceholder(t *testing.T) {
	out, err := New("{{ name }}!").Render(map[string]string{"name": "world"})
	require.NoError(t, err)
	assert.Equal(t, "world!", out)
}

func TestTemplate_NoPlaceholders(t *testing.T) {
	out, err := New("static text").Render(nil)
	require.NoError(t, err)
	assert.Equal(t, "static text", out)
}

func TestTemplate_Vars(t *testing.T) {
	tmpl := New("{{a}} {{b}} {{a}}")
	assert.Equal(t, []string{"a", "b"}, tmpl.Vars())
}

func TestRenderHelper(t *testing.T) {
	assert.Equal(t, "hi bob", Render("hi {{who}}", map[string]string{"who": "bob"}))
}
