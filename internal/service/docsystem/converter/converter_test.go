package converter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRoutesByContent(t *testing.T) {
	r := NewRegistry()

	assert.Equal(t, "html", r.ConverterFor("<table><tr><td>1</td></tr></table>").Name())
	assert.Equal(t, "html", r.ConverterFor("before <BR/> after").Name())
	assert.Equal(t, "plaintext", r.ConverterFor("a < b and c > d").Name())
	assert.Equal(t, "plaintext", r.ConverterFor("# Heading\n\n| a | b |").Name())
}

func TestRegistryConvertsTables(t *testing.T) {
	r := NewRegistry()

	out, err := r.Convert(context.Background(),
		`<table><thead><tr><th>Item</th><th>Cost</th></tr></thead><tbody><tr><td>Paper</td><td>10</td></tr></tbody></table>`)
	require.NoError(t, err)
	assert.Contains(t, out, "| Item | Cost |")
	assert.Contains(t, out, "| Paper | 10 |")
}

func TestRegistryStripsScripts(t *testing.T) {
	r := NewRegistry()

	out, err := r.Convert(context.Background(), `<p>Budget <strong>approved</strong></p><script>alert(1)</script>`)
	require.NoError(t, err)
	assert.Contains(t, out, "Budget **approved**")
	assert.NotContains(t, out, "alert")
	assert.NotContains(t, out, "<")
}

func TestTextConverterTidiesWhitespace(t *testing.T) {
	out, err := NewTextConverter().Convert(context.Background(), "  line one  \r\n\r\n\r\n\nline two\t\n\n")
	require.NoError(t, err)
	assert.Equal(t, "line one\n\nline two", out)
}
