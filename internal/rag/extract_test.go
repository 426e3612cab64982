package rag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractTextPlain(t *testing.T) {
	text, err := ExtractText("policy.txt", []byte("plain content"))
	require.NoError(t, err)
	assert.Equal(t, "plain content", text)

	text, err = ExtractText("README.md", []byte("# heading"))
	require.NoError(t, err)
	assert.Equal(t, "# heading", text)
}

func TestExtractTextHTMLStripsMarkup(t *testing.T) {
	page := `<html><head><style>body{color:red}</style>
<script>alert("x")</script></head>
<body><h1>Coverage</h1><p>Trip cancellation is covered.</p></body></html>`

	text, err := ExtractText("page.html", []byte(page))
	require.NoError(t, err)
	assert.Contains(t, text, "Coverage")
	assert.Contains(t, text, "Trip cancellation is covered.")
	assert.NotContains(t, text, "alert")
	assert.NotContains(t, text, "color:red")
}

func TestExtractTextUnsupported(t *testing.T) {
	_, err := ExtractText("data.pdf", []byte("%PDF"))
	assert.Error(t, err)
}
