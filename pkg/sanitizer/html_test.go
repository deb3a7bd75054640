package sanitizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/almaluz/backend/pkg/sanitizer"
)

func TestStripHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "strips script injection",
			input:    `<p>Hola</p><script>alert('xss')</script>`,
			expected: "Hola",
		},
		{
			name:     "strips all tags",
			input:    `<p>Hola <strong>mundo</strong></p>`,
			expected: "Hola mundo",
		},
		{
			name:     "strips event handlers",
			input:    `<img src="x" onerror="alert('xss')">`,
			expected: "",
		},
		{
			name:     "strips style blocks",
			input:    `texto<style>.x{color:red}</style>`,
			expected: "texto",
		},
		{
			name:     "trims surrounding whitespace",
			input:    "  <p> hola </p>  ",
			expected: "hola",
		},
		{
			name:     "plain text passes through",
			input:    "sin html",
			expected: "sin html",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, sanitizer.StripHTML(tt.input))
		})
	}
}

func TestSanitizeHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		contains string
		excludes string
	}{
		{
			name:     "keeps formatting tags",
			input:    `<p>Hola <strong>mundo</strong></p>`,
			contains: "<strong>mundo</strong>",
		},
		{
			name:     "drops script tags",
			input:    `<p>ok</p><script>alert(1)</script>`,
			contains: "<p>ok</p>",
			excludes: "<script>",
		},
		{
			name:     "keeps safe links",
			input:    `<a href="https://almaluz.com.ar">tienda</a>`,
			contains: `href="https://almaluz.com.ar"`,
		},
		{
			name:     "drops javascript urls",
			input:    `<a href="javascript:alert(1)">x</a>`,
			excludes: "javascript:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := sanitizer.SanitizeHTML(tt.input)
			if tt.contains != "" {
				assert.Contains(t, got, tt.contains)
			}
			if tt.excludes != "" {
				assert.NotContains(t, got, tt.excludes)
			}
		})
	}
}
