package sanitize

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	req := require.New(t)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Plain text untouched",
			input:    "hello there",
			expected: "hello there",
		},
		{
			name:     "Script tag stripped",
			input:    `before<script>alert("x")</script>after`,
			expected: `beforealert("x")after`,
		},
		{
			name:     "Bold and div stripped",
			input:    "<b>bold</b> and <div>boxed</div>",
			expected: "bold and boxed",
		},
		{
			name:     "Anchor preserved with attributes",
			input:    `<a href="http://example.com">link</a>`,
			expected: `<a href="http://example.com">link</a>`,
		},
		{
			name:     "Image preserved",
			input:    `<img src="cat.png">`,
			expected: `<img src="cat.png">`,
		},
		{
			name:     "Allow-list is case-insensitive",
			input:    `<IMG src="cat.png"><A>x</A>`,
			expected: `<IMG src="cat.png"><A>x</A>`,
		},
		{
			name:     "Mixed allowed and stripped",
			input:    `<span><a>ok</a></span>`,
			expected: `<a>ok</a>`,
		},
		{
			name:     "Empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "Angle bracket span stripped like a tag",
			input:    "3 < 5 and 5 > 3",
			expected: "3  3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req.Equal(tt.expected, Clean(tt.input), "input=%s", tt.input)
		})
	}
}

// Cleaning an already clean body must change nothing, whatever the input.
func TestClean_Idempotent(t *testing.T) {
	req := require.New(t)

	inputs := []string{
		"plain",
		`<script>x</script>`,
		`<a href="u">link</a><div>y</div>`,
		`<<b>nested>`,
		`<x<a>weird`,
		`<IMG src="a"><span>t</span>`,
	}

	for _, input := range inputs {
		once := Clean(input)
		req.Equal(once, Clean(once), "input=%s", input)
	}
}
