package crawler

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarkdownSiblingURL(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"html page", "https://docs.example.com/guide/page.html", "https://docs.example.com/guide/page.html.md"},
		{"extensionless page", "https://docs.example.com/guide/page", "https://docs.example.com/guide/page.md"},
		{"directory", "https://docs.example.com/guide/", "https://docs.example.com/guide/index.html.md"},
		{"already markdown", "https://docs.example.com/guide/page.md", ""},
		{"plain text", "https://docs.example.com/notes.txt", ""},
		{"query dropped", "https://docs.example.com/page?tab=1", "https://docs.example.com/page.md"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, MarkdownSiblingURL(tc.in))
		})
	}
}
