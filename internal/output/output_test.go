package output

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/piebru/llmstxt-crawler/internal/crawler"
)

var testOpts = Options{
	SiteTitle:   "Example Docs",
	SiteSummary: "Documentation for Example.",
	Details:     "Generated from the public documentation site.",
}

func TestRenderIndexPreservesDiscoveryOrder(t *testing.T) {
	// Deliberately not alphabetical: the output order is the crawl order.
	records := []crawler.PageRecord{
		{URL: "https://docs.example.com/zeta", Title: "Zeta", Source: crawler.SourceHTML, Status: crawler.OutcomeSuccess},
		{URL: "https://docs.example.com/alpha", Title: "Alpha", Source: crawler.SourceMarkdown, Status: crawler.OutcomeSuccess},
	}

	got := RenderIndex(testOpts, records)
	zeta := strings.Index(got, "[Zeta]")
	alpha := strings.Index(got, "[Alpha]")
	require.Positive(t, zeta)
	require.Positive(t, alpha)
	require.Less(t, zeta, alpha)
}

func TestRenderIndexHeaderLayout(t *testing.T) {
	got := RenderIndex(testOpts, []crawler.PageRecord{
		{URL: "https://docs.example.com/", Title: "Home", Source: crawler.SourceHTML, Status: crawler.OutcomeSuccess},
	})

	require.True(t, strings.HasPrefix(got, "# Example Docs\n\n"))
	require.Contains(t, got, "> Documentation for Example.\n")
	require.Contains(t, got, "Generated from the public documentation site.\n")
	require.Contains(t, got, "## Pages\n\n")
	require.Contains(t, got, "- [Home](https://docs.example.com/): HTML-extracted\n")
}

func TestRenderOmitsFailedAndSkipped(t *testing.T) {
	records := []crawler.PageRecord{
		{URL: "https://docs.example.com/ok", Title: "OK", Source: crawler.SourceHTML, Status: crawler.OutcomeSuccess},
		{URL: "https://docs.example.com/broken", Title: "Broken", Status: crawler.OutcomeFailed},
		{URL: "https://docs.example.com/dup", Title: "Dup", Status: crawler.OutcomeSkipped},
	}

	for name, render := range map[string]func(Options, []crawler.PageRecord) string{
		"index": RenderIndex,
		"full":  RenderFull,
	} {
		t.Run(name, func(t *testing.T) {
			got := render(testOpts, records)
			require.Contains(t, got, "https://docs.example.com/ok")
			require.NotContains(t, got, "broken")
			require.NotContains(t, got, "dup")
		})
	}
}

func TestRenderFullIncludesContentBlocks(t *testing.T) {
	records := []crawler.PageRecord{
		{
			URL:     "https://docs.example.com/guide",
			Title:   "Guide",
			Source:  crawler.SourceMarkdown,
			Content: "# Guide\n\nBody text.",
			Status:  crawler.OutcomeSuccess,
		},
		{
			URL:    "https://docs.example.com/empty",
			Title:  "Empty",
			Source: crawler.SourceHTML,
			Status: crawler.OutcomeSuccess,
		},
	}

	got := RenderFull(testOpts, records)
	require.Contains(t, got, "- [Guide](https://docs.example.com/guide): Markdown source\n\n# Guide\n\nBody text.\n")
	require.Contains(t, got, "- [Empty](https://docs.example.com/empty): HTML-extracted\n\n(no extractable content on this page)\n")
}

func TestRenderFullContentBlockIgnoresSourceKind(t *testing.T) {
	const content = "# Same Page\n\nIdentical body."
	fromMarkdown := RenderFull(testOpts, []crawler.PageRecord{
		{URL: "https://docs.example.com/p", Title: "Same Page", Source: crawler.SourceMarkdown, Content: content, Status: crawler.OutcomeSuccess},
	})
	fromHTML := RenderFull(testOpts, []crawler.PageRecord{
		{URL: "https://docs.example.com/p", Title: "Same Page", Source: crawler.SourceHTML, Content: content, Status: crawler.OutcomeSuccess},
	})

	// Only the bullet's source note may differ; the content block itself is
	// byte-identical.
	block := "\n\n" + content + "\n\n"
	require.Contains(t, fromMarkdown, block)
	require.Contains(t, fromHTML, block)
}

func TestRenderWithNoSuccessesStopsAtHeader(t *testing.T) {
	got := RenderIndex(testOpts, []crawler.PageRecord{
		{URL: "https://docs.example.com/broken", Status: crawler.OutcomeFailed},
	})
	require.NotContains(t, got, "## Pages")
}

func TestSanitizeTitleInBulletLine(t *testing.T) {
	got := RenderIndex(testOpts, []crawler.PageRecord{
		{URL: "https://docs.example.com/api", Title: "API [v2] Reference", Source: crawler.SourceHTML, Status: crawler.OutcomeSuccess},
	})
	require.Contains(t, got, "- [API (v2) Reference](https://docs.example.com/api)")
}

func TestWriteFileCreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "docs.example.com", "llms.txt")
	require.NoError(t, WriteFile(path, "# Example Docs\n"))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "# Example Docs\n", string(raw))
}
