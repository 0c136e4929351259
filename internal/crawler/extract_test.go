package crawler

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestExtractor() *PageExtractor {
	return NewPageExtractor(NewTextDensityStrategy(), zap.NewNop())
}

func TestExtractMarkdownVerbatim(t *testing.T) {
	e := newTestExtractor()
	resp := FetchResponse{
		FinalURL:    "https://docs.example.com/guide.md",
		ContentType: "text/markdown; charset=utf-8",
		Body:        []byte("# Getting Started\r\n\r\nInstall the thing.\r\n"),
	}

	page, err := e.Extract(resp)
	require.NoError(t, err)
	require.Equal(t, SourceMarkdown, page.Source)
	require.Equal(t, "Getting Started", page.Title)
	require.Equal(t, "# Getting Started\n\nInstall the thing.", page.Content)
}

func TestExtractMarkdownTitleFallsBackToPath(t *testing.T) {
	e := newTestExtractor()
	resp := FetchResponse{
		FinalURL:    "https://docs.example.com/reference/api-basics.md",
		ContentType: "text/plain",
		Body:        []byte("no heading here"),
	}

	page, err := e.Extract(resp)
	require.NoError(t, err)
	require.Equal(t, "api-basics", page.Title)
}

func TestExtractMarkdownBySuffixWithoutContentType(t *testing.T) {
	e := newTestExtractor()
	resp := FetchResponse{
		FinalURL: "https://docs.example.com/notes.md",
		Body:     []byte("# Notes"),
	}

	page, err := e.Extract(resp)
	require.NoError(t, err)
	require.Equal(t, SourceMarkdown, page.Source)
}

func TestExtractHTMLMainContent(t *testing.T) {
	e := newTestExtractor()
	html := `<!DOCTYPE html>
<html>
<head><title>  Widgets   Guide </title></head>
<body>
  <nav><a href="/">Home</a><a href="/about">About</a></nav>
  <script>trackEverything();</script>
  <main>
    <h1>Widgets</h1>
    <p>Widgets are the primary building block of the system and this
    paragraph is long enough to dominate the density score.</p>
    <p>See the <a href="/api">API reference</a> for details.</p>
  </main>
  <footer>Copyright notice that should vanish.</footer>
</body>
</html>`
	resp := FetchResponse{
		FinalURL:    "https://docs.example.com/widgets",
		ContentType: "text/html; charset=utf-8",
		Body:        []byte(html),
	}

	page, err := e.Extract(resp)
	require.NoError(t, err)
	require.Equal(t, SourceHTML, page.Source)
	require.Equal(t, "Widgets Guide", page.Title, "title element wins, whitespace collapsed")
	require.Contains(t, page.Content, "# Widgets")
	require.Contains(t, page.Content, "[API reference](/api)")
	require.NotContains(t, page.Content, "Copyright")
	require.NotContains(t, page.Content, "trackEverything")
	require.NotContains(t, page.Content, "About")
}

func TestExtractHTMLTitleFallsBackToHeading(t *testing.T) {
	e := newTestExtractor()
	html := `<html><body><main><h1>From Heading</h1><p>Some body text to extract.</p></main></body></html>`
	resp := FetchResponse{
		FinalURL:    "https://docs.example.com/page",
		ContentType: "text/html",
		Body:        []byte(html),
	}

	page, err := e.Extract(resp)
	require.NoError(t, err)
	require.Equal(t, "From Heading", page.Title)
}

func TestExtractHTMLNoReadableContent(t *testing.T) {
	e := newTestExtractor()
	resp := FetchResponse{
		FinalURL:    "https://docs.example.com/empty",
		ContentType: "text/html",
		Body:        []byte(`<html><body><script>only()</script></body></html>`),
	}

	page, err := e.Extract(resp)
	require.ErrorIs(t, err, ErrNoContent)
	require.Equal(t, "empty", page.Title, "title still derived from the path")
	require.Empty(t, page.Content)
}

func TestTitleFromPath(t *testing.T) {
	require.Equal(t, "intro", titleFromPath("https://docs.example.com/guide/intro.html"))
	require.Equal(t, "guide", titleFromPath("https://docs.example.com/guide/"))
	require.Equal(t, "docs.example.com", titleFromPath("https://docs.example.com/"))
}
