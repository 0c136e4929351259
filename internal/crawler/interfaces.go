package crawler

import (
	"context"

	"github.com/PuerkitoBio/goquery"
)

// Fetcher retrieves a single URL politely: the configured delay is applied
// before every request, and transient failures are retried.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (FetchResponse, error)
	// Probe checks whether a resource exists without downloading it.
	Probe(ctx context.Context, rawURL string) (bool, error)
}

// Extractor turns a fetched response into a title and Markdown body.
type Extractor interface {
	Extract(resp FetchResponse) (ExtractedPage, error)
}

// LinkDiscoverer harvests candidate follow-up URLs from an HTML body.
// Returned hrefs are raw; the engine normalizes and admits them before
// they reach the frontier.
type LinkDiscoverer interface {
	DiscoverLinks(body []byte, pageURL string) []string
}

// ContentStrategy isolates the main-content heuristic so site-specific
// extraction strategies can be swapped without touching the crawl loop.
type ContentStrategy interface {
	// MainContent returns the primary readable block of the document.
	MainContent(doc *goquery.Document) (*goquery.Selection, error)
}
