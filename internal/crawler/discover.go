package crawler

import (
	"bytes"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// GoqueryDiscoverer implements LinkDiscoverer over a parsed HTML body.
type GoqueryDiscoverer struct {
	logger *zap.Logger
}

// NewGoqueryDiscoverer returns a LinkDiscoverer backed by goquery.
func NewGoqueryDiscoverer(logger *zap.Logger) *GoqueryDiscoverer {
	return &GoqueryDiscoverer{logger: logger}
}

// DiscoverLinks collects every hyperlink reference in document order,
// deduplicated within the page. Hrefs are returned raw; normalization and
// admission happen at the frontier gate.
func (d *GoqueryDiscoverer) DiscoverLinks(body []byte, pageURL string) []string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		d.logger.Warn("parse page for links", zap.String("url", pageURL), zap.Error(err))
		return nil
	}

	seen := make(map[string]struct{})
	var links []string
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return
		}
		if _, dup := seen[href]; dup {
			return
		}
		seen[href] = struct{}{}
		links = append(links, href)
	})
	return links
}
