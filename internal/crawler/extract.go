package crawler

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// ErrNoContent is returned when no readable text block can be identified
// at all. The engine treats it as a warning, not a page failure.
var ErrNoContent = errors.New("no readable content found")

// PageExtractor implements Extractor. Markdown and plain-text responses
// are used verbatim; HTML is reduced to its main content block and
// converted to Markdown.
type PageExtractor struct {
	strategy  ContentStrategy
	converter *md.Converter
	logger    *zap.Logger
}

// NewPageExtractor builds an extractor around the given main-content
// strategy.
func NewPageExtractor(strategy ContentStrategy, logger *zap.Logger) *PageExtractor {
	return &PageExtractor{
		strategy:  strategy,
		converter: md.NewConverter("", true, nil),
		logger:    logger,
	}
}

// Extract produces the title/content pair for a fetched response.
func (e *PageExtractor) Extract(resp FetchResponse) (ExtractedPage, error) {
	pageURL := resp.FinalURL
	if pageURL == "" {
		pageURL = resp.URL
	}
	if isMarkdownSource(resp.ContentType, pageURL) {
		return e.extractMarkdown(resp.Body, pageURL), nil
	}
	return e.extractHTML(resp.Body, pageURL)
}

func (e *PageExtractor) extractMarkdown(body []byte, pageURL string) ExtractedPage {
	content := strings.TrimSpace(strings.ReplaceAll(string(body), "\r\n", "\n"))
	title := titleFromMarkdown(content)
	if title == "" {
		title = titleFromPath(pageURL)
	}
	return ExtractedPage{Title: title, Content: content, Source: SourceMarkdown}
}

func (e *PageExtractor) extractHTML(body []byte, pageURL string) (ExtractedPage, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ExtractedPage{}, fmt.Errorf("parse html: %w", err)
	}

	title := collapseWhitespace(doc.Find("title").First().Text())

	main, err := e.strategy.MainContent(doc)
	if err != nil {
		return ExtractedPage{Title: fallbackTitle(title, pageURL), Source: SourceHTML}, ErrNoContent
	}

	content := strings.TrimSpace(e.converter.Convert(main))
	if title == "" {
		title = collapseWhitespace(main.Find("h1,h2,h3").First().Text())
	}
	return ExtractedPage{
		Title:   fallbackTitle(title, pageURL),
		Content: content,
		Source:  SourceHTML,
	}, nil
}

// isMarkdownSource reports whether the response is already Markdown or
// plain text, judged by content type first and URL suffix second.
func isMarkdownSource(contentType, pageURL string) bool {
	ct := strings.ToLower(contentType)
	if strings.Contains(ct, "markdown") || strings.Contains(ct, "text/plain") {
		return true
	}
	u, err := url.Parse(pageURL)
	if err != nil {
		return false
	}
	switch strings.ToLower(path.Ext(u.Path)) {
	case ".md", ".markdown", ".txt":
		return true
	}
	return false
}

// titleFromMarkdown returns the first ATX heading line, if any.
func titleFromMarkdown(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			return strings.TrimSpace(strings.TrimLeft(line, "#"))
		}
	}
	return ""
}

// titleFromPath derives a title from the URL's last path segment.
func titleFromPath(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return pageURL
	}
	segment := path.Base(strings.TrimSuffix(u.Path, "/"))
	if segment == "" || segment == "." || segment == "/" {
		return u.Host
	}
	return strings.TrimSuffix(segment, path.Ext(segment))
}

func fallbackTitle(title, pageURL string) string {
	if title != "" {
		return title
	}
	return titleFromPath(pageURL)
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
