// Package output renders the crawl results into the llms.txt index and
// the llms-full.txt content dump.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/piebru/llmstxt-crawler/internal/crawler"
)

// Options carries the site-level text placed at the top of both
// artifacts.
type Options struct {
	SiteTitle   string
	SiteSummary string
	Details     string
}

// RenderIndex produces the navigation index: one bullet per successful
// page, in discovery order, linking the title to the page's canonical
// URL and noting the content source.
func RenderIndex(opts Options, records []crawler.PageRecord) string {
	var b strings.Builder
	writeHeader(&b, opts)
	successes := successOnly(records)
	if len(successes) == 0 {
		return b.String()
	}
	b.WriteString("## Pages\n\n")
	for _, rec := range successes {
		fmt.Fprintf(&b, "- [%s](%s): %s\n", sanitizeTitle(rec.Title), rec.URL, sourceNote(rec))
	}
	return b.String()
}

// RenderFull produces the content dump: the same bullet line per page
// followed by the page's full extracted content.
func RenderFull(opts Options, records []crawler.PageRecord) string {
	var b strings.Builder
	writeHeader(&b, opts)
	successes := successOnly(records)
	if len(successes) == 0 {
		return b.String()
	}
	b.WriteString("## Pages\n\n")
	for _, rec := range successes {
		fmt.Fprintf(&b, "- [%s](%s): %s\n\n", sanitizeTitle(rec.Title), rec.URL, sourceNote(rec))
		if rec.Content != "" {
			b.WriteString(rec.Content)
			b.WriteString("\n\n")
		} else {
			b.WriteString("(no extractable content on this page)\n\n")
		}
	}
	return b.String()
}

// WriteFile writes one rendered artifact, creating parent directories.
func WriteFile(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create output dir for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func writeHeader(b *strings.Builder, opts Options) {
	fmt.Fprintf(b, "# %s\n\n", opts.SiteTitle)
	if opts.SiteSummary != "" {
		fmt.Fprintf(b, "> %s\n\n", opts.SiteSummary)
	}
	if opts.Details != "" {
		fmt.Fprintf(b, "%s\n\n", opts.Details)
	}
}

func successOnly(records []crawler.PageRecord) []crawler.PageRecord {
	out := make([]crawler.PageRecord, 0, len(records))
	for _, rec := range records {
		if rec.Status == crawler.OutcomeSuccess {
			out = append(out, rec)
		}
	}
	return out
}

func sourceNote(rec crawler.PageRecord) string {
	if rec.Source == crawler.SourceMarkdown {
		return "Markdown source"
	}
	return "HTML-extracted"
}

// sanitizeTitle keeps titles from breaking the Markdown link syntax.
func sanitizeTitle(title string) string {
	title = strings.ReplaceAll(title, "[", "(")
	return strings.ReplaceAll(title, "]", ")")
}
