package crawler

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// boilerplateSelector matches elements that never belong to main content.
const boilerplateSelector = "script,style,nav,footer,header,aside,noscript,iframe,form," +
	"[role=navigation],[role=banner],[role=contentinfo]," +
	"[class*=sidebar],[class*=advert],[id*=advert],[class*=cookie],[class*=banner]"

// candidateSelectors are tried in priority order; the highest text-density
// match of the first productive selector wins. body is the last resort.
var candidateSelectors = []string{
	"main",
	"article",
	"[role=main]",
	"#content", "#main",
	".content", ".main", ".documentation", ".docs",
	"body",
}

// paragraphishSelector bounds the density score to readable elements, so a
// link-farm with hundreds of anchors does not outweigh real prose.
const paragraphishSelector = "p,li,h1,h2,h3,h4,h5,h6,pre,blockquote,td,dd,dt"

// TextDensityStrategy is the default ContentStrategy: strip boilerplate,
// then pick the candidate container with the longest run of
// paragraph-like text.
type TextDensityStrategy struct {
	// MinChars is the minimum paragraph-like text length for a block to
	// qualify as main content.
	MinChars int
}

// NewTextDensityStrategy returns the default heuristic.
func NewTextDensityStrategy() *TextDensityStrategy {
	return &TextDensityStrategy{MinChars: 1}
}

// MainContent implements ContentStrategy.
func (s *TextDensityStrategy) MainContent(doc *goquery.Document) (*goquery.Selection, error) {
	doc.Find(boilerplateSelector).Remove()

	for _, selector := range candidateSelectors {
		var best *goquery.Selection
		bestScore := 0
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			if score := paragraphTextLength(sel); score > bestScore {
				best = sel
				bestScore = score
			}
		})
		if best != nil && bestScore >= s.minChars() {
			return best, nil
		}
	}

	// No paragraph-like structure anywhere; accept a body with bare text
	// rather than declaring the page empty.
	body := doc.Find("body").First()
	if strings.TrimSpace(body.Text()) != "" {
		return body, nil
	}
	return nil, ErrNoContent
}

func (s *TextDensityStrategy) minChars() int {
	if s.MinChars > 0 {
		return s.MinChars
	}
	return 1
}

// paragraphTextLength sums the trimmed text length of readable descendant
// elements.
func paragraphTextLength(sel *goquery.Selection) int {
	total := 0
	sel.Find(paragraphishSelector).Each(func(_ int, el *goquery.Selection) {
		// Nested containers (li > p) would double-count; only leaves of
		// the paragraphish set contribute.
		if el.Find(paragraphishSelector).Length() > 0 {
			return
		}
		total += len(strings.TrimSpace(el.Text()))
	})
	return total
}
