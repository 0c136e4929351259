package crawler

import (
	"net/url"
	"path"
	"strings"
)

// MarkdownSiblingURL returns the URL of the conventional Markdown mirror
// for an HTML page, or "" when none is derivable:
//
//	/path/to/page.html -> /path/to/page.html.md
//	/path/to/page      -> /path/to/page.md
//	/path/to/dir/      -> /path/to/dir/index.html.md
//
// Pages that already are Markdown or plain text have no sibling.
func MarkdownSiblingURL(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	switch strings.ToLower(path.Ext(u.Path)) {
	case ".md", ".markdown", ".txt":
		return ""
	}
	if strings.HasSuffix(u.Path, "/") || u.Path == "" {
		u.Path += "index.html.md"
	} else {
		u.Path += ".md"
	}
	u.Fragment = ""
	u.RawQuery = ""
	return u.String()
}
