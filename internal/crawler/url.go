package crawler

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/gobwas/glob"
)

// maxURLLength guards against pathological links; anything longer is
// dropped before it can reach the frontier.
const maxURLLength = 2000

// Admission classifies a canonical URL against the crawl policy.
type Admission int

// Admission results. Everything except Admit is silently dropped.
const (
	Admit Admission = iota
	ExcludeByScope
	ExcludeByPattern
	ExcludeRepetitivePath
	ExcludeTooLong
)

func (a Admission) String() string {
	switch a {
	case Admit:
		return "admit"
	case ExcludeByScope:
		return "out_of_scope"
	case ExcludeByPattern:
		return "excluded_pattern"
	case ExcludeRepetitivePath:
		return "repetitive_path"
	case ExcludeTooLong:
		return "too_long"
	default:
		return "unknown"
	}
}

// Normalizer canonicalizes URLs and applies the admission policy. It is a
// pure classifier over configuration known at startup.
type Normalizer struct {
	include        *regexp.Regexp
	exclusions     []glob.Glob
	skipRepetitive bool
}

// NewNormalizer builds a Normalizer from an inclusion regex and compiled
// exclusion globs.
func NewNormalizer(include *regexp.Regexp, exclusions []glob.Glob, skipRepetitive bool) *Normalizer {
	return &Normalizer{
		include:        include,
		exclusions:     exclusions,
		skipRepetitive: skipRepetitive,
	}
}

// CompileExclusions turns raw glob patterns into matchers. A `*` matches
// any run of characters; matching is against the full URL string.
func CompileExclusions(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile exclusion pattern %q: %w", p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

// Normalize resolves rawURL against the page it was found on, strips the
// fragment, lowercases scheme and host, and drops default ports. The
// result is the canonical form used as the deduplication key.
func (n *Normalizer) Normalize(rawURL string, base *url.URL) (string, error) {
	ref, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	u := ref
	if base != nil {
		u = base.ResolveReference(ref)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""

	if u.Scheme == "http" {
		u.Host = strings.TrimSuffix(u.Host, ":80")
	}
	if u.Scheme == "https" {
		u.Host = strings.TrimSuffix(u.Host, ":443")
	}

	return u.String(), nil
}

// Admit classifies a canonical URL. Scope is checked last so that an
// exclusion glob wins even when the inclusion regex also matches.
func (n *Normalizer) Admit(canonical string) Admission {
	if len(canonical) > maxURLLength {
		return ExcludeTooLong
	}
	for _, g := range n.exclusions {
		if g.Match(canonical) {
			return ExcludeByPattern
		}
	}
	if hasTrailingRepetition(canonical) {
		return ExcludeRepetitivePath
	}
	if n.skipRepetitive && hasRepeatedSegment(canonical) {
		return ExcludeRepetitivePath
	}
	if n.include != nil && !n.include.MatchString(canonical) {
		return ExcludeByScope
	}
	return Admit
}

// hasTrailingRepetition reports whether a path of more than five segments
// ends in the same segment three times, with that segment making up the
// majority of the path. Unlike the adjacent-segment guard this check is
// always on; such URLs come from self-referencing relative links that
// compound on every hop.
func hasTrailingRepetition(canonical string) bool {
	u, err := url.Parse(canonical)
	if err != nil {
		return false
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segments) <= 5 {
		return false
	}
	last := segments[len(segments)-1]
	if last == "" || segments[len(segments)-2] != last || segments[len(segments)-3] != last {
		return false
	}
	count := 0
	for _, s := range segments {
		if s == last {
			count++
		}
	}
	return count > len(segments)/2
}

// hasRepeatedSegment reports whether the path contains the same non-empty
// segment more than twice in a row, e.g. /a/a/a/ but not /a/a/. Such
// paths are almost always crawler traps from breadcrumb or pagination
// loops.
func hasRepeatedSegment(canonical string) bool {
	u, err := url.Parse(canonical)
	if err != nil {
		return false
	}
	var segments []string
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	for i := 0; i+2 < len(segments); i++ {
		if segments[i] == segments[i+1] && segments[i+1] == segments[i+2] {
			return true
		}
	}
	return false
}
