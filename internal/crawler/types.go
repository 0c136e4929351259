// Package crawler defines core types shared across subsystems.
package crawler

import (
	"fmt"
	"time"
)

// SourceKind identifies where a page's content came from.
type SourceKind string

// Content source values recorded on each page.
const (
	SourceMarkdown SourceKind = "markdown"
	SourceHTML     SourceKind = "html"
)

// Outcome is the terminal state of a crawled URL.
type Outcome string

// Outcome values persisted in the crawl log.
const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFailed   Outcome = "failed"
	OutcomeExcluded Outcome = "excluded"
	OutcomeSkipped  Outcome = "skipped"
)

// PageRecord is the finalized result for one crawled page. Records are
// appended in first-discovery order and never mutated afterwards; that
// order is the output order of the generated artifacts.
type PageRecord struct {
	URL     string
	Title   string
	Source  SourceKind
	Content string
	Status  Outcome
	// Sibling is the Markdown mirror URL the content was taken from,
	// empty when the page itself was the content source.
	Sibling string
}

// FetchResponse is the result of a successful fetch.
type FetchResponse struct {
	URL         string
	FinalURL    string
	StatusCode  int
	ContentType string
	Body        []byte
	Duration    time.Duration
}

// FetchReason classifies why a fetch ultimately failed.
type FetchReason string

// Failure reasons reported after retries are exhausted.
const (
	ReasonTimeout          FetchReason = "timeout"
	ReasonConnectionFailed FetchReason = "connection_failed"
	ReasonHTTPStatus       FetchReason = "http_status"
)

// FetchError is returned by a Fetcher once all attempts are spent.
type FetchError struct {
	URL        string
	Reason     FetchReason
	StatusCode int
	Attempts   int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Reason == ReasonHTTPStatus {
		return fmt.Sprintf("fetch %s: status %d after %d attempts", e.URL, e.StatusCode, e.Attempts)
	}
	return fmt.Sprintf("fetch %s: %s after %d attempts", e.URL, e.Reason, e.Attempts)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ExtractedPage is the title/content pair produced by an Extractor.
type ExtractedPage struct {
	Title   string
	Content string
	Source  SourceKind
}

// Snapshot is a point-in-time view of crawl progress, served by the
// status endpoint.
type Snapshot struct {
	SessionID  string `json:"session_id"`
	CurrentURL string `json:"current_url,omitempty"`
	Queued     int    `json:"queued"`
	Succeeded  int    `json:"succeeded"`
	Failed     int    `json:"failed"`
	Skipped    int    `json:"skipped"`
	Done       bool   `json:"done"`
}
