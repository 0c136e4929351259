// Package crawler implements the documentation crawl engine: URL
// normalization and admission, the deduplicating frontier, polite fetching
// with retry, content extraction, link discovery, and the append-only
// resume log.
package crawler
