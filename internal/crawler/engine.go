package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// EngineConfig holds the per-session crawl settings.
type EngineConfig struct {
	BaseURL  string
	MaxPages int
	Restart  bool
	LogPath  string
}

// Engine owns one crawl session: the frontier, the visited set, the
// ordered result list, and the crawl log lifecycle. Collaborators are
// injected so the loop can be tested in isolation.
type Engine struct {
	cfg        EngineConfig
	norm       *Normalizer
	fetcher    Fetcher
	extractor  Extractor
	discoverer LinkDiscoverer
	logger     *zap.Logger
	sessionID  string

	snap snapshotState
}

// NewEngine assembles a crawl session.
func NewEngine(
	cfg EngineConfig,
	norm *Normalizer,
	fetcher Fetcher,
	extractor Extractor,
	discoverer LinkDiscoverer,
	logger *zap.Logger,
) *Engine {
	e := &Engine{
		cfg:        cfg,
		norm:       norm,
		fetcher:    fetcher,
		extractor:  extractor,
		discoverer: discoverer,
		logger:     logger,
		sessionID:  uuid.NewString(),
	}
	e.snap.init(e.sessionID)
	return e
}

// Snapshot returns the current crawl progress. Safe for concurrent use by
// the status server while Run is executing.
func (e *Engine) Snapshot() Snapshot { return e.snap.get() }

// Run executes the crawl loop until the frontier is empty, the page cap
// is reached, or ctx is canceled. The accumulated records are returned in
// first-discovery order; on cancellation the partial list is returned
// together with the context error so callers can still render output.
func (e *Engine) Run(ctx context.Context) ([]PageRecord, error) {
	seed, err := e.norm.Normalize(e.cfg.BaseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("normalize base url: %w", err)
	}

	frontier := NewFrontier(e.cfg.MaxPages)
	var reseed []string
	if e.cfg.Restart {
		prior, err := LoadPriorLog(e.cfg.LogPath)
		if err != nil {
			return nil, err
		}
		for u := range prior.Successful {
			frontier.MarkSeen(u)
		}
		reseed = prior.Failed
		e.logger.Info("resuming prior crawl",
			zap.Int("already_successful", len(prior.Successful)),
			zap.Int("reattempting_failed", len(reseed)),
			zap.String("log", e.cfg.LogPath),
		)
	}

	log, err := OpenCrawlLog(e.cfg.LogPath, e.sessionID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := log.Close(); cerr != nil {
			e.logger.Warn("close crawl log", zap.Error(cerr))
		}
	}()

	frontier.Seed(seed)
	for _, u := range reseed {
		frontier.Enqueue(u)
	}

	var records []PageRecord
	for {
		if ctx.Err() != nil {
			e.snap.finish(frontier.Len())
			return records, ctx.Err()
		}
		target, ok := frontier.Dequeue()
		if !ok {
			break
		}
		e.snap.current(target, frontier.Len())

		record, recorded := e.crawlOne(ctx, target, frontier, log)
		if !recorded {
			continue
		}
		records = append(records, record)
		e.snap.finalized(record.Status)
		pagesTotal.WithLabelValues(string(record.Status)).Inc()
	}

	e.snap.finish(frontier.Len())
	e.logger.Info("crawl finished",
		zap.Int("pages", len(records)),
		zap.Int("left_in_frontier", frontier.Len()),
	)
	return records, nil
}

// crawlOne fetches, extracts, and discovers links for a single URL. It
// reports false when the URL produced no record (cancellation mid-fetch).
func (e *Engine) crawlOne(ctx context.Context, target string, frontier *Frontier, log *CrawlLog) (PageRecord, bool) {
	resp, err := e.fetcher.Fetch(ctx, target)
	if err != nil {
		if ctx.Err() != nil {
			return PageRecord{}, false
		}
		if errors.Is(err, ErrRobotsDisallowed) {
			frontier.MarkVisited(target, OutcomeExcluded)
			e.appendOutcome(log, target, OutcomeExcluded)
			e.logger.Info("disallowed by robots.txt", zap.String("url", target))
			return PageRecord{URL: target, Title: titleFromPath(target), Status: OutcomeExcluded}, true
		}
		frontier.MarkVisited(target, OutcomeFailed)
		e.appendOutcome(log, target, OutcomeFailed)
		e.logger.Error("page failed", zap.String("url", target), zap.Error(err))
		return PageRecord{
			URL:    target,
			Title:  titleFromPath(target),
			Status: OutcomeFailed,
		}, true
	}

	canonical := target
	if normalized, nerr := e.norm.Normalize(resp.FinalURL, nil); nerr == nil && normalized != "" {
		canonical = normalized
	}

	// A redirect can land on a page that was already crawled under its
	// canonical URL; the fetch succeeded but the record is a duplicate.
	if canonical != target && frontier.Visited(canonical) {
		frontier.MarkVisited(target, OutcomeSkipped)
		e.appendOutcome(log, target, OutcomeSuccess)
		e.logger.Info("duplicate via redirect", zap.String("url", target), zap.String("canonical", canonical))
		return PageRecord{URL: target, Title: titleFromPath(target), Status: OutcomeSkipped}, true
	}

	frontier.MarkVisited(target, OutcomeSuccess)
	if canonical != target {
		frontier.MarkSeen(canonical)
	}

	page, xerr := e.extractor.Extract(resp)
	if xerr != nil {
		// Non-fatal by contract: the page is recorded as a success with
		// empty content.
		if !errors.Is(xerr, ErrNoContent) {
			e.logger.Warn("extraction failed", zap.String("url", canonical), zap.Error(xerr))
		} else {
			e.logger.Warn("no readable content", zap.String("url", canonical))
		}
	}

	sibling := ""
	if page.Source == SourceHTML {
		sibling = e.preferMarkdownSibling(ctx, canonical, frontier, log, &page)
		e.discover(resp.Body, canonical, frontier)
	}

	e.appendOutcome(log, target, OutcomeSuccess)
	return PageRecord{
		URL:     canonical,
		Title:   page.Title,
		Source:  page.Source,
		Content: page.Content,
		Status:  OutcomeSuccess,
		Sibling: sibling,
	}, true
}

// preferMarkdownSibling probes for the page's conventional .md mirror and,
// when present, swaps its body in as the content source. The canonical
// link target stays the first-discovered URL; only the content and source
// kind change.
func (e *Engine) preferMarkdownSibling(ctx context.Context, canonical string, frontier *Frontier, log *CrawlLog, page *ExtractedPage) string {
	sib := MarkdownSiblingURL(canonical)
	if sib == "" || frontier.Visited(sib) {
		return ""
	}
	exists, err := e.fetcher.Probe(ctx, sib)
	if err != nil || !exists {
		return ""
	}
	resp, err := e.fetcher.Fetch(ctx, sib)
	if err != nil {
		e.logger.Warn("markdown sibling fetch failed, keeping html content",
			zap.String("url", sib), zap.Error(err))
		return ""
	}
	sibPage, err := e.extractor.Extract(resp)
	if err != nil || sibPage.Content == "" {
		return ""
	}
	frontier.MarkSeen(sib)
	e.appendOutcome(log, sib, OutcomeSuccess)
	page.Content = sibPage.Content
	page.Source = SourceMarkdown
	e.logger.Info("using markdown sibling content", zap.String("url", sib))
	return sib
}

// discover normalizes and admits every link on the page, feeding
// survivors to the frontier.
func (e *Engine) discover(body []byte, pageURL string, frontier *Frontier) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return
	}
	for _, raw := range e.discoverer.DiscoverLinks(body, pageURL) {
		candidate, nerr := e.norm.Normalize(raw, base)
		if nerr != nil {
			e.logger.Debug("unparsable link", zap.String("href", raw), zap.Error(nerr))
			continue
		}
		if admission := e.norm.Admit(candidate); admission != Admit {
			e.logger.Debug("link dropped",
				zap.String("url", candidate),
				zap.String("reason", admission.String()),
			)
			continue
		}
		if frontier.Enqueue(candidate) {
			linksDiscoveredTotal.Inc()
		}
	}
}

func (e *Engine) appendOutcome(log *CrawlLog, url string, outcome Outcome) {
	if err := log.Append(url, outcome); err != nil {
		e.logger.Error("append crawl log", zap.String("url", url), zap.Error(err))
	}
}
