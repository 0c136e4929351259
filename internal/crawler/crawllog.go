package crawler

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// CrawlLog is the append-only record of per-URL outcomes. Each terminal
// attempt is written and flushed immediately, so an interrupted crawl
// leaves a log that is safe to resume from. Lines are `<outcome>\t<url>`;
// blank lines and `#` comments are ignored by the loader, as is a partial
// final line left by a mid-write interruption.
type CrawlLog struct {
	f    *os.File
	w    *bufio.Writer
	path string
}

// OpenCrawlLog opens (or creates) the log at path for appending and
// writes a session header comment.
func OpenCrawlLog(path, sessionID string) (*CrawlLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open crawl log %s: %w", path, err)
	}
	l := &CrawlLog{f: f, w: bufio.NewWriter(f), path: path}
	if sessionID != "" {
		if _, err := fmt.Fprintf(l.w, "# session %s\n", sessionID); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("write log header: %w", err)
		}
		if err := l.w.Flush(); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("flush log header: %w", err)
		}
	}
	return l, nil
}

// Append records one terminal outcome and flushes it to disk before
// returning.
func (l *CrawlLog) Append(url string, outcome Outcome) error {
	if _, err := fmt.Fprintf(l.w, "%s\t%s\n", outcome, url); err != nil {
		return fmt.Errorf("append crawl log: %w", err)
	}
	if err := l.w.Flush(); err != nil {
		return fmt.Errorf("flush crawl log: %w", err)
	}
	return nil
}

// Path returns the log file location.
func (l *CrawlLog) Path() string { return l.path }

// Close flushes and closes the log file.
func (l *CrawlLog) Close() error {
	if err := l.w.Flush(); err != nil {
		_ = l.f.Close()
		return fmt.Errorf("flush crawl log: %w", err)
	}
	if err := l.f.Close(); err != nil {
		return fmt.Errorf("close crawl log: %w", err)
	}
	return nil
}

// PriorLog is the resume state recovered from an earlier run.
type PriorLog struct {
	// Successful URLs seed the visited set so they are never re-fetched.
	Successful map[string]struct{}
	// Failed URLs are re-seeded into the frontier for another attempt,
	// in their original log order.
	Failed []string
}

// LoadPriorLog reads a prior run's log. A missing file yields an empty
// state. A URL that failed and later succeeded counts as successful.
func LoadPriorLog(path string) (PriorLog, error) {
	prior := PriorLog{Successful: make(map[string]struct{})}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return prior, nil
		}
		return PriorLog{}, fmt.Errorf("open prior crawl log %s: %w", path, err)
	}
	defer f.Close()

	failedSeen := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		outcome, url, ok := strings.Cut(line, "\t")
		if !ok || url == "" {
			// Partial line from an interrupted write; ignorable noise.
			continue
		}
		switch Outcome(outcome) {
		case OutcomeSuccess:
			prior.Successful[url] = struct{}{}
		case OutcomeFailed:
			if _, dup := failedSeen[url]; !dup {
				failedSeen[url] = struct{}{}
				prior.Failed = append(prior.Failed, url)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return PriorLog{}, fmt.Errorf("read prior crawl log %s: %w", path, err)
	}

	kept := prior.Failed[:0]
	for _, url := range prior.Failed {
		if _, ok := prior.Successful[url]; !ok {
			kept = append(kept, url)
		}
	}
	prior.Failed = kept
	return prior, nil
}
