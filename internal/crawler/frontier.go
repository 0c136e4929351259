package crawler

// Frontier is the deduplicated FIFO work queue of URLs to visit. A URL is
// in exactly one of three states: never seen, queued, or visited
// (terminal). Enqueue is the single deduplication gate; nothing re-enters
// the queue once it has been queued or visited.
//
// Traversal is breadth-first by discovery order, so sibling pages surface
// before deep chains and the generated index reads top-down from the root.
type Frontier struct {
	queue    []string
	queued   map[string]struct{}
	visited  map[string]struct{}
	terminal int
	maxPages int
}

// NewFrontier builds a Frontier capped at maxPages terminal
// (success-or-failed) URLs. maxPages <= 0 means no cap.
func NewFrontier(maxPages int) *Frontier {
	return &Frontier{
		queued:   make(map[string]struct{}),
		visited:  make(map[string]struct{}),
		maxPages: maxPages,
	}
}

// Seed inserts the starting URL.
func (f *Frontier) Seed(url string) {
	f.Enqueue(url)
}

// Enqueue adds a canonical URL unless it is already queued or visited.
// It reports whether the URL was accepted.
func (f *Frontier) Enqueue(url string) bool {
	if url == "" {
		return false
	}
	if _, ok := f.visited[url]; ok {
		return false
	}
	if _, ok := f.queued[url]; ok {
		return false
	}
	f.queued[url] = struct{}{}
	f.queue = append(f.queue, url)
	return true
}

// Dequeue pops the next URL in discovery order. It reports false when the
// queue is empty or the page cap has been reached, regardless of
// remaining queued work.
func (f *Frontier) Dequeue() (string, bool) {
	if f.maxPages > 0 && f.terminal >= f.maxPages {
		return "", false
	}
	for len(f.queue) > 0 {
		url := f.queue[0]
		f.queue = f.queue[1:]
		delete(f.queued, url)
		// A queued URL can have become visited via a redirect or a
		// Markdown sibling probe in the meantime.
		if _, ok := f.visited[url]; ok {
			continue
		}
		return url, true
	}
	return "", false
}

// MarkVisited moves a URL to the terminal visited set. Success and Failed
// outcomes count toward the page cap; Excluded and Skipped do not.
func (f *Frontier) MarkVisited(url string, outcome Outcome) {
	if _, ok := f.visited[url]; ok {
		return
	}
	f.visited[url] = struct{}{}
	delete(f.queued, url)
	if outcome == OutcomeSuccess || outcome == OutcomeFailed {
		f.terminal++
	}
}

// MarkSeen records a URL as visited without counting it toward the page
// cap. Used when seeding the visited set from a prior run's log.
func (f *Frontier) MarkSeen(url string) {
	f.visited[url] = struct{}{}
	delete(f.queued, url)
}

// Visited reports whether the URL is terminal.
func (f *Frontier) Visited(url string) bool {
	_, ok := f.visited[url]
	return ok
}

// Len returns the number of queued URLs.
func (f *Frontier) Len() int { return len(f.queue) }
