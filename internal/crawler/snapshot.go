package crawler

import "sync"

// snapshotState guards the progress view read by the status server while
// the single-threaded crawl loop mutates it.
type snapshotState struct {
	mu sync.Mutex
	s  Snapshot
}

func (st *snapshotState) init(sessionID string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s = Snapshot{SessionID: sessionID}
}

func (st *snapshotState) current(url string, queued int) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.CurrentURL = url
	st.s.Queued = queued
}

func (st *snapshotState) finalized(outcome Outcome) {
	st.mu.Lock()
	defer st.mu.Unlock()
	switch outcome {
	case OutcomeSuccess:
		st.s.Succeeded++
	case OutcomeFailed:
		st.s.Failed++
	case OutcomeSkipped, OutcomeExcluded:
		st.s.Skipped++
	}
}

func (st *snapshotState) finish(queued int) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.CurrentURL = ""
	st.s.Queued = queued
	st.s.Done = true
}

func (st *snapshotState) get() Snapshot {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.s
}
