package state

import (
	"context"
	"sync"
	"time"
)

// searcher keeps at most one search in flight per container. Beginning a
// new search cancels the previous one, so only the latest query's results
// are ever applied; debounce collapses keystroke bursts into one request.
type searcher struct {
	mu     sync.Mutex
	delay  time.Duration
	timer  *time.Timer
	cancel context.CancelFunc
}

// begin cancels the in-flight search, if any, and derives the context for
// the new one.
func (s *searcher) begin(ctx context.Context) context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	return ctx
}

// debounce schedules fn after the configured delay, discarding any
// previously scheduled call that hasn't fired yet.
func (s *searcher) debounce(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	if s.delay <= 0 {
		s.timer = nil
		go fn()
		return
	}
	s.timer = time.AfterFunc(s.delay, fn)
}

// stop cancels anything pending or in flight.
func (s *searcher) stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
